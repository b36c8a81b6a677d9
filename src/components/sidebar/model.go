// components/sidebar/model.go - Session list shown next to the chat window.
// Keeps the cursor, the active chat and the collapsed state; selecting a chat
// is reported to the app as an OpenChatMsg.

package sidebar

import (
	"ragchat/src/models"
	"ragchat/src/types"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// OpenChatMsg asks the app to load a chat.
type OpenChatMsg struct {
	ID models.ChatID
}

// NewChatMsg asks the app to start an empty chat.
type NewChatMsg struct{}

// Model manages the sidebar.
type Model struct {
	Sessions  []models.ChatSession
	ActiveID  models.ChatID
	Cursor    int
	Collapsed bool
	Focused   bool
	UserName  string
	ModelName string
	Width     int
	Height    int
	keys      types.KeyMap
}

// New creates an empty sidebar.
func New(keys types.KeyMap) *Model {
	return &Model{keys: keys, Width: 28, Height: 20}
}

// SetSessions replaces the list and moves the cursor to the active chat.
func (s *Model) SetSessions(list []models.ChatSession, active models.ChatID) {
	s.Sessions = list
	s.ActiveID = active
	s.Cursor = 0
	for i, sess := range list {
		if sess.ID == active {
			s.Cursor = i
			break
		}
	}
}

func (s *Model) SetSize(width, height int) {
	s.Width, s.Height = width, height
}

// Toggle collapses or expands the sidebar.
func (s *Model) Toggle() { s.Collapsed = !s.Collapsed }

// Selected returns the chat under the cursor.
func (s *Model) Selected() (models.ChatSession, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Sessions) {
		return models.ChatSession{}, false
	}
	return s.Sessions[s.Cursor], true
}

// Update handles navigation while the sidebar has focus.
func (s *Model) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !s.Focused {
		return nil
	}
	switch {
	case key.Matches(km, s.keys.Up):
		if len(s.Sessions) > 0 {
			s.Cursor = (s.Cursor - 1 + len(s.Sessions)) % len(s.Sessions)
		}
	case key.Matches(km, s.keys.Down):
		if len(s.Sessions) > 0 {
			s.Cursor = (s.Cursor + 1) % len(s.Sessions)
		}
	case key.Matches(km, s.keys.Open):
		if sess, ok := s.Selected(); ok {
			id := sess.ID
			return func() tea.Msg { return OpenChatMsg{ID: id} }
		}
	}
	return nil
}
