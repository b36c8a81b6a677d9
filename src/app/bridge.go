// bridge.go - Bridge turns the controller's view calls into tea messages.
// The controller runs inside tea.Cmd goroutines, so every surface change is
// sent to the program and applied by App.Update on the UI goroutine.

package app

import (
	"sync"
	"sync/atomic"

	"ragchat/src/models"
	"ragchat/src/services/session"

	tea "github.com/charmbracelet/bubbletea"
)

type sessionsMsg struct {
	sessions []models.ChatSession
	activeID models.ChatID
}

type showMessagesMsg struct{ messages []models.Message }

type appendMessageMsg struct{ message models.Message }

type clearMessagesMsg struct{}

type welcomeMsg struct{}

type typingMsg struct{ on bool }

type scrollToEndMsg struct{}

type collapseSidebarMsg struct{}

type noticeMsg struct{ notice session.Notice }

// Bridge implements session.View on top of a tea.Program.
type Bridge struct {
	mu    sync.RWMutex
	send  func(tea.Msg)
	model string
	width atomic.Int64
}

// NewBridge returns a bridge that drops messages until SetSender is called.
func NewBridge() *Bridge {
	return &Bridge{}
}

// SetSender sets where messages go, usually (*tea.Program).Send.
func (b *Bridge) SetSender(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

// SetViewportWidth records the terminal width in columns.
func (b *Bridge) SetViewportWidth(w int) { b.width.Store(int64(w)) }

// SetSelectedModel records the model sent with the next message.
func (b *Bridge) SetSelectedModel(name string) {
	b.mu.Lock()
	b.model = name
	b.mu.Unlock()
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) RenderSessions(list []models.ChatSession, activeID models.ChatID) {
	b.emit(sessionsMsg{sessions: list, activeID: activeID})
}

func (b *Bridge) ShowMessages(msgs []models.Message) {
	b.emit(showMessagesMsg{messages: append([]models.Message(nil), msgs...)})
}

func (b *Bridge) AppendMessage(msg models.Message) { b.emit(appendMessageMsg{message: msg}) }
func (b *Bridge) ClearMessages()                  { b.emit(clearMessagesMsg{}) }
func (b *Bridge) ShowWelcome()                    { b.emit(welcomeMsg{}) }
func (b *Bridge) ShowTyping()                     { b.emit(typingMsg{on: true}) }
func (b *Bridge) HideTyping()                     { b.emit(typingMsg{on: false}) }
func (b *Bridge) ScrollToEnd()                    { b.emit(scrollToEndMsg{}) }
func (b *Bridge) CollapseSidebar()                { b.emit(collapseSidebarMsg{}) }
func (b *Bridge) Notify(n session.Notice)         { b.emit(noticeMsg{notice: n}) }

func (b *Bridge) ViewportWidth() int { return int(b.width.Load()) }

func (b *Bridge) SelectedModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

var _ session.View = (*Bridge)(nil)
