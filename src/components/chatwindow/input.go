// input.go - Message composer under the chat pane.
// Wraps a textarea; Enter submits, the input is locked while a send is in flight.

package chatwindow

import (
	"strings"

	"ragchat/src/components/theme"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// SubmitMsg carries the text the user submitted.
type SubmitMsg struct {
	Text string
}

// Input is the composer.
type Input struct {
	area   textarea.Model
	locked bool
	width  int
}

// NewInput creates a focused composer.
func NewInput() *Input {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()
	return &Input{area: ta, width: 80}
}

// Height is the rows the composer occupies, border included.
func (in *Input) Height() int { return in.area.Height() + 2 }

func (in *Input) SetSize(width int) {
	in.width = width
	in.area.SetWidth(width - 2)
}

func (in *Input) Focus() tea.Cmd { return in.area.Focus() }

func (in *Input) Blur() { in.area.Blur() }

func (in *Input) Focused() bool { return in.area.Focused() }

// SetLocked blocks submissions while a send is outstanding.
func (in *Input) SetLocked(locked bool) { in.locked = locked }

func (in *Input) Locked() bool { return in.locked }

func (in *Input) Value() string { return in.area.Value() }

func (in *Input) SetValue(s string) { in.area.SetValue(s) }

func (in *Input) Reset() { in.area.Reset() }

// Update handles typing. Enter with non-blank text emits a SubmitMsg and clears the composer.
func (in *Input) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyEnter {
		if !in.area.Focused() || in.locked {
			return nil
		}
		text := strings.TrimSpace(in.area.Value())
		if text == "" {
			return nil
		}
		in.area.Reset()
		return func() tea.Msg { return SubmitMsg{Text: text} }
	}
	var cmd tea.Cmd
	in.area, cmd = in.area.Update(msg)
	return cmd
}

func (in *Input) View(st *theme.Styles) string {
	return st.Input.Width(in.width - 2).Render(in.area.View())
}
