// model.go - Message pane of the chat screen.
// Renders the conversation into a scrollable viewport, assistant answers as markdown,
// the typing indicator and the welcome screen.

package chat

import (
	"strings"

	"ragchat/src/components/theme"
	"ragchat/src/models"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

// WelcomeText greets the user when no chat is open.
const WelcomeText = "Hi! How can I help you today?"

// Model is the message pane.
type Model struct {
	viewport viewport.Model
	spinner  spinner.Model
	styles   *theme.Styles
	// markdown renders an assistant answer; nil falls back to plain wrapping.
	markdown func(string) (string, error)

	messages []models.Message
	history  string // rendered messages, rebuilt only when they or the layout change
	welcome  bool
	typing   bool
	width    int
	height   int
}

// New creates a pane showing the welcome screen.
func New(st *theme.Styles) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner
	m := &Model{
		viewport: viewport.New(80, 20),
		spinner:  sp,
		styles:   st,
		welcome:  true,
		width:    80,
		height:   20,
	}
	m.newRenderer()
	m.refresh()
	return m
}

func (m *Model) newRenderer() {
	wrap := m.width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.styles.Name),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.markdown = nil
		return
	}
	m.markdown = r.Render
}

// SetStyles switches theme and re-renders.
func (m *Model) SetStyles(st *theme.Styles) {
	m.styles = st
	m.spinner.Style = st.Spinner
	m.newRenderer()
	m.rebuild()
}

func (m *Model) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = height
	m.newRenderer()
	m.rebuild()
}

// SetMessages replaces the pane wholesale.
func (m *Model) SetMessages(msgs []models.Message) {
	m.messages = append([]models.Message(nil), msgs...)
	m.welcome = false
	m.rebuild()
}

// Append adds one message at the end.
func (m *Model) Append(msg models.Message) {
	m.messages = append(m.messages, msg)
	m.welcome = false
	m.history += m.renderMessage(msg) + "\n"
	m.refresh()
}

// Clear empties the pane.
func (m *Model) Clear() {
	m.messages = nil
	m.welcome = false
	m.typing = false
	m.rebuild()
}

// ShowWelcome replaces the pane with the welcome screen.
func (m *Model) ShowWelcome() {
	m.messages = nil
	m.welcome = true
	m.typing = false
	m.rebuild()
}

// SetTyping shows or hides the typing indicator. Showing it starts the spinner.
func (m *Model) SetTyping(on bool) tea.Cmd {
	m.typing = on
	m.refresh()
	if on {
		m.viewport.GotoBottom()
		return m.spinner.Tick
	}
	return nil
}

func (m *Model) Typing() bool { return m.typing }

func (m *Model) Welcome() bool { return m.welcome }

func (m *Model) Messages() []models.Message { return m.messages }

func (m *Model) ScrollToEnd() { m.viewport.GotoBottom() }

// LastAnswer returns the most recent assistant message.
func (m *Model) LastAnswer() (string, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == models.RoleAssistant {
			return m.messages[i].Content, true
		}
	}
	return "", false
}

// Update scrolls the viewport and animates the spinner.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	if _, ok := msg.(spinner.TickMsg); ok {
		if !m.typing {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshKeepOffset()
		return cmd
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (m *Model) View() string {
	return m.viewport.View()
}

func (m *Model) refreshKeepOffset() {
	off := m.viewport.YOffset
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.compose())
	if atBottom {
		m.viewport.GotoBottom()
	} else {
		m.viewport.SetYOffset(off)
	}
}

// rebuild re-renders every message, then refreshes the viewport.
func (m *Model) rebuild() {
	var b strings.Builder
	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.history = b.String()
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.compose())
}

// compose joins the cached history with the typing row. Spinner frames only pay for the latter.
func (m *Model) compose() string {
	if m.welcome {
		return m.renderWelcome()
	}
	if !m.typing {
		return m.history
	}
	return m.history +
		m.styles.BotLabel.Render("Assistant") + "\n" +
		m.spinner.View() + m.styles.Muted.Render(" thinking...") + "\n"
}

func (m *Model) renderMessage(msg models.Message) string {
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	if msg.Role == models.RoleUser {
		label := m.styles.UserLabel.Render("You")
		body := m.styles.UserBubble.Width(width).Render(msg.Content)
		return label + "\n" + body + "\n"
	}

	label := m.styles.BotLabel.Render("Assistant")
	if msg.ModelName != "" {
		label += " " + m.styles.ModelTag.Render("("+msg.ModelName+")")
	}
	body := msg.Content
	if m.markdown != nil {
		if out, err := m.markdown(msg.Content); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	} else {
		body = lipgloss.NewStyle().Width(width).Render(body)
	}
	return label + "\n" + body + "\n"
}

func (m *Model) renderWelcome() string {
	banner := strings.Trim(figure.NewFigure("RAG CHAT", "", true).String(), "\n")
	var content string
	if lipgloss.Width(banner) <= m.width-2 {
		content = m.styles.Welcome.Render(banner) + "\n\n"
	}
	content += m.styles.Welcome.Render(WelcomeText)
	h := m.height
	if h < lipgloss.Height(content) {
		h = lipgloss.Height(content)
	}
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, content)
}
