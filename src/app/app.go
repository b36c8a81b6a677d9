// Package app provides the chat screen of the ragchat client.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ragchat/src/components/chat"
	"ragchat/src/components/chatwindow"
	"ragchat/src/components/modals"
	"ragchat/src/components/modals/dialogs"
	"ragchat/src/components/sidebar"
	"ragchat/src/components/theme"
	"ragchat/src/models"
	"ragchat/src/navigation"
	"ragchat/src/services/session"
	"ragchat/src/types"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// =====================================================================================
// 🧭 Layout
// =====================================================================================

const (
	sidebarWidth = 30
	headerHeight = 1
	footerHeight = 3
	minWidth     = 40
	minHeight    = 12
)

// =====================================================================================
// 📨 Command results
// =====================================================================================

type initDoneMsg struct{ err error }

type loadDoneMsg struct{ err error }

type newChatDoneMsg struct{ err error }

type sendDoneMsg struct{ err error }

type accountMsg struct {
	models  []models.ModelInfo
	profile models.Profile
	err     error
}

type profileMsg struct {
	profile models.Profile
	err     error
}

type loggedOutMsg struct{ err error }

// Options wires an App.
type Options struct {
	Controller *session.Controller
	Account    *session.Account
	Bridge     *Bridge
	Logger     *slog.Logger
	NoticeTTL  time.Duration
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

// App is the root tea.Model: sidebar, message pane, composer, modals and notices.
type App struct {
	ctx     context.Context
	ctrl    *session.Controller
	account *session.Account
	bridge  *Bridge
	logger  *slog.Logger
	copy    func(string) error

	keys    types.KeyMap
	styles  *theme.Styles
	sidebar *sidebar.Model
	chat    *chat.Model
	input   *chatwindow.Input
	help    help.Model
	toast   *dialogs.Toast
	modals  navigation.Stack
	profile *dialogs.InfoModal

	focus     types.FocusArea
	width     int
	height    int
	modelList []models.ModelInfo
	started   bool
	sending   bool
	loggedOut bool
	quitting  bool
}

// New builds the chat screen. ctx bounds every backend call the screen makes.
func New(ctx context.Context, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Bridge == nil {
		opts.Bridge = NewBridge()
	}
	st := theme.New(opts.Account.Theme())
	a := &App{
		ctx:     ctx,
		ctrl:    opts.Controller,
		account: opts.Account,
		bridge:  opts.Bridge,
		logger:  opts.Logger,
		copy:    opts.Clipboard,
		keys:    types.DefaultKeyMap,
		styles:  st,
		sidebar: sidebar.New(types.DefaultKeyMap),
		chat:    chat.New(st),
		input:   chatwindow.NewInput(),
		help:    help.New(),
		toast:   dialogs.NewToast(opts.NoticeTTL),
		focus:   types.FocusInput,
	}
	selected := a.account.SelectedModel()
	a.bridge.SetSelectedModel(selected)
	a.sidebar.ModelName = selected
	a.sidebar.UserName = a.account.CurrentUser().DisplayName()
	return a
}

// LoggedOut reports whether the screen ended with a logout.
func (a *App) LoggedOut() bool { return a.loggedOut }

func (a *App) Init() tea.Cmd {
	return a.input.Focus()
}

// =====================================================================================
// 🔄 Update
// =====================================================================================

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.bridge.SetViewportWidth(msg.Width)
		a.layout()
		if !a.started {
			// The first size is known before the controller decides whether to collapse.
			a.started = true
			return a, tea.Batch(a.initialize(), a.loadAccount())
		}
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	// Controller surfaces.
	case sessionsMsg:
		a.sidebar.SetSessions(msg.sessions, msg.activeID)
		return a, nil
	case showMessagesMsg:
		a.chat.SetMessages(msg.messages)
		return a, nil
	case appendMessageMsg:
		a.chat.Append(msg.message)
		return a, nil
	case clearMessagesMsg:
		a.chat.Clear()
		return a, nil
	case welcomeMsg:
		a.chat.ShowWelcome()
		return a, nil
	case typingMsg:
		return a, a.chat.SetTyping(msg.on)
	case scrollToEndMsg:
		a.chat.ScrollToEnd()
		return a, nil
	case collapseSidebarMsg:
		a.sidebar.Collapsed = true
		a.layout()
		if a.focus == types.FocusSidebar {
			return a, a.setFocus(types.FocusInput)
		}
		return a, nil
	case noticeMsg:
		return a, a.toast.Show(msg.notice)
	case dialogs.NoticeExpiredMsg:
		a.toast.Expire(msg)
		return a, nil

	// User intents.
	case chatwindow.SubmitMsg:
		return a, a.send(msg.Text)
	case sidebar.OpenChatMsg:
		return a, tea.Batch(a.setFocus(types.FocusInput), a.loadChat(msg.ID))
	case sidebar.NewChatMsg:
		return a, a.newChat()

	// Command results.
	case initDoneMsg:
		a.logResult("initialize", msg.err)
		return a, nil
	case loadDoneMsg:
		a.logResult("load chat", msg.err)
		return a, nil
	case newChatDoneMsg:
		a.logResult("new chat", msg.err)
		return a, nil
	case sendDoneMsg:
		a.sending = false
		a.input.SetLocked(false)
		a.logResult("send message", msg.err)
		return a, nil
	case accountMsg:
		return a, a.accountLoaded(msg)
	case profileMsg:
		a.profileLoaded(msg)
		return a, nil
	case loggedOutMsg:
		if msg.err != nil {
			a.logger.Warn("failed to clear local state on logout", "error", msg.err)
		}
		a.loggedOut = true
		a.quitting = true
		return a, tea.Quit
	}

	return a, tea.Batch(a.chat.Update(msg), a.input.Update(msg))
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m := a.topModal(); m != nil {
		if key.Matches(msg, a.keys.Quit) {
			a.quitting = true
			return tea.Quit
		}
		return m.Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return tea.Quit
	case key.Matches(msg, a.keys.NewChat):
		return a.newChat()
	case key.Matches(msg, a.keys.SwitchFocus):
		if a.focus == types.FocusInput {
			if a.sidebar.Collapsed {
				a.sidebar.Collapsed = false
				a.layout()
			}
			return a.setFocus(types.FocusSidebar)
		}
		return a.setFocus(types.FocusInput)
	case key.Matches(msg, a.keys.ToggleSidebar):
		a.sidebar.Toggle()
		a.layout()
		if a.sidebar.Collapsed && a.focus == types.FocusSidebar {
			return a.setFocus(types.FocusInput)
		}
		return nil
	case key.Matches(msg, a.keys.PickModel):
		a.openModelPicker()
		return nil
	case key.Matches(msg, a.keys.Profile):
		return a.openProfile()
	case key.Matches(msg, a.keys.ToggleTheme):
		return a.toggleTheme()
	case key.Matches(msg, a.keys.CopyAnswer):
		return a.copyAnswer()
	case key.Matches(msg, a.keys.Logout):
		return a.confirmLogout()
	case key.Matches(msg, a.keys.Help):
		a.openHelp()
		return nil
	}

	if a.focus == types.FocusSidebar {
		return a.sidebar.Update(msg)
	}
	switch msg.String() {
	case "pgup", "pgdown":
		return a.chat.Update(msg)
	}
	return a.input.Update(msg)
}

func (a *App) setFocus(f types.FocusArea) tea.Cmd {
	a.focus = f
	a.sidebar.Focused = f == types.FocusSidebar
	if f == types.FocusInput {
		return a.input.Focus()
	}
	a.input.Blur()
	return nil
}

func (a *App) layout() {
	bodyH := a.height - headerHeight - footerHeight
	if bodyH < 3 {
		bodyH = 3
	}
	sw := 0
	if !a.sidebar.Collapsed {
		sw = sidebarWidth
		if a.width < sidebarWidth*2 {
			sw = a.width / 2
		}
	}
	a.sidebar.SetSize(sw, bodyH)
	cw := a.width - sw
	a.input.SetSize(cw)
	chatH := bodyH - a.input.Height()
	if chatH < 1 {
		chatH = 1
	}
	a.chat.SetSize(cw, chatH)
	a.help.Width = a.width
}

// =====================================================================================
// ⚙️ Controller commands
// =====================================================================================

func (a *App) initialize() tea.Cmd {
	ctx, user := a.ctx, a.account.CurrentUser()
	return func() tea.Msg {
		return initDoneMsg{err: a.ctrl.Initialize(ctx, user)}
	}
}

func (a *App) loadChat(id models.ChatID) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return loadDoneMsg{err: a.ctrl.LoadChat(ctx, id)}
	}
}

func (a *App) newChat() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		_, err := a.ctrl.NewChat(ctx)
		return newChatDoneMsg{err: err}
	}
}

func (a *App) send(text string) tea.Cmd {
	if a.sending {
		return nil
	}
	a.sending = true
	a.input.SetLocked(true)
	ctx := a.ctx
	return func() tea.Msg {
		return sendDoneMsg{err: a.ctrl.SendMessage(ctx, text)}
	}
}

// logResult records a controller failure. The controller has already notified the user.
func (a *App) logResult(op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, models.ErrSendInFlight) {
		a.logger.Debug("send ignored while another is in flight")
		return
	}
	a.logger.Debug("controller operation failed", "op", op, "error", err)
}

func (a *App) notify(level session.NoticeLevel, text string) tea.Cmd {
	return a.toast.Show(session.Notice{Level: level, Text: text})
}

// =====================================================================================
// 👤 Account
// =====================================================================================

// loadAccount fetches the model list and the profile in parallel.
func (a *App) loadAccount() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		var (
			list    []models.ModelInfo
			profile models.Profile
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			list, err = a.account.Models(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			profile, err = a.account.Profile(gctx)
			return err
		})
		err := g.Wait()
		return accountMsg{models: list, profile: profile, err: err}
	}
}

func (a *App) accountLoaded(msg accountMsg) tea.Cmd {
	if msg.models != nil {
		a.modelList = msg.models
	}
	if msg.profile.Name != "" {
		a.sidebar.UserName = msg.profile.Name
	}
	if msg.err != nil {
		a.logger.Warn("failed to load account details", "error", msg.err)
		return nil
	}
	// A stored choice the backend no longer offers falls back to the server default.
	if sel := a.account.SelectedModel(); sel != "" && len(a.modelList) > 0 && !containsModel(a.modelList, sel) {
		return a.selectModel("")
	}
	return nil
}

func containsModel(list []models.ModelInfo, name string) bool {
	for _, m := range list {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (a *App) openModelPicker() {
	items := []dialogs.MenuItem{{Label: "Default", Description: "server default"}}
	current := 0
	selected := a.account.SelectedModel()
	for i, m := range a.modelList {
		items = append(items, dialogs.MenuItem{Label: m.Name, Description: m.Description})
		if m.Name == selected {
			current = i + 1
		}
	}
	list := a.modelList
	menu := dialogs.NewMenuModal("Choose a model", items, current, func(i int) tea.Cmd {
		name := ""
		if i > 0 {
			name = list[i-1].Name
		}
		return a.selectModel(name)
	}, a.popModal)
	a.pushModal(menu)
}

func (a *App) selectModel(name string) tea.Cmd {
	if err := a.account.SelectModel(name); err != nil {
		a.logger.Error("failed to save model choice", "error", err)
		return a.notify(session.NoticeError, "Failed to save model choice")
	}
	a.bridge.SetSelectedModel(name)
	a.sidebar.ModelName = name
	label := name
	if label == "" {
		label = "server default"
	}
	return a.notify(session.NoticeSuccess, "Model: "+label)
}

func (a *App) openProfile() tea.Cmd {
	a.profile = dialogs.NewInfoModal("Profile", "Loading...", a.popModal)
	a.pushModal(a.profile)
	ctx := a.ctx
	return func() tea.Msg {
		p, err := a.account.Profile(ctx)
		return profileMsg{profile: p, err: err}
	}
}

func (a *App) profileLoaded(msg profileMsg) {
	if a.profile == nil || !a.profile.IsOpen() {
		return
	}
	if msg.err != nil {
		a.profile.SetContent(a.styles.Muted.Render(session.ErrorText(msg.err)))
		return
	}
	joined := msg.profile.JoinedAt
	if t := models.ParseServerTime(joined); !t.IsZero() {
		joined = t.Local().Format("2 Jan 2006")
	}
	if joined == "" {
		joined = "unknown"
	}
	a.profile.SetContent(fmt.Sprintf("Name:   %s\nEmail:  %s\nJoined: %s", msg.profile.Name, msg.profile.Email, joined))
}

func (a *App) toggleTheme() tea.Cmd {
	name, err := a.account.ToggleTheme()
	if err != nil {
		a.logger.Error("failed to save theme", "error", err)
		return a.notify(session.NoticeError, "Failed to save theme")
	}
	a.styles = theme.New(name)
	a.chat.SetStyles(a.styles)
	return nil
}

func (a *App) copyAnswer() tea.Cmd {
	text, ok := a.chat.LastAnswer()
	if !ok {
		return a.notify(session.NoticeInfo, "No answer to copy yet")
	}
	if err := a.copy(text); err != nil {
		a.logger.Warn("clipboard write failed", "error", err)
		return a.notify(session.NoticeError, "Clipboard unavailable")
	}
	return a.notify(session.NoticeSuccess, "Answer copied")
}

func (a *App) confirmLogout() tea.Cmd {
	ctx := a.ctx
	m, err := dialogs.NewConfirmationModal("Log out of RAG Chat?", []modals.ModalOption{
		{Label: "Cancel"},
		{Label: "Log out", OnSelect: func() tea.Cmd {
			return func() tea.Msg {
				err := a.account.Logout(ctx)
				a.ctrl.Reset()
				return loggedOutMsg{err: err}
			}
		}},
	}, a.popModal)
	if err != nil {
		return a.notify(session.NoticeError, err.Error())
	}
	a.pushModal(m)
	return nil
}

func (a *App) openHelp() {
	cs := a.keys.ControlSetFor(a.focus)
	a.pushModal(dialogs.NewInfoModal("Keys", a.help.FullHelpView(cs.FullHelp()), a.popModal))
}

// =====================================================================================
// 🪟 Modals
// =====================================================================================

func (a *App) pushModal(m modals.Modal) {
	a.modals.Push(m)
	a.input.Blur()
}

func (a *App) popModal() {
	a.modals.Pop()
	if a.modals.Len() == 0 && a.focus == types.FocusInput {
		a.input.Focus()
	}
}

func (a *App) topModal() modals.Modal { return a.modals.Top() }

// =====================================================================================
// 🎨 View
// =====================================================================================

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if a.width == 0 {
		return "Loading..."
	}
	if a.width < minWidth || a.height < minHeight {
		return a.styles.Muted.
			Align(lipgloss.Center, lipgloss.Center).
			Width(a.width).
			Height(a.height).
			Render("Terminal too small")
	}

	bodyH := a.height - headerHeight - footerHeight
	var body string
	if m := a.topModal(); m != nil {
		body = m.ViewRegion(a.width, bodyH, a.styles)
	} else {
		column := lipgloss.JoinVertical(lipgloss.Left, a.chat.View(), a.input.View(a.styles))
		body = lipgloss.JoinHorizontal(lipgloss.Top, a.sidebar.View(a.styles), column)
	}
	body = lipgloss.NewStyle().Height(bodyH).MaxHeight(bodyH).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderFooter())
}

func (a *App) renderHeader() string {
	parts := []string{"RAG Chat"}
	for _, s := range a.sidebar.Sessions {
		if s.ID == a.sidebar.ActiveID {
			parts = append(parts, s.Title)
			break
		}
	}
	if a.sending {
		parts = append(parts, "sending...")
	}
	return a.styles.Header.Width(a.width).MaxHeight(headerHeight).Render(strings.Join(parts, " · "))
}

func (a *App) renderFooter() string {
	content := a.toast.View(a.styles)
	if content == "" {
		focus := a.focus
		if a.topModal() != nil {
			focus = types.FocusModal
		}
		content = a.styles.Footer.Render(a.help.View(a.keys.ControlSetFor(focus)))
	}
	return lipgloss.Place(a.width, footerHeight, lipgloss.Left, lipgloss.Bottom, content)
}
