package app

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ragchat/src/components/chatwindow"
	"ragchat/src/models"
	"ragchat/src/services/api"
	"ragchat/src/services/mockbackend"
	"ragchat/src/services/session"
	"ragchat/src/services/storage"
	"ragchat/src/services/storage/repositories"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	app     *App
	account *session.Account
	ctrl    *session.Controller
	copied  string

	mu     sync.Mutex
	queued []tea.Msg
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := mockbackend.New(mockbackend.Config{Database: ":memory:", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	client := api.NewChatServiceClient(ts.URL)
	kv := repositories.NewMemoryStore()
	h := &harness{}
	h.account = session.NewAccount(client, storage.NewPreferences(kv), nil)
	_, err = h.account.Register(context.Background(), "Ann", "ann@example.com", "secret", "secret")
	require.NoError(t, err)

	bridge := NewBridge()
	bridge.SetSender(func(msg tea.Msg) {
		h.mu.Lock()
		h.queued = append(h.queued, msg)
		h.mu.Unlock()
	})
	h.ctrl = session.NewController(client, session.NewStore(kv, nil), bridge, session.Options{CollapseWidth: 100})
	h.app = New(context.Background(), Options{
		Controller: h.ctrl,
		Account:    h.account,
		Bridge:     bridge,
		Clipboard: func(s string) error {
			h.copied = s
			return nil
		},
	})
	h.app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return h
}

// run executes cmd synchronously, then applies the view messages it produced and its result.
func (h *harness) run(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	h.flush()
	_, next := h.app.Update(msg)
	return next
}

func (h *harness) flush() {
	h.mu.Lock()
	queued := h.queued
	h.queued = nil
	h.mu.Unlock()
	for _, msg := range queued {
		h.app.Update(msg)
	}
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	_, cmd := h.app.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestInitializeWithoutChatsShowsWelcome(t *testing.T) {
	h := newHarness(t)
	h.run(h.app.initialize())

	assert.True(t, h.app.chat.Welcome())
	assert.Empty(t, h.app.sidebar.Sessions)
	assert.Equal(t, "Ann", h.app.sidebar.UserName)
	assert.Contains(t, h.app.View(), "RAG Chat")
}

func TestSubmitCreatesChatAndAppendsReply(t *testing.T) {
	h := newHarness(t)
	h.run(h.app.initialize())

	_, cmd := h.app.Update(chatwindow.SubmitMsg{Text: "What is RAG?"})
	require.NotNil(t, cmd)
	assert.True(t, h.app.input.Locked())

	_, again := h.app.Update(chatwindow.SubmitMsg{Text: "second"})
	assert.Nil(t, again, "a second submit waits for the first")

	h.run(cmd)
	assert.False(t, h.app.input.Locked())
	assert.False(t, h.app.chat.Typing())

	msgs := h.app.chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	answer, ok := h.app.chat.LastAnswer()
	require.True(t, ok)
	assert.Contains(t, answer, "You asked: What is RAG?")

	require.Len(t, h.app.sidebar.Sessions, 1)
	assert.Equal(t, "What is RAG?", h.app.sidebar.Sessions[0].Title)
	assert.Equal(t, h.ctrl.CurrentChatID(), h.app.sidebar.ActiveID)
}

func TestReloadOpensMostRecentChatAndCollapsesWhenNarrow(t *testing.T) {
	h := newHarness(t)
	h.run(h.app.initialize())
	h.run(h.app.send("hello"))

	h.app.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	h.run(h.app.initialize())

	assert.True(t, h.app.sidebar.Collapsed)
	assert.Len(t, h.app.chat.Messages(), 2)
}

func TestNewChatKey(t *testing.T) {
	h := newHarness(t)
	h.run(h.app.initialize())
	h.run(h.app.send("hello"))

	h.run(h.key(tea.KeyCtrlN))
	assert.Len(t, h.app.sidebar.Sessions, 2)
	assert.Equal(t, "New Chat", h.app.sidebar.Sessions[0].Title)
	assert.True(t, h.app.chat.Welcome())
}

func TestModelPicker(t *testing.T) {
	h := newHarness(t)
	h.run(h.app.initialize())
	h.run(h.app.loadAccount())
	require.Len(t, h.app.modelList, len(mockbackend.DefaultModels))

	h.key(tea.KeyCtrlO)
	require.NotNil(t, h.app.topModal())
	h.key(tea.KeyDown)
	cmd := h.key(tea.KeyEnter)

	assert.NotNil(t, cmd)
	assert.Nil(t, h.app.topModal())
	assert.Equal(t, "llama3.1:8b", h.account.SelectedModel())
	assert.Equal(t, "llama3.1:8b", h.app.bridge.SelectedModel())
	assert.Equal(t, "llama3.1:8b", h.app.sidebar.ModelName)

	h.run(h.app.send("which model?"))
	msgs := h.app.chat.Messages()
	assert.Equal(t, "llama3.1:8b", msgs[len(msgs)-1].ModelName)
}

func TestCopyAnswer(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlY)
	assert.Empty(t, h.copied)

	h.run(h.app.initialize())
	h.run(h.app.send("copy me"))
	h.key(tea.KeyCtrlY)
	assert.Contains(t, h.copied, "You asked: copy me")
}

func TestToggleTheme(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "dark", h.app.styles.Name)
	h.key(tea.KeyCtrlT)
	assert.Equal(t, "light", h.app.styles.Name)
	assert.Equal(t, storage.ThemeLight, h.account.Theme())
}

func TestProfileModal(t *testing.T) {
	h := newHarness(t)
	h.run(h.key(tea.KeyCtrlP))
	require.NotNil(t, h.app.profile)
	view := h.app.View()
	assert.Contains(t, view, "ann@example.com")

	h.key(tea.KeyEsc)
	assert.Nil(t, h.app.topModal())
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.run(h.app.initialize())
	h.run(h.app.send("bye"))

	h.key(tea.KeyCtrlL)
	require.NotNil(t, h.app.topModal())
	h.key(tea.KeyRight)
	cmd := h.key(tea.KeyEnter)
	require.NotNil(t, cmd)

	quit := h.run(cmd)
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())
	assert.True(t, h.app.LoggedOut())
	assert.Nil(t, h.account.CurrentUser())
	assert.Empty(t, h.ctrl.Sessions())
}

func TestFocusSwitch(t *testing.T) {
	h := newHarness(t)
	h.app.sidebar.Collapsed = true
	h.key(tea.KeyTab)
	assert.False(t, h.app.sidebar.Collapsed)
	assert.True(t, h.app.sidebar.Focused)
	assert.False(t, h.app.input.Focused())
	h.key(tea.KeyTab)
	assert.True(t, h.app.input.Focused())
}

func TestNoticeShownInFooter(t *testing.T) {
	h := newHarness(t)
	h.app.Update(noticeMsg{notice: session.Notice{Level: session.NoticeError, Text: "Failed to send message"}})
	assert.True(t, strings.Contains(h.app.View(), "Failed to send message"))
}

func TestHelpModal(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyF1)
	require.NotNil(t, h.app.topModal())
	assert.Contains(t, h.app.View(), "new chat")
}
