package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/src/models"
	"ragchat/src/services/api"
	"ragchat/src/services/storage/repositories"
)

var testUser = &models.User{ID: "7", Name: "Ann"}

type harness struct {
	backend *fakeBackend
	view    *recordingView
	kv      *repositories.MemoryStore
	store   *Store
	ctrl    *Controller
}

func newHarness(t *testing.T, chats ...api.ChatSummary) *harness {
	t.Helper()
	h := &harness{
		backend: newFakeBackend(chats...),
		view:    &recordingView{width: 1200},
		kv:      repositories.NewMemoryStore(),
	}
	h.store = NewStore(h.kv, nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	h.ctrl = NewController(h.backend, h.store, h.view, Options{Now: func() time.Time { return fixed }})
	return h
}

func (h *harness) initialize(t *testing.T) {
	t.Helper()
	require.NoError(t, h.ctrl.Initialize(context.Background(), testUser))
}

func TestInitializeLoadsFirstChat(t *testing.T) {
	h := newHarness(t,
		api.ChatSummary{ID: "2", Title: "Second"},
		api.ChatSummary{ID: "1", Title: "First"},
	)
	h.backend.messages["2"] = []models.Message{models.UserMessage("q"), models.AssistantMessage("a", "m")}

	h.initialize(t)

	assert.Equal(t, models.ChatID("2"), h.ctrl.CurrentChatID())
	sessions := h.ctrl.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "Second", sessions[0].Title)
	assert.Len(t, sessions[0].Messages, 2)
	assert.Empty(t, sessions[1].Messages)
	assert.Equal(t, h.backend.messages["2"], h.view.pane)
	assert.Equal(t, models.ChatID("2"), h.view.active)
	assert.False(t, h.view.has("welcome"))

	mirror, err := h.store.LoadMirror()
	require.NoError(t, err)
	assert.Len(t, mirror, 2)
}

func TestInitializeEmptyListShowsWelcome(t *testing.T) {
	h := newHarness(t)

	h.initialize(t)

	assert.Empty(t, h.ctrl.Sessions())
	assert.Empty(t, h.ctrl.CurrentChatID())
	assert.True(t, h.view.has("welcome"))
	assert.Empty(t, h.view.notices)
}

func TestInitializeFailSoft(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*fakeBackend)
		wantMsg string
	}{
		{
			name:    "transport failure",
			setup:   func(f *fakeBackend) { f.listErr = &models.TransportError{Op: "list chats", Err: errors.New("refused")} },
			wantMsg: "Failed to load chats",
		},
		{
			name: "rejected",
			setup: func(f *fakeBackend) {
				f.listResult = &api.ChatListResult{Result: api.Result{Message: "user not found"}}
			},
			wantMsg: "user not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, api.ChatSummary{ID: "1", Title: "x"})
			tt.setup(h.backend)

			err := h.ctrl.Initialize(context.Background(), testUser)

			assert.Error(t, err)
			assert.Empty(t, h.ctrl.Sessions())
			assert.Empty(t, h.ctrl.CurrentChatID())
			assert.True(t, h.view.has("welcome"))
			require.Len(t, h.view.notices, 1)
			assert.Equal(t, tt.wantMsg, h.view.notices[0].Text)
			assert.Equal(t, NoticeError, h.view.notices[0].Level)
		})
	}
}

func TestListTransportFailureKeepsMirror(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	require.NoError(t, h.ctrl.SendMessage(context.Background(), "hello"))
	h.backend.listErr = &models.TransportError{Op: "list chats", Err: errors.New("refused")}

	require.Error(t, h.ctrl.Initialize(context.Background(), testUser))

	assert.Empty(t, h.ctrl.Sessions())
	assert.True(t, h.view.has("welcome"))
	mirror, err := NewStore(h.kv, nil).LoadMirror()
	require.NoError(t, err)
	require.Len(t, mirror, 1)
	assert.Equal(t, "hello", mirror[0].Title)
	assert.Len(t, mirror[0].Messages, 2)
}

func TestListRejectedSavesEmptyMirror(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	require.NoError(t, h.ctrl.SendMessage(context.Background(), "hello"))
	h.backend.listResult = &api.ChatListResult{Result: api.Result{Message: "user not found"}}

	require.Error(t, h.ctrl.Initialize(context.Background(), testUser))

	mirror, err := NewStore(h.kv, nil).LoadMirror()
	require.NoError(t, err)
	assert.Empty(t, mirror)
}

func TestInitializeWithoutUser(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})

	err := h.ctrl.Initialize(context.Background(), nil)

	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.True(t, h.view.has("welcome"))
	assert.Len(t, h.view.notices, 1)

	_, err = h.ctrl.CreateNewChat(context.Background(), "hi", false)
	assert.True(t, errors.As(err, &ve))
	assert.Empty(t, h.backend.createCalls)
}

func TestLoadChatRendersListBeforeFetch(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"}, api.ChatSummary{ID: "2"})
	h.initialize(t)
	h.view.events = nil
	h.backend.fetchErr = errors.New("offline")
	h.view.pane = []models.Message{models.UserMessage("keep")}

	err := h.ctrl.LoadChat(context.Background(), "2")

	require.Error(t, err)
	assert.Equal(t, []string{"render", "notify"}, h.view.events)
	assert.Equal(t, models.ChatID("2"), h.ctrl.CurrentChatID())
	assert.Equal(t, []models.Message{models.UserMessage("keep")}, h.view.pane)
}

func TestLoadChatRejected(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"}, api.ChatSummary{ID: "2"})
	h.backend.messages["2"] = []models.Message{models.UserMessage("old")}
	h.initialize(t)
	h.backend.fetchNot = "chat is archived"
	h.view.pane = []models.Message{models.UserMessage("keep")}
	h.view.notices = nil

	err := h.ctrl.LoadChat(context.Background(), "2")

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, h.view.notices, 1)
	assert.Equal(t, "chat is archived", h.view.notices[0].Text)
	assert.Equal(t, NoticeError, h.view.notices[0].Level)
	assert.Equal(t, []models.Message{models.UserMessage("keep")}, h.view.pane)
	s, ok := h.store.Find("2")
	require.True(t, ok)
	assert.Empty(t, s.Messages)
}

func TestLoadChatUnknownID(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})
	h.initialize(t)

	assert.NotPanics(t, func() {
		err := h.ctrl.LoadChat(context.Background(), "missing")
		var ve *models.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
	assert.Equal(t, models.ChatID("1"), h.ctrl.CurrentChatID())
	assert.Len(t, h.view.notices, 1)
}

func TestLoadChatCollapsesOnNarrowViewport(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})
	h.view.width = DefaultCollapseWidth
	h.initialize(t)
	assert.True(t, h.view.has("collapse"))

	wide := newHarness(t, api.ChatSummary{ID: "1"})
	wide.initialize(t)
	assert.False(t, wide.view.has("collapse"))
}

func TestCreateNewChatPrependsAndSelects(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1", Title: "Old"})
	h.initialize(t)

	id, err := h.ctrl.CreateNewChat(context.Background(), "What is retrieval augmented generation?", false)

	require.NoError(t, err)
	sessions := h.ctrl.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, id, sessions[0].ID)
	assert.Equal(t, "What is retrieval augmented ge...", sessions[0].Title)
	assert.Equal(t, id, h.ctrl.CurrentChatID())
	assert.Equal(t, id, h.view.active)
	assert.False(t, h.view.has("clear"))
}

func TestCreateNewChatFailure(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	h.backend.createNot = "limit reached"

	id, err := h.ctrl.CreateNewChat(context.Background(), "", true)

	assert.Empty(t, id)
	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "limit reached", apiErr.Message)
	assert.Empty(t, h.ctrl.Sessions())
	assert.Empty(t, h.ctrl.CurrentChatID())
	assert.False(t, h.view.has("clear"))
}

func TestNewChat(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	h.view.events = nil

	id, err := h.ctrl.NewChat(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"render", "clear", "welcome"}, h.view.events)
	assert.Equal(t, models.DefaultChatTitle, h.ctrl.Sessions()[0].Title)
	assert.Equal(t, id, h.ctrl.CurrentChatID())
}

func TestSendWithoutChatCreatesOne(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	h.view.model = "llama"
	h.view.events = nil

	require.NoError(t, h.ctrl.SendMessage(context.Background(), "  Hello  "))

	sessions := h.ctrl.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "Hello", sessions[0].Title)
	assert.Equal(t, []models.Message{
		models.UserMessage("Hello"),
		models.AssistantMessage("re: Hello", "llama"),
	}, sessions[0].Messages)
	assert.Equal(t, []string{"render", "append:user", "scroll", "typing", "untyping", "append:assistant", "scroll"}, h.view.events)
	assert.Equal(t, []sentMessage{{sessions[0].ID, "Hello", "llama"}}, h.backend.sendCalls)
	assert.False(t, h.ctrl.Sending())
}

func TestSendAppendsToCurrentChat(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1", Title: "Existing"})
	h.initialize(t)

	require.NoError(t, h.ctrl.SendMessage(context.Background(), "again"))

	assert.Empty(t, h.backend.createCalls)
	s, ok := h.store.Find("1")
	require.True(t, ok)
	assert.Len(t, s.Messages, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), s.UpdatedAt)
}

func TestSendEmptyIsNoop(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	h.view.events = nil

	err := h.ctrl.SendMessage(context.Background(), "   ")

	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Empty(t, h.view.events)
	assert.Empty(t, h.backend.createCalls)
}

func TestSendWhileSendingIsNoop(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})
	h.initialize(t)
	h.backend.sendGate = make(chan struct{})
	h.backend.sendSeen = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() { done <- h.ctrl.SendMessage(context.Background(), "first") }()
	<-h.backend.sendSeen
	assert.True(t, h.ctrl.Sending())

	err := h.ctrl.SendMessage(context.Background(), "second")
	assert.ErrorIs(t, err, models.ErrSendInFlight)

	close(h.backend.sendGate)
	require.NoError(t, <-done)
	assert.False(t, h.ctrl.Sending())
	assert.Len(t, h.backend.sendCalls, 1)
	s, _ := h.store.Find("1")
	assert.Len(t, s.Messages, 2)
}

func TestSendTransportFailure(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})
	h.initialize(t)
	h.backend.sendErr = &models.TransportError{Op: "send message", Err: errors.New("reset")}

	err := h.ctrl.SendMessage(context.Background(), "hi")

	var te *models.TransportError
	assert.True(t, errors.As(err, &te))
	assert.False(t, h.view.typing)
	assert.Len(t, h.view.notices, 1)
	assert.False(t, h.ctrl.Sending())
	s, _ := h.store.Find("1")
	assert.Empty(t, s.Messages)
	// the user message stays on screen
	assert.Equal(t, []models.Message{models.UserMessage("hi")}, h.view.pane)
}

func TestSendRejected(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})
	h.initialize(t)
	h.backend.sendNot = "model unavailable"

	err := h.ctrl.SendMessage(context.Background(), "hi")

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, h.view.typing)
	require.Len(t, h.view.notices, 1)
	assert.Equal(t, "model unavailable", h.view.notices[0].Text)
	s, _ := h.store.Find("1")
	assert.Empty(t, s.Messages)
	assert.False(t, h.ctrl.Sending())
}

func TestSendCreateFailureAborts(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	h.backend.createErr = errors.New("offline")
	h.view.events = nil

	require.Error(t, h.ctrl.SendMessage(context.Background(), "hi"))

	assert.Equal(t, []string{"notify"}, h.view.events)
	assert.Empty(t, h.backend.sendCalls)
	assert.False(t, h.ctrl.Sending())
}

func TestSentMessagesSurviveReload(t *testing.T) {
	h := newHarness(t)
	h.initialize(t)
	require.NoError(t, h.ctrl.SendMessage(context.Background(), "one"))
	require.NoError(t, h.ctrl.SendMessage(context.Background(), "two"))

	reloaded := NewStore(h.kv, nil)
	mirror, err := reloaded.LoadMirror()

	require.NoError(t, err)
	require.Len(t, mirror, 1)
	assert.Equal(t, []models.Message{
		models.UserMessage("one"),
		models.AssistantMessage("re: one", ""),
		models.UserMessage("two"),
		models.AssistantMessage("re: two", ""),
	}, mirror[0].Messages)
}

func TestReset(t *testing.T) {
	h := newHarness(t, api.ChatSummary{ID: "1"})
	h.initialize(t)

	h.ctrl.Reset()

	assert.Nil(t, h.ctrl.User())
	assert.Empty(t, h.ctrl.CurrentChatID())
	assert.Empty(t, h.ctrl.Sessions())
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "quota", ErrorText(&models.APIError{Op: "x", Message: "quota"}))
	assert.Equal(t, "bad", ErrorText(&models.ValidationError{Message: "bad"}))
	assert.Equal(t, "Network error: refused", ErrorText(&models.TransportError{Op: "x", Err: errors.New("refused")}))
	assert.Equal(t, "plain", ErrorText(errors.New("plain")))
}
