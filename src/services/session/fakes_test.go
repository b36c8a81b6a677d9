package session

import (
	"context"
	"fmt"
	"sync"

	"ragchat/src/models"
	"ragchat/src/services/api"
)

// fakeBackend serves chats from memory. Err fields force transport failures,
// Not fields force ok=false with that message.
type fakeBackend struct {
	mu       sync.Mutex
	chats    []api.ChatSummary
	messages map[models.ChatID][]models.Message
	nextID   int

	listErr    error
	listResult *api.ChatListResult
	fetchErr   error
	fetchNot   string
	createErr  error
	createNot  string
	sendErr    error
	sendNot    string

	// sendGate, when set, blocks SendMessage until closed.
	sendGate chan struct{}
	sendSeen chan struct{}

	createCalls []string
	sendCalls   []sentMessage
}

type sentMessage struct {
	ChatID  models.ChatID
	Content string
	Model   string
}

func newFakeBackend(chats ...api.ChatSummary) *fakeBackend {
	return &fakeBackend{chats: chats, messages: map[models.ChatID][]models.Message{}, nextID: 100}
}

func (f *fakeBackend) ListChats(ctx context.Context, userID models.UserID) (*api.ChatListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listResult != nil {
		return f.listResult, nil
	}
	return &api.ChatListResult{Result: api.Result{OK: true}, Chats: append([]api.ChatSummary(nil), f.chats...)}, nil
}

func (f *fakeBackend) ChatMessages(ctx context.Context, chatID models.ChatID) (*api.MessagesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.fetchNot != "" {
		return &api.MessagesResult{Result: api.Result{Message: f.fetchNot}}, nil
	}
	return &api.MessagesResult{Result: api.Result{OK: true}, Messages: append([]models.Message(nil), f.messages[chatID]...)}, nil
}

func (f *fakeBackend) CreateChat(ctx context.Context, userID models.UserID, title string) (*api.CreateChatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, title)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createNot != "" {
		return &api.CreateChatResult{Result: api.Result{Message: f.createNot}}, nil
	}
	f.nextID++
	ch := api.ChatSummary{ID: models.ChatID(fmt.Sprint(f.nextID)), Title: title}
	f.chats = append([]api.ChatSummary{ch}, f.chats...)
	return &api.CreateChatResult{Result: api.Result{OK: true}, Chat: ch}, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, chatID models.ChatID, content, model string) (*api.SendResult, error) {
	if f.sendSeen != nil {
		f.sendSeen <- struct{}{}
	}
	if f.sendGate != nil {
		select {
		case <-f.sendGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, sentMessage{chatID, content, model})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.sendNot != "" {
		return &api.SendResult{Result: api.Result{Message: f.sendNot}}, nil
	}
	bot := models.AssistantMessage("re: "+content, model)
	f.messages[chatID] = append(f.messages[chatID], models.UserMessage(content), bot)
	return &api.SendResult{Result: api.Result{OK: true}, BotMessage: &bot}, nil
}

// recordingView records every call as a short event name.
type recordingView struct {
	mu       sync.Mutex
	events   []string
	pane     []models.Message
	rendered []models.ChatSession
	active   models.ChatID
	notices  []Notice
	typing   bool
	width    int
	model    string
}

func (v *recordingView) record(e string) {
	v.events = append(v.events, e)
}

func (v *recordingView) RenderSessions(s []models.ChatSession, id models.ChatID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("render")
	v.rendered, v.active = s, id
}

func (v *recordingView) ShowMessages(msgs []models.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("show")
	v.pane = append([]models.Message(nil), msgs...)
}

func (v *recordingView) AppendMessage(m models.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("append:" + string(m.Role))
	v.pane = append(v.pane, m)
}

func (v *recordingView) ClearMessages() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("clear")
	v.pane = nil
}

func (v *recordingView) ShowWelcome() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("welcome")
}

func (v *recordingView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("typing")
	v.typing = true
}

func (v *recordingView) HideTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("untyping")
	v.typing = false
}

func (v *recordingView) ScrollToEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("scroll")
}

func (v *recordingView) CollapseSidebar() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("collapse")
}

func (v *recordingView) ViewportWidth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

func (v *recordingView) SelectedModel() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.model
}

func (v *recordingView) Notify(n Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("notify")
	v.notices = append(v.notices, n)
}

func (v *recordingView) has(event string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.events {
		if e == event {
			return true
		}
	}
	return false
}
