package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ragchat/src/models"
	"ragchat/src/services/api"
)

// DefaultCollapseWidth is the viewport width at or below which the sidebar
// is collapsed after a chat is opened.
const DefaultCollapseWidth = 768

// Fallback texts for failures that carry no server message.
const (
	msgSignInRequired = "Please sign in to continue"
	msgListFailed     = "Failed to load chats"
	msgLoadFailed     = "Failed to load messages"
	msgCreateFailed   = "Failed to create chat"
	msgSendFailed     = "Failed to send message"
	msgUnknownChat    = "Chat not found"
)

// Options tunes a Controller.
type Options struct {
	CollapseWidth int
	Logger        *slog.Logger
	Now           func() time.Time
}

// Controller orchestrates the chat flow between the backend, the store and the view.
//
// The mutex guards the active selection and the user and is never held across
// a network call. Concurrent LoadChat/CreateNewChat calls resolve last-writer-wins.
type Controller struct {
	backend api.Backend
	store   *Store
	view    View
	logger  *slog.Logger
	now     func() time.Time

	collapseWidth int

	mu      sync.Mutex
	user    *models.User
	current models.ChatID

	sending atomic.Bool
}

// NewController wires a controller. A nil view is replaced with NopView.
func NewController(backend api.Backend, store *Store, view View, opts Options) *Controller {
	if view == nil {
		view = NopView{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CollapseWidth <= 0 {
		opts.CollapseWidth = DefaultCollapseWidth
	}
	return &Controller{
		backend:       backend,
		store:         store,
		view:          view,
		logger:        opts.Logger,
		now:           opts.Now,
		collapseWidth: opts.CollapseWidth,
	}
}

// Initialize loads the user's chats and opens the most recent one.
// It is fail-soft: failures are notified and the welcome screen is shown.
func (c *Controller) Initialize(ctx context.Context, user *models.User) error {
	c.mu.Lock()
	c.user = user
	c.current = ""
	c.mu.Unlock()

	if user == nil || user.ID == "" {
		err := &models.ValidationError{Message: msgSignInRequired}
		c.notify(NoticeError, msgSignInRequired)
		c.showEmpty()
		return err
	}

	res, err := c.backend.ListChats(ctx, user.ID)
	switch {
	case err != nil:
		c.logger.Error("failed to list chats", "user_id", user.ID, "error", err)
		c.notify(NoticeError, msgListFailed)
		// The mirror is only rewritten from a list the server actually returned.
		c.clearSessions()
		return err
	case !res.OK:
		apiErr := &models.APIError{Op: "list chats", Message: res.Message}
		c.logger.Warn("chat list rejected", "user_id", user.ID, "message", res.Message)
		c.notify(NoticeError, fallback(res.Message, msgListFailed))
		c.showEmpty()
		return apiErr
	case len(res.Chats) == 0:
		c.showEmpty()
		return nil
	}

	list := make([]models.ChatSession, 0, len(res.Chats))
	for _, ch := range res.Chats {
		list = append(list, models.ChatSession{ID: ch.ID, Title: ch.Title, UpdatedAt: ch.UpdatedAt, Messages: []models.Message{}})
	}
	c.store.Replace(list)
	_ = c.store.Persist()
	c.renderSessions()
	c.logger.Info("chats loaded", "user_id", user.ID, "count", len(list))

	return c.LoadChat(ctx, list[0].ID)
}

// showEmpty resets to an empty list and the welcome screen, and saves the empty list.
func (c *Controller) showEmpty() {
	c.store.Replace(nil)
	_ = c.store.Persist()
	c.renderSessions()
	c.view.ShowWelcome()
}

// clearSessions is showEmpty without touching the saved mirror.
func (c *Controller) clearSessions() {
	c.store.Replace(nil)
	c.renderSessions()
	c.view.ShowWelcome()
}

// LoadChat makes id the active chat and replaces the message pane with its history.
// An id that is not in the list is rejected without changing the selection.
func (c *Controller) LoadChat(ctx context.Context, id models.ChatID) error {
	if !c.store.Contains(id) {
		err := &models.ValidationError{Message: msgUnknownChat}
		c.logger.Warn("load of unknown chat", "chat_id", id)
		c.notify(NoticeError, msgUnknownChat)
		return err
	}

	c.mu.Lock()
	c.current = id
	c.mu.Unlock()
	c.renderSessions()

	res, err := c.backend.ChatMessages(ctx, id)
	if err != nil {
		c.logger.Error("failed to fetch messages", "chat_id", id, "error", err)
		c.notify(NoticeError, msgLoadFailed)
		return err
	}
	if !res.OK {
		c.notify(NoticeError, fallback(res.Message, msgLoadFailed))
		return &models.APIError{Op: "fetch messages", Message: res.Message}
	}

	c.view.ShowMessages(res.Messages)
	c.store.SetMessages(id, res.Messages)
	_ = c.store.Persist()
	c.view.ScrollToEnd()
	if c.view.ViewportWidth() <= c.collapseWidth {
		c.view.CollapseSidebar()
	}
	return nil
}

// CreateNewChat creates a chat titled from firstMessage and makes it active.
// It returns the new id, or "" with an error when nothing was created.
func (c *Controller) CreateNewChat(ctx context.Context, firstMessage string, clearMessages bool) (models.ChatID, error) {
	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == nil || user.ID == "" {
		err := &models.ValidationError{Message: msgSignInRequired}
		c.notify(NoticeError, msgSignInRequired)
		return "", err
	}

	title := models.TitleFromMessage(firstMessage)
	res, err := c.backend.CreateChat(ctx, user.ID, title)
	if err != nil {
		c.logger.Error("failed to create chat", "error", err)
		c.notify(NoticeError, msgCreateFailed)
		return "", err
	}
	if !res.OK {
		c.notify(NoticeError, fallback(res.Message, msgCreateFailed))
		return "", &models.APIError{Op: "create chat", Message: res.Message}
	}

	sess := models.ChatSession{
		ID:        res.Chat.ID,
		Title:     title,
		UpdatedAt: c.now(),
		Messages:  []models.Message{},
	}
	c.store.Prepend(sess)
	c.mu.Lock()
	c.current = sess.ID
	c.mu.Unlock()
	_ = c.store.Persist()
	c.renderSessions()
	if clearMessages {
		c.view.ClearMessages()
	}
	c.logger.Info("chat created", "chat_id", sess.ID, "title", title)
	return sess.ID, nil
}

// NewChat is the explicit "new chat" action: an empty chat and the welcome screen.
func (c *Controller) NewChat(ctx context.Context) (models.ChatID, error) {
	id, err := c.CreateNewChat(ctx, "", true)
	if err != nil {
		return "", err
	}
	c.view.ShowWelcome()
	return id, nil
}

// SendMessage sends text to the active chat, creating one first if needed.
// Only one send may be outstanding; others return ErrSendInFlight untouched.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &models.ValidationError{Message: "message is empty"}
	}
	if !c.sending.CompareAndSwap(false, true) {
		return models.ErrSendInFlight
	}
	defer c.sending.Store(false)

	chatID := c.CurrentChatID()
	if chatID == "" {
		id, err := c.CreateNewChat(ctx, text, false)
		if err != nil {
			return err
		}
		chatID = id
	}

	user := models.UserMessage(text)
	c.view.AppendMessage(user)
	c.view.ScrollToEnd()
	c.view.ShowTyping()

	model := c.view.SelectedModel()
	start := c.now()
	res, err := c.backend.SendMessage(ctx, chatID, text, model)
	c.view.HideTyping()
	if err != nil {
		c.logger.Error("failed to send message", "chat_id", chatID, "error", err)
		c.notify(NoticeError, msgSendFailed)
		return err
	}
	if !res.OK || res.BotMessage == nil {
		c.notify(NoticeError, fallback(res.Message, msgSendFailed))
		return &models.APIError{Op: "send message", Message: res.Message}
	}

	reply := models.AssistantMessage(res.BotMessage.Content, res.BotMessage.ModelName)
	c.view.AppendMessage(reply)
	c.view.ScrollToEnd()

	c.store.Append(chatID, c.now(), user, reply)
	_ = c.store.Persist()
	c.logger.Debug("message sent", "chat_id", chatID, "model", reply.ModelName, "duration", c.now().Sub(start))
	return nil
}

// Sessions returns a snapshot of the session list.
func (c *Controller) Sessions() []models.ChatSession { return c.store.Snapshot() }

// CurrentChatID returns the active chat id, or "".
func (c *Controller) CurrentChatID() models.ChatID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Sending reports whether a send is outstanding.
func (c *Controller) Sending() bool { return c.sending.Load() }

// User returns the user the controller was initialized with.
func (c *Controller) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Reset forgets the user and every session, e.g. after logout.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.user = nil
	c.current = ""
	c.mu.Unlock()
	c.store.Replace(nil)
	c.renderSessions()
	c.view.ClearMessages()
}

func (c *Controller) renderSessions() {
	c.view.RenderSessions(c.store.Snapshot(), c.CurrentChatID())
}

func (c *Controller) notify(level NoticeLevel, text string) {
	c.view.Notify(Notice{Level: level, Text: text})
}

func fallback(msg, def string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return def
}

// ErrorText renders err for a notice, preferring server messages.
func ErrorText(err error) string {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var te *models.TransportError
	if errors.As(err, &te) {
		return fmt.Sprintf("Network error: %v", te.Err)
	}
	return err.Error()
}
