// client.go - HTTP client for the chat-service endpoints.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragchat/src/models"
)

// DefaultBaseURL is where the backend listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:8000"

// ChatServiceClient talks to the chat-service relay.
type ChatServiceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a ChatServiceClient.
type Option func(*ChatServiceClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ChatServiceClient) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *ChatServiceClient) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *ChatServiceClient) { c.logger = l }
}

// NewChatServiceClient creates a client for baseURL.
func NewChatServiceClient(baseURL string, opts ...Option) *ChatServiceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &ChatServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *ChatServiceClient) BaseURL() string { return c.baseURL }

// ListChats fetches the user's chats, most recent first as ordered by the server.
func (c *ChatServiceClient) ListChats(ctx context.Context, userID models.UserID) (*ChatListResult, error) {
	var resp wireChatList
	q := url.Values{"user_id": {string(userID)}}
	if err := c.get(ctx, "list chats", "/api/chat/list", q, &resp); err != nil {
		return nil, err
	}
	out := &ChatListResult{Result: resp.result()}
	for _, ch := range resp.Chats {
		out.Chats = append(out.Chats, ch.summary())
	}
	return out, nil
}

// ChatMessages fetches the full history of one chat.
func (c *ChatServiceClient) ChatMessages(ctx context.Context, chatID models.ChatID) (*MessagesResult, error) {
	var resp wireMessages
	q := url.Values{"chat_id": {chatID.String()}}
	if err := c.get(ctx, "fetch messages", "/api/chat/messages", q, &resp); err != nil {
		return nil, err
	}
	out := &MessagesResult{Result: resp.result(), Messages: make([]models.Message, 0, len(resp.Messages))}
	for _, m := range resp.Messages {
		out.Messages = append(out.Messages, m.message())
	}
	return out, nil
}

// CreateChat creates an empty chat with the given title.
func (c *ChatServiceClient) CreateChat(ctx context.Context, userID models.UserID, title string) (*CreateChatResult, error) {
	var resp wireCreateChat
	form := url.Values{"user_id": {string(userID)}, "title": {title}}
	if err := c.postForm(ctx, "create chat", "/api/chat/create", form, &resp); err != nil {
		return nil, err
	}
	out := &CreateChatResult{Result: resp.result()}
	if out.OK {
		if resp.Chat == nil || resp.Chat.ID == "" {
			out.OK = false
			out.Message = "server did not return the new chat"
			return out, nil
		}
		out.Chat = resp.Chat.summary()
		if out.Chat.Title == "" {
			out.Chat.Title = title
		}
	}
	return out, nil
}

// SendMessage posts a user message and returns the assistant reply.
func (c *ChatServiceClient) SendMessage(ctx context.Context, chatID models.ChatID, content, model string) (*SendResult, error) {
	var resp wireSend
	form := url.Values{"chat_id": {chatID.String()}, "content": {content}}
	if model != "" {
		form.Set("model", model)
	}
	if err := c.postForm(ctx, "send message", "/api/chat/send", form, &resp); err != nil {
		return nil, err
	}
	out := &SendResult{Result: resp.result()}
	if !out.OK {
		return out, nil
	}
	if resp.BotMessage == nil {
		out.OK = false
		out.Message = "server returned no reply"
		return out, nil
	}
	bot := resp.BotMessage.message()
	bot.Role = models.RoleAssistant
	if bot.ModelName == "" {
		bot.ModelName = model
	}
	out.BotMessage = &bot
	if resp.UserMessage != nil {
		um := resp.UserMessage.message()
		um.Role = models.RoleUser
		out.UserMessage = &um
	}
	return out, nil
}

// Login authenticates with email and password.
func (c *ChatServiceClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp wireAuth
	form := url.Values{"email": {email}, "password": {password}}
	if err := c.postForm(ctx, "login", "/api/auth/login", form, &resp); err != nil {
		return nil, err
	}
	return resp.auth(), nil
}

// Register creates an account and signs it in.
func (c *ChatServiceClient) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var resp wireAuth
	form := url.Values{"name": {name}, "email": {email}, "password": {password}}
	if err := c.postForm(ctx, "register", "/api/auth/register", form, &resp); err != nil {
		return nil, err
	}
	return resp.auth(), nil
}

// Logout notifies the server. The response body is ignored.
func (c *ChatServiceClient) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, nil, "", nil)
}

// Profile fetches account details.
func (c *ChatServiceClient) Profile(ctx context.Context, userID models.UserID) (*ProfileResult, error) {
	var resp wireProfile
	q := url.Values{"user_id": {string(userID)}}
	if err := c.get(ctx, "fetch profile", "/api/auth/profile", q, &resp); err != nil {
		return nil, err
	}
	return &ProfileResult{Result: resp.result(), Profile: resp.Profile}, nil
}

// ListModels returns the models the backend can answer with.
func (c *ChatServiceClient) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	var resp wireModels
	if err := c.get(ctx, "list models", "/api/chat/models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

func (c *ChatServiceClient) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, nil, "", out)
}

func (c *ChatServiceClient) postForm(ctx context.Context, op, path string, form url.Values, out any) error {
	return c.do(ctx, op, http.MethodPost, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *ChatServiceClient) postJSON(ctx context.Context, op, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}
	return c.do(ctx, op, http.MethodPost, path, nil, bytes.NewReader(body), "application/json", out)
}

// do performs a request and decodes a JSON body into out (if non-nil).
// Every failure below the application layer is a *models.TransportError.
func (c *ChatServiceClient) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "op", op, "method", method, "path", path,
			"request_id", requestID, "duration", time.Since(start), "error", err)
		return &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "request_id", requestID, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &models.TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(errorText(data, resp.Status))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// errorText extracts a server message from an error body, falling back to the status line.
func errorText(body []byte, status string) string {
	var env struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if d, ok := env.Detail.(string); ok && d != "" {
			return d
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 200 {
		return s
	}
	return status
}

func (e envelope) result() Result {
	return Result{OK: e.OK, Message: e.Message}
}

func (w wireAuth) auth() *AuthResult {
	out := &AuthResult{Result: w.result(), User: w.User}
	if out.OK && (w.User == nil || w.User.ID == "") {
		out.OK = false
		if out.Message == "" {
			out.Message = "server did not return the account"
		}
		out.User = nil
	}
	return out
}
