package mockbackend

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// The auth and chat handlers always answer 200 and signal failure with ok=false.

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserJSON(u *UserRecord) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email}
}

// POST /api/auth/login
func (s *Server) login(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	if email == "" || password == "" {
		return fail(c, "email and password are required")
	}

	u, err := s.db.UserByEmail(c.Request().Context(), email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("failed to look up user", "error", err)
		}
		return fail(c, "invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return fail(c, "invalid email or password")
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "signed in", "user": toUserJSON(u)})
}

// POST /api/auth/register
func (s *Server) register(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	if name == "" || email == "" || password == "" {
		return fail(c, "name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		s.log.Error("failed to hash password", "error", err)
		return fail(c, "registration failed")
	}
	u, err := s.db.CreateUser(c.Request().Context(), name, email, string(hash))
	if errors.Is(err, ErrEmailTaken) {
		return fail(c, "email already registered")
	}
	if err != nil {
		s.log.Error("failed to register user", "error", err)
		return fail(c, "registration failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "registered", "user": toUserJSON(u)})
}

// POST /api/auth/logout
func (s *Server) logout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "message": "signed out"})
}

// GET /api/auth/profile?user_id=
func (s *Server) profile(c echo.Context) error {
	u, err := s.db.UserByID(c.Request().Context(), c.QueryParam("user_id"))
	if err != nil {
		return fail(c, "user not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok": true,
		"profile": map[string]string{
			"name":      u.Name,
			"email":     u.Email,
			"joined_at": u.CreatedAt.Format(time.RFC3339),
		},
	})
}

// GET /api/chat/list?user_id=
func (s *Server) listChats(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "user_id is required"})
	}
	chats, err := s.db.ListChats(c.Request().Context(), userID)
	if err != nil {
		s.log.Error("failed to list chats", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "failed to list chats"})
	}
	out := make([]map[string]string, 0, len(chats))
	for _, ch := range chats {
		out = append(out, map[string]string{
			"id":         ch.ID,
			"title":      ch.Title,
			"updated_at": ch.UpdatedAt.Format(time.RFC3339Nano),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "chats": out})
}

// GET /api/chat/messages?chat_id=
func (s *Server) chatMessages(c echo.Context) error {
	ctx := c.Request().Context()
	chatID := c.QueryParam("chat_id")
	ok, err := s.db.ChatExists(ctx, chatID)
	if err != nil {
		s.log.Error("failed to look up chat", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "failed to load chat"})
	}
	if !ok {
		return fail(c, "chat not found")
	}
	msgs, err := s.db.Messages(ctx, chatID)
	if err != nil {
		s.log.Error("failed to list messages", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "failed to load messages"})
	}
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		entry := map[string]any{"type": m.Type, "content": m.Content, "created_at": m.CreatedAt.Format(time.RFC3339Nano)}
		if m.ModelName != "" {
			entry["model_name"] = m.ModelName
		} else {
			entry["model_name"] = nil
		}
		out = append(out, entry)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "messages": out})
}

// POST /api/chat/create
func (s *Server) createChat(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.FormValue("user_id")
	title := strings.TrimSpace(c.FormValue("title"))
	if userID == "" || title == "" {
		return fail(c, "user_id and title are required")
	}
	if _, err := s.db.UserByID(ctx, userID); err != nil {
		return fail(c, "user not found")
	}
	ch, err := s.db.CreateChat(ctx, userID, title)
	if err != nil {
		s.log.Error("failed to create chat", "error", err)
		return fail(c, "failed to create chat")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"message": "chat created",
		"chat":    map[string]string{"id": ch.ID, "title": ch.Title, "created_at": ch.CreatedAt.Format(time.RFC3339Nano)},
	})
}

// POST /api/chat/send
func (s *Server) sendMessage(c echo.Context) error {
	ctx := c.Request().Context()
	chatID := c.FormValue("chat_id")
	content := strings.TrimSpace(c.FormValue("content"))
	model := c.FormValue("model")
	if content == "" {
		return fail(c, "content is required")
	}
	ok, err := s.db.ChatExists(ctx, chatID)
	if err != nil || !ok {
		return fail(c, "chat not found")
	}
	if model != "" {
		if known, _ := s.db.ModelExists(ctx, model); !known {
			model = ""
		}
	}

	now := time.Now().UTC()
	user := MessageRecord{Type: "user", Content: content, CreatedAt: now}
	bot := MessageRecord{Type: "assistant", Content: cannedReply(content, model), ModelName: model, CreatedAt: now}
	if err := s.db.AppendExchange(ctx, chatID, user, bot); err != nil {
		s.log.Error("failed to store messages", "error", err)
		return fail(c, "failed to send message")
	}

	botJSON := map[string]any{"type": bot.Type, "content": bot.Content, "model_name": nil}
	if model != "" {
		botJSON["model_name"] = model
	}
	return c.JSON(http.StatusOK, map[string]any{
		"ok":           true,
		"message":      "message sent",
		"user_message": map[string]any{"type": user.Type, "content": user.Content},
		"bot_message":  botJSON,
	})
}

// GET /api/chat/models
func (s *Server) listModels(c echo.Context) error {
	list, err := s.db.Models(c.Request().Context())
	if err != nil {
		s.log.Error("failed to list models", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "failed to list models"})
	}
	out := make([]map[string]string, 0, len(list))
	for _, m := range list {
		out = append(out, map[string]string{"name": m.Name, "description": m.Description})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "models": out})
}

type answerRequest struct {
	NamespaceID string `json:"namespace_id"`
	Question    string `json:"question"`
	TopK        int    `json:"top_k"`
	TokenBudget int    `json:"token_budget"`
	Model       string `json:"model"`
}

// POST /api/rag/answer
func (s *Server) ragAnswer(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "question is required"})
	}
	if req.TopK < 1 || req.TopK > 20 || req.TokenBudget < 100 || req.TokenBudget > 8000 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "top_k or token_budget out of range"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"answer":    cannedReply(req.Question, req.Model),
		"citations": []map[string]any{{"chunk_id": req.NamespaceID + "#0", "score": 1.0}},
	})
}
