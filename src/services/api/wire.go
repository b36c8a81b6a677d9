package api

import (
	"ragchat/src/models"
)

// Wire shapes, decoded leniently: fields the client does not need are ignored.

type envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type wireChat struct {
	ID        models.ChatID `json:"id"`
	Title     string        `json:"title"`
	UpdatedAt string        `json:"updated_at,omitempty"`
	CreatedAt string        `json:"created_at,omitempty"`
}

func (w wireChat) summary() ChatSummary {
	ts := w.UpdatedAt
	if ts == "" {
		ts = w.CreatedAt
	}
	return ChatSummary{ID: w.ID, Title: w.Title, UpdatedAt: models.ParseServerTime(ts)}
}

type wireChatList struct {
	envelope
	Chats []wireChat `json:"chats"`
}

type wireMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Model     string `json:"model,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

func (w wireMessage) message() models.Message {
	role := models.RoleAssistant
	if w.Type == string(models.RoleUser) {
		role = models.RoleUser
	}
	model := w.Model
	if model == "" {
		model = w.ModelName
	}
	return models.Message{Role: role, Content: w.Content, ModelName: model}
}

type wireMessages struct {
	envelope
	Messages []wireMessage `json:"messages"`
}

type wireCreateChat struct {
	envelope
	Chat *wireChat `json:"chat"`
}

type wireSend struct {
	envelope
	BotMessage  *wireMessage `json:"bot_message"`
	UserMessage *wireMessage `json:"user_message"`
}

type wireAuth struct {
	envelope
	User *models.User `json:"user"`
}

type wireProfile struct {
	envelope
	Profile models.Profile `json:"profile"`
}

type wireModels struct {
	Models []models.ModelInfo `json:"models"`
}

// ragAnswerRequest mirrors the retrieval-QA request body.
type ragAnswerRequest struct {
	NamespaceID string `json:"namespace_id"`
	Question    string `json:"question"`
	TopK        int    `json:"top_k"`
	TokenBudget int    `json:"token_budget"`
	Model       string `json:"model,omitempty"`
}

type ragAnswerResponse struct {
	Answer    string `json:"answer"`
	Citations []struct {
		ChunkID string  `json:"chunk_id"`
		Score   float64 `json:"score"`
	} `json:"citations,omitempty"`
}
