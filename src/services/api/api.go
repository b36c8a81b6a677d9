// Package api provides the HTTP client for the chat backend.
//
// The session controller only depends on Backend, so either the chat-service
// relay (ChatServiceClient) or the direct retrieval-QA endpoint (RAGClient)
// can sit behind it without changing controller logic.
package api

import (
	"context"
	"time"

	"ragchat/src/models"
)

// Backend is the contract the session controller consumes.
type Backend interface {
	ListChats(ctx context.Context, userID models.UserID) (*ChatListResult, error)
	ChatMessages(ctx context.Context, chatID models.ChatID) (*MessagesResult, error)
	CreateChat(ctx context.Context, userID models.UserID, title string) (*CreateChatResult, error)
	SendMessage(ctx context.Context, chatID models.ChatID, content, model string) (*SendResult, error)
}

// Account covers the endpoints outside the chat flow.
type Account interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context, userID models.UserID) (*ProfileResult, error)
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
}

// Client is everything the application needs from the backend.
type Client interface {
	Backend
	Account
}

// Result is the application-level envelope every chat endpoint answers with.
// OK=false carries a human-readable Message.
type Result struct {
	OK      bool
	Message string
}

// ChatSummary is a chat as listed by the server, without messages.
type ChatSummary struct {
	ID        models.ChatID
	Title     string
	UpdatedAt time.Time
}

type ChatListResult struct {
	Result
	Chats []ChatSummary
}

type MessagesResult struct {
	Result
	Messages []models.Message
}

type CreateChatResult struct {
	Result
	Chat ChatSummary
}

// SendResult holds the assistant reply. BotMessage is nil unless OK.
type SendResult struct {
	Result
	BotMessage  *models.Message
	UserMessage *models.Message
}

type AuthResult struct {
	Result
	User *models.User
}

type ProfileResult struct {
	Result
	Profile models.Profile
}

// Variant names for New.
const (
	VariantChat = "chat"
	VariantRAG  = "rag"
)
