// rag.go - Direct retrieval-QA variant of the backend.

package api

import (
	"context"
	"fmt"
	"strings"

	"ragchat/src/models"
)

const (
	DefaultTopK        = 5
	MinTopK            = 1
	MaxTopK            = 20
	DefaultTokenBudget = 2000
	MinTokenBudget     = 100
	MaxTokenBudget     = 8000
)

// RAGOptions tunes retrieval for the direct-QA endpoint.
type RAGOptions struct {
	NamespaceID string
	TopK        int
	TokenBudget int
}

// Normalize fills defaults and clamps values to the server's accepted ranges.
func (o RAGOptions) Normalize() RAGOptions {
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	o.TopK = clamp(o.TopK, MinTopK, MaxTopK)
	if o.TokenBudget == 0 {
		o.TokenBudget = DefaultTokenBudget
	}
	o.TokenBudget = clamp(o.TokenBudget, MinTokenBudget, MaxTokenBudget)
	return o
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RAGClient answers questions through /api/rag/answer.
// Chat bookkeeping (list, history, create) still goes through the chat service.
type RAGClient struct {
	*ChatServiceClient
	opts RAGOptions
}

// NewRAGClient wraps a chat-service client with direct-QA sending.
func NewRAGClient(chat *ChatServiceClient, opts RAGOptions) *RAGClient {
	return &RAGClient{ChatServiceClient: chat, opts: opts.Normalize()}
}

// Options returns the effective retrieval settings.
func (c *RAGClient) Options() RAGOptions { return c.opts }

// SendMessage asks the question directly and adapts the answer to a SendResult.
// The chat id is not part of the request: the QA endpoint is stateless.
func (c *RAGClient) SendMessage(ctx context.Context, _ models.ChatID, content, model string) (*SendResult, error) {
	var resp ragAnswerResponse
	req := ragAnswerRequest{
		NamespaceID: c.opts.NamespaceID,
		Question:    content,
		TopK:        c.opts.TopK,
		TokenBudget: c.opts.TokenBudget,
		Model:       model,
	}
	if err := c.postJSON(ctx, "rag answer", "/api/rag/answer", req, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Answer) == "" {
		return &SendResult{Result: Result{Message: "no answer returned"}}, nil
	}
	c.logger.Debug("rag answer", "citations", len(resp.Citations))
	bot := models.AssistantMessage(resp.Answer, model)
	user := models.UserMessage(content)
	return &SendResult{Result: Result{OK: true}, BotMessage: &bot, UserMessage: &user}, nil
}

// New builds the Backend for variant. Both variants also satisfy Account.
func New(variant, baseURL string, rag RAGOptions, opts ...Option) (Client, error) {
	chat := NewChatServiceClient(baseURL, opts...)
	switch variant {
	case "", VariantChat:
		return chat, nil
	case VariantRAG:
		return NewRAGClient(chat, rag), nil
	default:
		return nil, &models.ValidationError{Message: fmt.Sprintf("unknown api variant %q", variant)}
	}
}

var (
	_ Backend = (*ChatServiceClient)(nil)
	_ Account = (*ChatServiceClient)(nil)
	_ Backend = (*RAGClient)(nil)
	_ Account = (*RAGClient)(nil)
)
