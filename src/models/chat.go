package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"
)

const (
	// DefaultChatTitle is used when a chat is created without a first message.
	DefaultChatTitle = "New Chat"
	// TitleMaxRunes is the length at which titles derived from a message are cut.
	TitleMaxRunes = 30
	// TitleEllipsis marks a truncated title.
	TitleEllipsis = "..."
)

// ChatID is an opaque, server-assigned chat identifier.
// The backend may encode it as a JSON number or a string; both decode to the same value.
type ChatID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ChatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("chat id: %w", err)
	}
	*id = ChatID(n.String())
	return nil
}

// String returns the id as sent over the wire.
func (id ChatID) String() string { return string(id) }

// ChatSession represents a named, ordered conversation thread.
type ChatSession struct {
	ID        ChatID    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// Clone returns a deep copy so callers can't mutate the session's history.
func (c ChatSession) Clone() ChatSession {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// TitleFromMessage derives a chat title from the first user message.
// Messages longer than TitleMaxRunes are cut and suffixed with TitleEllipsis.
func TitleFromMessage(first string) string {
	if first == "" {
		return DefaultChatTitle
	}
	if utf8.RuneCountInString(first) <= TitleMaxRunes {
		return first
	}
	runes := []rune(first)
	return string(runes[:TitleMaxRunes]) + TitleEllipsis
}

// UserID identifies the signed-in user. Like ChatID it tolerates numeric JSON.
type UserID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *UserID) UnmarshalJSON(data []byte) error {
	var c ChatID
	if err := c.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(c)
	return nil
}

// User is the signed-in account, persisted under the "user" key.
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName mirrors the sidebar label: name, else the email local part, else "User".
func (u *User) DisplayName() string {
	if u == nil {
		return "User"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		for i := 0; i < len(u.Email); i++ {
			if u.Email[i] == '@' {
				return u.Email[:i]
			}
		}
		return u.Email
	}
	return "User"
}

// Profile is the account detail shown in the profile popover.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
}

// ParseServerTime parses the ISO timestamps emitted by the backend.
// Unparseable values yield the zero time.
func ParseServerTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	return time.Time{}
}
