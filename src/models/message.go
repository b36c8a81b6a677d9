// message.go - Defines the Message struct for representing chat messages across the application.
// This struct is used for session history, the local mirror and the wire format of the chat API.

package models

// Role tags who authored a message. Only two variants exist.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents a chat message.
// Messages inside a session are append-only.
type Message struct {
	Role      Role   `json:"type"`
	Content   string `json:"content"`
	ModelName string `json:"model,omitempty"`
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message tagged with the model that produced it.
func AssistantMessage(content, modelName string) Message {
	return Message{Role: RoleAssistant, Content: content, ModelName: modelName}
}
