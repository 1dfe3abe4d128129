package repositories

import "context"

// ConversationalBackend abstracts any chat/LLM provider. Generate receives the
// full conversation, oldest first, and returns the assistant's next message.
type ConversationalBackend interface {
	Generate(ctx context.Context, history []ChatMessage) (ChatMessage, error)
}

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role defines the type of message sender
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
	SystemRole    Role = "system"
)
