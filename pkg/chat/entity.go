package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/llm"
)

var (
	ErrNotFound  = errors.New("conversation not found")
	ErrForbidden = errors.New("not authorized to access this conversation")
	ErrEmpty     = errors.New("message content is required")
)

const DefaultTitle = "New Conversation"

type Conversation struct {
	ID           uuid.UUID      `json:"id"`
	UserID       string         `json:"user_id"`
	Title        string         `json:"title"`
	IsActive     bool           `json:"is_active"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	MessageCount int            `json:"message_count"`
}

type Message struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID uuid.UUID      `json:"conversation_id"`
	Role           llm.Role       `json:"role"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Detail is a conversation with its messages in chronological order.
type Detail struct {
	Conversation
	Messages []Message `json:"messages"`
}
