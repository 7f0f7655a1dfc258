package chat

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists conversations and their messages.
// Getters return ErrNotFound for unknown ids.
type Repository interface {
	CreateConversation(ctx context.Context, conv Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (Conversation, error)
	ListConversations(ctx context.Context, userID string, limit, offset int) ([]Conversation, error)
	UpdateConversation(ctx context.Context, conv Conversation) error
	DeleteConversation(ctx context.Context, id uuid.UUID) error

	// AddMessage appends a message and touches the conversation's updated_at.
	AddMessage(ctx context.Context, msg Message) error
	// ListMessages returns messages oldest first.
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]Message, error)
	// RecentMessages returns the last n messages, oldest first.
	RecentMessages(ctx context.Context, conversationID uuid.UUID, n int) ([]Message, error)
}
