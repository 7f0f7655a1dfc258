package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvisor/pkg/chat"
	"github.com/artem13815/finadvisor/pkg/llm"
)

// ChatRepository implements chat.Repository over the conversations and chat_messages tables.
type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) CreateConversation(ctx context.Context, c chat.Conversation) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO conversations (id, user_id, title, is_active, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, c.ID, c.UserID, c.Title, c.IsActive, jsonObject(c.Metadata), c.CreatedAt, c.UpdatedAt)
	return err
}

const conversationColumns = `c.id, c.user_id, c.title, c.is_active, c.metadata, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM chat_messages m WHERE m.conversation_id = c.id)`

func scanConversation(row pgx.Row) (chat.Conversation, error) {
	var c chat.Conversation
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.IsActive, &c.Metadata, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
		return chat.Conversation{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (r *ChatRepository) GetConversation(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	c, err := scanConversation(r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return chat.Conversation{}, chat.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *ChatRepository) ListConversations(ctx context.Context, userID string, limit, offset int) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+conversationColumns+`
FROM conversations c
WHERE c.user_id = $1
ORDER BY c.updated_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Conversation, 0, limit)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChatRepository) UpdateConversation(ctx context.Context, c chat.Conversation) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE conversations SET title = $2, is_active = $3, metadata = $4, updated_at = $5
WHERE id = $1
`, c.ID, c.Title, c.IsActive, jsonObject(c.Metadata), c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

func (r *ChatRepository) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

func (r *ChatRepository) AddMessage(ctx context.Context, m chat.Message) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO chat_messages (id, conversation_id, role, content, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, m.ID, m.ConversationID, string(m.Role), m.Content, jsonObject(m.Metadata), m.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		_, err := tx.Exec(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, m.ConversationID, m.CreatedAt)
		return err
	})
}

func (r *ChatRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, role, content, metadata, created_at
FROM chat_messages
WHERE conversation_id = $1
ORDER BY created_at ASC
LIMIT NULLIF($2::int, 0) OFFSET $3
`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *ChatRepository) RecentMessages(ctx context.Context, conversationID uuid.UUID, n int) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, conversation_id, role, content, metadata, created_at FROM (
	SELECT id, conversation_id, role, content, metadata, created_at
	FROM chat_messages
	WHERE conversation_id = $1
	ORDER BY created_at DESC
	LIMIT $2
) recent
ORDER BY created_at ASC
`, conversationID, n)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]chat.Message, error) {
	defer rows.Close()
	out := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		var role string
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = llm.Role(role)
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
