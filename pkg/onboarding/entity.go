package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/llm"
)

var (
	ErrNotFound  = errors.New("onboarding session not found")
	ErrForbidden = errors.New("not authorized to access this session")
	ErrEmpty     = errors.New("message is required")
)

// CompleteAfterTurns is the number of user answers after which a session completes.
const CompleteAfterTurns = 4

type Turn struct {
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	ID         uuid.UUID `json:"session_id"`
	UserID     string    `json:"user_id"`
	MetaPrompt string    `json:"meta_prompt"`
	Turns      []Turn    `json:"turns"`
	Complete   bool      `json:"complete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserTurns counts the answers given so far.
func (s Session) UserTurns() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == llm.RoleUser {
			n++
		}
	}
	return n
}

// Reply is what the client sees after each step.
type Reply struct {
	SessionID uuid.UUID `json:"session_id"`
	Text      string    `json:"text"`
	Complete  bool      `json:"complete"`
}

// Store keeps sessions for a limited time. Get returns ErrNotFound for
// unknown and expired sessions alike.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (Session, error)
}
