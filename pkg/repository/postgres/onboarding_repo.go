package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvisor/pkg/onboarding"
)

// OnboardingRepository implements onboarding.Store with an expires_at column.
// Expired rows are invisible to Get and removed on the next Save.
type OnboardingRepository struct {
	pool *pgxpool.Pool
}

func NewOnboardingRepository(pool *pgxpool.Pool) *OnboardingRepository {
	return &OnboardingRepository{pool: pool}
}

func (r *OnboardingRepository) Save(ctx context.Context, s onboarding.Session, ttl time.Duration) error {
	turns := s.Turns
	if turns == nil {
		turns = []onboarding.Turn{}
	}
	expiresAt := time.Now().UTC().Add(ttl)
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM onboarding_sessions WHERE expires_at <= now()`); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
INSERT INTO onboarding_sessions (id, user_id, meta_prompt, turns, complete, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET turns = EXCLUDED.turns, complete = EXCLUDED.complete, updated_at = EXCLUDED.updated_at,
	expires_at = EXCLUDED.expires_at
`, s.ID, s.UserID, s.MetaPrompt, turns, s.Complete, s.CreatedAt, s.UpdatedAt, expiresAt)
		return err
	})
}

func (r *OnboardingRepository) Get(ctx context.Context, id uuid.UUID) (onboarding.Session, error) {
	var s onboarding.Session
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, meta_prompt, turns, complete, created_at, updated_at
FROM onboarding_sessions
WHERE id = $1 AND expires_at > now()
`, id).Scan(&s.ID, &s.UserID, &s.MetaPrompt, &s.Turns, &s.Complete, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return onboarding.Session{}, onboarding.ErrNotFound
		}
		return onboarding.Session{}, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
