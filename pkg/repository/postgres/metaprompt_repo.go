package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvisor/pkg/metaprompt"
)

// MetaPromptRepository implements metaprompt.Store; one row per user.
type MetaPromptRepository struct {
	pool *pgxpool.Pool
}

func NewMetaPromptRepository(pool *pgxpool.Pool) *MetaPromptRepository {
	return &MetaPromptRepository{pool: pool}
}

func (r *MetaPromptRepository) Save(ctx context.Context, mp metaprompt.MetaPrompt) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO meta_prompts (user_id, prompt, data_points, generated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
SET prompt = EXCLUDED.prompt, data_points = EXCLUDED.data_points, generated_at = EXCLUDED.generated_at
`, mp.UserID, mp.Prompt, mp.DataPoints, mp.GeneratedAt)
	return err
}

func (r *MetaPromptRepository) Get(ctx context.Context, userID string) (metaprompt.MetaPrompt, error) {
	var mp metaprompt.MetaPrompt
	err := r.pool.QueryRow(ctx, `
SELECT user_id, prompt, data_points, generated_at FROM meta_prompts WHERE user_id = $1
`, userID).Scan(&mp.UserID, &mp.Prompt, &mp.DataPoints, &mp.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return metaprompt.MetaPrompt{}, metaprompt.ErrNotFound
		}
		return metaprompt.MetaPrompt{}, err
	}
	mp.GeneratedAt = mp.GeneratedAt.UTC()
	return mp, nil
}
