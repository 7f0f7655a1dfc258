package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvisor/pkg/recommendation"
)

// RecommendationRepository implements recommendation.Repository.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

func (r *RecommendationRepository) SaveRecord(ctx context.Context, rec recommendation.Record) error {
	items := rec.Items
	if items == nil {
		items = []recommendation.Item{}
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO recommendations (id, user_id, items, source, created_at)
VALUES ($1, $2, $3, $4, $5)
`, rec.ID, rec.UserID, items, string(rec.Source), rec.CreatedAt)
	return err
}

func scanRecord(row pgx.Row) (recommendation.Record, error) {
	var rec recommendation.Record
	var source string
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Items, &source, &rec.CreatedAt); err != nil {
		return recommendation.Record{}, err
	}
	rec.Source = recommendation.Source(source)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func (r *RecommendationRepository) GetRecord(ctx context.Context, id uuid.UUID) (recommendation.Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `
SELECT id, user_id, items, source, created_at FROM recommendations WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return recommendation.Record{}, recommendation.ErrNotFound
		}
		return recommendation.Record{}, err
	}
	return rec, nil
}

func (r *RecommendationRepository) ListRecords(ctx context.Context, userID string, limit, offset int) ([]recommendation.Record, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, items, source, created_at
FROM recommendations
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []recommendation.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecommendationRepository) SaveFeedback(ctx context.Context, f recommendation.Feedback) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO recommendation_feedback (id, user_id, recommendation_id, product_name, rating, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, f.ID, f.UserID, f.RecommendationID, f.ProductName, f.Rating, f.Comment, f.CreatedAt)
	return err
}

func (r *RecommendationRepository) AverageRatings(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `
SELECT product_name, AVG(rating)::float8
FROM recommendation_feedback
WHERE user_id = $1
GROUP BY product_name
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var name string
		var avg float64
		if err := rows.Scan(&name, &avg); err != nil {
			return nil, err
		}
		out[name] = avg
	}
	return out, rows.Err()
}
