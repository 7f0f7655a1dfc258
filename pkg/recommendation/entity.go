package recommendation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("recommendation not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrProductName   = errors.New("product name is required")
)

type Source string

const (
	SourcePersonalized Source = "personalized"
	SourceSimilarity   Source = "similarity"
	SourceGeneric      Source = "generic"
)

// Item is one recommended product with a 0-100 score.
type Item struct {
	ProductID   int64   `json:"product_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Reason      string  `json:"reason"`
	Score       float64 `json:"score"`
}

type Record struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"products"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type Feedback struct {
	ID               uuid.UUID  `json:"id"`
	UserID           string     `json:"user_id"`
	RecommendationID *uuid.UUID `json:"recommendation_id,omitempty"`
	ProductName      string     `json:"product_name"`
	Rating           int        `json:"rating"`
	Comment          string     `json:"feedback,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Repository interface {
	SaveRecord(ctx context.Context, r Record) error
	GetRecord(ctx context.Context, id uuid.UUID) (Record, error)
	ListRecords(ctx context.Context, userID string, limit, offset int) ([]Record, error)
	SaveFeedback(ctx context.Context, f Feedback) error
	// AverageRatings returns the user's mean rating per product name.
	AverageRatings(ctx context.Context, userID string) (map[string]float64, error)
}
