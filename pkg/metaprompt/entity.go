package metaprompt

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("meta prompt not found")

// MetaPrompt is the cached system prompt personalised for one user.
type MetaPrompt struct {
	UserID      string     `json:"user_id"`
	Prompt      string     `json:"meta_prompt"`
	DataPoints  DataPoints `json:"data_points"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// DataPoints records which collections contributed to a prompt.
type DataPoints struct {
	Demographics bool `json:"demographics"`
	Account      bool `json:"account"`
	Credit       bool `json:"credit_history"`
	Investments  int  `json:"investments"`
	Transactions int  `json:"transactions"`
	SocialPosts  int  `json:"social_posts"`
}

type Store interface {
	Save(ctx context.Context, mp MetaPrompt) error
	Get(ctx context.Context, userID string) (MetaPrompt, error)
}
