package financial

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TransactionFilter struct {
	From     time.Time
	To       time.Time
	Category string
	Limit    int
}

type ProductFilter struct {
	Category  string
	RiskLevel string
	Limit     int
	Offset    int
}

// Repository reads per-user financial records. Single-record getters return
// ErrNotFound when the user has no such record.
type Repository interface {
	GetDemographic(ctx context.Context, userID string) (Demographic, error)
	GetAccount(ctx context.Context, userID string) (Account, error)
	GetCreditHistory(ctx context.Context, userID string) (CreditHistory, error)
	ListInvestments(ctx context.Context, userID string, invType InvestmentType) ([]Investment, error)
	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, error)
	ListSocialPosts(ctx context.Context, userID string, limit int) ([]SocialPost, error)
}

type InvestmentRepository interface {
	GetInvestment(ctx context.Context, id uuid.UUID) (Investment, error)
	CreateInvestment(ctx context.Context, inv Investment) error
	UpdateInvestment(ctx context.Context, inv Investment) error
	DeleteInvestment(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
}

// Store is everything the financial use case persists through.
type Store interface {
	Repository
	InvestmentRepository
	ProductRepository
}
