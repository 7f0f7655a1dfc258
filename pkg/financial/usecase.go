package financial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UseCase covers the financial data API.
type UseCase interface {
	Profile(ctx context.Context, userID string) (Profile, error)
	Demographic(ctx context.Context, userID string) (Demographic, error)
	Account(ctx context.Context, userID string) (Account, error)
	CreditHistory(ctx context.Context, userID string) (CreditHistory, error)

	ListInvestments(ctx context.Context, userID string, invType string) ([]Investment, error)
	GetInvestment(ctx context.Context, actorID string, id uuid.UUID) (Investment, error)
	CreateInvestment(ctx context.Context, actorID string, in InvestmentInput) (Investment, error)
	UpdateInvestment(ctx context.Context, actorID string, id uuid.UUID, in InvestmentPatch) (Investment, error)
	DeleteInvestment(ctx context.Context, actorID string, id uuid.UUID) error
	InvestmentSummary(ctx context.Context, userID string) (InvestmentSummary, error)
	TransactionSummary(ctx context.Context, userID string, months int) (TransactionSummary, error)

	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
}

type InvestmentInput struct {
	InvestmentType string         `json:"investment_type"`
	Name           string         `json:"name"`
	Amount         float64        `json:"amount"`
	CurrentValue   *float64       `json:"current_value"`
	StartDate      *time.Time     `json:"start_date"`
	RiskLevel      string         `json:"risk_level"`
	Metadata       map[string]any `json:"metadata"`
}

type InvestmentPatch struct {
	InvestmentType *string        `json:"investment_type"`
	Name           *string        `json:"name"`
	Amount         *float64       `json:"amount"`
	CurrentValue   *float64       `json:"current_value"`
	StartDate      *time.Time     `json:"start_date"`
	RiskLevel      *string        `json:"risk_level"`
	Metadata       map[string]any `json:"metadata"`
}

type service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) UseCase {
	return &service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func optional[T any](v T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (s *service) Profile(ctx context.Context, userID string) (Profile, error) {
	p := Profile{UserID: userID}
	var err error
	if p.Demographic, err = optional(s.store.GetDemographic(ctx, userID)); err != nil {
		return Profile{}, fmt.Errorf("load demographics: %w", err)
	}
	if p.Account, err = optional(s.store.GetAccount(ctx, userID)); err != nil {
		return Profile{}, fmt.Errorf("load account: %w", err)
	}
	if p.Credit, err = optional(s.store.GetCreditHistory(ctx, userID)); err != nil {
		return Profile{}, fmt.Errorf("load credit history: %w", err)
	}
	if p.Investments, err = s.store.ListInvestments(ctx, userID, ""); err != nil {
		return Profile{}, fmt.Errorf("load investments: %w", err)
	}
	if p.Transactions, err = s.store.ListTransactions(ctx, userID, TransactionFilter{Limit: 100}); err != nil {
		return Profile{}, fmt.Errorf("load transactions: %w", err)
	}
	return p, nil
}

func (s *service) Demographic(ctx context.Context, userID string) (Demographic, error) {
	return s.store.GetDemographic(ctx, userID)
}

func (s *service) Account(ctx context.Context, userID string) (Account, error) {
	return s.store.GetAccount(ctx, userID)
}

func (s *service) CreditHistory(ctx context.Context, userID string) (CreditHistory, error) {
	return s.store.GetCreditHistory(ctx, userID)
}

func (s *service) ListInvestments(ctx context.Context, userID string, invType string) ([]Investment, error) {
	var t InvestmentType
	if strings.TrimSpace(invType) != "" {
		t = ParseInvestmentType(invType)
	}
	return s.store.ListInvestments(ctx, userID, t)
}

func (s *service) owned(ctx context.Context, actorID string, id uuid.UUID) (Investment, error) {
	inv, err := s.store.GetInvestment(ctx, id)
	if err != nil {
		return Investment{}, err
	}
	if inv.UserID != actorID {
		return Investment{}, ErrForbidden
	}
	return inv, nil
}

func (s *service) GetInvestment(ctx context.Context, actorID string, id uuid.UUID) (Investment, error) {
	return s.owned(ctx, actorID, id)
}

// maxAmount is the exclusive bound of a NUMERIC(18, 2) column.
const maxAmount = 1e16

func validateAmounts(amount, current float64) error {
	if Clean(amount) != amount || Clean(current) != current {
		return ErrValidation("amounts must be finite numbers")
	}
	if amount < 0 || current < 0 {
		return ErrValidation("amounts must not be negative")
	}
	if amount >= maxAmount || current >= maxAmount {
		return ErrValidation("amounts must be below 10^16")
	}
	return nil
}

// roundAmounts brings both values to cents, the precision they are stored with.
func roundAmounts(inv *Investment) {
	inv.Amount = money(dec(inv.Amount))
	inv.CurrentValue = money(dec(inv.CurrentValue))
}

func (s *service) CreateInvestment(ctx context.Context, actorID string, in InvestmentInput) (Investment, error) {
	if strings.TrimSpace(in.InvestmentType) == "" {
		return Investment{}, ErrValidation("investment_type is required")
	}
	current := in.Amount
	if in.CurrentValue != nil {
		current = *in.CurrentValue
	}
	if err := validateAmounts(in.Amount, current); err != nil {
		return Investment{}, err
	}
	now := s.now()
	inv := Investment{
		ID:             uuid.New(),
		UserID:         actorID,
		InvestmentType: ParseInvestmentType(in.InvestmentType),
		Name:           strings.TrimSpace(in.Name),
		Amount:         in.Amount,
		CurrentValue:   current,
		StartDate:      in.StartDate,
		RiskLevel:      strings.TrimSpace(in.RiskLevel),
		Metadata:       in.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if inv.StartDate == nil {
		inv.StartDate = &now
	}
	roundAmounts(&inv)
	if err := s.store.CreateInvestment(ctx, inv); err != nil {
		return Investment{}, fmt.Errorf("create investment: %w", err)
	}
	return inv, nil
}

func (s *service) UpdateInvestment(ctx context.Context, actorID string, id uuid.UUID, in InvestmentPatch) (Investment, error) {
	inv, err := s.owned(ctx, actorID, id)
	if err != nil {
		return Investment{}, err
	}
	if in.InvestmentType != nil {
		inv.InvestmentType = ParseInvestmentType(*in.InvestmentType)
	}
	if in.Name != nil {
		inv.Name = strings.TrimSpace(*in.Name)
	}
	if in.Amount != nil {
		inv.Amount = *in.Amount
	}
	if in.CurrentValue != nil {
		inv.CurrentValue = *in.CurrentValue
	}
	if in.StartDate != nil {
		inv.StartDate = in.StartDate
	}
	if in.RiskLevel != nil {
		inv.RiskLevel = strings.TrimSpace(*in.RiskLevel)
	}
	if in.Metadata != nil {
		if inv.Metadata == nil {
			inv.Metadata = map[string]any{}
		}
		for k, v := range in.Metadata {
			inv.Metadata[k] = v
		}
	}
	if err := validateAmounts(inv.Amount, inv.CurrentValue); err != nil {
		return Investment{}, err
	}
	roundAmounts(&inv)
	inv.UpdatedAt = s.now()
	if err := s.store.UpdateInvestment(ctx, inv); err != nil {
		return Investment{}, fmt.Errorf("update investment: %w", err)
	}
	return inv, nil
}

func (s *service) DeleteInvestment(ctx context.Context, actorID string, id uuid.UUID) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.store.DeleteInvestment(ctx, id)
}

func (s *service) InvestmentSummary(ctx context.Context, userID string) (InvestmentSummary, error) {
	invs, err := s.store.ListInvestments(ctx, userID, "")
	if err != nil {
		return InvestmentSummary{}, err
	}
	return SummarizeInvestments(invs), nil
}

func (s *service) TransactionSummary(ctx context.Context, userID string, months int) (TransactionSummary, error) {
	if months <= 0 {
		months = 3
	}
	to := s.now()
	from := to.AddDate(0, -months, 0)
	txs, err := s.store.ListTransactions(ctx, userID, TransactionFilter{From: from, To: to})
	if err != nil {
		return TransactionSummary{}, err
	}
	return SummarizeTransactions(txs, months, from, to), nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	return s.store.ListProducts(ctx, filter)
}

func (s *service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.store.GetProduct(ctx, id)
}
