package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/finadvisor/pkg/financial"
)

// FinancialRepository implements financial.Store.
type FinancialRepository struct {
	pool *pgxpool.Pool
}

func NewFinancialRepository(pool *pgxpool.Pool) *FinancialRepository {
	return &FinancialRepository{pool: pool}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return financial.ErrNotFound
	}
	return err
}

func (r *FinancialRepository) GetDemographic(ctx context.Context, userID string) (financial.Demographic, error) {
	var d financial.Demographic
	err := r.pool.QueryRow(ctx, `
SELECT user_id, name, age, gender, occupation, annual_income, annual_expenses, education_level,
	city, state, marital_status, dependents, risk_tolerance, financial_goals
FROM demographic_data WHERE user_id = $1
`, userID).Scan(&d.UserID, &d.Name, &d.Age, &d.Gender, &d.Occupation, &d.AnnualIncome, &d.AnnualExpenses,
		&d.EducationLevel, &d.City, &d.State, &d.MaritalStatus, &d.Dependents, &d.RiskTolerance, &d.FinancialGoals)
	if err != nil {
		return financial.Demographic{}, notFound(err)
	}
	return d, nil
}

func (r *FinancialRepository) GetAccount(ctx context.Context, userID string) (financial.Account, error) {
	var a financial.Account
	err := r.pool.QueryRow(ctx, `
SELECT user_id, account_type, account_balance, savings_balance, account_opening_date,
	checking_account_number, savings_account_number
FROM account_data WHERE user_id = $1
`, userID).Scan(&a.UserID, &a.AccountType, &a.AccountBalance, &a.SavingsBalance, &a.OpenedAt,
		&a.CheckingNumber, &a.SavingsNumber)
	if err != nil {
		return financial.Account{}, notFound(err)
	}
	return a, nil
}

func (r *FinancialRepository) GetCreditHistory(ctx context.Context, userID string) (financial.CreditHistory, error) {
	var c financial.CreditHistory
	err := r.pool.QueryRow(ctx, `
SELECT user_id, credit_score, outstanding_debt, credit_utilization, payment_history, credit_age_years,
	recent_inquiries, delinquencies, total_accounts
FROM credit_history WHERE user_id = $1
`, userID).Scan(&c.UserID, &c.CreditScore, &c.OutstandingDebt, &c.CreditUtilization, &c.PaymentHistory,
		&c.CreditAgeYears, &c.RecentInquiries, &c.Delinquencies, &c.TotalAccounts)
	if err != nil {
		return financial.CreditHistory{}, notFound(err)
	}
	return c, nil
}

const investmentColumns = `id, user_id, investment_type, name, amount, current_value, start_date, risk_level,
	metadata, created_at, updated_at`

func scanInvestment(row pgx.Row) (financial.Investment, error) {
	var inv financial.Investment
	var invType string
	if err := row.Scan(&inv.ID, &inv.UserID, &invType, &inv.Name, &inv.Amount, &inv.CurrentValue, &inv.StartDate,
		&inv.RiskLevel, &inv.Metadata, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return financial.Investment{}, err
	}
	inv.InvestmentType = financial.InvestmentType(invType)
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}

func (r *FinancialRepository) ListInvestments(ctx context.Context, userID string, invType financial.InvestmentType) ([]financial.Investment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+investmentColumns+`
FROM investment_data
WHERE user_id = $1 AND ($2 = '' OR investment_type = $2)
ORDER BY created_at ASC
`, userID, string(invType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []financial.Investment{}
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *FinancialRepository) GetInvestment(ctx context.Context, id uuid.UUID) (financial.Investment, error) {
	inv, err := scanInvestment(r.pool.QueryRow(ctx, `SELECT `+investmentColumns+` FROM investment_data WHERE id = $1`, id))
	if err != nil {
		return financial.Investment{}, notFound(err)
	}
	return inv, nil
}

func (r *FinancialRepository) CreateInvestment(ctx context.Context, inv financial.Investment) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO investment_data (id, user_id, investment_type, name, amount, current_value, start_date, risk_level,
	metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, inv.ID, inv.UserID, string(inv.InvestmentType), inv.Name, inv.Amount, inv.CurrentValue, inv.StartDate,
		inv.RiskLevel, jsonObject(inv.Metadata), inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *FinancialRepository) UpdateInvestment(ctx context.Context, inv financial.Investment) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE investment_data
SET investment_type = $2, name = $3, amount = $4, current_value = $5, start_date = $6, risk_level = $7,
	metadata = $8, updated_at = $9
WHERE id = $1
`, inv.ID, string(inv.InvestmentType), inv.Name, inv.Amount, inv.CurrentValue, inv.StartDate, inv.RiskLevel,
		jsonObject(inv.Metadata), inv.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return financial.ErrNotFound
	}
	return nil
}

func (r *FinancialRepository) DeleteInvestment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM investment_data WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return financial.ErrNotFound
	}
	return nil
}

func (r *FinancialRepository) ListTransactions(ctx context.Context, userID string, f financial.TransactionFilter) ([]financial.Transaction, error) {
	var from, to *time.Time
	if !f.From.IsZero() {
		from = &f.From
	}
	if !f.To.IsZero() {
		to = &f.To
	}
	rows, err := r.pool.Query(ctx, `
SELECT transaction_id, user_id, date, amount, merchant, category, transaction_type
FROM transaction_data
WHERE user_id = $1
	AND ($2::timestamptz IS NULL OR date >= $2)
	AND ($3::timestamptz IS NULL OR date <= $3)
	AND ($4 = '' OR lower(category) = lower($4))
ORDER BY date DESC
LIMIT NULLIF($5::int, 0)
`, userID, from, to, f.Category, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []financial.Transaction{}
	for rows.Next() {
		var t financial.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Amount, &t.Merchant, &t.Category, &t.TransactionType); err != nil {
			return nil, err
		}
		t.Date = t.Date.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *FinancialRepository) ListSocialPosts(ctx context.Context, userID string, limit int) ([]financial.SocialPost, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id, post_date, platform, post_text, sentiment, topics
FROM social_media_sentiment
WHERE user_id = $1
ORDER BY post_date DESC
LIMIT NULLIF($2::int, 0)
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []financial.SocialPost{}
	for rows.Next() {
		var p financial.SocialPost
		if err := rows.Scan(&p.UserID, &p.Date, &p.Platform, &p.PostText, &p.Sentiment, &p.Topics); err != nil {
			return nil, err
		}
		p.Date = p.Date.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

const productColumns = `id, name, category, interest_rate, term_years, minimum_investment, description, risk_level, suitable_for`

func scanProduct(row pgx.Row) (financial.Product, error) {
	var p financial.Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.InterestRate, &p.TermYears, &p.MinimumInvestment,
		&p.Description, &p.RiskLevel, &p.SuitableFor)
	return p, err
}

func (r *FinancialRepository) ListProducts(ctx context.Context, f financial.ProductFilter) ([]financial.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+`
FROM products
WHERE ($1 = '' OR lower(category) = lower($1))
	AND ($2 = '' OR lower(risk_level) = lower($2))
ORDER BY id ASC
LIMIT NULLIF($3::int, 0) OFFSET $4
`, f.Category, f.RiskLevel, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []financial.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *FinancialRepository) GetProduct(ctx context.Context, id int64) (financial.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return financial.Product{}, notFound(err)
	}
	return p, nil
}
