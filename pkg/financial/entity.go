package financial

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ErrValidation is returned for rejected input.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

type Demographic struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender,omitempty"`
	Occupation     string   `json:"occupation,omitempty"`
	AnnualIncome   float64  `json:"annual_income"`
	AnnualExpenses float64  `json:"annual_expenses"`
	EducationLevel string   `json:"education_level,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	MaritalStatus  string   `json:"marital_status,omitempty"`
	Dependents     int      `json:"dependents"`
	RiskTolerance  string   `json:"risk_tolerance,omitempty"`
	FinancialGoals []string `json:"financial_goals,omitempty"`
}

// Location joins city and state when known.
func (d Demographic) Location() string {
	var parts []string
	for _, p := range []string{d.City, d.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Account struct {
	UserID         string     `json:"user_id"`
	AccountType    string     `json:"account_type"`
	AccountBalance float64    `json:"account_balance"`
	SavingsBalance float64    `json:"savings_balance"`
	OpenedAt       *time.Time `json:"account_opening_date,omitempty"`
	CheckingNumber string     `json:"checking_account_number,omitempty"`
	SavingsNumber  string     `json:"savings_account_number,omitempty"`
}

type CreditHistory struct {
	UserID            string  `json:"user_id"`
	CreditScore       int     `json:"credit_score"`
	OutstandingDebt   float64 `json:"outstanding_debt"`
	CreditUtilization float64 `json:"credit_utilization"`
	PaymentHistory    string  `json:"payment_history,omitempty"`
	CreditAgeYears    float64 `json:"credit_age_years"`
	RecentInquiries   int     `json:"recent_inquiries"`
	Delinquencies     int     `json:"delinquencies"`
	TotalAccounts     int     `json:"total_accounts"`
}

type InvestmentType string

const (
	InvestmentStocks         InvestmentType = "stocks"
	InvestmentBonds          InvestmentType = "bonds"
	InvestmentETFs           InvestmentType = "etfs"
	InvestmentMutualFunds    InvestmentType = "mutual_funds"
	InvestmentRealEstate     InvestmentType = "real_estate"
	InvestmentCryptocurrency InvestmentType = "cryptocurrency"
	InvestmentOther          InvestmentType = "other"
)

// ParseInvestmentType normalizes free-form input; unknown values map to other.
func ParseInvestmentType(s string) InvestmentType {
	t := InvestmentType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	switch t {
	case InvestmentStocks, InvestmentBonds, InvestmentETFs, InvestmentMutualFunds,
		InvestmentRealEstate, InvestmentCryptocurrency, InvestmentOther:
		return t
	case "stock":
		return InvestmentStocks
	case "bond":
		return InvestmentBonds
	case "etf":
		return InvestmentETFs
	case "mutual_fund":
		return InvestmentMutualFunds
	case "crypto":
		return InvestmentCryptocurrency
	default:
		return InvestmentOther
	}
}

type Investment struct {
	ID             uuid.UUID      `json:"id"`
	UserID         string         `json:"user_id"`
	InvestmentType InvestmentType `json:"investment_type"`
	Name           string         `json:"name,omitempty"`
	Amount         float64        `json:"amount"`
	CurrentValue   float64        `json:"current_value"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	RiskLevel      string         `json:"risk_level,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Transaction struct {
	ID              string    `json:"transaction_id"`
	UserID          string    `json:"user_id"`
	Date            time.Time `json:"date"`
	Amount          float64   `json:"amount"`
	Merchant        string    `json:"merchant,omitempty"`
	Category        string    `json:"category,omitempty"`
	TransactionType string    `json:"transaction_type,omitempty"`
}

// IsExpense treats debits and negative amounts as money leaving the account.
func (t Transaction) IsExpense() bool {
	if strings.EqualFold(t.TransactionType, "debit") {
		return true
	}
	if strings.EqualFold(t.TransactionType, "credit") {
		return false
	}
	return t.Amount < 0
}

type SocialPost struct {
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Platform  string    `json:"platform,omitempty"`
	PostText  string    `json:"post_text"`
	Sentiment string    `json:"sentiment,omitempty"`
	Topics    []string  `json:"topics,omitempty"`
}

type Product struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	InterestRate      float64 `json:"interest_rate"`
	TermYears         int     `json:"term_years"`
	MinimumInvestment float64 `json:"minimum_investment"`
	Description       string  `json:"description"`
	RiskLevel         string  `json:"risk_level"`
	SuitableFor       string  `json:"suitable_for"`
}

// Profile is every record held for one user.
type Profile struct {
	UserID       string         `json:"user_id"`
	Demographic  *Demographic   `json:"demographics,omitempty"`
	Account      *Account       `json:"account,omitempty"`
	Credit       *CreditHistory `json:"credit_history,omitempty"`
	Investments  []Investment   `json:"investments"`
	Transactions []Transaction  `json:"transactions"`
	SocialPosts  []SocialPost   `json:"social_posts,omitempty"`
}

// Empty reports whether no record of any kind exists.
func (p Profile) Empty() bool {
	return p.Demographic == nil && p.Account == nil && p.Credit == nil &&
		len(p.Investments) == 0 && len(p.Transactions) == 0 && len(p.SocialPosts) == 0
}
