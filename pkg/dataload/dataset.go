package dataload

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/financial"
)

type kind int

const (
	kindText kind = iota
	kindInt
	kindFloat
	kindDate      // nullable date
	kindTimestamp // required; rows with a bad value are skipped
	kindList
	kindInvestmentType
	kindNewUUID // generated when the cell is empty
	kindNow
	kindEmptyObject
)

type column struct {
	csv  string
	db   string
	kind kind
}

// Dataset maps one CSV file onto one table.
type Dataset struct {
	File    string
	Table   string
	columns []column
}

func (d Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.db
	}
	return out
}

func col(name string, k kind) column { return column{csv: name, db: name, kind: k} }

// Datasets lists every importable file in load order.
func Datasets() []Dataset {
	return []Dataset{
		{File: "demographic_data.csv", Table: "demographic_data", columns: []column{
			col("user_id", kindText), col("name", kindText), col("age", kindInt), col("gender", kindText),
			col("occupation", kindText), col("annual_income", kindFloat), col("annual_expenses", kindFloat),
			col("education_level", kindText), col("city", kindText), col("state", kindText),
			col("marital_status", kindText), col("dependents", kindInt), col("risk_tolerance", kindText),
			col("financial_goals", kindList),
		}},
		{File: "account_data.csv", Table: "account_data", columns: []column{
			col("user_id", kindText), col("account_type", kindText), col("account_balance", kindFloat),
			col("savings_balance", kindFloat), col("account_opening_date", kindDate),
			col("checking_account_number", kindText), col("savings_account_number", kindText),
		}},
		{File: "credit_history.csv", Table: "credit_history", columns: []column{
			col("user_id", kindText), col("credit_score", kindInt), col("outstanding_debt", kindFloat),
			col("credit_utilization", kindFloat), col("payment_history", kindText),
			col("credit_age_years", kindFloat), col("recent_inquiries", kindInt), col("delinquencies", kindInt),
			col("total_accounts", kindInt),
		}},
		{File: "investment_data.csv", Table: "investment_data", columns: []column{
			{csv: "investment_id", db: "id", kind: kindNewUUID},
			col("user_id", kindText), col("investment_type", kindInvestmentType), col("name", kindText),
			col("amount", kindFloat), col("current_value", kindFloat), col("start_date", kindDate),
			col("risk_level", kindText), col("metadata", kindEmptyObject), col("created_at", kindNow),
			col("updated_at", kindNow),
		}},
		{File: "transaction_data.csv", Table: "transaction_data", columns: []column{
			col("transaction_id", kindText), col("user_id", kindText), col("date", kindTimestamp),
			col("amount", kindFloat), col("merchant", kindText), col("category", kindText),
			col("transaction_type", kindText),
		}},
		{File: "products.csv", Table: "products", columns: []column{
			col("name", kindText), col("category", kindText), col("interest_rate", kindFloat),
			col("term_years", kindInt), col("minimum_investment", kindFloat), col("description", kindText),
			col("risk_level", kindText), col("suitable_for", kindText),
		}},
		{File: "social_media_sentiment.csv", Table: "social_media_sentiment", columns: []column{
			col("user_id", kindText), {csv: "date", db: "post_date", kind: kindTimestamp},
			col("platform", kindText), col("post_text", kindText), col("sentiment", kindText),
			col("topics", kindList),
		}},
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseList accepts "a, b", "a;b", "a|b" and list literals such as "['a', 'b']".
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func investmentType(s string) string { return string(financial.ParseInvestmentType(s)) }

func newID(s string) uuid.UUID {
	if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
		return id
	}
	return uuid.New()
}
