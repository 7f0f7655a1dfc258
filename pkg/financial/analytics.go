package financial

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Clean maps NaN and infinities to zero.
func Clean(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(Clean(f)) }

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

type Allocation struct {
	Type    InvestmentType `json:"type"`
	Value   float64        `json:"value"`
	Percent float64        `json:"percent"`
}

type TypeSummary struct {
	Type         InvestmentType `json:"type"`
	Count        int            `json:"count"`
	Amount       float64        `json:"amount"`
	CurrentValue float64        `json:"current_value"`
	SharePercent float64        `json:"share_percent"`
	GainLoss     float64        `json:"gain_loss"`
	GainLossPct  float64        `json:"gain_loss_percent"`
}

type InvestmentSummary struct {
	Count         int           `json:"count"`
	TotalInvested float64       `json:"total_invested"`
	CurrentValue  float64       `json:"current_value"`
	GainLoss      float64       `json:"gain_loss"`
	ReturnPercent float64       `json:"return_percent"`
	Allocation    []Allocation  `json:"allocation"`
	ByType        []TypeSummary `json:"by_type"`
}

type typeTotals struct {
	count   int
	amount  decimal.Decimal
	current decimal.Decimal
}

// SummarizeInvestments aggregates holdings per type. Allocation is by current
// value and its percentages always add up to exactly 100.0.
func SummarizeInvestments(invs []Investment) InvestmentSummary {
	out := InvestmentSummary{Count: len(invs), Allocation: []Allocation{}, ByType: []TypeSummary{}}
	if len(invs) == 0 {
		return out
	}

	totals := map[InvestmentType]*typeTotals{}
	var invested, current decimal.Decimal
	for _, inv := range invs {
		t := inv.InvestmentType
		if t == "" {
			t = InvestmentOther
		}
		tt, ok := totals[t]
		if !ok {
			tt = &typeTotals{}
			totals[t] = tt
		}
		amount, value := dec(inv.Amount), dec(inv.CurrentValue)
		tt.count++
		tt.amount = tt.amount.Add(amount)
		tt.current = tt.current.Add(value)
		invested = invested.Add(amount)
		current = current.Add(value)
	}

	types := make([]InvestmentType, 0, len(totals))
	for t := range totals {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		ci, cj := totals[types[i]].current, totals[types[j]].current
		if !ci.Equal(cj) {
			return ci.GreaterThan(cj)
		}
		return types[i] < types[j]
	})

	// Allocation falls back to invested amounts when nothing has a current value.
	weights := make([]decimal.Decimal, len(types))
	for i, t := range types {
		weights[i] = totals[t].current
	}
	if sumPositive(weights).IsZero() {
		for i, t := range types {
			weights[i] = totals[t].amount
		}
	}
	percents := AllocatePercents(weights)

	for i, t := range types {
		tt := totals[t]
		out.Allocation = append(out.Allocation, Allocation{Type: t, Value: money(tt.current), Percent: percents[i]})
		ts := TypeSummary{
			Type:         t,
			Count:        tt.count,
			Amount:       money(tt.amount),
			CurrentValue: money(tt.current),
			GainLoss:     money(tt.current.Sub(tt.amount)),
			GainLossPct:  ReturnPercent(tt.amount, tt.current),
		}
		if invested.IsPositive() {
			ts.SharePercent = tt.amount.Div(invested).Mul(hundred).Round(1).InexactFloat64()
		}
		out.ByType = append(out.ByType, ts)
	}

	out.TotalInvested = money(invested)
	out.CurrentValue = money(current)
	out.GainLoss = money(current.Sub(invested))
	out.ReturnPercent = ReturnPercent(invested, current)
	return out
}

// ReturnPercent is (current - invested) / invested * 100 rounded to 2 places.
func ReturnPercent(invested, current decimal.Decimal) float64 {
	if !invested.IsPositive() {
		return 0
	}
	return current.Sub(invested).Div(invested).Mul(hundred).Round(2).InexactFloat64()
}

func sumPositive(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		if d.IsPositive() {
			total = total.Add(d)
		}
	}
	return total
}

// AllocatePercents splits 100% across weights with one decimal place using
// largest-remainder rounding. Negative weights count as zero. When every
// weight is zero the split is even.
func AllocatePercents(weights []decimal.Decimal) []float64 {
	n := len(weights)
	if n == 0 {
		return nil
	}
	const scale = 1000 // tenths of a percent
	units := make([]int64, n)
	total := sumPositive(weights)

	type remainder struct {
		idx  int
		frac decimal.Decimal
	}
	rems := make([]remainder, n)
	var assigned int64
	for i, w := range weights {
		var raw decimal.Decimal
		switch {
		case total.IsZero():
			raw = decimal.NewFromInt(scale).Div(decimal.NewFromInt(int64(n)))
		case w.IsPositive():
			raw = w.Mul(decimal.NewFromInt(scale)).Div(total)
		}
		floor := raw.Floor()
		units[i] = floor.IntPart()
		assigned += units[i]
		rems[i] = remainder{idx: i, frac: raw.Sub(floor)}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac.GreaterThan(rems[j].frac) })
	for k := int64(0); k < scale-assigned; k++ {
		units[rems[int(k)%n].idx]++
	}

	out := make([]float64, n)
	for i, u := range units {
		out[i] = float64(u) / 10
	}
	return out
}

type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
	Count    int     `json:"count"`
}

type TransactionSummary struct {
	Months           int             `json:"months"`
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	TransactionCount int             `json:"transaction_count"`
	TotalSpending    float64         `json:"total_spending"`
	TotalIncome      float64         `json:"total_income"`
	AverageMonthly   float64         `json:"average_monthly_spending"`
	Categories       []CategorySpend `json:"categories"`
	Largest          *Transaction    `json:"largest_transaction,omitempty"`
}

func categoryOf(t Transaction) string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return "Uncategorized"
}

// spendByCategory sums expense magnitudes per category, largest first.
func spendByCategory(txs []Transaction) ([]CategorySpend, decimal.Decimal) {
	sums := map[string]decimal.Decimal{}
	counts := map[string]int{}
	total := decimal.Zero
	for _, t := range txs {
		if !t.IsExpense() {
			continue
		}
		amt := dec(t.Amount).Abs()
		c := categoryOf(t)
		sums[c] = sums[c].Add(amt)
		counts[c]++
		total = total.Add(amt)
	}
	out := make([]CategorySpend, 0, len(sums))
	for c, sum := range sums {
		cs := CategorySpend{Category: c, Amount: money(sum), Count: counts[c]}
		if total.IsPositive() {
			cs.Percent = sum.Div(total).Mul(hundred).Round(1).InexactFloat64()
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out, total
}

// SummarizeTransactions reports spending over the given transactions,
// which callers have already limited to the last months months.
func SummarizeTransactions(txs []Transaction, months int, from, to time.Time) TransactionSummary {
	if months <= 0 {
		months = 3
	}
	out := TransactionSummary{Months: months, From: from, To: to, TransactionCount: len(txs), Categories: []CategorySpend{}}
	cats, spending := spendByCategory(txs)
	out.Categories = cats
	out.TotalSpending = money(spending)
	out.AverageMonthly = money(spending.Div(decimal.NewFromInt(int64(months))))

	income := decimal.Zero
	var largest *Transaction
	for i := range txs {
		t := txs[i]
		if !t.IsExpense() {
			income = income.Add(dec(t.Amount).Abs())
		}
		if largest == nil || math.Abs(Clean(t.Amount)) > math.Abs(Clean(largest.Amount)) {
			largest = &txs[i]
		}
	}
	out.TotalIncome = money(income)
	if largest != nil {
		l := *largest
		out.Largest = &l
	}
	return out
}

// SpendingInsights are the statistics rendered into a user's advisor prompt.
type SpendingInsights struct {
	WindowDays           int             `json:"window_days"`
	Recent               []Transaction   `json:"recent"`
	MonthlySpending      float64         `json:"monthly_spending"`
	LargestExpense       *Transaction    `json:"largest_expense,omitempty"`
	MostFrequentCategory string          `json:"most_frequent_category,omitempty"`
	TopCategories        []CategorySpend `json:"top_categories"`
	Recurring            []string        `json:"recurring_merchants"`
	Unusual              []Transaction   `json:"unusual"`
}

// AnalyzeRecent looks at the days-long window ending at the newest
// transaction. Recent is sorted newest first.
func AnalyzeRecent(txs []Transaction, days int) SpendingInsights {
	if days <= 0 {
		days = 30
	}
	out := SpendingInsights{WindowDays: days, Recent: []Transaction{}, TopCategories: []CategorySpend{}, Recurring: []string{}, Unusual: []Transaction{}}
	if len(txs) == 0 {
		return out
	}
	var newest time.Time
	for _, t := range txs {
		if t.Date.After(newest) {
			newest = t.Date
		}
	}
	cutoff := newest.AddDate(0, 0, -days)
	for _, t := range txs {
		if !t.Date.Before(cutoff) {
			out.Recent = append(out.Recent, t)
		}
	}
	sort.SliceStable(out.Recent, func(i, j int) bool { return out.Recent[i].Date.After(out.Recent[j].Date) })

	cats, spending := spendByCategory(out.Recent)
	out.MonthlySpending = money(spending)
	if len(cats) > 3 {
		cats = cats[:3]
	}
	out.TopCategories = cats

	freq := map[string]int{}
	merchants := map[string]int{}
	absSum := decimal.Zero
	for i, t := range out.Recent {
		absSum = absSum.Add(dec(t.Amount).Abs())
		if m := strings.TrimSpace(t.Merchant); m != "" {
			merchants[m]++
		}
		if !t.IsExpense() {
			continue
		}
		freq[categoryOf(t)]++
		if out.LargestExpense == nil || math.Abs(Clean(t.Amount)) > math.Abs(Clean(out.LargestExpense.Amount)) {
			e := out.Recent[i]
			out.LargestExpense = &e
		}
	}
	out.MostFrequentCategory = mostFrequent(freq)
	for m, n := range merchants {
		if n >= 2 {
			out.Recurring = append(out.Recurring, m)
		}
	}
	sort.Strings(out.Recurring)

	mean := absSum.Div(decimal.NewFromInt(int64(len(out.Recent))))
	threshold := mean.Mul(decimal.NewFromInt(2))
	for _, t := range out.Recent {
		if dec(t.Amount).Abs().GreaterThan(threshold) {
			out.Unusual = append(out.Unusual, t)
		}
	}
	return out
}

func mostFrequent(freq map[string]int) string {
	best, bestN := "", 0
	for k, n := range freq {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}
