package metaprompt

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/artem13815/finadvisor/pkg/financial"
	"github.com/artem13815/finadvisor/pkg/nlp"
)

const (
	unknown              = "Unknown"
	noInvestments        = "No current investments"
	noTransactions       = "No recent transactions"
	noSocialData         = "No social media data available"
	transactionListLimit = 5
)

// FormatMoney renders an amount as $1,234.50.
func FormatMoney(f float64) string {
	f = financial.Clean(f)
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", f)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

func intOrUnknown(n int) string {
	if n <= 0 {
		return unknown
	}
	return fmt.Sprint(n)
}

func formatGoals(goals []string) string {
	var clean []string
	for _, g := range goals {
		if g = strings.TrimSpace(g); g != "" {
			clean = append(clean, g)
		}
	}
	if len(clean) == 0 {
		return "No specific financial goals provided"
	}
	return strings.Join(clean, ", ")
}

// utilizationPercent accepts both 0.35 and 35 style values.
func utilizationPercent(u float64) float64 {
	u = financial.Clean(u)
	if u > 0 && u <= 1 {
		return u * 100
	}
	return u
}

// FormatInvestments lists portfolio value, per-type share and overall growth.
func FormatInvestments(invs []financial.Investment) string {
	if len(invs) == 0 {
		return noInvestments
	}
	s := financial.SummarizeInvestments(invs)
	lines := []string{"Total Portfolio Value: " + FormatMoney(s.CurrentValue)}
	for _, a := range s.Allocation {
		lines = append(lines, fmt.Sprintf("%s: %s (%.1f%%)", a.Type, FormatMoney(a.Value), a.Percent))
	}
	if s.TotalInvested > 0 {
		growth := financial.ReturnPercent(decimal.NewFromFloat(s.TotalInvested), decimal.NewFromFloat(s.CurrentValue))
		direction := "positive"
		if growth < 0 {
			direction = "negative"
		}
		lines = append(lines, fmt.Sprintf("Overall Growth: %.1f%% (%s)", growth, direction))
	}
	return strings.Join(lines, "\n")
}

func formatTransaction(t financial.Transaction) string {
	date := "Unknown date"
	if !t.Date.IsZero() {
		date = t.Date.Format("2006-01-02")
	}
	category := t.Category
	if category == "" {
		category = "Uncategorized"
	}
	merchant := t.Merchant
	if merchant == "" {
		merchant = "Unknown merchant"
	}
	return fmt.Sprintf("Date: %s\nAmount: %s\nCategory: %s\nMerchant: %s", date, FormatMoney(t.Amount), category, merchant)
}

// FormatTransactions lists up to five transactions and a count of the rest.
func FormatTransactions(txs []financial.Transaction) string {
	if len(txs) == 0 {
		return noTransactions
	}
	var parts []string
	for i, t := range txs {
		if i == transactionListLimit {
			break
		}
		parts = append(parts, formatTransaction(t))
	}
	if len(txs) > transactionListLimit {
		parts = append(parts, fmt.Sprintf("...and %d more transactions", len(txs)-transactionListLimit))
	}
	return strings.Join(parts, "\n\n")
}

func describeExpense(t *financial.Transaction) string {
	if t == nil {
		return "None"
	}
	out := FormatMoney(math.Abs(t.Amount))
	if t.Merchant != "" {
		out += " at " + t.Merchant
	}
	if t.Category != "" {
		out += " (" + t.Category + ")"
	}
	return out
}

func describeUnusual(txs []financial.Transaction) string {
	if len(txs) == 0 {
		return "None detected"
	}
	var items []string
	for _, t := range txs {
		items = append(items, describeExpense(&t))
	}
	return fmt.Sprintf("%d transaction(s) above twice the average amount: %s", len(txs), strings.Join(items, "; "))
}

func formatCategories(cats []financial.CategorySpend) string {
	if len(cats) == 0 {
		return "None"
	}
	var items []string
	for _, c := range cats {
		items = append(items, fmt.Sprintf("%s %s (%.1f%%)", c.Category, FormatMoney(c.Amount), c.Percent))
	}
	return strings.Join(items, ", ")
}

// FormatSocial summarises topics, sentiment and financial interests of posts.
func FormatSocial(posts []financial.SocialPost) string {
	if len(posts) == 0 {
		return noSocialData
	}
	topicCounts := map[string]int{}
	sentiments := map[string]int{nlp.Positive: 0, nlp.Neutral: 0, nlp.Negative: 0}
	texts := make([]string, 0, len(posts))
	for _, p := range posts {
		for _, t := range p.Topics {
			if t = strings.TrimSpace(t); t != "" {
				topicCounts[t]++
			}
		}
		s := strings.ToLower(strings.TrimSpace(p.Sentiment))
		if s == "" {
			s = nlp.Sentiment(p.PostText)
		}
		if _, ok := sentiments[s]; ok {
			sentiments[s]++
		}
		texts = append(texts, p.PostText)
	}

	topics := make([]string, 0, len(topicCounts))
	for t := range topicCounts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topicCounts[topics[i]] != topicCounts[topics[j]] {
			return topicCounts[topics[i]] > topicCounts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > 3 {
		topics = topics[:3]
	}
	topicStr := "None identified"
	if len(topics) > 0 {
		topicStr = strings.Join(topics, ", ")
	}

	dominant := nlp.Positive
	for _, s := range []string{nlp.Neutral, nlp.Negative} {
		if sentiments[s] > sentiments[dominant] {
			dominant = s
		}
	}
	interests := nlp.FinancialInterests(texts...)
	interestStr := "None explicitly mentioned"
	if len(interests) > 0 {
		interestStr = strings.Join(interests, ", ")
	}

	return fmt.Sprintf("Primary Interest Areas: %s\nOverall Sentiment: %s (Positive/Neutral/Negative ratio: %d/%d/%d)\nFinancial Topics: %s",
		topicStr, strings.ToUpper(dominant[:1])+dominant[1:],
		sentiments[nlp.Positive], sentiments[nlp.Neutral], sentiments[nlp.Negative], interestStr)
}
