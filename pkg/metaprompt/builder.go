// Package metaprompt assembles a user's financial records into the system
// prompt used for personalised advice.
package metaprompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/artem13815/finadvisor/pkg/financial"
)

const (
	transactionWindowDays = 30
	transactionFetchLimit = 500
	socialPostLimit       = 20
)

// GenericPrompt is used when nothing is known about the user.
const GenericPrompt = `You are a helpful financial wellness assistant. The user's detailed financial profile is not available yet, so:
1. Ask clarifying questions about their income, expenses, goals, and risk tolerance before giving specific recommendations
2. Give general, widely accepted financial guidance (emergency funds, budgeting, diversification, paying down high-interest debt)
3. Explain financial concepts in clear, simple language
4. Encourage them to share more about their situation so the advice can become personal`

// Builder renders and caches meta-prompts.
type Builder struct {
	src    financial.Repository
	store  Store
	social bool
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Builder)

// WithSocialInsights toggles the social media section.
func WithSocialInsights(enabled bool) Option { return func(b *Builder) { b.social = enabled } }

func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.log = l } }

func NewBuilder(src financial.Repository, store Store, opts ...Option) *Builder {
	b := &Builder{
		src:    src,
		store:  store,
		social: true,
		log:    slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Gather loads every record for userID. Lookup failures are logged and the
// collection is treated as missing.
func (b *Builder) Gather(ctx context.Context, userID string) financial.Profile {
	p := financial.Profile{UserID: userID}
	if d, err := b.src.GetDemographic(ctx, userID); err == nil {
		p.Demographic = &d
	} else {
		b.missing("demographics", userID, err)
	}
	if a, err := b.src.GetAccount(ctx, userID); err == nil {
		p.Account = &a
	} else {
		b.missing("account", userID, err)
	}
	if c, err := b.src.GetCreditHistory(ctx, userID); err == nil {
		p.Credit = &c
	} else {
		b.missing("credit history", userID, err)
	}
	if invs, err := b.src.ListInvestments(ctx, userID, ""); err == nil {
		p.Investments = invs
	} else {
		b.missing("investments", userID, err)
	}
	if txs, err := b.src.ListTransactions(ctx, userID, financial.TransactionFilter{Limit: transactionFetchLimit}); err == nil {
		p.Transactions = txs
	} else {
		b.missing("transactions", userID, err)
	}
	if b.social {
		if posts, err := b.src.ListSocialPosts(ctx, userID, socialPostLimit); err == nil {
			p.SocialPosts = posts
		} else {
			b.missing("social posts", userID, err)
		}
	}
	return p
}

func (b *Builder) missing(what, userID string, err error) {
	if errors.Is(err, financial.ErrNotFound) {
		return
	}
	b.log.Warn("meta prompt: record lookup failed", "collection", what, "user_id", userID, "error", err)
}

// Build renders a prompt without persisting it.
func (b *Builder) Build(ctx context.Context, userID string) MetaPrompt {
	p := b.Gather(ctx, userID)
	return MetaPrompt{
		UserID: userID,
		Prompt: b.Render(p),
		DataPoints: DataPoints{
			Demographics: p.Demographic != nil,
			Account:      p.Account != nil,
			Credit:       p.Credit != nil,
			Investments:  len(p.Investments),
			Transactions: len(p.Transactions),
			SocialPosts:  len(p.SocialPosts),
		},
		GeneratedAt: b.now(),
	}
}

// Generate builds a fresh prompt and stores it.
func (b *Builder) Generate(ctx context.Context, userID string) (MetaPrompt, error) {
	mp := b.Build(ctx, userID)
	if b.store == nil {
		return mp, nil
	}
	if err := b.store.Save(ctx, mp); err != nil {
		return mp, fmt.Errorf("save meta prompt: %w", err)
	}
	return mp, nil
}

// Cached returns the stored prompt, generating one on a miss.
func (b *Builder) Cached(ctx context.Context, userID string) (MetaPrompt, error) {
	if b.store != nil {
		mp, err := b.store.Get(ctx, userID)
		if err == nil {
			return mp, nil
		}
		if !errors.Is(err, ErrNotFound) {
			b.log.Warn("meta prompt cache read failed", "user_id", userID, "error", err)
		}
	}
	return b.Generate(ctx, userID)
}

// SystemPrompt never fails: storage errors degrade to a freshly built prompt.
func (b *Builder) SystemPrompt(ctx context.Context, userID string) string {
	mp, err := b.Cached(ctx, userID)
	if err != nil {
		b.log.Warn("meta prompt unavailable, using uncached prompt", "user_id", userID, "error", err)
	}
	if strings.TrimSpace(mp.Prompt) == "" {
		return GenericPrompt
	}
	return mp.Prompt
}

// Render turns a profile into the advisor system prompt.
func (b *Builder) Render(p financial.Profile) string {
	name := "the client"
	risk := "not specified"
	goals := formatGoals(nil)
	var sb strings.Builder

	if d := p.Demographic; d != nil {
		if strings.TrimSpace(d.Name) != "" {
			name = d.Name
		}
		if d.RiskTolerance != "" {
			risk = d.RiskTolerance
		}
		goals = formatGoals(d.FinancialGoals)
		fmt.Fprintf(&sb, "You are a personalized financial wellness assistant for %s, a %s-year-old %s based in %s. ",
			name, intOrUnknown(d.Age), orUnknown(d.Occupation), orUnknown(d.Location()))
	} else {
		sb.WriteString("You are a personalized financial wellness assistant. ")
	}
	sb.WriteString("When providing recommendations and advice, consider the following comprehensive profile:\n\n")

	writeProfile(&sb, p.Demographic)
	writeFinancialContext(&sb, p)
	writeTransactions(&sb, p.Transactions)
	if b.social {
		sb.WriteString("# SOCIAL MEDIA INSIGHTS\n")
		sb.WriteString(FormatSocial(p.SocialPosts))
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, `# YOUR ROLE AS A FINANCIAL ASSISTANT
Always maintain a helpful, supportive tone while providing personalized financial advice based on the above information. Tailor your recommendations specifically to %[1]s's financial situation, goals, and behavioral patterns.

When responding:
1. Address %[1]s directly and personally
2. Provide advice that aligns with their risk tolerance (%[2]s)
3. Focus on their stated financial goals: %[3]s
4. Reference their specific financial situation and recent activity
5. Make specific, actionable recommendations that match their life circumstances
6. Explain financial concepts in clear language appropriate for someone with %[1]s's background
7. Prioritize long-term financial wellness while addressing immediate concerns

Avoid generic advice that doesn't account for %[1]s's unique situation.`, name, risk, goals)

	if p.Empty() {
		sb.WriteString("\n\n# LIMITED DATA\n")
		sb.WriteString(GenericPrompt)
	}
	return sb.String()
}

func writeProfile(sb *strings.Builder, d *financial.Demographic) {
	sb.WriteString("# USER PROFILE INFORMATION\n")
	if d == nil {
		sb.WriteString("No profile information available\n\n")
		return
	}
	fmt.Fprintf(sb, "Name: %s\nAge: %s\nOccupation: %s\nLocation: %s\nAnnual Income: %s\nAnnual Expenses: %s\nRisk Tolerance: %s\nFinancial Goals: %s\n",
		orUnknown(d.Name), intOrUnknown(d.Age), orUnknown(d.Occupation), orUnknown(d.Location()),
		FormatMoney(d.AnnualIncome), FormatMoney(d.AnnualExpenses), orUnknown(d.RiskTolerance), formatGoals(d.FinancialGoals))
	if d.MaritalStatus != "" || d.Dependents > 0 {
		fmt.Fprintf(sb, "Marital Status: %s\nDependents: %d\n", orUnknown(d.MaritalStatus), d.Dependents)
	}
	sb.WriteString("\n")
}

func writeFinancialContext(sb *strings.Builder, p financial.Profile) {
	sb.WriteString("# FINANCIAL CONTEXT\n## Account Information\n")
	if a := p.Account; a != nil {
		fmt.Fprintf(sb, "Account Type: %s\nChecking Balance: %s\nSavings Balance: %s\nTotal Balance: %s\n",
			orUnknown(a.AccountType), FormatMoney(a.AccountBalance), FormatMoney(a.SavingsBalance),
			FormatMoney(financial.Clean(a.AccountBalance)+financial.Clean(a.SavingsBalance)))
	} else {
		sb.WriteString("No account information available\n")
	}

	sb.WriteString("\n## Credit Information\n")
	if c := p.Credit; c != nil {
		fmt.Fprintf(sb, "Credit Score: %s\nOutstanding Debt: %s\nCredit Utilization: %.1f%%\nPayment History: %s\nCredit Age: %.1f years\n",
			intOrUnknown(c.CreditScore), FormatMoney(c.OutstandingDebt), utilizationPercent(c.CreditUtilization),
			orUnknown(c.PaymentHistory), financial.Clean(c.CreditAgeYears))
	} else {
		sb.WriteString("No credit information available\n")
	}

	sb.WriteString("\n## Investment Portfolio\n")
	sb.WriteString(FormatInvestments(p.Investments))
	sb.WriteString("\n\n")
}

func writeTransactions(sb *strings.Builder, txs []financial.Transaction) {
	in := financial.AnalyzeRecent(txs, transactionWindowDays)
	fmt.Fprintf(sb, "# RECENT TRANSACTIONS (Last %d days)\n", in.WindowDays)
	sb.WriteString(FormatTransactions(in.Recent))
	sb.WriteString("\n\n## Transaction Insights\n")
	mostFrequent := in.MostFrequentCategory
	if mostFrequent == "" {
		mostFrequent = "None"
	}
	recurring := "None"
	if len(in.Recurring) > 0 {
		recurring = strings.Join(in.Recurring, ", ")
	}
	fmt.Fprintf(sb, "Monthly Spending: %s\nTop Categories: %s\nLargest Expense: %s\nMost Frequent Category: %s\nRecurring Payments: %s\nUnusual Activity: %s\n\n",
		FormatMoney(in.MonthlySpending), formatCategories(in.TopCategories), describeExpense(in.LargestExpense),
		mostFrequent, recurring, describeUnusual(in.Unusual))
}

// OnboardingPrompt is the shorter context used while interviewing a new user.
func (b *Builder) OnboardingPrompt(ctx context.Context, userID string) string {
	p := b.Gather(ctx, userID)
	var sb strings.Builder
	sb.WriteString("You are a friendly financial advisor onboarding a new client. Ask one question at a time to learn about their financial goals, timeline, and risk tolerance.\n")
	if d := p.Demographic; d != nil {
		fmt.Fprintf(&sb, "\nClient: %s, age %s, %s, income %s per year.\n",
			orUnknown(d.Name), intOrUnknown(d.Age), orUnknown(d.Occupation), FormatMoney(d.AnnualIncome))
		if len(d.FinancialGoals) > 0 {
			fmt.Fprintf(&sb, "Known goals: %s\n", formatGoals(d.FinancialGoals))
		}
	}
	if a := p.Account; a != nil {
		fmt.Fprintf(&sb, "Balances: checking %s, savings %s.\n", FormatMoney(a.AccountBalance), FormatMoney(a.SavingsBalance))
	}
	if c := p.Credit; c != nil {
		fmt.Fprintf(&sb, "Credit score %s with %s outstanding debt.\n", intOrUnknown(c.CreditScore), FormatMoney(c.OutstandingDebt))
	}
	return sb.String()
}
