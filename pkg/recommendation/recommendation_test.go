package recommendation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/financial"
	"github.com/artem13815/finadvisor/pkg/llm"
	"github.com/artem13815/finadvisor/pkg/metaprompt"
)

var catalogue = []financial.Product{
	{ID: 1, Name: "High-Yield Savings Account", Category: "savings", Description: "Savings account with competitive interest for an emergency fund."},
	{ID: 2, Name: "Retirement Planning IRA", Category: "retirement", Description: "Tax advantaged retirement account for long term retirement savings."},
	{ID: 3, Name: "Credit Builder Card", Category: "credit", Description: "Secured credit card to rebuild credit history and credit score."},
	{ID: 4, Name: "Personal Investment Account", Category: "investment", Description: "Invest in stocks, bonds, ETFs and mutual funds."},
	{ID: 5, Name: "Auto Loan", Category: "loan", Description: "Financing for new and used vehicles."},
	{ID: 6, Name: "Home Mortgage Loan", Category: "loan", Description: "Fixed rate mortgage for buying a home."},
}

type memRepo struct {
	mu       sync.Mutex
	records  []Record
	feedback []Feedback
}

func (m *memRepo) SaveRecord(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memRepo) GetRecord(_ context.Context, id uuid.UUID) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *memRepo) ListRecords(_ context.Context, userID string, limit, offset int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) SaveFeedback(_ context.Context, f Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, f)
	return nil
}

func (m *memRepo) AverageRatings(_ context.Context, userID string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums, counts := map[string]float64{}, map[string]float64{}
	for _, f := range m.feedback {
		if f.UserID == userID {
			sums[f.ProductName] += float64(f.Rating)
			counts[f.ProductName]++
		}
	}
	out := map[string]float64{}
	for k, v := range sums {
		out[k] = v / counts[k]
	}
	return out, nil
}

type promptStore map[string]string

func (p promptStore) Save(context.Context, metaprompt.MetaPrompt) error { return nil }

func (p promptStore) Get(_ context.Context, userID string) (metaprompt.MetaPrompt, error) {
	text, ok := p[userID]
	if !ok {
		return metaprompt.MetaPrompt{}, metaprompt.ErrNotFound
	}
	return metaprompt.MetaPrompt{UserID: userID, Prompt: text}, nil
}

type fixedModel struct {
	text string
	err  error
}

func (f fixedModel) Generate(context.Context, []llm.Message) (string, error) { return f.text, f.err }

func quiet() Option { return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))) }

func TestIndexSearchRanksBySimilarity(t *testing.T) {
	idx := NewIndex(catalogue)
	got := idx.Search("I want to rebuild my credit score", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Credit Builder Card", got[0].Product.Name)
	assert.Greater(t, got[0].Score, got[1].Score)

	assert.Empty(t, NewIndex(nil).Search("anything", 3))
	assert.Len(t, idx.Search("", 3), 3)
}

func TestParseRerank(t *testing.T) {
	candidates := NewIndex(catalogue).Search("retirement savings credit", 5)
	text := `Here are my picks:
1. **Retirement Planning IRA**
   Reason: You are saving for retirement.
   Confidence: 92
2. [Spaceship Fund]
   Reason: Not a real product.
   Confidence: 99
3. High-Yield Savings Account
   Reason: Build an emergency fund.
   Confidence: high
4. Retirement Planning IRA
   Reason: duplicate
   Confidence: 10`

	items := parseRerank(text, candidates)
	require.Len(t, items, 2)
	assert.Equal(t, "Retirement Planning IRA", items[0].Name)
	assert.Equal(t, "You are saving for retirement.", items[0].Reason)
	assert.Equal(t, 92.0, items[0].Score)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, "High-Yield Savings Account", items[1].Name)
	assert.Equal(t, defaultConfidence, items[1].Score)

	padded := pad(items, candidates)
	require.Len(t, padded, topN)
	assert.Equal(t, paddingScore, padded[2].Score)
	assert.Equal(t, paddingReason, padded[2].Reason)
}

func TestRecommendWithoutMetaPromptIsGeneric(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, NewIndex(catalogue), promptStore{}, fixedModel{}, quiet())

	rec, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceGeneric, rec.Source)
	require.Len(t, rec.Items, 3)
	assert.Equal(t, "High-Yield Savings Account", rec.Items[0].Name)
	assert.Equal(t, genericScore, rec.Items[0].Score)
	require.Len(t, repo.records, 1)
}

func TestRecommendDefaultsWithSmallCatalogue(t *testing.T) {
	svc := NewService(&memRepo{}, NewIndex(catalogue[:1]), promptStore{}, fixedModel{}, quiet())
	rec, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rec.Items, 3)
	assert.Equal(t, "Investment Portfolio", rec.Items[1].Name)
	assert.Equal(t, 90.0, rec.Items[0].Score)
}

func TestRecommendReranksWithModel(t *testing.T) {
	prompts := promptStore{"u1": "Client wants retirement savings and a better credit score."}
	model := fixedModel{text: "1. Credit Builder Card\nReason: Improve your score.\nConfidence: 88\n"}
	svc := NewService(&memRepo{}, NewIndex(catalogue), prompts, model, WithRerank(true), quiet())

	rec, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourcePersonalized, rec.Source)
	require.Len(t, rec.Items, 3)
	assert.Equal(t, "Credit Builder Card", rec.Items[0].Name)
	assert.Equal(t, 88.0, rec.Items[0].Score)
	assert.Equal(t, paddingScore, rec.Items[1].Score)
}

func TestRecommendModelErrorFallsBackToGeneric(t *testing.T) {
	prompts := promptStore{"u1": "retirement"}
	svc := NewService(&memRepo{}, NewIndex(catalogue), prompts, fixedModel{err: errors.New("down")}, WithRerank(true), quiet())

	rec, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceGeneric, rec.Source)
}

func TestRecommendUnparseableRerankUsesSimilarity(t *testing.T) {
	prompts := promptStore{"u1": "mortgage to buy a home"}
	model := fixedModel{text: "Based on general investment principles, it's usually a good idea to diversify your portfolio."}
	svc := NewService(&memRepo{}, NewIndex(catalogue), prompts, model, WithRerank(true), quiet())

	rec, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceSimilarity, rec.Source)
	require.NotEmpty(t, rec.Items)
	assert.Equal(t, "Home Mortgage Loan", rec.Items[0].Name)
	assert.NotEqual(t, paddingReason, rec.Items[0].Reason)
}

func TestRecommendBySimilarityWithoutRerank(t *testing.T) {
	prompts := promptStore{"u1": "mortgage to buy a home"}
	svc := NewService(&memRepo{}, NewIndex(catalogue), prompts, fixedModel{}, quiet())

	rec, err := svc.Recommend(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SourceSimilarity, rec.Source)
	assert.Equal(t, "Home Mortgage Loan", rec.Items[0].Name)
	for _, it := range rec.Items {
		assert.GreaterOrEqual(t, it.Score, 60.0)
		assert.LessOrEqual(t, it.Score, 100.0)
	}
}

func TestFeedbackAdjustsScoresWithRLHF(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, NewIndex(catalogue), promptStore{}, fixedModel{}, WithRLHF(true), quiet())
	ctx := context.Background()

	first, err := svc.Recommend(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.Feedback(ctx, "u1", FeedbackInput{RecommendationID: first.ID.String(), ProductName: "Credit Builder Card", Rating: 5})
	require.NoError(t, err)
	_, err = svc.Feedback(ctx, "u1", FeedbackInput{ProductName: "High-Yield Savings Account", Rating: 1, Comment: "not for me"})
	require.NoError(t, err)

	rec, err := svc.Recommend(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rec.Items, 3)
	assert.Equal(t, "Credit Builder Card", rec.Items[0].Name)
	assert.Equal(t, 95.0, rec.Items[0].Score)
	assert.Equal(t, "High-Yield Savings Account", rec.Items[2].Name)
	assert.Equal(t, 55.0, rec.Items[2].Score)
}

func TestFeedbackValidation(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, NewIndex(catalogue), promptStore{}, fixedModel{}, quiet())
	ctx := context.Background()

	_, err := svc.Feedback(ctx, "u1", FeedbackInput{ProductName: "Auto Loan", Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = svc.Feedback(ctx, "u1", FeedbackInput{Rating: 3})
	assert.ErrorIs(t, err, ErrProductName)

	other, err := svc.Recommend(ctx, "u2")
	require.NoError(t, err)
	_, err = svc.Feedback(ctx, "u1", FeedbackInput{RecommendationID: other.ID.String(), ProductName: "Auto Loan", Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Feedback(ctx, "u1", FeedbackInput{RecommendationID: "nope", ProductName: "Auto Loan", Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.feedback)
}

func TestHistoryDefaultsToFive(t *testing.T) {
	repo := &memRepo{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		repo.records = append(repo.records, Record{ID: uuid.New(), UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	svc := NewService(repo, nil, promptStore{}, fixedModel{}, quiet())

	got, err := svc.History(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, got, DefaultHistoryLimit)
	assert.Equal(t, base.Add(6*time.Hour), got[0].CreatedAt)
}
