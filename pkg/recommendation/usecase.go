package recommendation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/llm"
	"github.com/artem13815/finadvisor/pkg/metaprompt"
)

const (
	DefaultHistoryLimit = 5
	genericScore        = 75.0
	genericReason       = "This is a popular financial product that may meet your needs."
)

// defaults are served when the catalogue is too small to recommend from.
var defaults = []Item{
	{
		Name:        "High-Yield Savings Account",
		Description: "A savings account with competitive interest rates and no monthly fees.",
		Reason:      "Recommended as a safe option for all users",
		Score:       90,
	},
	{
		Name:        "Investment Portfolio",
		Description: "A diversified investment portfolio tailored to your goals.",
		Reason:      "General recommendation for long-term growth",
		Score:       85,
	},
	{
		Name:        "Travel Rewards Credit Card",
		Description: "Earn points on purchases and get travel benefits.",
		Reason:      "Popular choice for most customers",
		Score:       75,
	},
}

type FeedbackInput struct {
	RecommendationID string `json:"recommendation_id"`
	ProductName      string `json:"product_name"`
	Rating           int    `json:"rating"`
	Comment          string `json:"feedback"`
}

type UseCase interface {
	Recommend(ctx context.Context, userID string) (Record, error)
	History(ctx context.Context, userID string, limit, offset int) ([]Record, error)
	Feedback(ctx context.Context, userID string, in FeedbackInput) (Feedback, error)
}

type service struct {
	repo    Repository
	index   *Index
	prompts metaprompt.Store
	model   llm.ChatModel
	rerank  bool
	rlhf    bool
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*service)

// WithRerank asks the model to order the similarity candidates.
func WithRerank(enabled bool) Option { return func(s *service) { s.rerank = enabled } }

// WithRLHF shifts scores by the user's past ratings of each product.
func WithRLHF(enabled bool) Option { return func(s *service) { s.rlhf = enabled } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func NewService(repo Repository, index *Index, prompts metaprompt.Store, model llm.ChatModel, opts ...Option) UseCase {
	if index == nil {
		index = NewIndex(nil)
	}
	s := &service{
		repo:    repo,
		index:   index,
		prompts: prompts,
		model:   model,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Recommend(ctx context.Context, userID string) (Record, error) {
	items, source := s.personalized(ctx, userID)
	if s.rlhf {
		items = s.applyRatings(ctx, userID, items)
	}
	rec := Record{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     items,
		Source:    source,
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveRecord(ctx, rec); err != nil {
		s.log.Error("save recommendations", "user_id", userID, "error", err)
	}
	return rec, nil
}

func (s *service) personalized(ctx context.Context, userID string) ([]Item, Source) {
	mp, err := s.prompts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, metaprompt.ErrNotFound) {
			s.log.Warn("load meta prompt for recommendations", "user_id", userID, "error", err)
		}
		return s.generic(), SourceGeneric
	}
	candidates := s.index.Search(mp.Prompt, candidateCount)
	if len(candidates) == 0 {
		return s.generic(), SourceGeneric
	}
	if !s.rerank {
		return bySimilarity(candidates), SourceSimilarity
	}

	text, err := llm.GenerateForPrompt(ctx, s.model, rerankPrompt(mp.Prompt, candidates), rerankSystem)
	if err != nil {
		s.log.Warn("rerank recommendations", "user_id", userID, "error", err)
		return s.generic(), SourceGeneric
	}
	// A degraded model answers with canned text instead of an error.
	picked := parseRerank(text, candidates)
	if len(picked) == 0 {
		s.log.Warn("rerank named no catalogue product, using similarity", "user_id", userID)
		return bySimilarity(candidates), SourceSimilarity
	}
	return pad(picked, candidates), SourcePersonalized
}

// bySimilarity scores the best candidates on a 60-100 scale.
func bySimilarity(candidates []Match) []Item {
	n := min(topN, len(candidates))
	items := make([]Item, 0, n)
	for _, c := range candidates[:n] {
		items = append(items, Item{
			ProductID:   c.Product.ID,
			Name:        c.Product.Name,
			Description: c.Product.Description,
			Reason:      "Closely matches your financial profile.",
			Score:       math.Round((60+40*c.Score)*10) / 10,
		})
	}
	return items
}

func (s *service) generic() []Item {
	products := s.index.Products()
	if len(products) < topN {
		return append([]Item(nil), defaults...)
	}
	items := make([]Item, 0, topN)
	for _, p := range products[:topN] {
		items = append(items, Item{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Reason:      genericReason,
			Score:       genericScore,
		})
	}
	return items
}

// applyRatings moves each score by 10 points per star above or below 3.
func (s *service) applyRatings(ctx context.Context, userID string, items []Item) []Item {
	ratings, err := s.repo.AverageRatings(ctx, userID)
	if err != nil {
		s.log.Warn("load feedback ratings", "user_id", userID, "error", err)
		return items
	}
	if len(ratings) == 0 {
		return items
	}
	for i := range items {
		if avg, ok := ratings[items[i].Name]; ok {
			items[i].Score = clampScore(math.Round((items[i].Score+(avg-3)*10)*10) / 10)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	return items
}

func (s *service) History(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListRecords(ctx, userID, limit, offset)
}

func (s *service) Feedback(ctx context.Context, userID string, in FeedbackInput) (Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return Feedback{}, ErrInvalidRating
	}
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return Feedback{}, ErrProductName
	}
	fb := Feedback{
		ID:          uuid.New(),
		UserID:      userID,
		ProductName: name,
		Rating:      in.Rating,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   s.now(),
	}
	if raw := strings.TrimSpace(in.RecommendationID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Feedback{}, ErrNotFound
		}
		rec, err := s.repo.GetRecord(ctx, id)
		if err != nil {
			return Feedback{}, err
		}
		if rec.UserID != userID {
			return Feedback{}, ErrNotFound
		}
		fb.RecommendationID = &id
	}
	if err := s.repo.SaveFeedback(ctx, fb); err != nil {
		return Feedback{}, fmt.Errorf("save feedback: %w", err)
	}
	return fb, nil
}
