package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/auth"
	"github.com/artem13815/finadvisor/pkg/chat"
	"github.com/artem13815/finadvisor/pkg/financial"
	"github.com/artem13815/finadvisor/pkg/llm"
	"github.com/artem13815/finadvisor/pkg/onboarding"
	pgstore "github.com/artem13815/finadvisor/pkg/storage/postgres"
)

// testPool migrates and empties the database named by TEST_DATABASE_URL.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	m, err := pgstore.NewMigrator(dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	pool, err := pgstore.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE users, conversations, chat_messages, onboarding_sessions,
		demographic_data, investment_data, transaction_data, products CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestUserRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	u := auth.User{ID: uuid.New(), UserID: "U1", Email: "Jane@Example.com", PasswordHash: "h", IsActive: true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, repo.Create(ctx, u))

	dup := u
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, dup), auth.ErrUserAlreadyExists)

	got, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "U1", got.UserID)
	assert.Nil(t, got.LastLoginAt)

	require.NoError(t, repo.UpdateLastLogin(ctx, u.ID, time.Now().UTC()))
	got, err = repo.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)

	_, err = repo.GetByUserID(ctx, "missing")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestChatRepository(t *testing.T) {
	pool := testPool(t)
	repo := NewChatRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	conv := chat.Conversation{ID: uuid.New(), UserID: "U1", Title: chat.DefaultTitle, IsActive: true,
		CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateConversation(ctx, conv))
	for i, content := range []string{"one", "two", "three"} {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		require.NoError(t, repo.AddMessage(ctx, chat.Message{ID: uuid.New(), ConversationID: conv.ID, Role: role,
			Content: content, CreatedAt: now.Add(time.Duration(i) * time.Second)}))
	}

	recent, err := repo.RecentMessages(ctx, conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)

	list, err := repo.ListConversations(ctx, "U1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].MessageCount)

	require.NoError(t, repo.DeleteConversation(ctx, conv.ID))
	_, err = repo.GetConversation(ctx, conv.ID)
	assert.ErrorIs(t, err, chat.ErrNotFound)
}

func TestDatasetCopyAndFinancialReads(t *testing.T) {
	pool := testPool(t)
	ds := NewDatasetRepository(pool)
	fin := NewFinancialRepository(pool)
	ctx := context.Background()

	n, err := ds.Count(ctx, "transaction_data")
	require.NoError(t, err)
	assert.Zero(t, n)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = ds.Copy(ctx, "transaction_data",
		[]string{"transaction_id", "user_id", "date", "amount", "merchant", "category", "transaction_type"},
		[][]any{
			{"T1", "U1", day, -42.5, "Cafe", "Dining", "debit"},
			{"T2", "U1", day.AddDate(0, 0, 1), 1000.0, "Employer", "Salary", "credit"},
		})
	require.NoError(t, err)

	txs, err := fin.ListTransactions(ctx, "U1", financial.TransactionFilter{Category: "dining"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "T1", txs[0].ID)
	assert.InDelta(t, -42.5, txs[0].Amount, 1e-9)

	_, err = fin.GetDemographic(ctx, "U1")
	assert.ErrorIs(t, err, financial.ErrNotFound)
}

func TestInvestmentRoundTrip(t *testing.T) {
	pool := testPool(t)
	uc := financial.NewService(NewFinancialRepository(pool))
	ctx := context.Background()

	current := 99.994
	created, err := uc.CreateInvestment(ctx, "U1", financial.InvestmentInput{
		InvestmentType: "stocks",
		Name:           "Index fund",
		Amount:         100.005,
		CurrentValue:   &current,
		Metadata:       map[string]any{"broker": "acme"},
	})
	require.NoError(t, err)

	got, err := uc.GetInvestment(ctx, "U1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Amount, got.Amount)
	assert.Equal(t, created.CurrentValue, got.CurrentValue)
	assert.Equal(t, created.InvestmentType, got.InvestmentType)
	assert.Equal(t, "acme", got.Metadata["broker"])

	amount := 250.125
	updated, err := uc.UpdateInvestment(ctx, "U1", created.ID, financial.InvestmentPatch{Amount: &amount})
	require.NoError(t, err)
	got, err = uc.GetInvestment(ctx, "U1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Amount, got.Amount)

	_, err = uc.GetInvestment(ctx, "U2", created.ID)
	assert.ErrorIs(t, err, financial.ErrForbidden)

	require.NoError(t, uc.DeleteInvestment(ctx, "U1", created.ID))
	_, err = uc.GetInvestment(ctx, "U1", created.ID)
	assert.ErrorIs(t, err, financial.ErrNotFound)
}

func TestOnboardingRepositoryExpiry(t *testing.T) {
	pool := testPool(t)
	repo := NewOnboardingRepository(pool)
	ctx := context.Background()

	s := onboarding.Session{ID: uuid.New(), UserID: "U1", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	require.NoError(t, repo.Save(ctx, s, time.Hour))
	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "U1", got.UserID)

	expired := onboarding.Session{ID: uuid.New(), UserID: "U1"}
	require.NoError(t, repo.Save(ctx, expired, -time.Minute))
	_, err = repo.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, onboarding.ErrNotFound)
}
