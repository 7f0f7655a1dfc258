package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/llm"
)

type memRepo struct {
	mu       sync.Mutex
	convs     map[uuid.UUID]Conversation
	messages  map[uuid.UUID][]Message
	recentErr error
}

func newMemRepo() *memRepo {
	return &memRepo{convs: map[uuid.UUID]Conversation{}, messages: map[uuid.UUID][]Message{}}
}

func (m *memRepo) CreateConversation(_ context.Context, conv Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[conv.ID] = conv
	return nil
}

func (m *memRepo) GetConversation(_ context.Context, id uuid.UUID) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	conv.MessageCount = len(m.messages[id])
	return conv, nil
}

func (m *memRepo) ListConversations(_ context.Context, userID string, limit, offset int) ([]Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Conversation
	for _, c := range m.convs {
		if c.UserID == userID {
			c.MessageCount = len(m.messages[c.ID])
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) UpdateConversation(_ context.Context, conv Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[conv.ID]; !ok {
		return ErrNotFound
	}
	m.convs[conv.ID] = conv
	return nil
}

func (m *memRepo) DeleteConversation(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return ErrNotFound
	}
	delete(m.convs, id)
	delete(m.messages, id)
	return nil
}

func (m *memRepo) AddMessage(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	return nil
}

func (m *memRepo) ListMessages(_ context.Context, id uuid.UUID, limit, offset int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	all := m.messages[id]
	if offset >= len(all) {
		return []Message{}, nil
	}
	out := append([]Message(nil), all[offset:]...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) RecentMessages(_ context.Context, id uuid.UUID, n int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.messages[id]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return append([]Message(nil), all...), nil
}

func (m *memRepo) count(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[id])
}

type staticPrompt string

func (p staticPrompt) SystemPrompt(context.Context, string) string { return string(p) }

type recordingModel struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (r *recordingModel) Name() string { return "recording" }

func (r *recordingModel) Generate(_ context.Context, msgs []llm.Message) (string, error) {
	r.calls = append(r.calls, msgs)
	return r.reply, r.err
}

func newTestService(repo Repository, model llm.ChatModel, opts ...Option) UseCase {
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewService(repo, model, staticPrompt("you are an advisor"), opts...)
}

func TestCreateWithInitialMessage(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{reply: "hi"})

	d, err := svc.Create(context.Background(), "u1", CreateInput{InitialMessage: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, d.Title)
	assert.True(t, d.IsActive)
	require.Len(t, d.Messages, 1)
	assert.Equal(t, llm.RoleUser, d.Messages[0].Role)
	assert.Equal(t, "hello", d.Messages[0].Content)
	assert.Equal(t, 1, repo.count(d.ID))
}

func TestSendStoresUserAndAssistantMessages(t *testing.T) {
	repo := newMemRepo()
	model := &recordingModel{reply: "Consider an index fund."}
	svc := newTestService(repo, model)
	ctx := context.Background()

	d, err := svc.Create(ctx, "u1", CreateInput{Title: "Investing"})
	require.NoError(t, err)

	msg, err := svc.Send(ctx, "u1", d.ID, "How should I invest?")
	require.NoError(t, err)
	assert.Equal(t, llm.RoleAssistant, msg.Role)
	assert.Equal(t, "Consider an index fund.", msg.Content)
	assert.Equal(t, true, msg.Metadata["generated"])
	assert.Equal(t, "recording", msg.Metadata["provider"])

	require.Len(t, model.calls, 1)
	sent := model.calls[0]
	require.Len(t, sent, 2)
	assert.Equal(t, llm.RoleSystem, sent[0].Role)
	assert.Equal(t, "you are an advisor", sent[0].Content)
	assert.Equal(t, "How should I invest?", sent[1].Content)

	msgs, err := svc.Messages(ctx, "u1", d.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
}

func TestSendToForeignConversationIsForbiddenAndDoesNotMutate(t *testing.T) {
	repo := newMemRepo()
	model := &recordingModel{reply: "x"}
	svc := newTestService(repo, model)
	ctx := context.Background()

	d, err := svc.Create(ctx, "owner", CreateInput{InitialMessage: "first"})
	require.NoError(t, err)

	_, err = svc.Send(ctx, "intruder", d.ID, "let me in")
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 1, repo.count(d.ID))
	assert.Empty(t, model.calls)

	_, err = svc.Messages(ctx, "intruder", d.ID, 0, 0)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "intruder", d.ID), ErrForbidden)
}

func TestSendToUnknownConversation(t *testing.T) {
	svc := newTestService(newMemRepo(), &recordingModel{reply: "x"})
	_, err := svc.Send(context.Background(), "u1", uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{reply: "x"})
	d, err := svc.Create(context.Background(), "u1", CreateInput{})
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), "u1", d.ID, "   ")
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, 0, repo.count(d.ID))
}

func TestSendModelFailureAddsExactlyOneFallbackMessage(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{err: errors.New("upstream down")})
	ctx := context.Background()

	d, err := svc.Create(ctx, "u1", CreateInput{})
	require.NoError(t, err)

	msg, err := svc.Send(ctx, "u1", d.ID, "hello?")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, msg.Content)
	assert.Equal(t, true, msg.Metadata["fallback"])
	assert.NotContains(t, msg.Metadata, "error")

	msgs, err := svc.Messages(ctx, "u1", d.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assistants := 0
	for _, m := range msgs {
		if m.Role == llm.RoleAssistant {
			assistants++
		}
	}
	assert.Equal(t, 1, assistants)
}

func TestSendContextLoadFailureHidesCause(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{reply: "unused"})
	ctx := context.Background()

	d, err := svc.Create(ctx, "u1", CreateInput{})
	require.NoError(t, err)
	repo.recentErr = errors.New(`ERROR: relation "chat_messages" does not exist (SQLSTATE 42P01)`)

	msg, err := svc.Send(ctx, "u1", d.ID, "hello?")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, msg.Content)
	assert.Equal(t, map[string]any{"fallback": true}, msg.Metadata)
}

func TestSendEmptyModelOutputFallsBack(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{reply: "  "})
	d, err := svc.Create(context.Background(), "u1", CreateInput{})
	require.NoError(t, err)

	msg, err := svc.Send(context.Background(), "u1", d.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, msg.Content)
}

func TestSendUsesBoundedContextWindow(t *testing.T) {
	repo := newMemRepo()
	model := &recordingModel{reply: "ok"}
	svc := newTestService(repo, model, WithContextWindow(4))
	ctx := context.Background()

	d, err := svc.Create(ctx, "u1", CreateInput{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, "u1", d.ID, "question")
		require.NoError(t, err)
	}
	_, err = svc.Send(ctx, "u1", d.ID, "latest question")
	require.NoError(t, err)

	last := model.calls[len(model.calls)-1]
	// system prompt plus four history messages
	require.Len(t, last, 5)
	assert.Equal(t, "latest question", last[4].Content)
	assert.Equal(t, llm.RoleUser, last[4].Role)
}

func TestSendTagsSentimentWhenEnabled(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{reply: "ok"}, WithSentiment(true))
	ctx := context.Background()

	d, err := svc.Create(ctx, "u1", CreateInput{})
	require.NoError(t, err)
	_, err = svc.Send(ctx, "u1", d.ID, "I am happy with my savings")
	require.NoError(t, err)

	msgs, err := svc.Messages(ctx, "u1", d.ID, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Metadata, "sentiment")
}

func TestUpdateAndList(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &recordingModel{reply: "ok"})
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", CreateInput{Title: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", CreateInput{Title: "B"})
	require.NoError(t, err)

	title := "Retirement"
	inactive := false
	conv, err := svc.Update(ctx, "u1", a.ID, UpdateInput{Title: &title, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Retirement", conv.Title)
	assert.False(t, conv.IsActive)

	list, err := svc.List(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Retirement", list[0].Title)

	require.NoError(t, svc.Delete(ctx, "u1", a.ID))
	_, err = svc.Get(ctx, "u1", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
