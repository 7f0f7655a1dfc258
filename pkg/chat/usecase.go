package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/llm"
	"github.com/artem13815/finadvisor/pkg/nlp"
)

const (
	DefaultListLimit     = 20
	DefaultMessagesLimit = 50
	DefaultContextWindow = 10

	FallbackReply = "I apologize, but I encountered an error processing your request. Please try again later."
)

// PromptSource supplies the personalised system prompt for a user.
type PromptSource interface {
	SystemPrompt(ctx context.Context, userID string) string
}

type UseCase interface {
	Create(ctx context.Context, userID string, in CreateInput) (Detail, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Conversation, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (Detail, error)
	Update(ctx context.Context, userID string, id uuid.UUID, in UpdateInput) (Conversation, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	Messages(ctx context.Context, userID string, id uuid.UUID, limit, offset int) ([]Message, error)
	Send(ctx context.Context, userID string, id uuid.UUID, content string) (Message, error)
}

type CreateInput struct {
	Title          string         `json:"title"`
	InitialMessage string         `json:"initial_message"`
	Metadata       map[string]any `json:"metadata"`
}

type UpdateInput struct {
	Title    *string        `json:"title"`
	IsActive *bool          `json:"is_active"`
	Metadata map[string]any `json:"metadata"`
}

type service struct {
	repo      Repository
	model     llm.ChatModel
	prompts   PromptSource
	window    int
	sentiment bool
	log       *slog.Logger
	now       func() time.Time
}

type Option func(*service)

// WithContextWindow sets how many recent messages are sent to the model.
func WithContextWindow(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithSentiment tags inbound user messages with a sentiment label.
func WithSentiment(enabled bool) Option { return func(s *service) { s.sentiment = enabled } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func NewService(repo Repository, model llm.ChatModel, prompts PromptSource, opts ...Option) UseCase {
	s := &service{
		repo:    repo,
		model:   model,
		prompts: prompts,
		window:  DefaultContextWindow,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, userID string, in CreateInput) (Detail, error) {
	now := s.now()
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}
	conv := Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		IsActive:  true,
		Metadata:  orEmpty(in.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return Detail{}, fmt.Errorf("create conversation: %w", err)
	}
	detail := Detail{Conversation: conv, Messages: []Message{}}
	if content := strings.TrimSpace(in.InitialMessage); content != "" {
		msg := s.userMessage(conv.ID, content)
		if err := s.repo.AddMessage(ctx, msg); err != nil {
			return Detail{}, fmt.Errorf("store initial message: %w", err)
		}
		detail.Messages = append(detail.Messages, msg)
		detail.MessageCount = 1
	}
	return detail, nil
}

func (s *service) List(ctx context.Context, userID string, limit, offset int) ([]Conversation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListConversations(ctx, userID, limit, offset)
}

// owned loads a conversation and checks that userID may act on it.
func (s *service) owned(ctx context.Context, userID string, id uuid.UUID) (Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return Conversation{}, err
	}
	if conv.UserID != userID {
		return Conversation{}, ErrForbidden
	}
	return conv, nil
}

func (s *service) Get(ctx context.Context, userID string, id uuid.UUID) (Detail, error) {
	conv, err := s.owned(ctx, userID, id)
	if err != nil {
		return Detail{}, err
	}
	msgs, err := s.repo.ListMessages(ctx, id, 0, 0)
	if err != nil {
		return Detail{}, fmt.Errorf("list messages: %w", err)
	}
	conv.MessageCount = len(msgs)
	return Detail{Conversation: conv, Messages: msgs}, nil
}

func (s *service) Update(ctx context.Context, userID string, id uuid.UUID, in UpdateInput) (Conversation, error) {
	conv, err := s.owned(ctx, userID, id)
	if err != nil {
		return Conversation{}, err
	}
	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			conv.Title = title
		}
	}
	if in.IsActive != nil {
		conv.IsActive = *in.IsActive
	}
	if in.Metadata != nil {
		conv.Metadata = in.Metadata
	}
	conv.UpdatedAt = s.now()
	if err := s.repo.UpdateConversation(ctx, conv); err != nil {
		return Conversation{}, fmt.Errorf("update conversation: %w", err)
	}
	return conv, nil
}

func (s *service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteConversation(ctx, id)
}

func (s *service) Messages(ctx context.Context, userID string, id uuid.UUID, limit, offset int) ([]Message, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMessagesLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, id, limit, offset)
}

// Send stores the user's message, asks the model for a reply over the recent
// context and stores exactly one assistant message, which is returned.
func (s *service) Send(ctx context.Context, userID string, id uuid.UUID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmpty
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return Message{}, err
	}

	if err := s.repo.AddMessage(ctx, s.userMessage(id, content)); err != nil {
		return Message{}, fmt.Errorf("store user message: %w", err)
	}

	reply, meta := s.reply(ctx, userID, id)
	out := Message{
		ID:             uuid.New(),
		ConversationID: id,
		Role:           llm.RoleAssistant,
		Content:        reply,
		Metadata:       meta,
		CreatedAt:      s.now(),
	}
	if err := s.repo.AddMessage(ctx, out); err != nil {
		return Message{}, fmt.Errorf("store assistant message: %w", err)
	}
	return out, nil
}

func (s *service) reply(ctx context.Context, userID string, id uuid.UUID) (string, map[string]any) {
	history, err := s.repo.RecentMessages(ctx, id, s.window)
	if err != nil {
		s.log.Error("load conversation context", "conversation_id", id, "error", err)
		return FallbackReply, map[string]any{"fallback": true}
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	if system := s.prompts.SystemPrompt(ctx, userID); system != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	}
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	text, err := s.model.Generate(ctx, msgs)
	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		s.log.Error("generate reply", "conversation_id", id, "error", err)
		return FallbackReply, map[string]any{"fallback": true}
	}

	meta := map[string]any{"generated": true}
	if named, ok := s.model.(interface{ Name() string }); ok {
		meta["provider"] = named.Name()
	}
	return text, meta
}

func (s *service) userMessage(conversationID uuid.UUID, content string) Message {
	meta := map[string]any{}
	if s.sentiment {
		meta["sentiment"] = nlp.Sentiment(content)
	}
	return Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           llm.RoleUser,
		Content:        content,
		Metadata:       meta,
		CreatedAt:      s.now(),
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
