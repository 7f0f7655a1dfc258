package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/finadvisor/pkg/llm"
)

const (
	fallbackFirstQuestion = "Welcome! I'd like to understand your financial goals better. What are your main financial priorities right now? For example, are you looking to save for a specific goal, invest for the future, or manage debt?"
	fallbackNextQuestion  = "Thank you for that information. Could you tell me more about your financial timeline? Are you planning for short-term goals, long-term retirement, or perhaps something in between?"
	fallbackCompletion    = "Thank you for sharing your financial information! I have all the details I need to provide you with personalized recommendations. You can now view your dashboard to see tailored insights for your financial situation."
	fallbackFinal         = "Thank you for completing the onboarding process! Your personalized financial recommendations are now ready to view on your dashboard. I've analyzed your information and prepared insights tailored specifically to your situation and goals."

	firstQuestionInstruction = "Please ask the user about their primary financial goals."
	nextQuestionInstruction  = "Based on the conversation so far, ask the next relevant question to understand the user's financial situation better. Follow the specified format: acknowledge their response, provide brief context, and ask a clear question."
	completionInstruction    = "Onboarding is complete. Thank the user and inform them you have all the information needed to provide personalized recommendations."
	finalInstruction         = "Thank the user for completing the onboarding and tell them their personalized recommendations are ready to view."
)

// ContextSource supplies the client summary that opens each session prompt.
type ContextSource interface {
	OnboardingPrompt(ctx context.Context, userID string) string
}

type UseCase interface {
	Start(ctx context.Context, userID string) (Reply, error)
	Update(ctx context.Context, userID string, sessionID uuid.UUID, message string) (Reply, error)
	Complete(ctx context.Context, userID string, sessionID uuid.UUID) (Reply, error)
}

type service struct {
	store   Store
	model   llm.ChatModel
	context ContextSource
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*service)

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func NewService(store Store, model llm.ChatModel, src ContextSource, ttl time.Duration, opts ...Option) UseCase {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &service{
		store:   store,
		model:   model,
		context: src,
		ttl:     ttl,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) metaPrompt(ctx context.Context, userID string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a financial advisor chatbot helping with onboarding a new user.
User ID: %s
Today's date: %s

Your goal is to ask the user a series of questions to understand their financial goals and needs better.
Be conversational, friendly, and concise. Ask one question at a time.

Your response should follow this format:
1. Acknowledge what the user said (if applicable)
2. Provide a brief insight or context related to the topic
3. Ask a clear, specific question to gather more information

Start with asking about their primary financial goals.
`, userID, s.now().Format("2006-01-02"))
	if s.context != nil {
		if extra := strings.TrimSpace(s.context.OnboardingPrompt(ctx, userID)); extra != "" {
			sb.WriteString("\n")
			sb.WriteString(extra)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (s *service) ask(ctx context.Context, msgs []llm.Message, fallback string) string {
	text, err := s.model.Generate(ctx, msgs)
	return s.orFallback(text, err, fallback)
}

// askOnce is ask for a single instruction under the session's meta-prompt.
func (s *service) askOnce(ctx context.Context, instruction, system, fallback string) string {
	text, err := llm.GenerateForPrompt(ctx, s.model, instruction, system)
	return s.orFallback(text, err, fallback)
}

func (s *service) orFallback(text string, err error, fallback string) string {
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("onboarding generation failed, using canned text", "error", err)
		return fallback
	}
	return text
}

func (s *service) Start(ctx context.Context, userID string) (Reply, error) {
	now := s.now()
	sess := Session{
		ID:         uuid.New(),
		UserID:     userID,
		MetaPrompt: s.metaPrompt(ctx, userID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	question := s.askOnce(ctx, firstQuestionInstruction, sess.MetaPrompt, fallbackFirstQuestion)
	sess.Turns = append(sess.Turns, Turn{Role: llm.RoleAssistant, Content: question, Timestamp: now})

	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return Reply{}, fmt.Errorf("save onboarding session: %w", err)
	}
	s.log.Info("onboarding started", "user_id", userID, "session_id", sess.ID)
	return Reply{SessionID: sess.ID, Text: question}, nil
}

func (s *service) owned(ctx context.Context, userID string, id uuid.UUID) (Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.UserID != userID {
		s.log.Warn("onboarding session access denied", "session_id", id, "user_id", userID)
		return Session{}, ErrForbidden
	}
	return sess, nil
}

func (s *service) Update(ctx context.Context, userID string, sessionID uuid.UUID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmpty
	}
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return Reply{}, err
	}

	now := s.now()
	sess.Turns = append(sess.Turns, Turn{Role: llm.RoleUser, Content: message, Timestamp: now})
	done := sess.UserTurns() >= CompleteAfterTurns

	msgs := make([]llm.Message, 0, len(sess.Turns)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: sess.MetaPrompt})
	for _, t := range sess.Turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	instruction, fallback := nextQuestionInstruction, fallbackNextQuestion
	if done {
		instruction, fallback = completionInstruction, fallbackCompletion
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: instruction})

	text := s.ask(ctx, msgs, fallback)
	sess.Turns = append(sess.Turns, Turn{Role: llm.RoleAssistant, Content: text, Timestamp: now})
	sess.Complete = sess.Complete || done
	sess.UpdatedAt = now

	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return Reply{}, fmt.Errorf("save onboarding session: %w", err)
	}
	return Reply{SessionID: sess.ID, Text: text, Complete: sess.Complete}, nil
}

func (s *service) Complete(ctx context.Context, userID string, sessionID uuid.UUID) (Reply, error) {
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return Reply{}, err
	}

	now := s.now()
	text := s.askOnce(ctx, finalInstruction, sess.MetaPrompt+"\n\nThe onboarding is now complete.", fallbackFinal)
	sess.Turns = append(sess.Turns, Turn{Role: llm.RoleAssistant, Content: text, Timestamp: now})
	sess.Complete = true
	sess.UpdatedAt = now

	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return Reply{}, fmt.Errorf("save onboarding session: %w", err)
	}
	s.log.Info("onboarding completed", "user_id", userID, "session_id", sess.ID)
	return Reply{SessionID: sess.ID, Text: text, Complete: true}, nil
}
