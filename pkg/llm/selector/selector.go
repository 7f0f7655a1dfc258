// Package selector picks the LLM provider at startup and wraps it with
// timeout, retry and a keyword fallback so callers always get text back.
package selector

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/artem13815/finadvisor/pkg/config"
	"github.com/artem13815/finadvisor/pkg/llm"
	"github.com/artem13815/finadvisor/pkg/llm/chatcompletion"
	"github.com/artem13815/finadvisor/pkg/llm/gemini"
	"github.com/artem13815/finadvisor/pkg/llm/huggingface"
	"github.com/artem13815/finadvisor/pkg/llm/mock"
	"github.com/artem13815/finadvisor/pkg/metrics"
)

// Choose returns the first provider with a usable key in the order
// Google, Mistral, HuggingFace, OpenAI. Without keys it returns the mock.
func Choose(cfg config.LLMConfig) llm.Provider {
	opts := llm.Options{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}
	switch {
	case config.Configured(cfg.GoogleAPIKey):
		return gemini.New(cfg.GoogleAPIKey, cfg.GoogleModel, opts)
	case config.Configured(cfg.MistralAPIKey):
		return chatcompletion.NewMistral(cfg.MistralAPIKey, cfg.MistralModel, opts)
	case config.Configured(cfg.HuggingFaceToken):
		return huggingface.New(cfg.HuggingFaceToken, cfg.HuggingFaceModel, opts)
	case config.Configured(cfg.OpenAIAPIKey):
		return chatcompletion.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, opts)
	default:
		return mock.New()
	}
}

type Service struct {
	provider   llm.Provider
	fallback   *mock.Generator
	timeout    time.Duration
	maxRetries uint64
	minBackoff time.Duration
	maxBackoff time.Duration
	metrics    *metrics.Metrics
	log        *slog.Logger
}

type Option func(*Service)

func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

// WithBackoff overrides the exponential backoff bounds between attempts.
func WithBackoff(min, max time.Duration) Option {
	return func(s *Service) { s.minBackoff, s.maxBackoff = min, max }
}

// WithAttempts sets the total number of calls made before falling back.
func WithAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRetries = uint64(n - 1)
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func New(provider llm.Provider, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		provider:   provider,
		fallback:   mock.New(),
		timeout:    30 * time.Second,
		maxRetries: 2,
		minBackoff: 2 * time.Second,
		maxBackoff: 10 * time.Second,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Name() string  { return s.provider.Name() }
func (s *Service) Model() string { return s.provider.Model() }

// Generate never returns an error: when the provider keeps failing the
// keyword fallback answers instead.
func (s *Service) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	text, err := s.generate(ctx, messages)
	if err != nil {
		s.log.Warn("llm provider failed, using fallback response",
			"provider", s.provider.Name(), "model", s.provider.Model(), "error", err)
		s.metrics.ObserveLLM(s.provider.Name(), "fallback", 0)
		return mock.Reply(messages), nil
	}
	return text, nil
}

// GenerateForPrompt is a single-turn helper with an optional system instruction.
func (s *Service) GenerateForPrompt(ctx context.Context, prompt, system string) string {
	text, _ := llm.GenerateForPrompt(ctx, s, prompt, system)
	return text
}

// Live reports whether a real provider is configured.
func (s *Service) Live() bool {
	_, isMock := s.provider.(*mock.Generator)
	return !isMock
}

func (s *Service) generate(ctx context.Context, messages []llm.Message) (string, error) {
	start := time.Now()
	backoff := retry.WithMaxRetries(s.maxRetries,
		retry.WithCappedDuration(s.maxBackoff, retry.NewExponential(s.minBackoff)))

	var text string
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		out, err := s.provider.Generate(callCtx, messages)
		if err == nil {
			text = out
			return nil
		}
		if ctx.Err() == nil && transient(err) {
			s.log.Debug("llm call failed, retrying", "provider", s.provider.Name(), "attempt", attempt, "error", err)
			s.metrics.ObserveLLM(s.provider.Name(), "retry", 0)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	s.metrics.ObserveLLM(s.provider.Name(), "ok", time.Since(start))
	return text, nil
}

func transient(err error) bool {
	var se *llm.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
