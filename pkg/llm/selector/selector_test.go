package selector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/config"
	"github.com/artem13815/finadvisor/pkg/llm"
	"github.com/artem13815/finadvisor/pkg/llm/mock"
)

type stubProvider struct {
	calls atomic.Int32
	errs  []error
	reply string
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub-1" }

func (p *stubProvider) Generate(ctx context.Context, _ []llm.Message) (string, error) {
	n := int(p.calls.Add(1)) - 1
	if n < len(p.errs) && p.errs[n] != nil {
		return "", p.errs[n]
	}
	return p.reply, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFast(p llm.Provider) *Service {
	return New(p, quietLogger(), WithBackoff(time.Millisecond, 2*time.Millisecond), WithTimeout(time.Second))
}

var investQuestion = []llm.Message{{Role: llm.RoleUser, Content: "Should I invest in index funds?"}}

func TestChooseWithoutKeysReturnsMock(t *testing.T) {
	p := Choose(config.LLMConfig{GoogleAPIKey: "your-google-api-key"})
	assert.Equal(t, "mock", p.Name())

	s := New(p, quietLogger())
	assert.False(t, s.Live())
	out, err := s.Generate(context.Background(), investQuestion)
	require.NoError(t, err)
	assert.Contains(t, out, "diversify")
}

func TestChoosePriority(t *testing.T) {
	all := config.LLMConfig{GoogleAPIKey: "g", MistralAPIKey: "m", HuggingFaceToken: "h", OpenAIAPIKey: "o"}
	assert.Equal(t, "google", Choose(all).Name())

	all.GoogleAPIKey = ""
	assert.Equal(t, "mistral", Choose(all).Name())

	all.MistralAPIKey = ""
	assert.Equal(t, "huggingface", Choose(all).Name())

	all.HuggingFaceToken = ""
	assert.Equal(t, "openai", Choose(all).Name())
}

func TestGenerateRetriesTransientThenSucceeds(t *testing.T) {
	p := &stubProvider{
		errs:  []error{&llm.StatusError{Provider: "stub", Code: 503}, &llm.StatusError{Provider: "stub", Code: 429}},
		reply: "live answer",
	}
	out, err := newFast(p).Generate(context.Background(), investQuestion)
	require.NoError(t, err)
	assert.Equal(t, "live answer", out)
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestGenerateFallsBackAfterThreeAttempts(t *testing.T) {
	boom := &llm.StatusError{Provider: "stub", Code: 500}
	p := &stubProvider{errs: []error{boom, boom, boom, boom}}

	out, err := newFast(p).Generate(context.Background(), investQuestion)
	require.NoError(t, err)
	assert.Equal(t, mock.Reply(investQuestion), out)
	assert.Equal(t, int32(3), p.calls.Load())
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	p := &stubProvider{errs: []error{&llm.StatusError{Provider: "stub", Code: 401}}}

	out, err := newFast(p).Generate(context.Background(), investQuestion)
	require.NoError(t, err)
	assert.Contains(t, out, "diversify")
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestGenerateDoesNotRetryMalformedResponses(t *testing.T) {
	p := &stubProvider{errs: []error{llm.ErrEmptyResponse}}

	_, err := newFast(p).Generate(context.Background(), investQuestion)
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestGenerateRetriesTimeouts(t *testing.T) {
	p := &stubProvider{errs: []error{context.DeadlineExceeded}, reply: "ok"}

	out, err := newFast(p).Generate(context.Background(), investQuestion)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestGenerateForPrompt(t *testing.T) {
	p := &stubProvider{reply: "first question"}
	assert.Equal(t, "first question", newFast(p).GenerateForPrompt(context.Background(), "begin", "system"))

	failing := &stubProvider{errs: []error{errors.New("dial tcp: refused")}}
	out := newFast(failing).GenerateForPrompt(context.Background(), "", "")
	assert.Equal(t, mock.DefaultResponse, out)
}

func TestWithAttempts(t *testing.T) {
	boom := &llm.StatusError{Provider: "stub", Code: 502}
	p := &stubProvider{errs: []error{boom, boom, boom, boom, boom}}

	s := New(p, quietLogger(), WithAttempts(5), WithBackoff(time.Millisecond, time.Millisecond))
	_, _ = s.Generate(context.Background(), investQuestion)
	assert.Equal(t, int32(5), p.calls.Load())
}
