package chatcompletion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/llm"
)

func TestGenerateSendsChatCompletionsRequest(t *testing.T) {
	var got chatCompletionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"Keep an emergency fund."}}]}`))
	}))
	defer srv.Close()

	c := NewMistral("key-1", "", llm.Options{Temperature: 0.7, MaxTokens: 256}).WithBaseURL(srv.URL)
	out, err := c.Generate(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "advisor"},
		{Role: llm.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Keep an emergency fund.", out)
	assert.Equal(t, "mistral-tiny", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, llm.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "mistral", c.Name())
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewOpenAI("key", srv.URL, "", llm.Options{})
	_, err := c.Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, se.Temporary())
	assert.Equal(t, "gpt-3.5-turbo", c.Model())
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("key", srv.URL, "", llm.Options{}).Generate(context.Background(), nil)
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerateMissingKey(t *testing.T) {
	_, err := NewOpenAI("", "", "", llm.Options{}).Generate(context.Background(), nil)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
