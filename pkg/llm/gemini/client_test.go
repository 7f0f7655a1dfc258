package gemini

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

func TestToContentsMapsRoles(t *testing.T) {
	out := toContents([]llm.Message{
		{Role: llm.RoleSystem, Content: "be careful"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	})
	require.Len(t, out, 3)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "SYSTEM INSTRUCTION: be careful", out[0].Parts[0].Text)
	assert.Equal(t, "model", out[2].Role)
}

func TestToContentsSystemOnlyAddsUserTurn(t *testing.T) {
	out := toContents([]llm.Message{{Role: llm.RoleSystem, Content: "ask a question"}})
	require.Len(t, out, 2)
	assert.Equal(t, defaultUserTurn, out[1].Parts[0].Text)
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Diversify."}]}}]}`))
	}))
	defer srv.Close()

	c := New("g-key", "", llm.Options{Temperature: 0.5, MaxTokens: 100}).WithBaseURL(srv.URL)
	out, err := c.Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "invest?"}})
	require.NoError(t, err)
	assert.Equal(t, "Diversify.", out)
	assert.Equal(t, 100, got.GenerationConfig.MaxOutputTokens)
	require.Len(t, got.Contents, 1)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New("k", "", llm.Options{}).WithBaseURL(srv.URL).Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Temporary())
}

func TestGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := New("k", "", llm.Options{}).WithBaseURL(srv.URL).Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGenerateTransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New("SECRET-KEY-123", "", llm.Options{}).WithBaseURL(base).Generate(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}
