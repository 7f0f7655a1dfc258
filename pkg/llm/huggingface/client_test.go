package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/llm"
)

func TestGenerate(t *testing.T) {
	var got inferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/models/"))
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"generated_text":"  Start with a budget.  "}]`))
	}))
	defer srv.Close()

	c := New("hf-token", "", llm.Options{MaxTokens: 64, Temperature: 0.7}).WithBaseURL(srv.URL)
	out, err := c.Generate(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "advisor"},
		{Role: llm.RoleUser, Content: "where to begin?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Start with a budget.", out)
	assert.Contains(t, got.Inputs, "User: where to begin?")
	assert.True(t, strings.HasSuffix(got.Inputs, "Assistant:"))
	assert.False(t, got.Parameters.ReturnFullText)
	assert.Equal(t, 64, got.Parameters.MaxNewTokens)
}

func TestGenerateModelLoading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	_, err := New("t", "", llm.Options{}).WithBaseURL(srv.URL).Generate(context.Background(), nil)
	require.Error(t, err)
	se, ok := err.(*llm.StatusError)
	require.True(t, ok)
	assert.True(t, se.Temporary())
	assert.Contains(t, se.Body, "loading")
}
