// Package chatcompletion is a client for OpenAI-compatible chat completions APIs.
// OpenAI and Mistral share this wire format.
package chatcompletion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artem13815/finadvisor/pkg/llm"
)

const (
	OpenAIBaseURL  = "https://api.openai.com/v1"
	MistralBaseURL = "https://api.mistral.ai/v1"
)

type Client struct {
	provider string
	apiKey   string
	baseURL  string
	model    string
	opts     llm.Options
	httpDo   *http.Client
}

func New(provider, apiKey, baseURL, model string, opts llm.Options) *Client {
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		opts:     opts,
		httpDo: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func NewOpenAI(apiKey, baseURL, model string, opts llm.Options) *Client {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return New("openai", apiKey, baseURL, model, opts)
}

func NewMistral(apiKey, model string, opts llm.Options) *Client {
	if model == "" {
		model = "mistral-tiny"
	}
	return New("mistral", apiKey, MistralBaseURL, model, opts)
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *Client) Name() string  { return c.provider }
func (c *Client) Model() string { return c.model }

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if c.apiKey == "" {
		return "", llm.ErrMissingAPIKey
	}
	data, err := json.Marshal(chatCompletionsRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &llm.StatusError{Provider: c.provider, Code: resp.StatusCode, Body: string(body)}
	}
	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode %s response: %w", c.provider, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
