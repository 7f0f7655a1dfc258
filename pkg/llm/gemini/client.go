// Package gemini talks to the Google Generative Language generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/artem13815/finadvisor/pkg/llm"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultUserTurn is appended when a conversation holds only a system instruction;
// the API rejects requests that do not end with a user turn.
const defaultUserTurn = "Please provide your response based on the instruction above."

type Client struct {
	apiKey  string
	baseURL string
	model   string
	opts    llm.Options
	httpDo  *http.Client
}

func New(apiKey, model string, opts llm.Options) *Client {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   model,
		opts:    opts,
		httpDo:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *Client) Name() string  { return "google" }
func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// toContents maps chat roles onto the two roles Gemini accepts.
func toContents(messages []llm.Message) []content {
	out := make([]content, 0, len(messages)+1)
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			out = append(out, content{Role: "user", Parts: []part{{Text: "SYSTEM INSTRUCTION: " + m.Content}}})
		case llm.RoleAssistant:
			out = append(out, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			out = append(out, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(messages) == 1 && messages[0].Role == llm.RoleSystem {
		out = append(out, content{Role: "user", Parts: []part{{Text: defaultUserTurn}}})
	}
	return out
}

func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if c.apiKey == "" {
		return "", llm.ErrMissingAPIKey
	}
	data, err := json.Marshal(generateRequest{
		Contents: toContents(messages),
		GenerationConfig: generationConfig{
			Temperature:     c.opts.Temperature,
			MaxOutputTokens: c.opts.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	// The key travels in a header so transport errors, which quote the URL, never carry it.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &llm.StatusError{Provider: c.Name(), Code: resp.StatusCode, Body: string(body)}
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", llm.ErrEmptyResponse
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}
