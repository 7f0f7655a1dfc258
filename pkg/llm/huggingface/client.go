// Package huggingface calls the hosted Inference API text-generation endpoint.
package huggingface

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

const DefaultBaseURL = "https://api-inference.huggingface.co"

type Client struct {
	token   string
	baseURL string
	model   string
	opts    llm.Options
	httpDo  *http.Client
}

func New(token, model string, opts llm.Options) *Client {
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	return &Client{
		token:   token,
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

func (c *Client) Name() string  { return "huggingface" }
func (c *Client) Model() string { return c.model }

type parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

func (c *Client) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	if c.token == "" {
		return "", llm.ErrMissingAPIKey
	}
	data, err := json.Marshal(inferenceRequest{
		Inputs: llm.Transcript(messages),
		Parameters: parameters{
			MaxNewTokens: c.opts.MaxTokens,
			Temperature:  c.opts.Temperature,
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &llm.StatusError{Provider: c.Name(), Code: resp.StatusCode, Body: string(body)}
	}
	var out []generation
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode huggingface response: %w", err)
	}
	if len(out) == 0 {
		return "", llm.ErrEmptyResponse
	}
	text := strings.TrimSpace(out[0].GeneratedText)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}
