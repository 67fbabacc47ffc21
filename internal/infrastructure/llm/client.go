package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"skill-hire/internal/config"
)

var (
	ErrNotConfigured = errors.New("llm api key not configured")
	ErrEmptyResponse = errors.New("llm returned no choices")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	http        *http.Client
}

func NewClient(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: timeout},
	}
}

// CompleteJSON sends a system and user prompt and asks for a JSON object
// back. The raw message content is returned without interpretation.
func (c *Client) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response status=%d: %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("llm api error status=%d: %s", resp.StatusCode, out.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm api status=%d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return out.Choices[0].Message.Content, nil
}
