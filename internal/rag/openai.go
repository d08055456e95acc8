package rag

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

	"go.uber.org/zap"
)

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// QueryPrefix and DocumentPrefix are prepended before embedding.
	QueryPrefix    string
	DocumentPrefix string
	MaxRetries     int
}

// OpenAIClient talks to /chat/completions and /embeddings.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	queryPrefix string
	docPrefix   string
	maxRetries  int
	backoff     time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewOpenAIClient creates a client. The same type serves completions and
// embeddings; configure one instance per role.
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		queryPrefix: cfg.QueryPrefix,
		docPrefix:   cfg.DocumentPrefix,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Second,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// errRetryable marks failures worth another attempt.
var errRetryable = errors.New("retryable")

// Complete sends prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}
	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// EmbedQuery embeds a search query.
func (c *OpenAIClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{c.queryPrefix + text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds passages for indexing.
func (c *OpenAIClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = c.docPrefix + t
	}
	return c.embed(ctx, input)
}

func (c *OpenAIClient) embed(ctx context.Context, input []string) ([][]float32, error) {
	var resp embeddingResponse
	if err := c.post(ctx, "/embeddings", embeddingRequest{Model: c.model, Input: input}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: %s", resp.Error.Message)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(resp.Data), len(input))
	}

	out := make([][]float32, len(input))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// post retries transport errors, 429 and 5xx with exponential backoff.
func (c *OpenAIClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			c.logger.Debug("retrying openai request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.do(ctx, path, body, out)
		if lastErr == nil || !errors.Is(lastErr, errRetryable) {
			return lastErr
		}
	}
	return lastErr
}

func (c *OpenAIClient) do(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("openai: %w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: %w: read response: %w", errRetryable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("openai: %w: status %d: %s", errRetryable, resp.StatusCode, truncate(raw))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("openai: status %d: %s", resp.StatusCode, truncate(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai: parse response: %w", err)
	}
	return nil
}

func truncate(raw []byte) string {
	const max = 512
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
