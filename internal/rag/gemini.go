package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini API backend.
type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL     string
	Model       string
	Temperature float64
	// Dimension truncates embeddings; 0 keeps the model's size.
	Dimension      int
	QueryPrefix    string
	DocumentPrefix string
}

// GeminiClient implements Completer and Embedder with google.golang.org/genai.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	dimension   int32
	queryPrefix string
	docPrefix   string
	logger      *zap.Logger
}

// NewGeminiClient creates a client for cfg.Model.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		dimension:   int32(cfg.Dimension),
		queryPrefix: cfg.QueryPrefix,
		docPrefix:   cfg.DocumentPrefix,
		logger:      logger,
	}, nil
}

// Complete generates a single-turn answer.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

// EmbedQuery embeds a search query with the RETRIEVAL_QUERY task type.
func (c *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{c.queryPrefix + text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedDocuments embeds passages with the RETRIEVAL_DOCUMENT task type.
func (c *GeminiClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = c.docPrefix + t
	}
	return c.embed(ctx, input, "RETRIEVAL_DOCUMENT")
}

func (c *GeminiClient) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{TaskType: task}
	if c.dimension > 0 {
		config.OutputDimensionality = genai.Ptr(c.dimension)
	}

	result, err := c.client.Models.EmbedContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: embed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}

	out := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
