package main

import (
	"context"
	"fmt"
	"time"

	"github.com/riverfjs/tghtml/internal/config"
	"github.com/riverfjs/tghtml/internal/rag"
)

// backend is what both LLM clients implement.
type backend interface {
	rag.Completer
	rag.Embedder
}

func newCompleter(ctx context.Context, c *config.Config) (rag.Completer, error) {
	return newBackend(ctx, c.LLM.Provider, backendSettings{
		baseURL:     c.LLM.BaseURL,
		apiKey:      c.LLM.APIKey,
		model:       c.LLM.Model,
		temperature: c.LLM.Temperature,
		timeout:     c.LLM.Timeout,
	})
}

func newEmbedder(ctx context.Context, c *config.Config) (rag.Embedder, error) {
	e := c.Embedding
	return newBackend(ctx, e.Provider, backendSettings{
		baseURL:        e.BaseURL,
		apiKey:         e.APIKey,
		model:          e.Model,
		timeout:        e.Timeout,
		queryPrefix:    e.QueryPrefix,
		documentPrefix: e.DocumentPrefix,
		dimension:      e.Dimension,
	})
}

type backendSettings struct {
	baseURL, apiKey, model      string
	temperature                 float64
	timeout                     time.Duration
	queryPrefix, documentPrefix string
	dimension                   int
}

func newBackend(ctx context.Context, provider string, s backendSettings) (backend, error) {
	switch provider {
	case "openai":
		return rag.NewOpenAIClient(rag.OpenAIConfig{
			BaseURL:        s.baseURL,
			APIKey:         s.apiKey,
			Model:          s.model,
			Temperature:    s.temperature,
			Timeout:        s.timeout,
			QueryPrefix:    s.queryPrefix,
			DocumentPrefix: s.documentPrefix,
			MaxRetries:     2,
		}, logger.Named(provider)), nil
	case "gemini":
		c, err := rag.NewGeminiClient(ctx, rag.GeminiConfig{
			APIKey:         s.apiKey,
			BaseURL:        s.baseURL,
			Model:          s.model,
			Temperature:    s.temperature,
			Dimension:      s.dimension,
			QueryPrefix:    s.queryPrefix,
			DocumentPrefix: s.documentPrefix,
		}, logger.Named(provider))
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

func newStore(c *config.Config) *rag.OpenSearch {
	o := c.OpenSearch
	return rag.NewOpenSearch(rag.OpenSearchConfig{
		URL:                o.URL,
		Index:              o.Index,
		Username:           o.Username,
		Password:           o.Password,
		InsecureSkipVerify: o.InsecureSkipVerify,
		Engine:             o.Engine,
		Dimension:          c.Embedding.Dimension,
		Timeout:            o.Timeout,
	}, logger.Named("opensearch"))
}
