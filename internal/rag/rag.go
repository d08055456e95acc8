// Package rag answers questions from a news corpus: the question is embedded,
// matched against indexed articles, and an LLM writes a markdown answer from
// the retrieved context.
package rag

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Document is one indexed chunk of a news article.
type Document struct {
	Text        string
	PublishDate string
	URL         string
	// StartIndex is the chunk's offset in the article, in characters.
	StartIndex int
}

// Answerer produces an answer for a user question.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Completer runs a single-prompt LLM completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into vectors. Queries and documents may be embedded
// differently (prefixes, task types).
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// DateRange restricts a search by publish date. Empty bounds are open.
type DateRange struct {
	Gte string
	Lte string
}

// Searcher finds the k documents nearest to vector within a date range.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int, dates DateRange) ([]Document, error)
}

// DefaultPromptTemplate asks for a brief markdown answer that cites its sources.
const DefaultPromptTemplate = `Answer the question using the provided context.

If the answer uses information from a specific news item,
cite the source directly in the answer text, in parentheses, in the format:
(published: <publish_date>, link: <URL>).

If the context gives no useful information for the answer, say so explicitly.

Answer the question right away, without greetings or other filler. Format the answer as markdown. Do not forget the links and dates. Be brief.

Context:
{{.Context}}

Question:
{{.Question}}`

// Pipeline runs embed → search → prompt → complete.
type Pipeline struct {
	embedder  Embedder
	searcher  Searcher
	completer Completer

	k      int
	cutoff string
	prompt *template.Template
	logger *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithK sets how many documents each of the two searches returns.
func WithK(k int) PipelineOption {
	return func(p *Pipeline) error {
		if k > 0 {
			p.k = k
		}
		return nil
	}
}

// WithDateCutoff sets the date that separates recent from older news.
func WithDateCutoff(date string) PipelineOption {
	return func(p *Pipeline) error {
		if date != "" {
			p.cutoff = date
		}
		return nil
	}
}

// WithPromptTemplate replaces DefaultPromptTemplate. The template sees
// .Context and .Question.
func WithPromptTemplate(text string) PipelineOption {
	return func(p *Pipeline) error {
		if text == "" {
			return nil
		}
		tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
		if err != nil {
			return fmt.Errorf("rag: prompt template: %w", err)
		}
		p.prompt = tmpl
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// NewPipeline wires the three backends together.
func NewPipeline(embedder Embedder, searcher Searcher, completer Completer, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		embedder:  embedder,
		searcher:  searcher,
		completer: completer,
		k:         5,
		cutoff:    "2017-01-01",
		prompt:    template.Must(template.New("prompt").Parse(DefaultPromptTemplate)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Answer retrieves k recent and k older documents and asks the LLM.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	vector, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", fmt.Errorf("rag: embed: %w", err)
	}

	var recent, older []Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := p.searcher.Search(gctx, vector, p.k, DateRange{Gte: p.cutoff})
		recent = docs
		return err
	})
	g.Go(func() error {
		docs, err := p.searcher.Search(gctx, vector, p.k, DateRange{Lte: p.cutoff})
		older = docs
		return err
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("rag: search: %w", err)
	}

	docs := append(recent, older...)
	p.logger.Debug("retrieved context",
		zap.Int("recent", len(recent)),
		zap.Int("older", len(older)),
	)

	prompt, err := p.BuildPrompt(FormatContext(docs), question)
	if err != nil {
		return "", err
	}

	answer, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("rag: complete: %w", err)
	}
	return answer, nil
}

// BuildPrompt fills the prompt template.
func (p *Pipeline) BuildPrompt(context, question string) (string, error) {
	var b strings.Builder
	err := p.prompt.Execute(&b, struct {
		Context  string
		Question string
	}{context, question})
	if err != nil {
		return "", fmt.Errorf("rag: prompt: %w", err)
	}
	return b.String(), nil
}

// FormatContext numbers documents from 1, one per line.
func FormatContext(docs []Document) string {
	lines := make([]string, len(docs))
	for i, d := range docs {
		lines[i] = fmt.Sprintf("#%d News: %s, published: %s, URL: %s.", i+1, d.Text, d.PublishDate, d.URL)
	}
	return strings.Join(lines, "\n")
}
