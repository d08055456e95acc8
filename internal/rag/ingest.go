package rag

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Article is one row of the news CSV.
type Article struct {
	Text        string
	PublishDate string
	URL         string
}

// csv column names
const (
	columnText        = "text"
	columnPublishDate = "publish_date"
	columnURL         = "fronturl"
)

// ReadArticles reads a CSV with text, publish_date and fronturl columns in any
// order. Rows with empty text are skipped.
func ReadArticles(r io.Reader) ([]Article, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("ingest: empty csv")
		}
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range []string{columnText, columnPublishDate, columnURL} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("ingest: missing column %q", name)
		}
	}

	field := func(rec []string, name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var articles []Article
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}
		a := Article{
			Text:        field(rec, columnText),
			PublishDate: strings.TrimSpace(field(rec, columnPublishDate)),
			URL:         strings.TrimSpace(field(rec, columnURL)),
		}
		if strings.TrimSpace(a.Text) == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// DocumentStore is where indexed chunks are written.
type DocumentStore interface {
	EnsureIndex(ctx context.Context) error
	Bulk(ctx context.Context, docs []Document, vectors [][]float32) error
}

// IndexStats summarizes an ingestion run.
type IndexStats struct {
	Articles int
	Chunks   int
}

// Indexer splits articles, embeds the chunks and stores them.
type Indexer struct {
	embedder  Embedder
	store     DocumentStore
	splitter  *Splitter
	batchSize int
	logger    *zap.Logger
}

// NewIndexer creates an Indexer. batchSize chunks are embedded and written per
// round trip.
func NewIndexer(embedder Embedder, store DocumentStore, splitter *Splitter, batchSize int, logger *zap.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		embedder:  embedder,
		store:     store,
		splitter:  splitter,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Index writes every chunk of articles to the store.
func (ix *Indexer) Index(ctx context.Context, articles []Article) (IndexStats, error) {
	stats := IndexStats{Articles: len(articles)}
	if err := ix.store.EnsureIndex(ctx); err != nil {
		return stats, fmt.Errorf("ingest: %w", err)
	}

	var docs []Document
	for _, a := range articles {
		for _, c := range ix.splitter.Split(a.Text) {
			docs = append(docs, Document{
				Text:        c.Text,
				PublishDate: a.PublishDate,
				URL:         a.URL,
				StartIndex:  c.Start,
			})
		}
	}

	for start := 0; start < len(docs); start += ix.batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		end := min(start+ix.batchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}
		vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("ingest: embed: %w", err)
		}
		if err := ix.store.Bulk(ctx, batch, vectors); err != nil {
			return stats, fmt.Errorf("ingest: %w", err)
		}

		stats.Chunks += len(batch)
		ix.logger.Info("indexed batch",
			zap.Int("chunks", stats.Chunks),
			zap.Int("total", len(docs)),
		)
	}
	return stats, nil
}

// IndexCSV reads articles from r and indexes them.
func (ix *Indexer) IndexCSV(ctx context.Context, r io.Reader) (IndexStats, error) {
	articles, err := ReadArticles(r)
	if err != nil {
		return IndexStats{}, err
	}
	return ix.Index(ctx, articles)
}
