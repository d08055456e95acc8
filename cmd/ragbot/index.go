package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverfjs/tghtml/internal/rag"
)

var indexCmd = &cobra.Command{
	Use:   "index <articles.csv>",
	Short: "Split, embed and bulk-index a CSV of news articles",
	Long: `index reads a CSV with the columns text, publish_date and fronturl, splits
each article, embeds the pieces and writes them to OpenSearch. Use "-" to read
from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateBackends(); err != nil {
		return err
	}
	ctx := cmd.Context()

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open articles: %w", err)
		}
		defer f.Close()
		r = f
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	in := cfg.Ingest
	indexer := rag.NewIndexer(embedder, newStore(cfg),
		rag.NewSplitter(in.ChunkSize, in.ChunkOverlap), cfg.Embedding.BatchSize, logger.Named("index"))

	stats, err := indexer.IndexCSV(ctx, r)
	if err != nil {
		return err
	}
	logger.Info("Index complete",
		zap.String("index", cfg.OpenSearch.Index),
		zap.Int("articles", stats.Articles),
		zap.Int("chunks", stats.Chunks),
	)
	return nil
}
