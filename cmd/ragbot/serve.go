package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverfjs/tghtml/internal/bot"
	"github.com/riverfjs/tghtml/internal/rag"
	"github.com/riverfjs/tghtml/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tc := cfg.Telegram
	clientOpts := []telegram.ClientOption{telegram.WithLogger(logger.Named("telegram"))}
	if tc.BaseURL != "" {
		clientOpts = append(clientOpts, telegram.WithBaseURL(tc.BaseURL))
	}
	client := telegram.NewClient(tc.BotToken, clientOpts...)

	me, err := client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}
	logger.Info("Bot authorized", zap.String("username", me.Username), zap.Int64("id", me.ID))

	pipeline, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	b := bot.New(client, pipeline, logger.Named("bot"),
		bot.WithUsername(me.Username),
		bot.WithLimit(tc.Limit),
		bot.WithFenceRepair(tc.FenceRepair),
		bot.WithPlainFallback(tc.PlainFallback),
		bot.WithDisablePreview(tc.DisablePreview),
		bot.WithAllowedChats(tc.AllowedChatIDs),
		bot.WithMaxConcurrent(tc.MaxConcurrent),
	)

	src, err := newSource(ctx, client)
	if err != nil {
		return err
	}

	logger.Info("Serving", zap.String("mode", tc.Mode), zap.Int("limit", tc.Limit))
	if err := b.Run(ctx, src); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("Shutting down")
	return nil
}

func newPipeline(ctx context.Context) (*rag.Pipeline, error) {
	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	r := cfg.Retrieval
	return rag.NewPipeline(embedder, newStore(cfg), completer,
		rag.WithK(r.K),
		rag.WithDateCutoff(r.DateCutoff),
		rag.WithPromptTemplate(r.PromptTemplate),
		rag.WithLogger(logger.Named("rag")),
	)
}

func newSource(ctx context.Context, client *telegram.Client) (telegram.Source, error) {
	tc := cfg.Telegram
	if tc.Mode != "webhook" {
		return telegram.NewPoller(client, tc.PollTimeout, logger.Named("poller")), nil
	}

	url := strings.TrimRight(tc.WebhookURL, "/") + "/telegram/" + tc.WebhookSecret
	if err := client.SetWebhook(ctx, url, tc.WebhookSecret); err != nil {
		return nil, fmt.Errorf("setWebhook: %w", err)
	}
	return telegram.NewWebhookServer(tc.WebhookAddr, tc.WebhookSecret, logger.Named("webhook")), nil
}
