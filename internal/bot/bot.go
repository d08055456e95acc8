// Package bot answers /ask commands in Telegram chats with rendered RAG answers.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riverfjs/tghtml"
	"github.com/riverfjs/tghtml/internal/rag"
	"github.com/riverfjs/tghtml/internal/telegram"
)

// Usage is sent for /start, /help and an /ask without a question.
const Usage = "Usage: /ask <your question>"

// FailurePrefix starts the reply when no answer could be produced.
const FailurePrefix = "Failed to get an answer: "

// Sender is the part of the Bot API the bot needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts telegram.SendOptions) (*telegram.Message, error)
	SendChatAction(ctx context.Context, chatID int64, action string) error
}

// Bot dispatches updates. Each update is handled on its own goroutine; the
// messages of one answer are sent sequentially, in document order.
type Bot struct {
	sender   Sender
	answerer rag.Answerer
	logger   *zap.Logger

	username       string
	limit          int
	fenceRepair    bool
	plainFallback  bool
	disablePreview bool
	allowed        map[int64]bool
	maxConcurrent  int
	typingInterval time.Duration
}

// Option configures a Bot.
type Option func(*Bot)

// WithUsername sets the bot's username so "/ask@Name" addressed to another
// bot is ignored.
func WithUsername(name string) Option {
	return func(b *Bot) { b.username = strings.TrimPrefix(name, "@") }
}

// WithLimit sets the rendered length budget per message.
func WithLimit(limit int) Option {
	return func(b *Bot) { b.limit = limit }
}

// WithFenceRepair re-fences code blocks that had to be split across messages.
func WithFenceRepair(enable bool) Option {
	return func(b *Bot) { b.fenceRepair = enable }
}

// WithPlainFallback resends a message as plain text once when Telegram
// rejects its HTML.
func WithPlainFallback(enable bool) Option {
	return func(b *Bot) { b.plainFallback = enable }
}

// WithDisablePreview turns off link previews.
func WithDisablePreview(disable bool) Option {
	return func(b *Bot) { b.disablePreview = disable }
}

// WithAllowedChats restricts the bot to the given chats. Empty allows all.
func WithAllowedChats(ids []int64) Option {
	return func(b *Bot) {
		if len(ids) == 0 {
			b.allowed = nil
			return
		}
		b.allowed = make(map[int64]bool, len(ids))
		for _, id := range ids {
			b.allowed[id] = true
		}
	}
}

// WithMaxConcurrent bounds the number of updates handled at once.
func WithMaxConcurrent(n int) Option {
	return func(b *Bot) { b.maxConcurrent = n }
}

// WithTypingInterval sets how often the typing indicator is refreshed.
func WithTypingInterval(d time.Duration) Option {
	return func(b *Bot) { b.typingInterval = d }
}

// New creates a Bot.
func New(sender Sender, answerer rag.Answerer, logger *zap.Logger, opts ...Option) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		sender:         sender,
		answerer:       answerer,
		logger:         logger,
		limit:          tghtml.DefaultLimit,
		maxConcurrent:  16,
		typingInterval: 4 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.maxConcurrent < 1 {
		b.maxConcurrent = 1
	}
	return b
}

// Run handles updates from src until its channel closes, then waits for the
// handlers still running.
func (b *Bot) Run(ctx context.Context, src telegram.Source) error {
	var g errgroup.Group
	g.SetLimit(b.maxConcurrent)

	for u := range src.Listen(ctx) {
		g.Go(func() error {
			b.HandleUpdate(ctx, u)
			return nil
		})
	}
	return g.Wait()
}

// HandleUpdate processes one update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	cmd, args := ParseCommand(msg.Text, b.username)
	if cmd == "" {
		return
	}
	if b.allowed != nil && !b.allowed[chatID] {
		b.logger.Info("ignoring chat not in allow-list", zap.Int64("chat_id", chatID))
		return
	}

	switch cmd {
	case "ask":
		if args == "" {
			b.sendPlain(ctx, chatID, Usage)
			return
		}
		b.ask(ctx, chatID, userName(msg.From), args)
	case "start", "help":
		b.sendPlain(ctx, chatID, Usage)
	}
}

func (b *Bot) ask(ctx context.Context, chatID int64, user, question string) {
	b.logger.Info("question",
		zap.Int64("chat_id", chatID),
		zap.String("user", user),
		zap.String("question", question),
	)

	stop := b.keepTyping(ctx, chatID)
	start := time.Now()
	answer, err := b.answerer.Answer(ctx, question)
	stop()

	if err != nil {
		b.logger.Error("answer failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendPlain(ctx, chatID, FailurePrefix+err.Error())
		return
	}

	b.logger.Debug("answer ready",
		zap.Int64("chat_id", chatID),
		zap.Duration("took", time.Since(start)),
		zap.Int("len", tghtml.UTF16Len(answer)),
	)
	b.deliver(ctx, chatID, answer)
}

// keepTyping sends the typing action now and every typingInterval until the
// returned stop func is called. stop waits for the refresher to exit.
func (b *Bot) keepTyping(ctx context.Context, chatID int64) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(b.typingInterval)
		defer ticker.Stop()
		for {
			if err := b.sender.SendChatAction(ctx, chatID, telegram.ChatActionTyping); err != nil && ctx.Err() == nil {
				b.logger.Debug("typing action failed", zap.Int64("chat_id", chatID), zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// deliver renders answer into messages and sends them in order. A failed
// send stops delivery so no later fragment arrives before an earlier one.
func (b *Bot) deliver(ctx context.Context, chatID int64, answer string) {
	msgs := tghtml.Prepare(answer,
		tghtml.WithLimit(b.limit),
		tghtml.WithFenceRepair(b.fenceRepair),
	)

	sent := 0
	for _, m := range msgs {
		if m.Empty() {
			continue
		}
		trace := m.GetContentTrace()
		if trace.Oversized {
			b.logger.Warn("message over limit",
				zap.Int64("chat_id", chatID),
				zap.Int("index", trace.Index),
				zap.Int("rendered_len", trace.RenderedLen),
				zap.Int("limit", b.limit),
			)
		}

		if err := b.sendHTML(ctx, chatID, m.HTML); err != nil {
			b.logger.Error("send failed, dropping the rest of the answer",
				zap.Int64("chat_id", chatID),
				zap.Int("index", trace.Index),
				zap.Int("total", trace.Total),
				zap.Error(err),
			)
			return
		}
		sent++
	}

	if sent == 0 {
		b.logger.Warn("empty answer, nothing sent", zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendHTML(ctx context.Context, chatID int64, html string) error {
	_, err := b.sender.SendMessage(ctx, chatID, html, telegram.SendOptions{
		ParseMode:      telegram.ParseModeHTML,
		DisablePreview: b.disablePreview,
	})
	if err == nil || !b.plainFallback || !telegram.IsParseError(err) {
		return err
	}

	b.logger.Warn("html rejected, resending as plain text", zap.Int64("chat_id", chatID), zap.Error(err))
	_, err = b.sender.SendMessage(ctx, chatID, telegram.PlainText(html), telegram.SendOptions{
		DisablePreview: b.disablePreview,
	})
	return err
}

func (b *Bot) sendPlain(ctx context.Context, chatID int64, text string) {
	_, err := b.sender.SendMessage(ctx, chatID, text, telegram.SendOptions{DisablePreview: b.disablePreview})
	if err != nil {
		b.logger.Error("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func userName(u *telegram.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return u.FirstName
}
