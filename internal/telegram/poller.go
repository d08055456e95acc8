package telegram

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Source delivers updates until ctx is done, then closes the channel.
type Source interface {
	Listen(ctx context.Context) <-chan Update
}

// Poller receives updates with getUpdates long polling.
type Poller struct {
	client  *Client
	timeout time.Duration
	backoff time.Duration
	logger  *zap.Logger
}

// NewPoller creates a Poller. timeout is the getUpdates long-poll window.
func NewPoller(client *Client, timeout time.Duration, logger *zap.Logger) *Poller {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:  client,
		timeout: timeout,
		backoff: 3 * time.Second,
		logger:  logger,
	}
}

// Listen starts polling in a goroutine. Failed polls are retried after a
// pause; the offset only advances past updates that were received.
func (p *Poller) Listen(ctx context.Context) <-chan Update {
	ch := make(chan Update)
	go func() {
		defer close(ch)

		// getUpdates is refused while a webhook is registered.
		if err := p.client.DeleteWebhook(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("delete webhook failed", zap.Error(err))
		}

		var offset int64
		for ctx.Err() == nil {
			updates, next, err := p.client.GetUpdates(ctx, offset, p.timeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				wait := p.backoff
				if IsRateLimited(err) {
					if ra := retryAfter(err); ra > wait {
						wait = ra
					}
				}
				p.logger.Warn("getUpdates failed", zap.Error(err), zap.Duration("retry_in", wait))
				if !sleep(ctx, wait) {
					return
				}
				continue
			}
			offset = next

			for _, u := range updates {
				select {
				case ch <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

func retryAfter(err error) time.Duration {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 0
	}
	return time.Duration(apiErr.RetryAfter) * time.Second
}

// sleep waits for d or until ctx is done. It reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
