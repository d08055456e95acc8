package telegram

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

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Client calls the Telegram Bot API over HTTPS with JSON bodies.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points the client at another Bot API server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Bot API client for token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: DefaultBaseURL,
		token:   token,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var out User
	if err := c.call(ctx, "getMe", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUpdates long-polls for updates starting at offset. It returns the offset
// to pass on the next call.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	var updates []Update
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        secs,
		AllowedUpdates: []string{"message"},
	}
	if err := c.call(reqCtx, "getUpdates", req, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendMessage sends text to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (*Message, error) {
	req := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             opts.ParseMode,
		DisableWebPagePreview: opts.DisablePreview,
	}
	var out Message
	if err := c.call(ctx, "sendMessage", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendChatAction shows a chat action such as ChatActionTyping.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	return c.call(ctx, "sendChatAction", sendChatActionRequest{ChatID: chatID, Action: action}, nil)
}

// SetWebhook registers url as the update endpoint. Telegram echoes secret in
// the X-Telegram-Bot-Api-Secret-Token header of every delivery.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: url, SecretToken: secret}, nil)
}

// DeleteWebhook removes the webhook so getUpdates can be used.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", deleteWebhookRequest{}, nil)
}

// call posts payload to method and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("telegram %s: encode request: %w", method, err)
		}
		body = bytes.NewReader(b)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL holds the token; drop it from transport errors.
		return fmt.Errorf("telegram %s: %w", method, redactToken(err, c.token))
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{Method: method, StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !env.OK || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode,
			ErrorCode:   env.ErrorCode,
			Description: env.Description,
		}
		if env.Parameters != nil {
			apiErr.RetryAfter = env.Parameters.RetryAfter
		}
		c.logger.Debug("telegram api error",
			zap.String("method", method),
			zap.Int("error_code", env.ErrorCode),
			zap.String("description", env.Description),
		)
		return apiErr
	}

	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
