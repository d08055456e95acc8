package telegram

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is returned when the Bot API answers ok=false or a non-2xx status.
type APIError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
	// RetryAfter is set on 429 responses, in seconds.
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram %s: http %d", e.Method, e.StatusCode)
	}
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.ErrorCode, e.Description)
}

// IsParseError reports whether err is Telegram rejecting the message markup,
// e.g. "Bad Request: can't parse entities: Unsupported start tag".
func IsParseError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode == 400 &&
		strings.Contains(strings.ToLower(apiErr.Description), "can't parse entities")
}

// IsRateLimited reports whether err is a 429 Too Many Requests.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == 429
}
