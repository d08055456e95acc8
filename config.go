package tghtml

import (
	"sync"

	"github.com/riverfjs/tghtml/internal/types"
)

// 导出类型别名
type Symbol = types.Symbol
type RenderConfig = types.RenderConfig

const (
	// DefaultLimit is the default rendered length per fragment. It stays below
	// TelegramMaxMessageLength to leave headroom.
	DefaultLimit = 3800

	// TelegramMaxMessageLength is Telegram's hard cap for one text message.
	TelegramMaxMessageLength = 4096
)

var (
	defaultConfig     *RenderConfig
	defaultConfigOnce sync.Once
)

// DefaultConfig returns the default render configuration (singleton).
// Treat it as read-only; build your own RenderConfig to customize.
func DefaultConfig() *RenderConfig {
	defaultConfigOnce.Do(func() {
		defaultConfig = types.DefaultRenderConfig()
	})
	return defaultConfig
}
