package tghtml

import (
	"go.uber.org/zap"
)

// Logger 全局日志记录器，默认不输出
var Logger = zap.NewNop()

// SetLogger 设置自定义日志记录器
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	Logger = logger.Named("tghtml")
}
