package tghtml

import (
	"github.com/riverfjs/tghtml/internal/converter"
)

// Render 将 Markdown 转换为 Telegram HTML（parse_mode=HTML）
//
// 输出只包含 <b>、<i>、<code>、<pre><code>、<a href> 标签，
// 普通文本转义 &、<、>。不会失败：无法识别的结构按字面输出。
//
// 参数:
//   - markdown: 原始 Markdown 文本
//   - opts: 可选配置（WithConfig）
//
// 返回:
//   - string: HTML 文本
func Render(markdown string, opts ...Option) string {
	options := applyOptions(opts...)
	return converter.Render(markdown, options.Config)
}

// RenderedLen 返回 markdown 渲染后的长度（UTF-16 code units）
func RenderedLen(markdown string, opts ...Option) int {
	return UTF16Len(Render(markdown, opts...))
}
