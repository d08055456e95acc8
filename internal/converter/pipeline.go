package converter

import (
	"github.com/riverfjs/tghtml/internal/types"
)

// Render 将 markdown 渲染为 Telegram HTML
//
// 流水线：列表规范化 → 抽取代码块 → 抽取行内代码 → 抽取链接
// → 转义 → 强调 → 还原占位符。
// 纯函数，不会失败：无法匹配的结构按字面文本输出。
func Render(markdown string, config *types.RenderConfig) string {
	if config == nil {
		config = types.DefaultRenderConfig()
	}

	md := NormalizeLists(markdown, config.ListSymbol)

	ph := NewPlaceholders(md)
	md, codeBlocks := ExtractCodeBlocks(md, ph)
	md, inlineCodes := ExtractInlineCode(md, ph)
	md, links := ExtractLinks(md, ph)

	tokens := make([]types.Token, 0, len(codeBlocks)+len(inlineCodes)+len(links))
	for _, t := range links {
		tokens = append(tokens, t)
	}
	for _, t := range inlineCodes {
		tokens = append(tokens, t)
	}
	for _, t := range codeBlocks {
		tokens = append(tokens, t)
	}

	return Restore(Emphasize(Escape(md)), tokens)
}
