package converter

import (
	"strings"

	"github.com/riverfjs/tghtml/internal/types"
)

// restoreOrder runs opposite to extraction: a link's text may still hold an
// inline-code or code-block placeholder, and those are resolved afterwards.
var restoreOrder = []types.TokenKind{
	types.KindLink,
	types.KindInlineCode,
	types.KindCodeBlock,
}

// Restore 用最终标记替换已转义文本中的占位符
//
// 查找键是占位符经过 Escape 之后的形式，因为文本已经转义。
func Restore(escaped string, tokens []types.Token) string {
	if len(tokens) == 0 {
		return escaped
	}
	text := escaped
	for _, kind := range restoreOrder {
		for _, tok := range tokens {
			if tok.Kind() != kind {
				continue
			}
			text = strings.Replace(text, Escape(tok.Placeholder()), Markup(tok), 1)
		}
	}
	return text
}

// Markup returns the HTML a token renders to.
func Markup(tok types.Token) string {
	switch t := tok.(type) {
	case *types.Link:
		return `<a href="` + EscapeAttr(t.URL) + `">` + Escape(t.Text) + `</a>`
	case *types.InlineCode:
		return "<code>" + Escape(t.Code) + "</code>"
	case *types.CodeBlock:
		// TODO: surface t.Language as <code class="language-…"> once highlighting is decided.
		return "<pre><code>" + Escape(t.Code) + "</code></pre>"
	default:
		return ""
	}
}
