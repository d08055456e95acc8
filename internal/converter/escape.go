package converter

import (
	"strings"

	"github.com/yuin/goldmark/util"
)

// Replacer works in a single pass, so the "&" introduced by "&lt;" is never
// escaped a second time.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape 转义 &、<、>，Telegram HTML 只需要这三个实体
func Escape(text string) string {
	if !strings.ContainsAny(text, "&<>") {
		return text
	}
	return htmlEscaper.Replace(text)
}

// EscapeAttr escapes a value placed inside a double-quoted attribute.
// Adds &quot; on top of the three text entities.
func EscapeAttr(value string) string {
	return string(util.EscapeHTML([]byte(value)))
}
