package converter

import (
	"regexp"
	"strings"
)

// 粗体：**...**，非贪婪，可跨行
var boldRe = regexp.MustCompile(`(?s)\*\*(.+?)\*\*`)

// Emphasize 在已转义的文本上渲染粗体和斜体
//
// 规则顺序：先 **粗体**，再 *斜体*，最后 _斜体_。
// 占位符不含 * 和 _，因此不受影响。
func Emphasize(escaped string) string {
	t := boldRe.ReplaceAllString(escaped, "<b>$1</b>")
	t = italicize(t, '*')
	t = italicize(t, '_')
	return t
}

// italicize renders single-line delim...delim spans as <i>.
//
// A span is skipped when the opening delimiter follows another delim or the
// closing one precedes another delim. Spans that are blank after trimming are
// consumed but written back unchanged.
func italicize(s string, delim byte) string {
	if strings.IndexByte(s, delim) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	last := 0

	for i := 0; i < len(s); i++ {
		if s[i] != delim || (i > 0 && s[i-1] == delim) {
			continue
		}

		// The closing delimiter is necessarily the first one after i.
		j := i + 1
		for j < len(s) && s[j] != delim && s[j] != '\n' {
			j++
		}
		if j >= len(s) || s[j] != delim || j == i+1 {
			continue
		}
		if j+1 < len(s) && s[j+1] == delim {
			continue
		}

		b.WriteString(s[last:i])
		if inner := strings.TrimSpace(s[i+1 : j]); inner != "" {
			b.WriteString("<i>")
			b.WriteString(inner)
			b.WriteString("</i>")
		} else {
			b.WriteString(s[i : j+1])
		}
		last = j + 1
		i = j
	}

	b.WriteString(s[last:])
	return b.String()
}
