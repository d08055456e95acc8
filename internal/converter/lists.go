package converter

import (
	"regexp"
	"strings"

	"github.com/riverfjs/tghtml/internal/types"
)

var (
	// 无序列表：<缩进><*|-|+><空白><内容>
	bulletRe = regexp.MustCompile(`^\s*[*\-+]\s+(.*)$`)

	// 有序列表：<缩进><数字>.<空白><内容>
	orderedRe = regexp.MustCompile(`^\s*(\d+)\.\s+(.*)$`)
)

// NormalizeNewlines 统一换行符为 \n
func NormalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// NormalizeLists 将列表前缀替换为字面符号
//
// 缩进和原始符号被丢弃，嵌套层级不保留。行数不变。
func NormalizeLists(markdown string, symbol *types.Symbol) string {
	if symbol == nil {
		symbol = types.DefaultSymbol()
	}
	lines := strings.Split(NormalizeNewlines(markdown), "\n")
	for i, line := range lines {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			lines[i] = symbol.Bullet + m[1]
			continue
		}
		if m := orderedRe.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + symbol.OrderedSuffix + m[2]
		}
	}
	return strings.Join(lines, "\n")
}
