package converter

import (
	"strings"

	"github.com/riverfjs/tghtml/internal/buffer"
)

// FenceDelimiter opens and closes fenced code.
const FenceDelimiter = "```"

// IsFenceLine reports whether line toggles the fence state.
func IsFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), FenceDelimiter)
}

// SplitBlocks 将原始 markdown 按空行拆分为块
//
// 围栏内的空行属于当前块；围栏外的空行结束当前块。
// 首尾空行被丢弃，只返回非空块，块内换行保留。
func SplitBlocks(markdown string) []string {
	lines := strings.Split(NormalizeNewlines(markdown), "\n")

	blocks := make([]string, 0)
	cur := buffer.New()
	inFence := false

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		blank := cur.Blank()
		b := cur.Flush()
		if !blank {
			blocks = append(blocks, b)
		}
	}

	for _, line := range lines {
		if IsFenceLine(line) {
			cur.Write(line)
			inFence = !inFence
			continue
		}
		if !inFence && strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur.Write(line)
	}
	flush()

	return blocks
}
