package tghtml

import (
	"strings"

	"go.uber.org/zap"

	"github.com/riverfjs/tghtml/internal/converter"
)

const (
	blockSeparator = "\n\n"
	lineSeparator  = "\n"

	// memoCap bounds the per-call render cache.
	memoCap = 512
)

// Chunk splits markdown into fragments whose rendered length stays within the
// limit (DefaultLimit unless WithLimit is given).
//
// Blocks (see SplitBlocks) are packed greedily in document order. A block that
// does not fit on its own is packed line by line. A single line that still
// exceeds the limit becomes its own fragment unmodified, so it is the only kind
// of fragment that may render over the limit.
//
// The result is never empty: input without content yields [""].
func Chunk(markdown string, opts ...Option) []string {
	return NewChunker(opts...).Chunk(markdown)
}

// SplitBlocks partitions markdown into blank-line separated blocks. A fenced
// code region is never split, even when it contains blank lines.
func SplitBlocks(markdown string) []string {
	return converter.SplitBlocks(markdown)
}

// Chunker packs markdown into render-bounded fragments.
// It holds no mutable state and is safe for concurrent use.
type Chunker struct {
	limit       int
	fenceRepair bool
	config      *RenderConfig
}

// NewChunker creates a Chunker from options.
func NewChunker(opts ...Option) *Chunker {
	options := applyOptions(opts...)
	return &Chunker{
		limit:       options.Limit,
		fenceRepair: options.FenceRepair,
		config:      options.Config,
	}
}

// Limit returns the configured limit.
func (c *Chunker) Limit() int {
	return c.limit
}

// Chunk splits markdown into fragments.
func (c *Chunker) Chunk(markdown string) []string {
	m := newMeasurer(c.config)
	blocks := converter.SplitBlocks(markdown)

	parts := make([]string, 0)
	current := ""

	for _, b := range blocks {
		candidate := b
		if current != "" {
			candidate = current + blockSeparator + b
		}
		if m.fits(candidate, c.limit) {
			current = candidate
			continue
		}

		if current != "" {
			parts = append(parts, current)
			current = ""
		}

		if m.fits(b, c.limit) {
			current = b
			continue
		}

		Logger.Debug("block exceeds limit, splitting by line",
			zap.Int("limit", c.limit),
			zap.Int("rendered_len", m.length(b)),
		)
		parts = append(parts, c.splitLines(m, b)...)
	}

	if strings.TrimSpace(current) != "" {
		parts = append(parts, current)
	}

	if len(parts) == 0 {
		return []string{""}
	}
	return parts
}

// splitLines packs the lines of an oversized block with the same greedy rule.
func (c *Chunker) splitLines(m *measurer, block string) []string {
	lines := strings.Split(block, lineSeparator)
	wrap := func(s string) string { return s }

	if c.fenceRepair {
		if open, body, closing, ok := fencedBody(lines); ok {
			lines = body
			wrap = func(s string) string {
				return open + lineSeparator + s + lineSeparator + closing
			}
		}
	}

	out := make([]string, 0)
	emit := func(acc string) {
		if strings.TrimSpace(acc) == "" {
			return
		}
		frag := wrap(acc)
		if n := m.length(frag); n > c.limit {
			Logger.Warn("fragment exceeds limit",
				zap.Int("limit", c.limit),
				zap.Int("rendered_len", n),
			)
		}
		out = append(out, frag)
	}

	acc := ""
	for _, line := range lines {
		candidate := line
		if acc != "" {
			candidate = acc + lineSeparator + line
		}
		if m.fits(wrap(candidate), c.limit) {
			acc = candidate
			continue
		}
		emit(acc)
		acc = line
	}
	emit(acc)

	return out
}

// fencedBody splits a complete fenced block into its fence lines and body.
func fencedBody(lines []string) (open string, body []string, closing string, ok bool) {
	if len(lines) < 3 {
		return "", nil, "", false
	}
	first, last := lines[0], lines[len(lines)-1]
	if !converter.IsFenceLine(first) || !converter.IsFenceLine(last) {
		return "", nil, "", false
	}
	return first, lines[1 : len(lines)-1], last, true
}

// measurer memoizes rendered lengths for one Chunk call.
type measurer struct {
	config *RenderConfig
	memo   map[string]int
}

func newMeasurer(config *RenderConfig) *measurer {
	return &measurer{
		config: config,
		memo:   make(map[string]int),
	}
}

func (m *measurer) length(markdown string) int {
	if n, ok := m.memo[markdown]; ok {
		return n
	}
	n := UTF16Len(converter.Render(markdown, m.config))
	if len(m.memo) >= memoCap {
		clear(m.memo)
	}
	m.memo[markdown] = n
	return n
}

func (m *measurer) fits(markdown string, limit int) bool {
	return m.length(markdown) <= limit
}
