package tghtml

import (
	"github.com/riverfjs/tghtml/internal/converter"
)

// Prepare 完整管道：markdown → 可发送的 HTML 消息列表
//
// 步骤：
//  1. 按渲染后长度拆分为片段（Chunk）
//  2. 每个片段单独渲染一次，用于发送
//  3. 返回按文档顺序排列的 Message 列表（至少一个）
//
// 每个片段独立渲染，因此任何代码块、行内代码或链接都不会跨消息。
func Prepare(markdown string, opts ...Option) []*Message {
	options := applyOptions(opts...)
	chunker := &Chunker{
		limit:       options.Limit,
		fenceRepair: options.FenceRepair,
		config:      options.Config,
	}

	fragments := chunker.Chunk(markdown)
	result := make([]*Message, 0, len(fragments))
	for i, frag := range fragments {
		html := converter.Render(frag, options.Config)
		n := UTF16Len(html)
		result = append(result, &Message{
			Markdown: frag,
			HTML:     html,
			ContentTrace: ContentTrace{
				Index:       i,
				Total:       len(fragments),
				RenderedLen: n,
				Oversized:   n > options.Limit,
			},
		})
	}
	return result
}
