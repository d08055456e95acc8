package converter

import (
	"regexp"
	"strings"

	"github.com/riverfjs/tghtml/internal/types"
)

var (
	// 围栏代码块：```lang\n...```，可跨多行（含空行）
	codeBlockRe = regexp.MustCompile("(?s)```([^\\n]*)\\n(.*?)```")

	// 行内代码：单行，不含反引号
	inlineCodeRe = regexp.MustCompile("`([^`\\n]+)`")

	// 链接：[text](url)，不支持嵌套和转义
	linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// ExtractCodeBlocks 将围栏代码块替换为占位符
//
// 未闭合的围栏不匹配，按字面文本保留。
func ExtractCodeBlocks(text string, ph *Placeholders) (string, []*types.CodeBlock) {
	var tokens []*types.CodeBlock
	out := codeBlockRe.ReplaceAllStringFunc(text, func(match string) string {
		m := codeBlockRe.FindStringSubmatch(match)
		raw := ph.Expand(match)
		tok := &types.CodeBlock{
			PH:       ph.Issue(kindCodeBlock, raw),
			Raw:      raw,
			Language: strings.TrimSpace(m[1]),
			Code:     ph.Expand(m[2]),
		}
		tokens = append(tokens, tok)
		return tok.PH
	})
	return out, tokens
}

// ExtractInlineCode 将行内代码替换为占位符
//
// 已抽取的代码块占位符若落在反引号之间，会被还原为原文作为代码内容。
func ExtractInlineCode(text string, ph *Placeholders) (string, []*types.InlineCode) {
	var tokens []*types.InlineCode
	out := inlineCodeRe.ReplaceAllStringFunc(text, func(match string) string {
		m := inlineCodeRe.FindStringSubmatch(match)
		raw := ph.Expand(match)
		tok := &types.InlineCode{
			PH:   ph.Issue(kindInlineCode, raw),
			Raw:  raw,
			Code: ph.Expand(m[1]),
		}
		tokens = append(tokens, tok)
		return tok.PH
	})
	return out, tokens
}

// ExtractLinks 将 [text](url) 替换为占位符
//
// 链接文字中的占位符保留，由后续还原步骤渲染；URL 中的占位符还原为原文。
func ExtractLinks(text string, ph *Placeholders) (string, []*types.Link) {
	var tokens []*types.Link
	out := linkRe.ReplaceAllStringFunc(text, func(match string) string {
		m := linkRe.FindStringSubmatch(match)
		raw := ph.Expand(match)
		tok := &types.Link{
			PH:   ph.Issue(kindLink, raw),
			Raw:  raw,
			Text: m[1],
			URL:  ph.Expand(m[2]),
		}
		tokens = append(tokens, tok)
		return tok.PH
	})
	return out, tokens
}
