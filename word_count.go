package tghtml

// UTF16Len returns the length of text measured in UTF-16 code units.
//
// Telegram measures message length in UTF-16 code units, not Go string bytes
// or runes. Characters outside the BMP (codepoint > 0xFFFF) take 2 UTF-16
// code units (a surrogate pair); all others take 1.
func UTF16Len(text string) int {
	count := 0
	for _, r := range text {
		if r > 0xFFFF {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// CountText 计算 HTML 文本在 Telegram 中的长度
//
// 按发送前的 HTML 计数（含标签和实体），比 Telegram 解析后的
// 可见文本长度更保守。
func CountText(html string) int {
	return UTF16Len(html)
}
