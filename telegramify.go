// Package tghtml 将 LLM 生成的 Markdown 渲染为 Telegram HTML，并按长度拆分
//
// 这个包把类 Markdown 文本转换为 Telegram parse_mode=HTML 接受的受限标记，
// 并将任意长的文档拆分为若干条消息，每条渲染后不超过长度限制。
//
// 核心功能：
//   - 列表前缀规范化（• 和 1)）
//   - 代码块、行内代码、链接抽取为占位符，转义后再还原
//   - 粗体 / 斜体渲染
//   - 按渲染后长度拆分：不在代码块、行内代码或链接中间断开
//
// 主要 API：
//   - Render(): 单次渲染，返回 HTML
//   - Chunk(): 拆分为 markdown 片段
//   - Prepare(): 拆分并渲染，返回可发送的 Message 列表
//
// 示例：
//
//	// 简单渲染
//	html := tghtml.Render("**hi** [docs](https://example.com)")
//
//	// 完整处理
//	for _, msg := range tghtml.Prepare(answer, tghtml.WithLimit(3800)) {
//	    // sendMessage(chat_id, msg.HTML, parse_mode="HTML")
//	}
//
// 所有函数都是纯函数，可并发调用。
package tghtml
