package tghtml

// ContentTrace tracks where a message came from.
type ContentTrace struct {
	// Index is the position of the message in its document, starting at 0.
	Index int
	// Total is the number of messages the document was split into.
	Total int
	// RenderedLen is len(HTML) in UTF-16 code units.
	RenderedLen int
	// Oversized marks a single unsplittable line that renders over the limit.
	Oversized bool
}

// Message is one fragment ready to be sent with parse_mode=HTML.
type Message struct {
	// Markdown is the source fragment.
	Markdown     string
	HTML         string
	ContentTrace ContentTrace
}

// GetContentTrace returns the content trace.
func (m *Message) GetContentTrace() ContentTrace {
	return m.ContentTrace
}

// Empty reports whether the message has no visible content.
func (m *Message) Empty() bool {
	return m.HTML == ""
}
