package telegram

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips Telegram HTML down to the text a reader would see.
// Entities are decoded; a link keeps its URL in parentheses when the URL
// differs from the link text.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	var href string
	var linkText strings.Builder
	inLink := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			if inLink {
				b.WriteString(linkText.String())
			}
			return b.String()
		case html.TextToken:
			if inLink {
				linkText.Write(z.Text())
			} else {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			tok := z.Token()
			if tok.Data != "a" {
				continue
			}
			inLink, href = true, ""
			linkText.Reset()
			for _, attr := range tok.Attr {
				if attr.Key == "href" {
					href = attr.Val
				}
			}
		case html.EndTagToken:
			tok := z.Token()
			if tok.Data != "a" || !inLink {
				continue
			}
			text := linkText.String()
			b.WriteString(text)
			if href != "" && href != text {
				b.WriteString(" (" + href + ")")
			}
			inLink = false
		}
	}
}
