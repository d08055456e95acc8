package telegram

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"<b>bold</b> &amp; <i>it</i>", "bold & it"},
		{"<pre><code>a &lt; b\n</code></pre>", "a < b\n"},
		{`<a href="https://x.io/?a=1&amp;b=2">news</a>`, "news (https://x.io/?a=1&b=2)"},
		{`<a href="https://x.io">https://x.io</a>`, "https://x.io"},
		{`<a href="u"><code>c</code></a>`, "c (u)"},
		{"&lt;unclosed", "<unclosed"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
