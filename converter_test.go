package tghtml

import (
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"
)

// allowedTags 是渲染结果允许出现的全部标签
var allowedTags = map[string]bool{
	"b":    true,
	"i":    true,
	"code": true,
	"pre":  true,
	"a":    true,
}

// checkVocabulary 用 HTML tokenizer 检查标签和属性是否都在白名单内
func checkVocabulary(t *testing.T, out string) {
	t.Helper()
	z := html.NewTokenizer(strings.NewReader(out))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if !allowedTags[tok.Data] {
				t.Errorf("unexpected tag <%s> in %q", tok.Data, out)
			}
			for _, attr := range tok.Attr {
				if tok.Data != "a" || attr.Key != "href" {
					t.Errorf("unexpected attribute %s on <%s> in %q", attr.Key, tok.Data, out)
				}
			}
		}
	}
}

func TestRender_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**hi**", "<b>hi</b>"},
		{"link", "[t](http://u)", `<a href="http://u">t</a>`},
		{"inline code", "`code`", "<code>code</code>"},
		{"bullets", "* a\n- b\n+ c", "• a\n• b\n• c"},
		{"ordered", "1. x", "1) x"},
		{"italic star", "*hi*", "<i>hi</i>"},
		{"italic underscore", "_hi_", "<i>hi</i>"},
		{"italic trimmed", "a * hi * b", "a <i>hi</i> b"},
		{"empty italic stays literal", "x * * y", "x * * y"},
		{"bold spans lines", "**a\nb**", "<b>a\nb</b>"},
		{"code block", "```go\nfmt.Println(1)\n```", "<pre><code>fmt.Println(1)\n</code></pre>"},
		{"code block escaped", "```\na < b && c\n```", "<pre><code>a &lt; b &amp;&amp; c\n</code></pre>"},
		{"inline code escaped", "`<div>`", "<code>&lt;div&gt;</code>"},
		{"no emphasis in code", "`**x**`", "<code>**x**</code>"},
		{"no link in code block", "```\n[a](b)\n```", "<pre><code>[a](b)\n</code></pre>"},
		{"code in link text", "[`x`](http://u)", `<a href="http://u"><code>x</code></a>`},
		{"text escaped", "a < b && c > d", "a &lt; b &amp;&amp; c &gt; d"},
		{"url quote escaped", `[a&b](http://x?a=1&b="2")`, `<a href="http://x?a=1&amp;b=&quot;2&quot;">a&amp;b</a>`},
		{"unterminated fence", "```go\nx < 1", "```go\nx &lt; 1"},
		{"unmatched link", "[text](http://u", "[text](http://u"},
		{"snake case", "a_b_c", "a<i>b</i>c"},
		{"crlf", "- a\r\n- b", "• a\n• b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in)
			if got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.in, got, tt.want)
			}
			checkVocabulary(t, got)
		})
	}
}

// TestRender_PlainTextIdentity 不含 &、<、> 和标记语法的文本原样输出
func TestRender_PlainTextIdentity(t *testing.T) {
	inputs := []string{
		"hello world",
		"Привет, мир! 你好",
		"line one\nline two\n\nparagraph",
		"price: 10$ (approx.)",
	}
	for _, in := range inputs {
		if got := Render(in); got != in {
			t.Errorf("Render(%q) = %q, want identity", in, got)
		}
	}
}

// TestRender_NoPlaceholderLeak 输出中不应残留占位符
func TestRender_NoPlaceholderLeak(t *testing.T) {
	in := "intro `a` and [l](http://x)\n\n```py\nprint(1)\n```\n\n`` ` ```x\ny``` ` `` **b** _i_"
	got := Render(in)
	if strings.ContainsAny(got, "\uE000\uE001") {
		t.Errorf("Render() leaked a placeholder: %q", got)
	}
	checkVocabulary(t, got)
}

// TestRender_AdversarialPlaceholderText 文档中伪造的占位符文本按字面输出
func TestRender_AdversarialPlaceholderText(t *testing.T) {
	fake := "\uE000deadbeefdeadbeefdeadbeefdeadbeefk0\uE001"
	in := fake + " `x` " + fake + " [t](http://u)"
	want := fake + " <code>x</code> " + fake + ` <a href="http://u">t</a>`
	if got := Render(in); got != want {
		t.Errorf("Render(%q) = %q, want %q", in, got, want)
	}
}

// TestRender_InlineCodeAroundCodeBlock 行内代码包住代码块时，代码块按原文显示
func TestRender_InlineCodeAroundCodeBlock(t *testing.T) {
	in := "` ```x\ny``` `"
	want := "<code> ```x\ny``` </code>"
	got := Render(in)
	if got != want {
		t.Errorf("Render(%q) = %q, want %q", in, got, want)
	}
}

func TestRender_CustomSymbols(t *testing.T) {
	config := &RenderConfig{
		ListSymbol: &Symbol{Bullet: "- ", OrderedSuffix: ". "},
	}
	got := Render("* a\n2. b", WithConfig(config))
	if got != "- a\n2. b" {
		t.Errorf("Render() = %q, want %q", got, "- a\n2. b")
	}
}

// TestRender_Concurrent 渲染是纯函数，可并发调用
func TestRender_Concurrent(t *testing.T) {
	in := "**bold** `code` [l](http://u)\n\n```\nblock\n```"
	want := Render(in)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Render(in); got != want {
				t.Errorf("Render() = %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestRenderedLen(t *testing.T) {
	if got := RenderedLen("**hi**"); got != len("<b>hi</b>") {
		t.Errorf("RenderedLen() = %d, want %d", got, len("<b>hi</b>"))
	}
}
