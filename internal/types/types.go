package types

// TokenKind 标识被抽取结构的种类
type TokenKind int

const (
	KindCodeBlock TokenKind = iota
	KindInlineCode
	KindLink
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case KindCodeBlock:
		return "code_block"
	case KindInlineCode:
		return "inline_code"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Token 是一次渲染过程中被占位符替换掉的结构
//
// 三种具体类型：*CodeBlock、*InlineCode、*Link。
// Token 只在单次渲染调用内存在。
type Token interface {
	Kind() TokenKind
	// Placeholder 返回替换原文的不透明占位串
	Placeholder() string
	// Source 返回被替换的原始 markdown 片段
	Source() string
}

// CodeBlock is a fenced code region.
type CodeBlock struct {
	PH       string
	Raw      string
	Language string // captured, not rendered
	Code     string
}

func (t *CodeBlock) Kind() TokenKind     { return KindCodeBlock }
func (t *CodeBlock) Placeholder() string { return t.PH }
func (t *CodeBlock) Source() string      { return t.Raw }

// InlineCode is a single-line back-tick span.
type InlineCode struct {
	PH   string
	Raw  string
	Code string
}

func (t *InlineCode) Kind() TokenKind     { return KindInlineCode }
func (t *InlineCode) Placeholder() string { return t.PH }
func (t *InlineCode) Source() string      { return t.Raw }

// Link is a [text](url) span.
type Link struct {
	PH   string
	Raw  string
	Text string
	URL  string
}

func (t *Link) Kind() TokenKind     { return KindLink }
func (t *Link) Placeholder() string { return t.PH }
func (t *Link) Source() string      { return t.Raw }

// Symbol 定义列表前缀的显示符号
type Symbol struct {
	Bullet        string // replaces "* ", "- ", "+ "
	OrderedSuffix string // replaces the "." after an ordered-list number
}

// DefaultSymbol 返回默认符号配置
func DefaultSymbol() *Symbol {
	return &Symbol{
		Bullet:        "• ",
		OrderedSuffix: ") ",
	}
}

// RenderConfig 渲染配置
type RenderConfig struct {
	ListSymbol *Symbol
}

// DefaultRenderConfig 返回默认渲染配置
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		ListSymbol: DefaultSymbol(),
	}
}
