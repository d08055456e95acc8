package converter

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Placeholders are U+E000 + marker + kind letter + counter + U+E001.
// The marker never occurs in the document, so no document text can equal a
// placeholder, and the terminator keeps "…1" from being a prefix of "…10".
// Kind letters are outside the hex alphabet of the marker.
const (
	placeholderOpen  = "\uE000"
	placeholderClose = "\uE001"

	kindCodeBlock  = 'k'
	kindInlineCode = 'i'
	kindLink       = 'l'
)

// Placeholders 为一次渲染分配占位符，并记录每个占位符对应的原文
type Placeholders struct {
	marker  string
	counter map[byte]int
	issued  []issuedPlaceholder
}

type issuedPlaceholder struct {
	token  string
	source string
}

// NewPlaceholders picks a marker that does not occur anywhere in doc.
func NewPlaceholders(doc string) *Placeholders {
	marker := newMarker()
	for strings.Contains(doc, marker) {
		marker = newMarker()
	}
	return &Placeholders{
		marker:  marker,
		counter: make(map[byte]int, 3),
	}
}

func newMarker() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Issue returns the next placeholder of the given kind and remembers source
// as the markdown it stands for.
func (p *Placeholders) Issue(kind byte, source string) string {
	n := p.counter[kind]
	p.counter[kind] = n + 1
	token := placeholderOpen + p.marker + string(kind) + strconv.Itoa(n) + placeholderClose
	p.issued = append(p.issued, issuedPlaceholder{token: token, source: source})
	return token
}

// Expand replaces every placeholder issued so far with its original markdown.
// Sources are expanded when they are issued, so one pass is enough.
func (p *Placeholders) Expand(s string) string {
	if !p.Contains(s) {
		return s
	}
	for _, ph := range p.issued {
		s = strings.ReplaceAll(s, ph.token, ph.source)
	}
	return s
}

// Contains reports whether s holds any placeholder of this render.
func (p *Placeholders) Contains(s string) bool {
	return strings.Contains(s, placeholderOpen+p.marker)
}
