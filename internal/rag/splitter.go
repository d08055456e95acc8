package rag

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order, from paragraphs down to characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunk is a piece of a longer text.
type Chunk struct {
	Text string
	// Start is the offset of Text in the source, in characters.
	Start int
}

// Splitter cuts text into overlapping chunks of at most Size characters,
// preferring to cut at the earliest separator that occurs in the text.
// Pieces keep their leading separator; chunks are trimmed of whitespace.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

// NewSplitter creates a Splitter with DefaultSeparators.
func NewSplitter(size, overlap int) *Splitter {
	return &Splitter{Size: size, Overlap: overlap, Separators: DefaultSeparators}
}

// Split returns the chunks of text with their start offsets.
func (s *Splitter) Split(text string) []Chunk {
	pieces := s.split(text, s.Separators)

	chunks := make([]Chunk, 0, len(pieces))
	index, prevLen := 0, 0
	for _, p := range pieces {
		from := max(0, index+prevLen-s.Overlap)
		index = runeIndex(text, p, from)
		chunks = append(chunks, Chunk{Text: p, Start: index})
		prevLen = runeLen(p)
	}
	return chunks
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeep(text, separator) {
		if runeLen(piece) < s.Size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs pieces into chunks, carrying up to Overlap characters of the
// previous chunk into the next.
func (s *Splitter) merge(pieces []string) []string {
	var out, current []string
	total := 0

	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.Size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				out = append(out, doc)
			}
			for total > s.Overlap || (total+n > s.Size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		out = append(out, doc)
	}
	return out
}

// splitKeep splits text on sep, attaching each separator to the start of the
// piece after it. An empty sep splits into characters. Empty pieces are dropped.
func splitKeep(text, sep string) []string {
	var parts []string
	if sep == "" {
		parts = make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}

	fields := strings.Split(text, sep)
	parts = make([]string, 0, len(fields))
	if fields[0] != "" {
		parts = append(parts, fields[0])
	}
	for _, f := range fields[1:] {
		parts = append(parts, sep+f)
	}
	return parts
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// runeIndex finds sub in s at or after character offset from and returns the
// character offset of the match, or -1.
func runeIndex(s, sub string, from int) int {
	b := 0
	for i := 0; i < from && b < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[b:])
		b += size
	}
	j := strings.Index(s[b:], sub)
	if j < 0 {
		return -1
	}
	return runeLen(s[:b+j])
}
