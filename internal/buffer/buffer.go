package buffer

import "strings"

// LineBuffer accumulates the lines of one block.
type LineBuffer struct {
	lines []string
}

// New creates a new LineBuffer.
func New() *LineBuffer {
	return &LineBuffer{
		lines: make([]string, 0),
	}
}

// Write appends a line.
func (lb *LineBuffer) Write(line string) {
	lb.lines = append(lb.lines, line)
}

// Len returns the number of buffered lines.
func (lb *LineBuffer) Len() int {
	return len(lb.lines)
}

// Blank reports whether every buffered line is whitespace.
func (lb *LineBuffer) Blank() bool {
	for _, l := range lb.lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// String joins the buffered lines with "\n" and trims surrounding newlines.
func (lb *LineBuffer) String() string {
	if len(lb.lines) == 0 {
		return ""
	}
	return strings.Trim(strings.Join(lb.lines, "\n"), "\n")
}

// Flush returns String() and clears the buffer.
func (lb *LineBuffer) Flush() string {
	s := lb.String()
	lb.Reset()
	return s
}

// Reset clears the buffer.
func (lb *LineBuffer) Reset() {
	lb.lines = lb.lines[:0]
}
