package buffer

import "testing"

func TestLineBuffer(t *testing.T) {
	lb := New()
	if lb.Len() != 0 || !lb.Blank() || lb.String() != "" {
		t.Fatal("new buffer should be empty")
	}

	lb.Write("")
	lb.Write("  ")
	if !lb.Blank() {
		t.Error("whitespace lines should be blank")
	}

	lb.Write("text")
	lb.Write("")
	if lb.Blank() {
		t.Error("buffer with text should not be blank")
	}
	if got := lb.Flush(); got != "  \ntext" {
		t.Errorf("Flush() = %q, want %q", got, "  \ntext")
	}
	if lb.Len() != 0 {
		t.Errorf("Len() after Flush = %d", lb.Len())
	}
}
