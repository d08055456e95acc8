package tghtml

import "testing"

func TestUTF16Len(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"cyrillic", "привет", 6},
		{"cjk", "你好", 2},
		{"emoji", "😀", 2},
		{"mixed", "a😀b", 4},
		{"bullet", "• x", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UTF16Len(tt.text); got != tt.want {
				t.Errorf("UTF16Len(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountText(t *testing.T) {
	if got := CountText("<b>你好</b>"); got != 9 {
		t.Errorf("CountText() = %d, want 9", got)
	}
}
