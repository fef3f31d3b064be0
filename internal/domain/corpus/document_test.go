package corpus

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDocument_WithID(t *testing.T) {
	d := NewArticle("T", "S", "https://example.com", "body")
	d2 := d.WithID(3)
	if d.ID() != 0 {
		t.Errorf("original modified: id=%d", d.ID())
	}
	if d2.ID() != 3 || d2.Title() != "T" || d2.Source() != "S" || d2.URL() != "https://example.com" {
		t.Errorf("unexpected copy: %+v", d2)
	}
}

func TestDocument_Preview(t *testing.T) {
	short := NewChunk("  hello  ")
	if got := short.Preview(); got != "hello" {
		t.Errorf("Preview() = %q", got)
	}

	long := NewChunk(strings.Repeat("é", 500))
	p := long.Preview()
	if n := utf8.RuneCountInString(p); n != PreviewLen {
		t.Errorf("preview runes = %d, want %d", n, PreviewLen)
	}
	if !utf8.ValidString(p) {
		t.Error("preview is not valid UTF-8")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"abc", 5, "abc"},
		{"abcdef", 3, "abc"},
		{"привет", 3, "при"},
		{"abc", 0, ""},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
