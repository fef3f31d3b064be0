// Package chunker splits uploaded text into overlapping, word-budgeted chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes extracted text: CR to LF, runs of spaces and tabs collapsed,
// three or more newlines reduced to a paragraph break, outer whitespace trimmed.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Split breaks text into sentences. A boundary is sentence-ending punctuation
// followed by whitespace, or a run of newlines. Empty parts are dropped.
func Split(text string) []string {
	r := []rune(text)
	var parts []string
	emit := func(s []rune) {
		if p := strings.TrimSpace(string(s)); p != "" {
			parts = append(parts, p)
		}
	}

	start := 0
	for i := 0; i < len(r); {
		switch {
		case r[i] == '\n':
			emit(r[start:i])
			for i < len(r) && r[i] == '\n' {
				i++
			}
			start = i
		case isTerminal(r[i]) && i+1 < len(r) && unicode.IsSpace(r[i+1]):
			emit(r[start : i+1])
			i++
			for i < len(r) && unicode.IsSpace(r[i]) {
				i++
			}
			start = i
		default:
			i++
		}
	}
	emit(r[start:])
	return parts
}

func isTerminal(c rune) bool {
	return c == '.' || c == '!' || c == '?'
}

// Chunker groups sentences into chunks of roughly target words, seeding each new
// chunk with the trailing overlap words of the previous one.
type Chunker struct {
	target  int
	overlap int
}

// New creates a chunker. target is a soft limit: a single sentence longer than
// target is kept whole.
func New(target, overlap int) *Chunker {
	if target < 1 {
		target = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{target: target, overlap: overlap}
}

// Chunk splits text into ordered, non-empty chunks.
func (c *Chunker) Chunk(text string) []string {
	sentences := Split(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	words := 0

	for _, s := range sentences {
		n := max(1, len(strings.Fields(s)))
		if len(current) > 0 && words+n > c.target {
			closed := strings.TrimSpace(strings.Join(current, " "))
			chunks = append(chunks, closed)

			current = current[:0]
			words = 0
			if tail := lastWords(closed, c.overlap); len(tail) > 0 {
				current = append(current, strings.Join(tail, " "))
				words = len(tail)
			}
		}
		current = append(current, s)
		words += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
	}

	out := chunks[:0]
	for _, ch := range chunks {
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out
}

func lastWords(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	f := strings.Fields(s)
	if len(f) > n {
		f = f[len(f)-n:]
	}
	return f
}
