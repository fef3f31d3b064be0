package corpus

import "strings"

// PreviewLen is the number of runes kept in a chunk preview.
const PreviewLen = 220

// Kind identifies which corpus a document belongs to.
type Kind string

// Corpus kinds.
const (
	KindEvidence Kind = "evidence"
	KindNotes    Kind = "notes"
)

// Document is one retrievable entry: a reference article or an uploaded chunk.
// Documents are immutable once built.
type Document struct {
	id     int
	title  string
	source string
	url    string
	text   string
}

// NewArticle creates a reference article with display metadata.
func NewArticle(title, source, url, text string) Document {
	return Document{title: title, source: source, url: url, text: text}
}

// NewChunk creates an uploaded-notes chunk.
func NewChunk(text string) Document {
	return Document{text: text}
}

// WithID returns a copy carrying the 1-based citation id.
func (d Document) WithID(id int) Document {
	d.id = id
	return d
}

// ID returns the 1-based citation id (0 until the corpus is built).
func (d Document) ID() int { return d.id }

// Title returns the article title.
func (d Document) Title() string { return d.title }

// Source returns the publisher name.
func (d Document) Source() string { return d.source }

// URL returns the article link.
func (d Document) URL() string { return d.url }

// Text returns the full document text.
func (d Document) Text() string { return d.text }

// Preview returns the first PreviewLen runes of the text, trimmed.
func (d Document) Preview() string {
	return Truncate(strings.TrimSpace(d.text), PreviewLen)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
