package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"
)

// Parser turns one document format into plain text.
type Parser interface {
	Supports(ext string) bool
	Parse(data []byte) (string, error)
}

// TextParser reads plain text and Markdown as is.
type TextParser struct{}

// Supports implements Parser.
func (TextParser) Supports(ext string) bool {
	return ext == ".txt" || ext == ".md" || ext == ".markdown"
}

// Parse implements Parser.
func (TextParser) Parse(data []byte) (string, error) {
	return string(bytes.ToValidUTF8(data, []byte("�"))), nil
}

// PDFParser extracts the text layer of every readable page.
// Pages that fail to extract are skipped and logged.
type PDFParser struct {
	Logger *zap.Logger
}

// Supports implements Parser.
func (PDFParser) Supports(ext string) bool { return ext == ".pdf" }

// Parse implements Parser.
func (p PDFParser) Parse(data []byte) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("pdf page count: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		text, err := pageText(reader, i)
		if err != nil {
			if p.Logger != nil {
				p.Logger.Warn("Skipping unreadable PDF page", zap.Int("page", i), zap.Error(err))
			}
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func pageText(reader *model.PdfReader, n int) (string, error) {
	page, err := reader.GetPage(n)
	if err != nil {
		return "", err
	}
	ex, err := extractor.New(page)
	if err != nil {
		return "", err
	}
	return ex.ExtractText()
}

// DocxParser extracts paragraph text from Word documents.
type DocxParser struct{}

// Supports implements Parser.
func (DocxParser) Supports(ext string) bool { return ext == ".docx" }

// Parse implements Parser.
func (DocxParser) Parse(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
