// Package ingest turns uploaded files into raw text for chunking.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	officelicense "github.com/unidoc/unioffice/common/license"
	pdflicense "github.com/unidoc/unipdf/v3/common/license"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
	"image/bmp":  true,
}

var imageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// SetLicense activates the unidoc metered license for PDF and DOCX parsing.
func SetLicense(key string) error {
	if key == "" {
		return nil
	}
	if err := pdflicense.SetMeteredKey(key); err != nil {
		return fmt.Errorf("unipdf license: %w", err)
	}
	if err := officelicense.SetMeteredKey(key); err != nil {
		return fmt.Errorf("unioffice license: %w", err)
	}
	return nil
}

// File is one uploaded file.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extractor dispatches files to a parser by extension, images to OCR.
type Extractor struct {
	parsers []Parser
	ocr     OCR
}

// NewExtractor builds the default parser set. A nil ocr means NoopOCR.
func NewExtractor(ocr OCR, logger *zap.Logger) *Extractor {
	if ocr == nil {
		ocr = NoopOCR{}
	}
	return &Extractor{
		parsers: []Parser{PDFParser{Logger: logger}, DocxParser{}, TextParser{}},
		ocr:     ocr,
	}
}

// IsImage reports whether f is an image the OCR port accepts.
func IsImage(f File) bool {
	if imageTypes[strings.ToLower(f.ContentType)] {
		return true
	}
	_, ok := imageExts[strings.ToLower(filepath.Ext(f.Name))]
	return ok
}

// Extract returns the raw text of f. Unsupported types fail with
// ErrUnsupportedDocument, parse failures and unavailable OCR with ErrUnreadableDocument.
// Empty text is returned as is; the caller decides whether that is an error.
func (e *Extractor) Extract(ctx context.Context, f File) (string, error) {
	if IsImage(f) {
		res, err := e.Recognize(ctx, f)
		if err != nil {
			return "", err
		}
		text, ok := res.Text()
		if !ok {
			return "", fmt.Errorf("%s: OCR unavailable (%s): %w", f.Name, res.Reason(), domain.ErrUnreadableDocument)
		}
		return text, nil
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, p := range e.parsers {
		if !p.Supports(ext) {
			continue
		}
		text, err := p.Parse(f.Data)
		if err != nil {
			return "", fmt.Errorf("%s: %v: %w", f.Name, err, domain.ErrUnreadableDocument)
		}
		return text, nil
	}
	return "", fmt.Errorf("%q (%s): %w", f.Name, f.ContentType, domain.ErrUnsupportedDocument)
}

// Recognize runs OCR on an image file. Non-image files are rejected.
func (e *Extractor) Recognize(ctx context.Context, f File) (OCRResult, error) {
	if !IsImage(f) {
		return OCRResult{}, fmt.Errorf("%q is not an image: %w", f.Name, domain.ErrUnsupportedDocument)
	}
	contentType := f.ContentType
	if !imageTypes[strings.ToLower(contentType)] {
		contentType = imageExts[strings.ToLower(filepath.Ext(f.Name))]
	}
	res, err := e.ocr.Recognize(ctx, f.Data, contentType)
	if err != nil {
		return OCRResult{}, fmt.Errorf("ocr %s: %w", f.Name, err)
	}
	return res, nil
}
