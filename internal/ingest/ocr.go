package ingest

import "context"

// OCRResult is either recognized text or an explicit "unavailable" outcome.
// An available result may still carry empty text (a blank image).
type OCRResult struct {
	text      string
	available bool
	reason    string
}

// Recognized wraps text returned by an OCR engine.
func Recognized(text string) OCRResult {
	return OCRResult{text: text, available: true}
}

// Unavailable reports that no text could be produced and why.
func Unavailable(reason string) OCRResult {
	return OCRResult{reason: reason}
}

// Text returns the recognized text and whether OCR ran at all.
func (r OCRResult) Text() (string, bool) { return r.text, r.available }

// Reason explains an unavailable result.
func (r OCRResult) Reason() string { return r.reason }

// OCR extracts text from an image.
type OCR interface {
	Recognize(ctx context.Context, image []byte, contentType string) (OCRResult, error)
}

// NoopOCR is used when no OCR engine is configured.
type NoopOCR struct{}

// Recognize implements OCR.
func (NoopOCR) Recognize(context.Context, []byte, string) (OCRResult, error) {
	return Unavailable("no OCR engine configured"), nil
}
