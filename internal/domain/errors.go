package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidInput signals a request the caller must fix (empty text, unknown mode).
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrTransport signals a timeout or connection failure to an upstream provider.
	// Retryable by the caller; never retried internally.
	ErrTransport = errors.New("provider transport error")
	// ErrProviderQuota signals a quota or rate-limit signal from a provider,
	// or an exhausted local token budget.
	ErrProviderQuota = errors.New("provider quota exceeded")
	// ErrProviderError signals a non-2xx status or an unexpected envelope from a provider.
	ErrProviderError = errors.New("provider error")
	// ErrMalformedResponse signals an embedding payload that is not a numeric vector.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrMalformedModelOutput signals model text with no extractable structure
	// where no safe default exists.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrNotFound signals a missing persisted entity.
	ErrNotFound = errors.New("not found")

	// ErrNoCorpus signals study generation before any document was uploaded.
	ErrNoCorpus = errors.New("no uploaded notes")
	// ErrUnreadableDocument signals an upload without extractable text.
	ErrUnreadableDocument = errors.New("no readable text in document")
	// ErrUnsupportedDocument signals an upload of an unsupported type.
	ErrUnsupportedDocument = errors.New("unsupported document type")
)

// ProviderStatusError carries the upstream HTTP status for diagnostics.
// It unwraps to the classified sentinel (ErrProviderQuota, ErrProviderError).
type ProviderStatusError struct {
	Provider   string
	StatusCode int
	Detail     string
	Kind       error
}

func (e *ProviderStatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s status %d: %s", e.Kind.Error(), e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %s status %d", e.Kind.Error(), e.Provider, e.StatusCode)
}

func (e *ProviderStatusError) Unwrap() error { return e.Kind }

// maxDetailBytes caps the upstream body kept on a ProviderStatusError.
const maxDetailBytes = 300

// NewProviderStatusError classifies an upstream status code.
// 429 maps to ErrProviderQuota, everything else to ErrProviderError.
func NewProviderStatusError(provider string, status int, detail string) error {
	kind := ErrProviderError
	if status == 429 {
		kind = ErrProviderQuota
	}
	if len(detail) > maxDetailBytes {
		cut := maxDetailBytes
		for cut > 0 && !utf8.RuneStart(detail[cut]) {
			cut--
		}
		detail = detail[:cut]
	}
	return &ProviderStatusError{Provider: provider, StatusCode: status, Detail: detail, Kind: kind}
}
