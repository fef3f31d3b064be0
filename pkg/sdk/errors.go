package realitycheck

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes.
// Use errors.Is() to check.
var (
	ErrBadRequest           = errors.New("bad request")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnsupportedDocument  = errors.New("unsupported document")
	ErrUnreadableDocument   = errors.New("unreadable document")
	ErrNoCorpus             = errors.New("no notes uploaded")
	ErrQuotaExceeded        = errors.New("provider quota exceeded")
	ErrProviderTimeout      = errors.New("provider timeout")
	ErrProviderError        = errors.New("provider error")
	ErrMalformedResponse    = errors.New("malformed provider response")
	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrInternal             = errors.New("internal server error")
)

var codeErrors = map[string]error{
	"bad_request":                 ErrBadRequest,
	"unauthorized":                ErrUnauthorized,
	"payload_too_large":           ErrPayloadTooLarge,
	"validation_failed":           ErrInvalidInput,
	"unsupported_document":        ErrUnsupportedDocument,
	"unreadable_document":         ErrUnreadableDocument,
	"no_corpus":                   ErrNoCorpus,
	"quota_exceeded":              ErrQuotaExceeded,
	"provider_timeout":            ErrProviderTimeout,
	"provider_error":              ErrProviderError,
	"malformed_provider_response": ErrMalformedResponse,
	"malformed_model_output":      ErrMalformedModelOutput,
	"internal_error":              ErrInternal,
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("realitycheck: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap returns the sentinel for Code, or nil for unknown codes.
func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}
