package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

// parseAPIError maps a go-openai error onto the domain taxonomy:
// status-bearing errors go through domain.NewProviderStatusError (429 → quota),
// timeouts and connection failures become ErrTransport.
func parseAPIError(provider string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return domain.NewProviderStatusError(provider, reqErr.HTTPStatusCode, detail)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewProviderStatusError(provider, apiErr.HTTPStatusCode, apiErr.Message)
	}

	if isTransport(err) {
		return fmt.Errorf("%s request failed: %v: %w", provider, err, domain.ErrTransport)
	}
	return fmt.Errorf("%s request failed: %v: %w", provider, err, domain.ErrProviderError)
}

func isTransport(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// extractDetail extracts the "detail" field from a JSON error body (HF router and Nebius format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
