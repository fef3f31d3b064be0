package huggingface

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

// decodePayload accepts [f...], [[f...]...] or [[[f...]...]] and returns either a flat
// vector or token-level vectors. A single-row matrix is treated as a flat vector.
func decodePayload(payload []byte) (domain.EmbeddingResult, error) {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("decode embedding payload: %v: %w", err, domain.ErrMalformedResponse)
	}

	// Unwrap singleton batch dimensions: [[[...]...]] → [[...]...].
	for {
		list, ok := raw.([]any)
		if !ok || len(list) != 1 {
			break
		}
		inner, ok := list[0].([]any)
		if !ok || len(inner) == 0 {
			break
		}
		if _, nested := inner[0].([]any); !nested {
			break
		}
		raw = inner
	}

	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("embedding payload is not a non-empty array: %w", domain.ErrMalformedResponse)
	}

	if len(list) == 1 {
		if row, ok := list[0].([]any); ok && isFlat(row) {
			list = row
		}
	}

	if isFlat(list) {
		vec, err := toVector(list)
		if err != nil {
			return domain.EmbeddingResult{}, err
		}
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	tokens := make([][]float32, 0, len(list))
	for i, row := range list {
		r, ok := row.([]any)
		if !ok {
			return domain.EmbeddingResult{}, fmt.Errorf("token row %d is not an array: %w", i, domain.ErrMalformedResponse)
		}
		vec, err := toVector(r)
		if err != nil {
			return domain.EmbeddingResult{}, err
		}
		tokens = append(tokens, vec)
	}
	return domain.EmbeddingResult{Tokens: tokens}, nil
}

func isFlat(list []any) bool {
	if len(list) == 0 {
		return false
	}
	_, ok := list[0].(float64)
	return ok
}

func toVector(list []any) ([]float32, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("empty vector: %w", domain.ErrMalformedResponse)
	}
	out := make([]float32, len(list))
	for i, x := range list {
		f, ok := x.(float64)
		if !ok {
			return nil, fmt.Errorf("component %d is %T, not a number: %w", i, x, domain.ErrMalformedResponse)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func estimateTokens(text string) int {
	n := len(strings.Fields(text))
	if n == 0 {
		return 1
	}
	return n
}
