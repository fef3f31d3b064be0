package huggingface

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		flatLen   int
		tokenRows int
	}{
		{"flat", `[0.1, 0.2, 0.3]`, 3, 0},
		{"single row", `[[0.1, 0.2]]`, 2, 0},
		{"token level", `[[0.1, 0.2], [0.3, 0.4]]`, 0, 2},
		{"batched token level", `[[[0.1, 0.2], [0.3, 0.4], [0.5, 0.6]]]`, 0, 3},
		{"batched single row", `[[[0.1, 0.2]]]`, 2, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := decodePayload([]byte(tc.payload))
			if err != nil {
				t.Fatalf("decodePayload: %v", err)
			}
			if len(res.Embedding) != tc.flatLen {
				t.Errorf("flat len = %d, want %d", len(res.Embedding), tc.flatLen)
			}
			if len(res.Tokens) != tc.tokenRows {
				t.Errorf("token rows = %d, want %d", len(res.Tokens), tc.tokenRows)
			}
		})
	}
}

func TestDecodePayload_Malformed(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{"a": 1}`,
		`[]`,
		`["x", "y"]`,
		`[[0.1], "x"]`,
		`[[0.1, "x"], [0.2, 0.3]]`,
		`[[]]`,
	} {
		if _, err := decodePayload([]byte(payload)); !errors.Is(err, domain.ErrMalformedResponse) {
			t.Errorf("decodePayload(%s) = %v, want ErrMalformedResponse", payload, err)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens("  "); got != 1 {
		t.Errorf("estimateTokens(blank) = %d, want 1", got)
	}
	if got := estimateTokens("a b  c\nd"); got != 4 {
		t.Errorf("estimateTokens = %d, want 4", got)
	}
}
