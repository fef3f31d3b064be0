package domain

import "context"

// GenerateOptions bounds a single model call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float32
}

// Generator produces free-form text from a prompt.
// The output is untrusted: it may be prose, fenced JSON, or garbage.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
