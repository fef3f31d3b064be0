package classify

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

// Generator produces free-form model text.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error)
}
