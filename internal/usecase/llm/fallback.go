// Package llm holds decorators over domain.Generator.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
)

// NamedGenerator is a generator bound to one model.
type NamedGenerator interface {
	domain.Generator
	Model() string
}

// FallbackGenerator tries models in order. Only ErrProviderError moves on to the
// next model; transport and quota errors are returned as is so a slow or
// throttled provider is not hit once per model.
type FallbackGenerator struct {
	models []NamedGenerator
	logger *zap.Logger
}

// NewFallbackGenerator requires at least one model.
func NewFallbackGenerator(logger *zap.Logger, models ...NamedGenerator) (*FallbackGenerator, error) {
	if len(models) == 0 {
		return nil, errors.New("at least one model is required")
	}
	return &FallbackGenerator{models: models, logger: logger}, nil
}

// Generate implements domain.Generator.
func (f *FallbackGenerator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	var lastErr error
	for i, g := range f.models {
		out, err := g.Generate(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrProviderError) {
			return "", err
		}
		lastErr = err
		if i < len(f.models)-1 {
			f.logger.Warn("Model failed, falling back",
				zap.String("model", g.Model()),
				zap.String("next", f.models[i+1].Model()),
				zap.Error(err),
			)
		}
	}
	return "", fmt.Errorf("all %d models failed: %w", len(f.models), lastErr)
}
