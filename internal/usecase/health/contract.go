package health

import (
	"context"

	"github.com/kailas-cloud/realitycheck/internal/index"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an upstream provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusReader exposes a published corpus.
type CorpusReader interface {
	Load() *index.Corpus
}
