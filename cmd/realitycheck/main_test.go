package main

import (
	"testing"

	"github.com/kailas-cloud/realitycheck/internal/config"
)

func TestCacheNamespace(t *testing.T) {
	base := config.EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536}
	if got := cacheNamespace(base); got != "openai:text-embedding-3-small:1536" {
		t.Errorf("namespace = %q", got)
	}

	short := base
	short.Dimensions = 256
	if cacheNamespace(short) == cacheNamespace(base) {
		t.Error("vectors of different sizes share a cache namespace")
	}
}
