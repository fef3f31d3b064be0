// Package extract recovers structured fields from free-form model output
// through an ordered chain of increasingly permissive strategies.
package extract

import (
	"encoding/json"
	"strings"
)

// Strategy tries to recover a JSON object from text.
// Implementations must not panic on any input.
type Strategy interface {
	Name() string
	Extract(text string) (map[string]any, bool)
}

// Result is the first successful extraction.
type Result struct {
	Fields   map[string]any
	Strategy string
}

// Chain runs strategies in order; the first success wins.
type Chain struct {
	strategies []Strategy
}

// NewChain creates a chain over the given strategies.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Extract trims text and runs the chain. ok is false when every strategy failed.
func (c *Chain) Extract(text string) (Result, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, false
	}
	for _, s := range c.strategies {
		if fields, ok := s.Extract(text); ok {
			return Result{Fields: fields, Strategy: s.Name()}, true
		}
	}
	return Result{}, false
}

// Names lists the strategies in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// ClassificationChain recovers label/confidence/reasoning_summary, falling back
// to per-field regexes over prose.
func ClassificationChain() *Chain {
	return NewChain(Fenced{}, Direct{}, BalancedBraces{}, OuterBraces{}, ClassificationFields{})
}

// JSONChain recovers a JSON object without any field-level fallback.
func JSONChain() *Chain {
	return NewChain(Fenced{}, Direct{}, BalancedBraces{}, OuterBraces{})
}

// ExplanationChain recovers the explanation object. Its last strategy always succeeds.
func ExplanationChain() *Chain {
	return NewChain(Fenced{}, Direct{}, OuterBraces{}, ExplanationFields{})
}

// parseObject decodes s as a single JSON object.
func parseObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
