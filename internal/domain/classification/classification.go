// Package classification defines the Real/Fake/Misleading verdict and its coercion rules.
package classification

import (
	"math"
	"strconv"
	"strings"
)

// Label is the verdict enum.
type Label string

// Labels.
const (
	Real       Label = "Real"
	Fake       Label = "Fake"
	Misleading Label = "Misleading"
)

// Defaults applied when the model output carries no usable value.
const (
	DefaultLabel      = Misleading
	DefaultConfidence = 0.5
	DefaultReasoning  = "No reasoning provided."
)

// ParseLabel maps any casing of a known label to the enum. Unknown values yield Misleading.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "real":
		return Real
	case "fake":
		return Fake
	case "misleading":
		return Misleading
	default:
		return DefaultLabel
	}
}

// Result is a classification verdict.
type Result struct {
	label      Label
	confidence float64
	reasoning  string
}

// Default returns the "uncertain" verdict used when the model output is unparsable.
func Default() Result {
	return Result{label: DefaultLabel, confidence: DefaultConfidence, reasoning: DefaultReasoning}
}

// FromFields coerces extracted fields into a valid Result.
// label outside the enum becomes Misleading; confidence is parsed from a number
// or numeric string, clamped to [0,1] and rounded to 2 decimals, else 0.5.
func FromFields(fields map[string]any) Result {
	r := Default()
	if s, ok := fields["label"].(string); ok {
		r.label = ParseLabel(s)
	}
	if c, ok := coerceFloat(fields["confidence"]); ok {
		r.confidence = math.Round(clamp01(c)*100) / 100
	}
	if s, ok := fields["reasoning_summary"].(string); ok && strings.TrimSpace(s) != "" {
		r.reasoning = s
	}
	return r
}

// Label returns the verdict.
func (r Result) Label() Label { return r.label }

// Confidence returns the confidence in [0,1].
func (r Result) Confidence() float64 { return r.confidence }

// Reasoning returns the short reasoning summary.
func (r Result) Reasoning() string { return r.reasoning }

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
