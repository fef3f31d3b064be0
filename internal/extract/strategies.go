package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Fenced parses the first Markdown code-fence segment that holds a JSON object.
type Fenced struct{}

// Name implements Strategy.
func (Fenced) Name() string { return "fenced" }

// Extract implements Strategy.
func (Fenced) Extract(text string) (map[string]any, bool) {
	if !strings.Contains(text, "```") {
		return nil, false
	}
	for _, part := range strings.Split(text, "```") {
		part = strings.TrimSpace(part)
		if len(part) >= 4 && strings.EqualFold(part[:4], "json") {
			part = strings.TrimSpace(part[4:])
		}
		if !strings.HasPrefix(part, "{") {
			continue
		}
		if m, ok := parseObject(part); ok {
			return m, true
		}
	}
	return nil, false
}

// Direct parses the whole text as a JSON object.
type Direct struct{}

// Name implements Strategy.
func (Direct) Name() string { return "direct" }

// Extract implements Strategy.
func (Direct) Extract(text string) (map[string]any, bool) {
	return parseObject(text)
}

var flatObject = regexp.MustCompile(`\{[^{}]*\}`)

// BalancedBraces tries every non-nested {...} span in order.
type BalancedBraces struct{}

// Name implements Strategy.
func (BalancedBraces) Name() string { return "balanced_braces" }

// Extract implements Strategy.
func (BalancedBraces) Extract(text string) (map[string]any, bool) {
	for _, m := range flatObject.FindAllString(text, -1) {
		if obj, ok := parseObject(m); ok {
			return obj, true
		}
	}
	return nil, false
}

// OuterBraces parses the span from the first '{' to the last '}'.
type OuterBraces struct{}

// Name implements Strategy.
func (OuterBraces) Name() string { return "outer_braces" }

// Extract implements Strategy.
func (OuterBraces) Extract(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	return parseObject(text[start : end+1])
}

var (
	labelField      = regexp.MustCompile(`(?i)["']?label["']?\s*[:=]\s*["']?(real|fake|misleading)`)
	labelWord       = regexp.MustCompile(`(?i)\b(real|fake|misleading)\b`)
	confidenceField = regexp.MustCompile(`(?i)["']?confidence["']?\s*[:=]?\s*([0-9]*\.?[0-9]+)`)
	reasoningField  = regexp.MustCompile(`["']?reasoning_summary["']?\s*[:=]\s*["'](.+?)["']`)
)

// FallbackReasoning is reported when prose extraction finds no reasoning.
const FallbackReasoning = "Extracted from non-standard response."

// ClassificationFields pulls label, confidence and reasoning_summary out of prose.
// A "label: X" pair is preferred; otherwise the first bare label word is used.
// Fails when no label can be found.
type ClassificationFields struct{}

// Name implements Strategy.
func (ClassificationFields) Name() string { return "classification_fields" }

// Extract implements Strategy.
func (ClassificationFields) Extract(text string) (map[string]any, bool) {
	label := ""
	if m := labelField.FindStringSubmatch(text); m != nil {
		label = m[1]
	} else if m := labelWord.FindStringSubmatch(text); m != nil {
		label = m[1]
	}
	if label == "" {
		return nil, false
	}

	fields := map[string]any{
		"label":             capitalize(label),
		"reasoning_summary": FallbackReasoning,
	}
	if m := confidenceField.FindStringSubmatch(text); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			fields["confidence"] = f
		}
	}
	if m := reasoningField.FindStringSubmatch(text); m != nil {
		fields["reasoning_summary"] = m[1]
	}
	return fields, true
}

var (
	explanationField = regexp.MustCompile(`(?s)detailed_explanation["']?\s*[:=]\s*["'](.+?)["']`)
	alignmentField   = regexp.MustCompile(`(?s)evidence_alignment["']?\s*[:=]\s*["'](.+?)["']`)
)

// ExplanationFallbackLen is how much raw text becomes the explanation when
// no detailed_explanation field is found.
const ExplanationFallbackLen = 500

// ExplanationFields pulls detailed_explanation and evidence_alignment out of prose.
// It always succeeds: without a detailed_explanation field the leading text is used.
type ExplanationFields struct{}

// Name implements Strategy.
func (ExplanationFields) Name() string { return "explanation_fields" }

// Extract implements Strategy.
func (ExplanationFields) Extract(text string) (map[string]any, bool) {
	fields := map[string]any{"key_inconsistencies": []any{}}
	if m := explanationField.FindStringSubmatch(text); m != nil {
		fields["detailed_explanation"] = m[1]
	} else {
		fields["detailed_explanation"] = truncate(text, ExplanationFallbackLen)
	}
	if m := alignmentField.FindStringSubmatch(text); m != nil {
		fields["evidence_alignment"] = m[1]
	}
	return fields, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
