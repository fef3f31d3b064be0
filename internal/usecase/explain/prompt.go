package explain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/realitycheck/internal/domain/classification"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
)

const noEvidence = "No evidence retrieved."

const promptTemplate = `You are an expert fact-checker. Provide a detailed analysis.

News: {news_text}

Classification: {label} (confidence: {confidence})
Summary: {reasoning_summary}

Evidence:
{evidence_block}

Respond with ONLY this JSON format, no other text:
{"detailed_explanation": "3-5 sentence explanation", "key_inconsistencies": ["point1", "point2"], "evidence_alignment": "how evidence relates"}

JSON:`

// evidenceBlock numbers the articles from 1 in retrieval order.
func evidenceBlock(evidence []result.Result) string {
	if len(evidence) == 0 {
		return noEvidence
	}
	parts := make([]string, len(evidence))
	for i := range evidence {
		d := evidence[i].Document()
		parts[i] = fmt.Sprintf("[%d] %s (Source: %s)\n    %s", i+1, d.Title(), d.Source(), d.Text())
	}
	return strings.Join(parts, "\n\n")
}

func buildPrompt(text string, cls classification.Result, evidence []result.Result) string {
	return strings.NewReplacer(
		"{news_text}", text,
		"{label}", string(cls.Label()),
		"{confidence}", strconv.FormatFloat(cls.Confidence(), 'f', -1, 64),
		"{reasoning_summary}", cls.Reasoning(),
		"{evidence_block}", evidenceBlock(evidence),
	).Replace(promptTemplate)
}
