package classify

import "strings"

const promptTemplate = `You are an expert fact-checker. Classify the news below as Real, Fake, or Misleading.

Rules:
- Real: factually accurate and supported by credible evidence.
- Fake: demonstrably false or fabricated.
- Misleading: contains some truth but presented deceptively.

Respond with ONLY this exact JSON format, no other text:
{"label": "Fake", "confidence": 0.95, "reasoning_summary": "brief reason"}

News to analyze:
{news_text}

JSON:`

func buildPrompt(text string) string {
	return strings.Replace(promptTemplate, "{news_text}", text, 1)
}
