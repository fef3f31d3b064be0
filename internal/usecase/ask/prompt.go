package ask

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/search/result"
)

const promptTemplate = `You are an academic RAG assistant.
Grounded Mode rules:
1) Answer ONLY using the provided context.
2) If context is insufficient, respond exactly: "Insufficient information in uploaded material."
3) Always cite chunk IDs used.
4) Output strict JSON only.

Context:
%s

Question:
%s

Return JSON:
{
  "answer": "string",
  "explanation_simple": "string (easy English)",
  "used_chunk_ids": [1,2],
  "insufficient": false
}`

// contextBlock renders retrieved chunks as "[Chunk id] text" paragraphs, hard-capped at limit runes.
func contextBlock(hits []result.Result, limit int) string {
	parts := make([]string, len(hits))
	for i := range hits {
		d := hits[i].Document()
		parts[i] = fmt.Sprintf("[Chunk %d] %s", d.ID(), d.Text())
	}
	return corpus.Truncate(strings.Join(parts, "\n\n"), limit)
}

func buildPrompt(contextText, question string) string {
	return fmt.Sprintf(promptTemplate, contextText, question)
}
