package generate

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/realitycheck/internal/domain/corpus"
	"github.com/kailas-cloud/realitycheck/internal/domain/generation"
)

const promptTemplate = `You are an educational assistant in grounded mode.
Use ONLY the context below. If context is insufficient, return an empty valid JSON for the schema.
Return strict JSON only. No markdown.

Mode: %s
Context:
%s

Output schema:
%s`

// fullContext renders every chunk as "[Chunk id] text", hard-capped at limit runes.
func fullContext(docs []corpus.Document, limit int) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = fmt.Sprintf("[Chunk %d] %s", d.ID(), d.Text())
	}
	return corpus.Truncate(strings.Join(parts, "\n\n"), limit)
}

func buildPrompt(mode generation.Mode, contextText string) string {
	return fmt.Sprintf(promptTemplate, mode, contextText, mode.Schema())
}
