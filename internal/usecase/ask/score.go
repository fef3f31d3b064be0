package ask

import "math"

// ScoreParams tunes the confidence blend.
type ScoreParams struct {
	RetrievalWeight float64
	SemanticWeight  float64

	// Below LowSimilarity the blend is reduced by LowPenalty, floored at LowFloor.
	LowSimilarity float64
	LowPenalty    int
	LowFloor      int

	// Below WeakSimilarity the blend is reduced by WeakPenalty, floored at WeakFloor.
	WeakSimilarity float64
	WeakPenalty    int
	WeakFloor      int
}

// DefaultScoreParams returns the production weights and thresholds.
func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		RetrievalWeight: 0.45,
		SemanticWeight:  0.55,
		LowSimilarity:   0.25,
		LowPenalty:      35,
		LowFloor:        10,
		WeakSimilarity:  0.40,
		WeakPenalty:     20,
		WeakFloor:       15,
	}
}

// Score blends the mean retrieval score of the cited sources with the best
// answer-to-source similarity into a 0..100 confidence.
func (p ScoreParams) Score(retrievalScores []float64, maxSim float64) int {
	var sum float64
	for _, s := range retrievalScores {
		sum += clamp01(s)
	}
	retrieval := int(sum / float64(max(1, len(retrievalScores))) * 100)
	semantic := int(clamp01(maxSim) * 100)

	blended := int(math.Round(p.RetrievalWeight*float64(retrieval) + p.SemanticWeight*float64(semantic)))
	switch {
	case maxSim < p.LowSimilarity:
		blended = max(p.LowFloor, blended-p.LowPenalty)
	case maxSim < p.WeakSimilarity:
		blended = max(p.WeakFloor, blended-p.WeakPenalty)
	}
	return min(100, max(0, blended))
}

// Score applies DefaultScoreParams.
func Score(retrievalScores []float64, maxSim float64) int {
	return DefaultScoreParams().Score(retrievalScores, maxSim)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
