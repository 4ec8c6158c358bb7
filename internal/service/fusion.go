package service

import (
	"math"
	"sort"
)

// ScoredSKU is one (SKU, raw score) pair produced by a scorer. Score
// magnitude is scorer-specific and only comparable within one result set.
type ScoredSKU struct {
	SKU   string
	Score float64
}

// normalizeScores min-max scales a score map to [0, 1]. A map whose values
// are all equal (including a single entry) normalizes to uniform 1.0 so that
// "all equally relevant" maps to the maximum rather than dividing by zero.
func normalizeScores(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return map[string]float64{}
	}

	minScore := math.Inf(1)
	maxScore := math.Inf(-1)
	for _, v := range scores {
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}

	normalized := make(map[string]float64, len(scores))
	if maxScore == minScore {
		for k := range scores {
			normalized[k] = 1.0
		}
		return normalized
	}

	for k, v := range scores {
		normalized[k] = (v - minScore) / (maxScore - minScore)
	}
	return normalized
}

// fusedScore carries the hybrid score together with its normalized parts.
type fusedScore struct {
	SKU          string
	HybridScore  float64
	LexicalScore float64
	VectorScore  float64
}

// fuseScores normalizes both score maps independently, then combines them
// over the union of SKUs: alpha weights the vector side, (1-alpha) the
// lexical side. An SKU present in only one map still competes, with 0.0
// contributed by the absent side. The result is ordered by hybrid score
// descending, ties broken by SKU ascending for reproducible output.
func fuseScores(lexical, vector map[string]float64, alpha float64) []fusedScore {
	lexNorm := normalizeScores(lexical)
	vecNorm := normalizeScores(vector)

	union := make(map[string]struct{}, len(lexNorm)+len(vecNorm))
	for sku := range lexNorm {
		union[sku] = struct{}{}
	}
	for sku := range vecNorm {
		union[sku] = struct{}{}
	}

	fused := make([]fusedScore, 0, len(union))
	for sku := range union {
		lex := lexNorm[sku]
		vec := vecNorm[sku]
		fused = append(fused, fusedScore{
			SKU:          sku,
			HybridScore:  alpha*vec + (1-alpha)*lex,
			LexicalScore: lex,
			VectorScore:  vec,
		})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].HybridScore != fused[j].HybridScore {
			return fused[i].HybridScore > fused[j].HybridScore
		}
		return fused[i].SKU < fused[j].SKU
	})

	return fused
}

// cosineSimilarity computes dot(a,b) / (|a| * |b|). A zero-norm vector
// yields 0 rather than a division fault.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
