package ranking

import (
	"math"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// DefaultCandidateMultiplier is how many candidates per requested result
// are fetched before diversity reranking.
const DefaultCandidateMultiplier = 3

// Diversify greedily reorders ranked candidates so near-duplicates are pushed
// down. The top candidate is always kept; each following pick maximises
//
//	score - penalty * max(similarity to already picked, 0)
//
// Returned entries keep their original similarity scores. Candidates without
// a vector in vectors are treated as dissimilar to everything.
func Diversify(ranked []domain.ScoredChunk, vectors map[string][]float32, k int, penalty float64) []domain.ScoredChunk {
	if k <= 0 || len(ranked) == 0 {
		return []domain.ScoredChunk{}
	}
	if len(ranked) <= k || penalty <= 0 {
		return append([]domain.ScoredChunk(nil), ranked[:min(k, len(ranked))]...)
	}

	remaining := append([]domain.ScoredChunk(nil), ranked...)
	selected := make([]domain.ScoredChunk, 0, k)
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			maxSim := 0.0
			for _, s := range selected {
				maxSim = math.Max(maxSim, CosineSimilarity(vectors[cand.ChunkID], vectors[s.ChunkID]))
			}
			adjusted := cand.Score - penalty*maxSim
			if adjusted > bestScore {
				bestScore = adjusted
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
