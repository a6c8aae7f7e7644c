package ranking

import "math"

// CosineSimilarity returns dot(a, b) / (|a| * |b|), clamped to [-1, 1].
// If either norm is zero the similarity is 0. Vectors of different length
// also score 0; Rank rejects them before scoring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosine(a, b, norm(a))
}

// norm returns the Euclidean length of v.
func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine scores b against a query whose norm is already known.
func cosine(query, b []float32, queryNorm float64) float64 {
	if queryNorm == 0 {
		return 0
	}

	var dot, normB float64
	for i := range query {
		dot += float64(query[i]) * float64(b[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normB == 0 {
		return 0
	}

	score := dot / (queryNorm * math.Sqrt(normB))
	switch {
	case math.IsNaN(score):
		return 0
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}
