package match

import "math"

// Cosine returns the cosine similarity of two equal-length vectors:
// dot(a,b) / (||a|| * ||b||).
//
// A zero-magnitude vector makes the quotient undefined; we define it as 0.0,
// which keeps such candidates below any acceptance threshold. The upstream
// generator never produces zero vectors, but hand-seeded rows have.
// Length checking is the caller's responsibility.
func Cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
