package recommend

import "math"

// CosineSimilarity returns the normalized dot product of two vectors.
// Vectors of unequal length are defined to have similarity 0 rather than
// raising an error: embeddings from incompatible model versions must never
// be compared as if compatible. A zero-norm vector also yields 0.
func CosineSimilarity(a, b []float32) float64 {
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
