package similarity

import "github.com/viterin/vek"

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	normA := vek.Norm(a)
	normB := vek.Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}

	return vek.Dot(a, b) / (normA * normB)
}

// Cosine is the registered "cosine" metric.
var Cosine = NewMetric("cosine", CosineSimilarity)
