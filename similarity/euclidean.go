package similarity

import "github.com/viterin/vek"

// EuclideanSimilarity computes similarity based on Euclidean distance.
// Returns 1 / (1 + distance) to convert distance to similarity (higher = more similar).
// Result is always between 0 and 1, where 1 means identical vectors.
func EuclideanSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return 1 / (1 + vek.Distance(a, b))
}

// Euclidean is the registered "euclidean" metric.
var Euclidean = NewMetric("euclidean", EuclideanSimilarity)
