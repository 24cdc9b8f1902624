package similarity

import "github.com/viterin/vek"

// ManhattanSimilarity computes similarity based on Manhattan (L1) distance.
// Returns 1 / (1 + distance) to convert distance to similarity.
func ManhattanSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return 1 / (1 + vek.ManhattanDistance(a, b))
}

// Manhattan is the registered "manhattan" metric.
var Manhattan = NewMetric("manhattan", ManhattanSimilarity)
