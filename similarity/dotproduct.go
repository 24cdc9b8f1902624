package similarity

import "github.com/viterin/vek"

// DotProductSimilarity computes the dot product between two vectors.
// No normalization is applied, so results depend on vector magnitudes.
func DotProductSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return vek.Dot(a, b)
}

// DotProduct is the registered "dot_product" metric.
var DotProduct = NewMetric("dot_product", DotProductSimilarity)
