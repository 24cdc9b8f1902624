package similarity

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PearsonCorrelationSimilarity computes the Pearson correlation coefficient.
// Returns a value between -1 and 1, where 1 means perfect positive correlation.
// Constant vectors have no defined correlation and score 0.
func PearsonCorrelationSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}

	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Pearson is the registered "pearson" metric.
var Pearson = NewMetric("pearson", PearsonCorrelationSimilarity)
