package similarity

import "gonum.org/v1/gonum/mat"

// Metric is a parameter-free similarity function with a registered name.
type Metric struct {
	name string
	fn   SimilarityFunc
}

// NewMetric names fn so it can be registered and checkpointed.
func NewMetric(name string, fn SimilarityFunc) Metric {
	return Metric{name: name, fn: fn}
}

// Name returns the registered name of the metric.
func (m Metric) Name() string { return m.name }

func (m Metric) Similarity(x, y []float64) (float64, error) {
	return m.fn.Similarity(x, y)
}

func (m Metric) SimilarityBatch(x, y mat.Matrix) (*mat.VecDense, error) {
	return m.fn.SimilarityBatch(x, y)
}

func (m Metric) Config() map[string]any {
	return map[string]any{"type": m.name}
}
