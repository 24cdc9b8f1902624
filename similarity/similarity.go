// Package similarity provides similarity functions for comparing embedding vectors,
// from fixed metrics such as cosine to the learned "linear" combination similarity.
package similarity

import (
	"errors"
	"fmt"

	"github.com/botirk38/simfunc/combination"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnknownFunction indicates a type name with no registered constructor
	ErrUnknownFunction = errors.New("unknown similarity function")

	// ErrDuplicateFunction indicates a type name registered twice
	ErrDuplicateFunction = errors.New("similarity function already registered")

	// ErrParameterShape indicates learned parameters of the wrong size
	ErrParameterShape = errors.New("parameter shape mismatch")

	// ErrNotConfigurable indicates a function that cannot describe its own config
	ErrNotConfigurable = errors.New("similarity function is not configurable")
)

// Function scores how similar two vectors are. Higher means more similar.
// Implementations must be safe for concurrent use.
type Function interface {
	// Similarity scores a single pair of vectors.
	Similarity(x, y []float64) (float64, error)
	// SimilarityBatch scores each row of x against the same row of y.
	SimilarityBatch(x, y mat.Matrix) (*mat.VecDense, error)
}

// Configurable functions can report the params they were built from, so that
// FromParams can rebuild them.
type Configurable interface {
	Config() map[string]any
}

// Learnable functions own weights that are fitted outside this package.
type Learnable interface {
	Function
	// Parameters returns copies of the weight vector and bias.
	Parameters() ([]float64, float64)
	// SetParameters replaces the weight vector and bias.
	SetParameters(weights []float64, bias float64) error
}

// SimilarityFunc represents a function that computes similarity between two embedding vectors.
// It should return a float64 where higher values indicate greater similarity.
type SimilarityFunc func(a, b []float64) float64

// Similarity implements Function. Unlike the bare function, it rejects
// vectors of different lengths.
func (f SimilarityFunc) Similarity(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: lengths %d and %d", combination.ErrInputDimension, len(x), len(y))
	}
	return f(x, y), nil
}

// SimilarityBatch implements Function by scoring row by row.
func (f SimilarityFunc) SimilarityBatch(x, y mat.Matrix) (*mat.VecDense, error) {
	return rowwise(x, y, f.Similarity)
}

func rowwise(x, y mat.Matrix, score func(x, y []float64) (float64, error)) (*mat.VecDense, error) {
	xr, _ := x.Dims()
	yr, _ := y.Dims()
	if xr != yr {
		return nil, fmt.Errorf("%w: batch sizes %d and %d", combination.ErrInputDimension, xr, yr)
	}
	out := mat.NewVecDense(xr, nil)
	for i := 0; i < xr; i++ {
		s, err := score(mat.Row(nil, i, x), mat.Row(nil, i, y))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out.SetVec(i, s)
	}
	return out, nil
}
