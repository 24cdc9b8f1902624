package similarity

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/botirk38/simfunc/activation"
	"github.com/botirk38/simfunc/combination"
	"github.com/botirk38/simfunc/params"
	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LinearType is the registered name of LinearSimilarity.
const LinearType = "linear"

// LinearSimilarity computes act(w . [c1(x,y); c2(x,y); ...] + b), where the
// terms ci come from a combination spec such as "x,y,x*y" and w, b are learned.
//
// With the combination "x*y" this is a bilinear similarity with a diagonal
// weight matrix.
type LinearSimilarity struct {
	dim1, dim2     int
	combination    combination.Combination
	activation     activation.Func
	activationName string

	mu      sync.RWMutex
	weights []float64
	bias    float64
}

// LinearOption configures a LinearSimilarity.
type LinearOption func(*LinearSimilarity) error

// WithCombination sets the combination spec. The default is "x,y".
func WithCombination(spec string) LinearOption {
	return func(s *LinearSimilarity) error {
		c, err := combination.Parse(spec)
		if err != nil {
			return err
		}
		s.combination = c
		return nil
	}
}

// WithActivation sets a custom activation. Functions built this way cannot be
// checkpointed, since the activation has no registered name.
func WithActivation(fn activation.Func) LinearOption {
	return func(s *LinearSimilarity) error {
		if fn == nil {
			return errors.New("activation cannot be nil")
		}
		s.activation = fn
		s.activationName = ""
		return nil
	}
}

// WithNamedActivation sets a registered activation, for example "tanh".
func WithNamedActivation(name string) LinearOption {
	return func(s *LinearSimilarity) error {
		fn, err := activation.ByName(name)
		if err != nil {
			return err
		}
		if name == "" {
			name = activation.Linear
		}
		s.activation = fn
		s.activationName = name
		return nil
	}
}

// NewLinear builds a LinearSimilarity for inputs of width dim1 (x) and dim2 (y).
// The combination is validated against the dimensions here, so a bad
// configuration never reaches a forward pass.
func NewLinear(dim1, dim2 int, opts ...LinearOption) (*LinearSimilarity, error) {
	s := &LinearSimilarity{
		dim1:           dim1,
		dim2:           dim2,
		combination:    combination.MustParse(combination.DefaultSpec),
		activation:     activation.Identity,
		activationName: activation.Linear,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	dim, err := s.combination.Dim(dim1, dim2)
	if err != nil {
		return nil, err
	}
	s.weights = make([]float64, dim)
	s.Reset()
	return s, nil
}

func linearFromParams(p *params.Params) (Function, error) {
	dim1, err := p.PopInt("tensor_1_dim")
	if err != nil {
		return nil, err
	}
	dim2, err := p.PopInt("tensor_2_dim")
	if err != nil {
		return nil, err
	}
	spec, err := p.PopStringDefault("combination", combination.DefaultSpec)
	if err != nil {
		return nil, err
	}
	act, err := p.PopStringDefault("activation", activation.Linear)
	if err != nil {
		return nil, err
	}
	if err := p.AssertEmpty("LinearSimilarity"); err != nil {
		return nil, err
	}
	return NewLinear(dim1, dim2, WithCombination(spec), WithNamedActivation(act))
}

// Reset draws weights uniformly from [-s, s] with s = sqrt(6/(dim+1)) and
// zeroes the bias.
func (s *LinearSimilarity) Reset() {
	std := math.Sqrt(6 / float64(len(s.weights)+1))
	dist := distuv.Uniform{Min: -std, Max: std}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.weights {
		s.weights[i] = dist.Rand()
	}
	s.bias = 0
}

// Dims returns the expected widths of x and y.
func (s *LinearSimilarity) Dims() (int, int) { return s.dim1, s.dim2 }

// CombinedDim returns the length of the weight vector.
func (s *LinearSimilarity) CombinedDim() int { return len(s.weights) }

// Combination returns the parsed combination.
func (s *LinearSimilarity) Combination() combination.Combination { return s.combination }

// Parameters returns copies of the weight vector and bias.
func (s *LinearSimilarity) Parameters() ([]float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.weights...), s.bias
}

// SetParameters replaces the weight vector and bias.
func (s *LinearSimilarity) SetParameters(weights []float64, bias float64) error {
	if len(weights) != len(s.weights) {
		return fmt.Errorf("%w: got %d weights, want %d", ErrParameterShape, len(weights), len(s.weights))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.weights, weights)
	s.bias = bias
	return nil
}

// Config returns the params that rebuild this function with FromParams.
// A custom, unnamed activation is reported as an empty name.
func (s *LinearSimilarity) Config() map[string]any {
	return map[string]any{
		"type":         LinearType,
		"tensor_1_dim": s.dim1,
		"tensor_2_dim": s.dim2,
		"combination":  s.combination.String(),
		"activation":   s.activationName,
	}
}

func (s *LinearSimilarity) checkInput(dimX, dimY int) error {
	if dimX != s.dim1 || dimY != s.dim2 {
		return fmt.Errorf("%w: got widths %d and %d, want %d and %d",
			combination.ErrInputDimension, dimX, dimY, s.dim1, s.dim2)
	}
	return nil
}

// Similarity scores a single pair of vectors.
func (s *LinearSimilarity) Similarity(x, y []float64) (float64, error) {
	if err := s.checkInput(len(x), len(y)); err != nil {
		return 0, err
	}
	combined, err := s.combination.Eval(x, y)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	score := vek.Dot(combined, s.weights) + s.bias
	s.mu.RUnlock()

	return s.activation(score), nil
}

// SimilarityBatch scores each row of x against the same row of y.
func (s *LinearSimilarity) SimilarityBatch(x, y mat.Matrix) (*mat.VecDense, error) {
	_, xc := x.Dims()
	_, yc := y.Dims()
	if err := s.checkInput(xc, yc); err != nil {
		return nil, err
	}
	combined, err := s.combination.EvalBatch(x, y)
	if err != nil {
		return nil, err
	}

	rows, _ := combined.Dims()
	out := mat.NewVecDense(rows, nil)

	s.mu.RLock()
	out.MulVec(combined, mat.NewVecDense(len(s.weights), s.weights))
	bias := s.bias
	s.mu.RUnlock()

	scores := out.RawVector().Data
	floats.AddConst(bias, scores)
	activation.Apply(s.activation, scores)
	return out, nil
}
