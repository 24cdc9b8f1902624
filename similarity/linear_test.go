package similarity

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/botirk38/simfunc/activation"
	"github.com/botirk38/simfunc/combination"
	"github.com/botirk38/simfunc/params"
	"github.com/botirk38/simfunc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewLinear_WeightShape(t *testing.T) {
	tests := []struct {
		spec       string
		dim1, dim2 int
		want       int
	}{
		{"x,y", 3, 5, 8},
		{"x*y", 4, 4, 4},
		{"x,x*y,y", 3, 3, 9},
		{"y", 2, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			s, err := NewLinear(tt.dim1, tt.dim2, WithCombination(tt.spec))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.CombinedDim())

			w, b := s.Parameters()
			assert.Len(t, w, tt.want)
			assert.Zero(t, b)

			bound := math.Sqrt(6 / float64(tt.want+1))
			for _, v := range w {
				assert.LessOrEqual(t, math.Abs(v), bound)
			}
		})
	}
}

func TestNewLinear_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name       string
		spec       string
		dim1, dim2 int
	}{
		{"mismatched operands", "x*y", 3, 4},
		{"unknown token", "z", 3, 3},
		{"two chars", "xy", 3, 3},
		{"bad operator", "x%y", 3, 3},
		{"zero dim", "x,y", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinear(tt.dim1, tt.dim2, WithCombination(tt.spec))
			require.Error(t, err)
			assert.True(t, types.IsConfigurationError(err))
		})
	}
}

func TestLinear_Similarity(t *testing.T) {
	s, err := NewLinear(2, 2, WithCombination("x,y"))
	require.NoError(t, err)
	require.NoError(t, s.SetParameters([]float64{1, 2, 3, 4}, 0.5))

	// [1,2,3,4] . [1,2,3,4] + 0.5
	got, err := s.Similarity([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 30.5, got, 1e-12)
}

func TestLinear_DiagonalBilinear(t *testing.T) {
	s, err := NewLinear(2, 2, WithCombination("x*y"))
	require.NoError(t, err)
	require.NoError(t, s.SetParameters([]float64{1, 1}, 0))

	// x*y = [8, 15]
	got, err := s.Similarity([]float64{2, 3}, []float64{4, 5})
	require.NoError(t, err)
	assert.InDelta(t, 23.0, got, 1e-12)
}

func TestLinear_Activation(t *testing.T) {
	s, err := NewLinear(1, 1, WithCombination("x-y"), WithNamedActivation("sigmoid"))
	require.NoError(t, err)
	require.NoError(t, s.SetParameters([]float64{1}, 0))

	got, err := s.Similarity([]float64{3}, []float64{3})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	custom, err := NewLinear(1, 1, WithActivation(func(v float64) float64 { return -v }))
	require.NoError(t, err)
	require.NoError(t, custom.SetParameters([]float64{1, 1}, 1))
	got, err = custom.Similarity([]float64{1}, []float64{2})
	require.NoError(t, err)
	assert.InDelta(t, -4.0, got, 1e-12)

	_, err = NewLinear(1, 1, WithNamedActivation("nope"))
	assert.ErrorIs(t, err, activation.ErrUnknownActivation)
}

func TestLinear_InputDimension(t *testing.T) {
	s, err := NewLinear(2, 3)
	require.NoError(t, err)

	_, err = s.Similarity([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, combination.ErrInputDimension)

	_, err = s.SimilarityBatch(mat.NewDense(1, 2, nil), mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, combination.ErrInputDimension)
}

func TestLinear_BatchMatchesSingle(t *testing.T) {
	s, err := NewLinear(3, 3, WithCombination("x,x*y,y-x"), WithNamedActivation("tanh"))
	require.NoError(t, err)

	x := mat.NewDense(4, 3, []float64{
		0.1, 0.2, 0.3,
		-1, 0, 1,
		2, 2, 2,
		0.5, -0.5, 0.25,
	})
	y := mat.NewDense(4, 3, []float64{
		0.3, 0.2, 0.1,
		1, 0, -1,
		0, 1, 0,
		0.5, 0.5, 0.5,
	})

	batch, err := s.SimilarityBatch(x, y)
	require.NoError(t, err)
	require.Equal(t, 4, batch.Len())

	for i := 0; i < 4; i++ {
		single, err := s.Similarity(mat.Row(nil, i, x), mat.Row(nil, i, y))
		require.NoError(t, err)
		assert.InDelta(t, single, batch.AtVec(i), 1e-9)
	}
}

func TestLinear_SetParametersShape(t *testing.T) {
	s, err := NewLinear(2, 2)
	require.NoError(t, err)

	err = s.SetParameters([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrParameterShape)

	w := []float64{1, 2, 3, 4}
	require.NoError(t, s.SetParameters(w, 1))
	w[0] = 100
	got, _ := s.Parameters()
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
}

func TestLinear_ConcurrentUse(t *testing.T) {
	s, err := NewLinear(2, 2, WithCombination("x,y,x*y"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i == 0 && j%10 == 0 {
					_ = s.SetParameters(make([]float64, 6), float64(j))
					continue
				}
				_, err := s.Similarity([]float64{1, 2}, []float64{3, 4})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestFromParams_Linear(t *testing.T) {
	p := params.New(map[string]any{
		"type":         "linear",
		"tensor_1_dim": 3,
		"tensor_2_dim": 3,
		"combination":  "x,x*y,y",
		"activation":   "relu",
	})

	fn, err := FromParams(p)
	require.NoError(t, err)

	s, ok := fn.(*LinearSimilarity)
	require.True(t, ok)
	assert.Equal(t, 9, s.CombinedDim())
	assert.Equal(t, "x,x*y,y", s.Combination().String())
	assert.Equal(t, "relu", s.Config()["activation"])
}

func TestFromParams_LinearDefaults(t *testing.T) {
	fn, err := FromParams(params.New(map[string]any{
		"type":         "linear",
		"tensor_1_dim": 2,
		"tensor_2_dim": 5,
	}))
	require.NoError(t, err)

	s := fn.(*LinearSimilarity)
	assert.Equal(t, 7, s.CombinedDim())
	assert.Equal(t, combination.DefaultSpec, s.Combination().String())
	assert.Equal(t, activation.Linear, s.Config()["activation"])
}

func TestFromParams_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		kind   error
	}{
		{
			name:   "extra key",
			values: map[string]any{"type": "linear", "tensor_1_dim": 2, "tensor_2_dim": 2, "bogus": 1},
			kind:   params.ErrExtraParameters,
		},
		{
			name:   "missing dim",
			values: map[string]any{"type": "linear", "tensor_1_dim": 2},
			kind:   params.ErrMissingKey,
		},
		{
			name:   "unknown type",
			values: map[string]any{"type": "bilinear_tensor"},
			kind:   params.ErrInvalidChoice,
		},
		{
			name:   "metric with extra key",
			values: map[string]any{"type": "cosine", "scale": 2},
			kind:   params.ErrExtraParameters,
		},
		{
			name:   "bad combination",
			values: map[string]any{"type": "linear", "tensor_1_dim": 2, "tensor_2_dim": 3, "combination": "x+y"},
			kind:   combination.ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromParams(params.New(tt.values))
			require.Error(t, err)
			assert.True(t, types.IsConfigurationError(err))
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestFromParams_DefaultType(t *testing.T) {
	fn, err := FromParams(params.New(nil))
	require.NoError(t, err)
	m, ok := fn.(Metric)
	require.True(t, ok)
	assert.Equal(t, DefaultType, m.Name())
}

func TestRegister(t *testing.T) {
	err := Register("linear", linearFromParams)
	assert.ErrorIs(t, err, ErrDuplicateFunction)

	err = Register("constant_test", func(*params.Params) (Function, error) {
		return SimilarityFunc(func(a, b []float64) float64 { return 1 }), nil
	})
	if err != nil && !errors.Is(err, ErrDuplicateFunction) {
		t.Fatalf("Register failed: %v", err)
	}
	assert.Contains(t, Names(), "constant_test")

	fn, err := FromParams(params.New(map[string]any{"type": "constant_test"}))
	require.NoError(t, err)
	got, err := fn.Similarity([]float64{0}, []float64{5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	_, err = ByName("missing_test")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestSnapshotRestore(t *testing.T) {
	s, err := NewLinear(2, 2, WithCombination("x*y,x"), WithNamedActivation("tanh"))
	require.NoError(t, err)
	require.NoError(t, s.SetParameters([]float64{0.1, 0.2, 0.3, 0.4}, -0.5))

	cp, err := Snapshot("pairs", s)
	require.NoError(t, err)
	assert.Equal(t, "pairs", cp.Name)
	assert.NotEmpty(t, cp.ID.String())
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, cp.Weights)

	// Simulate a JSON round trip, where ints come back as float64.
	cp.Config["tensor_1_dim"] = 2.0
	cp.Config["tensor_2_dim"] = 2.0

	restored, err := Restore(cp)
	require.NoError(t, err)

	x, y := []float64{1, -2}, []float64{0.5, 3}
	want, err := s.Similarity(x, y)
	require.NoError(t, err)
	got, err := restored.Similarity(x, y)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestSnapshot_Errors(t *testing.T) {
	_, err := Snapshot("adhoc", SimilarityFunc(DotProductSimilarity))
	assert.ErrorIs(t, err, ErrNotConfigurable)

	custom, err := NewLinear(1, 1, WithActivation(math.Abs))
	require.NoError(t, err)
	_, err = Snapshot("custom", custom)
	assert.ErrorIs(t, err, ErrNotConfigurable)

	cp, err := Snapshot("cos", Cosine)
	require.NoError(t, err)
	assert.Empty(t, cp.Weights)

	fn, err := Restore(cp)
	require.NoError(t, err)
	m, ok := fn.(Metric)
	require.True(t, ok)
	assert.Equal(t, "cosine", m.Name())

	cp.Weights = []float64{1}
	_, err = Restore(cp)
	assert.ErrorIs(t, err, ErrParameterShape)
}
