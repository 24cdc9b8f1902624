package params

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/botirk38/simfunc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPop(t *testing.T) {
	p := New(map[string]any{"tensor_1_dim": 3, "combination": "x,y"})

	dim, err := p.PopInt("tensor_1_dim")
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
	assert.False(t, p.Has("tensor_1_dim"))

	_, err = p.PopInt("tensor_1_dim")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.True(t, types.IsConfigurationError(err))

	combo, err := p.PopStringDefault("combination", "x")
	require.NoError(t, err)
	assert.Equal(t, "x,y", combo)

	combo, err = p.PopStringDefault("combination", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", combo)

	assert.NoError(t, p.AssertEmpty("Test"))
}

func TestPopInt_Conversions(t *testing.T) {
	p := New(map[string]any{
		"int":     4,
		"int64":   int64(5),
		"float":   6.0,
		"string":  "7",
		"frac":    1.5,
		"garbage": []any{1},
	})

	for key, want := range map[string]int{"int": 4, "int64": 5, "float": 6, "string": 7} {
		got, err := p.PopInt(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	_, err := p.PopInt("frac")
	assert.ErrorIs(t, err, ErrWrongType)
	_, err = p.PopInt("garbage")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestPopInt_OutOfRange(t *testing.T) {
	tests := map[string]any{
		"positive infinity": math.Inf(1),
		"negative infinity": math.Inf(-1),
		"nan":               math.NaN(),
		"above int range":   1e19,
		"below int range":   -1e19,
		"huge unsigned":     uint64(math.MaxUint64),
	}

	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			p := New(map[string]any{"n": v})
			_, err := p.PopInt("n")
			assert.ErrorIs(t, err, ErrWrongType)
		})
	}

	p := New(map[string]any{"n": -float64(1 << 53)})
	got, err := p.PopInt("n")
	require.NoError(t, err)
	assert.Equal(t, -(1 << 53), got)
}

func TestPopDurationDefault(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "1m30s", 90 * time.Second, false},
		{"integer seconds", 60, time.Minute, false},
		{"whole float seconds", 2.0, 2 * time.Second, false},
		{"fractional seconds", 0.5, 500 * time.Millisecond, false},
		{"numeric string", "60", 0, true},
		{"word", "soon", 0, true},
		{"infinite", math.Inf(1), 0, true},
		{"list", []any{1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(map[string]any{"ttl": tt.value})
			got, err := p.PopDurationDefault("ttl", time.Hour)
			if tt.wantErr {
				assert.True(t, types.IsConfigurationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, p.Len())
		})
	}

	got, err := New(nil).PopDurationDefault("ttl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, got)
}

func TestAssertEmpty(t *testing.T) {
	p := New(map[string]any{"b": 1, "a": 2})
	err := p.AssertEmpty("LinearSimilarity")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraParameters)
	assert.Contains(t, err.Error(), "LinearSimilarity")
	assert.Contains(t, err.Error(), "[a b]")
}

func TestPopParams_History(t *testing.T) {
	p := New(map[string]any{
		"similarity": map[string]any{"type": "linear", "extra": true},
	})

	sub, err := p.PopParams("similarity")
	require.NoError(t, err)

	typ, err := sub.PopString("type")
	require.NoError(t, err)
	assert.Equal(t, "linear", typ)

	err = sub.AssertEmpty("Similarity")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity.extra")

	missing, err := p.PopParams("store")
	require.NoError(t, err)
	assert.Equal(t, 0, missing.Len())
}

func TestPopChoice(t *testing.T) {
	p := New(map[string]any{"type": "cosine"})
	got, err := p.PopChoice("type", []string{"cosine", "linear"}, "linear")
	require.NoError(t, err)
	assert.Equal(t, "cosine", got)

	got, err = p.PopChoice("type", []string{"cosine", "linear"}, "linear")
	require.NoError(t, err)
	assert.Equal(t, "linear", got)

	p = New(map[string]any{"type": "bilinear"})
	_, err = p.PopChoice("type", []string{"cosine", "linear"}, "linear")
	assert.ErrorIs(t, err, ErrInvalidChoice)

	_, err = New(nil).PopChoice("type", []string{"cosine"}, "")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestPopFloatAndBool(t *testing.T) {
	p := New(map[string]any{"f": 2, "b": "true", "bad": "nope"})

	f, err := p.PopFloatDefault("f", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	f, err = p.PopFloatDefault("missing", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, f)

	b, err := p.PopBoolDefault("b", false)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = p.PopBoolDefault("bad", false)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestDuplicateIsIndependent(t *testing.T) {
	p := New(map[string]any{"nested": map[string]any{"k": 1}})
	dup := p.Duplicate()

	_, err := dup.Pop("nested")
	require.NoError(t, err)

	assert.True(t, p.Has("nested"))
	assert.Equal(t, map[string]any{"nested": map[string]any{"k": 1}}, p.AsMap())
}

func TestParse(t *testing.T) {
	yamlDoc := []byte(`
similarity:
  type: linear
  tensor_1_dim: 3
  tensor_2_dim: 3
  combination: "x,y,x*y"
`)
	p, err := Parse(yamlDoc)
	require.NoError(t, err)

	sim, err := p.PopParams("similarity")
	require.NoError(t, err)
	dim, err := sim.PopInt("tensor_1_dim")
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	jsonDoc := []byte(`{"type": "linear", "tensor_1_dim": 4}`)
	p, err = Parse(jsonDoc)
	require.NoError(t, err)
	dim, err = p.PopInt("tensor_1_dim")
	require.NoError(t, err)
	assert.Equal(t, 4, dim)

	_, err = Parse([]byte("a: [unclosed"))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: cosine\n"), 0o600))
	p, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"type"}, p.Keys())

	_, err = FromFile(filepath.Join(dir, "config.toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = FromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
