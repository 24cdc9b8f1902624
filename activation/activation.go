// Package activation provides scalar activation functions selectable by name.
package activation

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/botirk38/simfunc/types"
)

// Func maps a pre-activation value to its activated value. It must be pure.
type Func func(float64) float64

// Name of the identity activation.
const Linear = "linear"

var (
	// ErrUnknownActivation indicates a name with no registered activation
	ErrUnknownActivation = errors.New("unknown activation")

	// ErrDuplicateActivation indicates a name registered twice
	ErrDuplicateActivation = errors.New("activation already registered")
)

// Identity is the "no activation" activation.
func Identity(v float64) float64 { return v }

func ReLU(v float64) float64 { return math.Max(0, v) }

func LeakyReLU(v float64) float64 {
	if v < 0 {
		return 0.01 * v
	}
	return v
}

func ELU(v float64) float64 {
	if v < 0 {
		return math.Expm1(v)
	}
	return v
}

func Sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	// Avoid overflow of exp(-v) for large negative v.
	e := math.Exp(v)
	return e / (1 + e)
}

func Tanh(v float64) float64 { return math.Tanh(v) }

func Softplus(v float64) float64 {
	// log(1+e^v) == v + log(1+e^-v), stable for large v
	if v > 0 {
		return v + math.Log1p(math.Exp(-v))
	}
	return math.Log1p(math.Exp(v))
}

func Softsign(v float64) float64 { return v / (1 + math.Abs(v)) }

var (
	mu       sync.RWMutex
	registry = map[string]Func{
		Linear:       Identity,
		"relu":       ReLU,
		"leaky_relu": LeakyReLU,
		"elu":        ELU,
		"sigmoid":    Sigmoid,
		"tanh":       Tanh,
		"softplus":   Softplus,
		"softsign":   Softsign,
	}
)

// Register adds a named activation.
func Register(name string, fn Func) error {
	if fn == nil {
		return errors.New("activation cannot be nil")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; ok {
		return types.NewConfigurationError(ErrDuplicateActivation, "%q", name)
	}
	registry[name] = fn
	return nil
}

// ByName looks up a registered activation. The empty name means Linear.
func ByName(name string) (Func, error) {
	if name == "" {
		name = Linear
	}
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, types.NewConfigurationError(ErrUnknownActivation, "%q (choose from %v)", name, namesLocked())
	}
	return fn, nil
}

// Names returns the registered activation names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply runs fn over vs in place and returns vs.
func Apply(fn Func, vs []float64) []float64 {
	if fn == nil {
		return vs
	}
	for i, v := range vs {
		vs[i] = fn(v)
	}
	return vs
}
