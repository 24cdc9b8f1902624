// Package combination parses and evaluates combination specs such as "x,y,x*y",
// which describe how two feature vectors are combined into one before a
// similarity projection.
//
// A spec is a comma separated list of tokens. Each token is x, y, or a three
// character binary expression <operand><operator><operand> with operands x or y
// and operator one of * / + -. The value of a spec is the concatenation of the
// token values in order; its dimension is the sum of the token dimensions.
package combination

import (
	"fmt"
	"strings"

	"github.com/botirk38/simfunc/types"
	"gonum.org/v1/gonum/mat"
)

// DefaultSpec concatenates the two inputs.
const DefaultSpec = "x,y"

// Combination is a parsed, ordered list of expressions.
// It is immutable and safe for concurrent use.
type Combination struct {
	exprs []Expr
}

// Parse splits spec on commas and parses every token.
func Parse(spec string) (Combination, error) {
	tokens := strings.Split(spec, ",")
	exprs := make([]Expr, 0, len(tokens))
	for _, tok := range tokens {
		expr, err := ParseExpr(strings.TrimSpace(tok))
		if err != nil {
			return Combination{}, err
		}
		exprs = append(exprs, expr)
	}
	return Combination{exprs: exprs}, nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(spec string) Combination {
	c, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// Exprs returns the parsed expressions in order.
func (c Combination) Exprs() []Expr {
	return append([]Expr(nil), c.exprs...)
}

// Len returns the number of expressions.
func (c Combination) Len() int { return len(c.exprs) }

func (c Combination) String() string {
	parts := make([]string, len(c.exprs))
	for i, e := range c.exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// check rejects the zero Combination, which has no expressions.
func (c Combination) check() error {
	if len(c.exprs) == 0 {
		return types.NewConfigurationError(ErrInvalidCombination, "no expressions")
	}
	return nil
}

// Dim returns the width of the combined vector for inputs of width dimX and dimY.
func (c Combination) Dim(dimX, dimY int) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	if dimX <= 0 || dimY <= 0 {
		return 0, types.NewConfigurationError(ErrInvalidDimension, "got %d and %d", dimX, dimY)
	}
	total := 0
	for _, e := range c.exprs {
		d, err := e.Dim(dimX, dimY)
		if err != nil {
			return 0, err
		}
		total += d
	}
	return total, nil
}

// Eval combines one pair of vectors. The inputs are not modified and the
// result never aliases them.
func (c Combination) Eval(x, y []float64) ([]float64, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	parts := make([][]float64, len(c.exprs))
	total := 0
	for i, e := range c.exprs {
		v, err := e.Eval(x, y)
		if err != nil {
			return nil, err
		}
		parts[i] = v
		total += len(v)
	}
	out := make([]float64, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// EvalBatch combines a batch of vector pairs, one pair per row of x and y.
func (c Combination) EvalBatch(x, y mat.Matrix) (*mat.Dense, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	xr, _ := x.Dims()
	yr, _ := y.Dims()
	if xr != yr {
		return nil, fmt.Errorf("%w: batch sizes %d and %d", ErrInputDimension, xr, yr)
	}

	parts := make([]mat.Matrix, len(c.exprs))
	total := 0
	for i, e := range c.exprs {
		m, err := e.EvalBatch(x, y)
		if err != nil {
			return nil, err
		}
		_, cols := m.Dims()
		parts[i] = m
		total += cols
	}

	out := mat.NewDense(xr, total, nil)
	offset := 0
	for _, p := range parts {
		_, cols := p.Dims()
		out.Slice(0, xr, offset, offset+cols).(*mat.Dense).Copy(p)
		offset += cols
	}
	return out, nil
}

// EvaluateDimension parses each expression and returns the summed dimension.
func EvaluateDimension(expressions []string, dimX, dimY int) (int, error) {
	c, err := fromTokens(expressions)
	if err != nil {
		return 0, err
	}
	return c.Dim(dimX, dimY)
}

// EvaluateCombination parses each expression and returns the concatenated value.
func EvaluateCombination(expressions []string, x, y []float64) ([]float64, error) {
	c, err := fromTokens(expressions)
	if err != nil {
		return nil, err
	}
	return c.Eval(x, y)
}

func fromTokens(tokens []string) (Combination, error) {
	exprs := make([]Expr, 0, len(tokens))
	for _, tok := range tokens {
		e, err := ParseExpr(tok)
		if err != nil {
			return Combination{}, err
		}
		exprs = append(exprs, e)
	}
	return Combination{exprs: exprs}, nil
}
