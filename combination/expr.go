package combination

import (
	"fmt"

	"github.com/botirk38/simfunc/types"
	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"
)

// Expr is one node of a parsed combination. Dim, Eval and EvalBatch walk the
// same tree, so the dimension a node reports is always the width of the value
// it produces.
type Expr interface {
	Dim(dimX, dimY int) (int, error)
	Eval(x, y []float64) ([]float64, error)
	EvalBatch(x, y mat.Matrix) (mat.Matrix, error)
	String() string
}

// Operand names one of the two input vectors.
type Operand byte

const (
	OperandX Operand = 'x'
	OperandY Operand = 'y'
)

// Operator is an elementwise binary operation.
type Operator byte

const (
	OpMul Operator = '*'
	OpDiv Operator = '/'
	OpAdd Operator = '+'
	OpSub Operator = '-'
)

func parseOperator(c byte) (Operator, error) {
	switch op := Operator(c); op {
	case OpMul, OpDiv, OpAdd, OpSub:
		return op, nil
	default:
		return 0, types.NewConfigurationError(ErrInvalidOperation, "%q", string(c))
	}
}

func (op Operator) apply(a, b []float64) []float64 {
	switch op {
	case OpMul:
		return vek.Mul(a, b)
	case OpDiv:
		return vek.Div(a, b)
	case OpAdd:
		return vek.Add(a, b)
	default:
		return vek.Sub(a, b)
	}
}

func (op Operator) applyBatch(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	switch op {
	case OpMul:
		out.MulElem(a, b)
	case OpDiv:
		out.DivElem(a, b)
	case OpAdd:
		out.Add(a, b)
	default:
		out.Sub(a, b)
	}
	return &out
}

// Leaf is a bare reference to x or y.
type Leaf struct {
	Operand Operand
}

func (l Leaf) check() error {
	switch l.Operand {
	case OperandX, OperandY:
		return nil
	default:
		return types.NewConfigurationError(ErrInvalidCombination, "unknown operand %q", string(l.Operand))
	}
}

func (l Leaf) Dim(dimX, dimY int) (int, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	if l.Operand == OperandX {
		return dimX, nil
	}
	return dimY, nil
}

func (l Leaf) Eval(x, y []float64) ([]float64, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	if l.Operand == OperandX {
		return x, nil
	}
	return y, nil
}

func (l Leaf) EvalBatch(x, y mat.Matrix) (mat.Matrix, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	if l.Operand == OperandX {
		return x, nil
	}
	return y, nil
}

func (l Leaf) String() string { return string(l.Operand) }

// Binary applies Op elementwise to the values of Left and Right.
type Binary struct {
	Op          Operator
	Left, Right Expr
}

// check rejects hand-built nodes with an unknown operator or a missing side.
func (b Binary) check() error {
	if _, err := parseOperator(byte(b.Op)); err != nil {
		return err
	}
	if b.Left == nil || b.Right == nil {
		return types.NewConfigurationError(ErrInvalidCombination, "binary %q is missing an operand", string(b.Op))
	}
	return nil
}

func (b Binary) Dim(dimX, dimY int) (int, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	left, err := b.Left.Dim(dimX, dimY)
	if err != nil {
		return 0, err
	}
	right, err := b.Right.Dim(dimX, dimY)
	if err != nil {
		return 0, err
	}
	if left != right {
		return 0, types.NewConfigurationError(ErrDimensionMismatch,
			"operation %q in %q combines %d and %d", string(b.Op), b.String(), left, right)
	}
	return left, nil
}

func (b Binary) Eval(x, y []float64) ([]float64, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	left, err := b.Left.Eval(x, y)
	if err != nil {
		return nil, err
	}
	right, err := b.Right.Eval(x, y)
	if err != nil {
		return nil, err
	}
	if len(left) != len(right) {
		return nil, fmt.Errorf("%w: %q combines lengths %d and %d", ErrInputDimension, b.String(), len(left), len(right))
	}
	if len(left) == 0 {
		return []float64{}, nil
	}
	return b.Op.apply(left, right), nil
}

func (b Binary) EvalBatch(x, y mat.Matrix) (mat.Matrix, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	left, err := b.Left.EvalBatch(x, y)
	if err != nil {
		return nil, err
	}
	right, err := b.Right.EvalBatch(x, y)
	if err != nil {
		return nil, err
	}
	lr, lc := left.Dims()
	rr, rc := right.Dims()
	if lr != rr || lc != rc {
		return nil, fmt.Errorf("%w: %q combines %dx%d and %dx%d", ErrInputDimension, b.String(), lr, lc, rr, rc)
	}
	return b.Op.applyBatch(left, right), nil
}

func (b Binary) String() string {
	if b.Left == nil || b.Right == nil {
		return string(b.Op)
	}
	return b.Left.String() + string(b.Op) + b.Right.String()
}

// ParseExpr parses a single combination token.
func ParseExpr(token string) (Expr, error) {
	switch token {
	case "x":
		return Leaf{Operand: OperandX}, nil
	case "y":
		return Leaf{Operand: OperandY}, nil
	}
	if len(token) != 3 {
		return nil, types.NewConfigurationError(ErrInvalidCombination, "%q", token)
	}
	left, err := ParseExpr(token[0:1])
	if err != nil {
		return nil, err
	}
	right, err := ParseExpr(token[2:3])
	if err != nil {
		return nil, err
	}
	op, err := parseOperator(token[1])
	if err != nil {
		return nil, err
	}
	return Binary{Op: op, Left: left, Right: right}, nil
}
