package exec

import (
	"math"
	"strings"

	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/value"
)

// Binary operators require operands of the same kind. There is no implicit
// conversion between int and float.

// operandKinds lists the operand kinds an operator accepts, for error messages.
var operandKinds = map[ast.Operator]string{
	ast.Add: "int, float, str or list",
	ast.Sub: "int or float",
	ast.Mul: "int or float",
	ast.Div: "int or float",
	ast.Mod: "int or float",
	ast.Lt:  "int, float or str",
	ast.Le:  "int, float or str",
	ast.Gt:  "int, float or str",
	ast.Ge:  "int, float or str",
	ast.And: "bool",
	ast.Or:  "bool",
}

func mismatch(op ast.Operator, a, b *value.Value, at scriptum.Origin) error {
	expected, ok := operandKinds[op]
	if !ok {
		expected = "matching"
	}
	return value.Throwf(at, value.TypeMismatch, "operator %s expects %s operands, got %s and %s",
		op, expected, a.Type().Name, b.Type().Name)
}

func divisionByZero(at scriptum.Origin) error {
	return value.Throw(at, value.DivisionByZero, "division by zero")
}

// operate applies a binary operator to two operand values. Both operands have
// been evaluated already; && and || do not short-circuit.
func operate(op ast.Operator, a, b *value.Value, at scriptum.Origin) (*value.Value, error) {
	switch op {
	case ast.Eq, ast.Neq:
		return equality(op, a, b, at)
	case ast.NoOp:
		return nil, malformed(ast.At(at), "missing operator")
	}
	if a.Kind() != b.Kind() {
		return nil, mismatch(op, a, b, at)
	}
	switch a.Kind() {
	case value.IntKind:
		return intOp(op, a.AsInt(), b.AsInt(), at, a, b)
	case value.FloatKind:
		return floatOp(op, a.AsFloat(), b.AsFloat(), at, a, b)
	case value.StringKind:
		return stringOp(op, a.AsString(), b.AsString(), at, a, b)
	case value.BoolKind:
		switch op {
		case ast.And:
			return value.Bool(a.AsBool() && b.AsBool()), nil
		case ast.Or:
			return value.Bool(a.AsBool() || b.AsBool()), nil
		}
	case value.ListKind:
		if op == ast.Add {
			l := value.NewList(a.AsList().Elems...)
			for _, e := range b.AsList().Elems {
				l.AsList().Append(e)
			}
			return l, nil
		}
	}
	return nil, mismatch(op, a, b, at)
}

// equality compares values of the same kind. Void compares unequal to every value
// but void.
func equality(op ast.Operator, a, b *value.Value, at scriptum.Origin) (*value.Value, error) {
	if a.Kind() != b.Kind() && !a.IsVoid() && !b.IsVoid() {
		return nil, mismatch(op, a, b, at)
	}
	eq := value.Equals(a, b)
	if op == ast.Neq {
		eq = !eq
	}
	return value.Bool(eq), nil
}

func intOp(op ast.Operator, x, y int64, at scriptum.Origin, a, b *value.Value) (*value.Value, error) {
	switch op {
	case ast.Add:
		return value.Int(x + y), nil
	case ast.Sub:
		return value.Int(x - y), nil
	case ast.Mul:
		return value.Int(x * y), nil
	case ast.Div:
		if y == 0 {
			return nil, divisionByZero(at)
		}
		return value.Int(x / y), nil
	case ast.Mod:
		if y == 0 {
			return nil, divisionByZero(at)
		}
		return value.Int(x % y), nil
	case ast.Lt:
		return value.Bool(x < y), nil
	case ast.Le:
		return value.Bool(x <= y), nil
	case ast.Gt:
		return value.Bool(x > y), nil
	case ast.Ge:
		return value.Bool(x >= y), nil
	}
	return nil, mismatch(op, a, b, at)
}

func floatOp(op ast.Operator, x, y float64, at scriptum.Origin, a, b *value.Value) (*value.Value, error) {
	switch op {
	case ast.Add:
		return value.Float(x + y), nil
	case ast.Sub:
		return value.Float(x - y), nil
	case ast.Mul:
		return value.Float(x * y), nil
	case ast.Div:
		if y == 0 {
			return nil, divisionByZero(at)
		}
		return value.Float(x / y), nil
	case ast.Mod:
		if y == 0 {
			return nil, divisionByZero(at)
		}
		return value.Float(math.Mod(x, y)), nil
	case ast.Lt:
		return value.Bool(x < y), nil
	case ast.Le:
		return value.Bool(x <= y), nil
	case ast.Gt:
		return value.Bool(x > y), nil
	case ast.Ge:
		return value.Bool(x >= y), nil
	}
	return nil, mismatch(op, a, b, at)
}

func stringOp(op ast.Operator, x, y string, at scriptum.Origin, a, b *value.Value) (*value.Value, error) {
	switch op {
	case ast.Add:
		return value.String(x + y), nil
	case ast.Lt:
		return value.Bool(strings.Compare(x, y) < 0), nil
	case ast.Le:
		return value.Bool(strings.Compare(x, y) <= 0), nil
	case ast.Gt:
		return value.Bool(strings.Compare(x, y) > 0), nil
	case ast.Ge:
		return value.Bool(strings.Compare(x, y) >= 0), nil
	}
	return nil, mismatch(op, a, b, at)
}
