package exec

import (
	"strconv"
	"strings"

	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/value"
)

// thisName is the identifier denoting the receiver of a method call.
const thisName = "this"

// eval evaluates an expression. Operands are evaluated left to right.
func (x *Executor) eval(e ast.Expr) (*value.Value, error) {
	switch expr := e.(type) {
	case nil:
		return nil, malformedNil()
	case *ast.Ident:
		return x.resolve(expr)
	case *ast.NumberLit:
		return number(expr)
	case *ast.StringLit:
		return value.String(expr.Value), nil
	case *ast.BoolLit:
		return value.Bool(expr.Value), nil
	case *ast.ListData:
		return x.evalList(expr)
	case *ast.DictData:
		return x.evalDict(expr)
	case *ast.FuncDecl:
		return x.function(expr), nil
	case *ast.UnaryOp:
		return x.evalUnary(expr)
	case *ast.BinaryOp:
		return x.evalBinary(expr)
	}
	return nil, malformed(e, "unknown expression type %T", e)
}

func (x *Executor) resolve(id *ast.Ident) (*value.Value, error) {
	if id.Name == thisName {
		if this := x.ctx.This(); this != nil {
			return this, nil
		}
	}
	if v, found := x.ctx.Resolve(id.Name); found {
		return v, nil
	}
	return nil, value.Throwf(id.Pos(), value.IdentifierNotFound, "identifier '%s' not found", id.Name)
}

func number(n *ast.NumberLit) (*value.Value, error) {
	if strings.ContainsAny(n.Lexeme, ".eE") {
		f, err := strconv.ParseFloat(n.Lexeme, 64)
		if err != nil {
			return nil, value.Throwf(n.Pos(), value.InvalidArgument, "invalid number literal %s", n.Lexeme)
		}
		return value.Float(f), nil
	}
	i, err := strconv.ParseInt(n.Lexeme, 10, 64)
	if err != nil {
		return nil, value.Throwf(n.Pos(), value.InvalidArgument, "invalid integer literal %s", n.Lexeme)
	}
	return value.Int(i), nil
}

func (x *Executor) evalList(l *ast.ListData) (*value.Value, error) {
	elems, err := x.evalArgs(l)
	if err != nil {
		return nil, err
	}
	return value.NewList(elems...), nil
}

func (x *Executor) evalArgs(l *ast.ListData) ([]*value.Value, error) {
	if l == nil {
		return nil, nil
	}
	elems := make([]*value.Value, 0, len(l.Elems))
	for _, e := range l.Elems {
		v, err := x.eval(e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

func (x *Executor) evalDict(d *ast.DictData) (*value.Value, error) {
	dict := value.NewDict()
	for _, entry := range d.Entries {
		v, err := x.eval(entry.Value)
		if err != nil {
			return nil, err
		}
		dict.AsDict().Put(entry.Key, v)
	}
	return dict, nil
}

func (x *Executor) evalUnary(u *ast.UnaryOp) (*value.Value, error) {
	switch u.Op {
	case ast.PreInc, ast.PreDec:
		_, v, err := x.modifyAndStore(u.X, u.Op.Arithmetic(), one, u.Pos())
		return v, err
	case ast.PostInc, ast.PostDec:
		old, _, err := x.modifyAndStore(u.X, u.Op.Arithmetic(), one, u.Pos())
		return old, err
	}
	v, err := x.eval(u.X)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case ast.Neg:
		switch v.Kind() {
		case value.IntKind:
			return value.Int(-v.AsInt()), nil
		case value.FloatKind:
			return value.Float(-v.AsFloat()), nil
		}
		return nil, value.Throwf(u.Pos(), value.TypeMismatch,
			"operator - expects int or float operand, got %s", v.Type().Name)
	case ast.Not:
		if !v.Is(value.BoolKind) {
			return nil, value.Throwf(u.Pos(), value.TypeMismatch,
				"operator ! expects bool operand, got %s", v.Type().Name)
		}
		return value.Bool(!v.AsBool()), nil
	}
	return nil, malformed(u, "unknown unary operator %v", u.Op)
}

func (x *Executor) evalBinary(b *ast.BinaryOp) (*value.Value, error) {
	switch {
	case b.Op == ast.Assign:
		return x.assign(b)
	case b.Op.IsAssignment():
		rhs := func() (*value.Value, error) { return x.eval(b.R) }
		_, v, err := x.modifyAndStore(b.L, b.Op.Arithmetic(), rhs, b.Pos())
		return v, err
	}
	switch b.Op {
	case ast.Member:
		target, err := x.eval(b.L)
		if err != nil {
			return nil, err
		}
		name, err := memberName(b)
		if err != nil {
			return nil, err
		}
		return value.GetMember(target, name, x.ctx.VisibilityFor(target, name), b.Pos())
	case ast.Index:
		container, err := x.eval(b.L)
		if err != nil {
			return nil, err
		}
		index, err := x.eval(b.R)
		if err != nil {
			return nil, err
		}
		v, err := value.GetElement(container, index)
		return v, value.Locate(err, b.Pos())
	case ast.Call:
		return x.call(b)
	case ast.ShortIf:
		return x.shortIf(b)
	}
	l, err := x.eval(b.L)
	if err != nil {
		return nil, err
	}
	r, err := x.eval(b.R)
	if err != nil {
		return nil, err
	}
	return operate(b.Op, l, r, b.Pos())
}

func memberName(b *ast.BinaryOp) (string, error) {
	id, ok := b.R.(*ast.Ident)
	if !ok {
		return "", malformed(b, "member access with %T", b.R)
	}
	return id.Name, nil
}

// shortIf evaluates 'cond ? [a, b]', selecting a if cond is true and b otherwise.
func (x *Executor) shortIf(b *ast.BinaryOp) (*value.Value, error) {
	c, err := x.condition(b.L, "short-if")
	if err != nil {
		return nil, err
	}
	alt, err := x.eval(b.R)
	if err != nil {
		return nil, err
	}
	if !alt.Is(value.ListKind) || alt.AsList().Len() != 2 {
		return nil, value.Throwf(b.Pos(), value.TypeMismatch,
			"short-if expects a list of two alternatives, got %s", describe(alt))
	}
	if c {
		return alt.AsList().Elems[0], nil
	}
	return alt.AsList().Elems[1], nil
}

func describe(v *value.Value) string {
	if v.Is(value.ListKind) {
		return "list of length " + strconv.Itoa(v.AsList().Len())
	}
	return v.Type().Name
}

// --- Calls -----------------------------------------------------------------

// call evaluates a call expression. Calls of the form 'obj.m(…)' are dispatched
// directly as method calls.
func (x *Executor) call(b *ast.BinaryOp) (*value.Value, error) {
	args, ok := b.R.(*ast.ListData)
	if !ok && b.R != nil {
		return nil, malformed(b, "call with arguments of type %T", b.R)
	}
	if m, isMember := b.L.(*ast.BinaryOp); isMember && m.Op == ast.Member {
		return x.callMethod(m, args, b.Pos())
	}
	callee, err := x.eval(b.L)
	if err != nil {
		return nil, err
	}
	argv, err := x.evalArgs(args)
	if err != nil {
		return nil, err
	}
	v, err := value.Call(callee, value.Invocation{Args: argv, Origin: b.Pos()})
	return v, value.Locate(err, b.Pos())
}

func (x *Executor) callMethod(m *ast.BinaryOp, args *ast.ListData, org scriptum.Origin) (*value.Value, error) {
	target, err := x.eval(m.L)
	if err != nil {
		return nil, err
	}
	name, err := memberName(m)
	if err != nil {
		return nil, err
	}
	argv, err := x.evalArgs(args)
	if err != nil {
		return nil, err
	}
	inv := value.Invocation{Args: argv, Origin: org}
	if target.Type().FindMethod(name) != nil {
		v, err := value.CallMethod(target, name, x.ctx.MethodVisibilityFor(target, name), inv)
		return v, value.Locate(err, org)
	}
	// an attribute holding a callable
	callee, err := value.GetMember(target, name, x.ctx.VisibilityFor(target, name), org)
	if err != nil {
		return nil, err
	}
	v, err := value.Call(callee, inv)
	return v, value.Locate(err, org)
}

func malformedNil() error {
	return malformed(ast.At(scriptum.Origin{}), "nil expression")
}
