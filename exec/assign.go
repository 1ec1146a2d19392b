package exec

import (
	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/value"
)

// lref is a resolved assignment target: an identifier, a container element or
// an attribute of an object.
type lref struct {
	at     scriptum.Origin
	name   string       // identifier or attribute name
	target *value.Value // container or object, nil for identifiers
	index  *value.Value // element index, nil for identifiers and attributes
}

func isLValue(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.Ident:
		return true
	case *ast.BinaryOp:
		return x.Op == ast.Index || x.Op == ast.Member
	}
	return false
}

// lvalue evaluates the sub-expressions of an assignment target, left to right.
func (x *Executor) lvalue(e ast.Expr) (*lref, error) {
	if !isLValue(e) {
		return nil, value.Throwf(e.Pos(), value.InvalidArgument, "cannot assign to %s", ast.Label(e))
	}
	switch t := e.(type) {
	case *ast.Ident:
		if t.Name == thisName && x.ctx.This() != nil {
			return nil, value.Throwf(t.Pos(), value.AccessViolation, "cannot assign to 'this'")
		}
		return &lref{at: t.Pos(), name: t.Name}, nil
	case *ast.BinaryOp:
		target, err := x.eval(t.L)
		if err != nil {
			return nil, err
		}
		if t.Op == ast.Member {
			name, err := memberName(t)
			if err != nil {
				return nil, err
			}
			return &lref{at: t.Pos(), name: name, target: target}, nil
		}
		index, err := x.eval(t.R)
		if err != nil {
			return nil, err
		}
		return &lref{at: t.Pos(), target: target, index: index}, nil
	}
	return nil, malformed(e, "assignment target %T", e)
}

func (x *Executor) load(lv *lref) (*value.Value, error) {
	switch {
	case lv.target == nil:
		return x.resolve(&ast.Ident{Base: ast.At(lv.at), Name: lv.name})
	case lv.index != nil:
		v, err := value.GetElement(lv.target, lv.index)
		return v, value.Locate(err, lv.at)
	}
	return value.GetMember(lv.target, lv.name, x.ctx.VisibilityFor(lv.target, lv.name), lv.at)
}

// store writes to an assignment target. Identifiers are registered in the
// innermost scope if they are not bound yet. Attributes have to be declared;
// assignment does not create them.
func (x *Executor) store(lv *lref, v *value.Value) error {
	switch {
	case lv.target == nil:
		x.ctx.Assign(lv.name, v)
		return nil
	case lv.index != nil:
		return value.Locate(value.SetElement(lv.target, lv.index, v), lv.at)
	}
	vis := x.ctx.VisibilityFor(lv.target, lv.name)
	return value.Locate(value.SetAttr(lv.target, lv.name, vis, v), lv.at)
}

func (x *Executor) assign(b *ast.BinaryOp) (*value.Value, error) {
	lv, err := x.lvalue(b.L)
	if err != nil {
		return nil, err
	}
	v, err := x.eval(b.R)
	if err != nil {
		return nil, err
	}
	if err = x.store(lv, v); err != nil {
		return nil, err
	}
	return v, nil
}

// modifyAndStore is the common implementation of compound assignment and of
// increment and decrement: target = target op operand. It returns the old and
// the new value of the target.
func (x *Executor) modifyAndStore(target ast.Expr, op ast.Operator,
	operand func() (*value.Value, error), at scriptum.Origin) (*value.Value, *value.Value, error) {
	//
	lv, err := x.lvalue(target)
	if err != nil {
		return nil, nil, err
	}
	old, err := x.load(lv)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := operand()
	if err != nil {
		return nil, nil, err
	}
	v, err := operate(op, old, rhs, at)
	if err != nil {
		return nil, nil, err
	}
	if err = x.store(lv, v); err != nil {
		return nil, nil, err
	}
	return old, v, nil
}

func one() (*value.Value, error) {
	return value.One, nil
}
