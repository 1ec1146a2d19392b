package exec

import (
	"context"
	"errors"
	"fmt"

	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/runtime"
	"github.com/npillmayer/scriptum/value"
)

// ErrMalformedAST is the engine failure for AST nodes the executor does not know
// how to handle.
var ErrMalformedAST = errors.New("malformed syntax tree")

// IsEngineFailure is a predicate: is err an engine failure, i.e. a non-nil error
// which is not a script exception?
func IsEngineFailure(err error) bool {
	if err == nil {
		return false
	}
	_, isExc := value.AsException(err)
	return !isExc
}

func malformed(n ast.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%s at %v: %w", fmt.Sprintf(format, args...), n.Pos(), ErrMalformedAST)
}

// flow is the control signal of a statement.
type flow int8

const (
	flowNormal flow = iota
	flowBreak
	flowContinue
	flowReturn
)

// Executor executes statements and evaluates expressions within an execution
// context. An executor is bound to one context and is not safe for concurrent use.
type Executor struct {
	ctx    *runtime.Context
	cancel context.Context
}

// New creates an executor for an execution context.
func New(ctx *runtime.Context) *Executor {
	return &Executor{ctx: ctx, cancel: context.Background()}
}

// WithCancel sets a context.Context which is checked for cancellation before every
// statement. Returns the executor (for chaining).
func (x *Executor) WithCancel(c context.Context) *Executor {
	if c != nil {
		x.cancel = c
	}
	return x
}

// Context returns the execution context of the executor.
func (x *Executor) Context() *runtime.Context {
	return x.ctx
}

// Execute runs a top-level statement list. The result is the value of the final
// statement executed, or the value of an explicit return.
//
// A non-nil error is either a script exception which escaped the run, or an
// engine failure (see IsEngineFailure).
func (x *Executor) Execute(stmts []ast.Stmt) (*value.Value, error) {
	v, fl, err := x.execBlock(stmts)
	if err != nil {
		return nil, err
	}
	if fl == flowBreak || fl == flowContinue {
		tracer().Infof("%v outside of loop ignored", fl)
	}
	return v, nil
}

// Evaluate evaluates a single expression.
func (x *Executor) Evaluate(e ast.Expr) (*value.Value, error) {
	return x.eval(e)
}

// execBlock executes a statement list. Sequencing stops as soon as a statement
// signals break, continue or return.
func (x *Executor) execBlock(stmts []ast.Stmt) (*value.Value, flow, error) {
	last := value.Void
	for _, s := range stmts {
		v, fl, err := x.execStmt(s)
		if err != nil {
			return nil, flowNormal, err
		}
		last = v
		if fl != flowNormal {
			return v, fl, nil
		}
	}
	return last, flowNormal, nil
}

// settle turns the outcome of a nested block into the outcome of a compound
// statement: compound statements have value void unless they return.
func settle(v *value.Value, fl flow, err error) (*value.Value, flow, error) {
	if err != nil {
		return nil, flowNormal, err
	}
	if fl == flowReturn {
		return v, fl, nil
	}
	return value.Void, fl, nil
}

func (x *Executor) checkpoint(s ast.Stmt) error {
	if err := x.cancel.Err(); err != nil {
		return fmt.Errorf("run cancelled at %v (%v): %w", s.Pos(), err, runtime.ErrAborted)
	}
	if x.ctx.Debugger == nil {
		return nil
	}
	var err error
	if _, isBreakpoint := s.(*ast.BreakpointStmt); isBreakpoint {
		err = x.ctx.Debugger.Breakpoint(x.ctx, s.Pos())
	} else {
		err = x.ctx.Debugger.BeforeStatement(x.ctx, s.Pos())
	}
	if err != nil && !errors.Is(err, runtime.ErrAborted) {
		err = fmt.Errorf("debugger stopped run at %v (%v): %w", s.Pos(), err, runtime.ErrAborted)
	}
	return err
}

func (x *Executor) execStmt(s ast.Stmt) (*value.Value, flow, error) {
	if s == nil {
		return nil, flowNormal, fmt.Errorf("nil statement: %w", ErrMalformedAST)
	}
	if err := x.checkpoint(s); err != nil {
		return nil, flowNormal, err
	}
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		v, err := x.eval(stmt.X)
		return v, flowNormal, err
	case *ast.IfStmt:
		return x.execIf(stmt)
	case *ast.WhileStmt:
		return x.execWhile(stmt)
	case *ast.ForStmt:
		return x.execFor(stmt)
	case *ast.BreakStmt:
		return value.Void, flowBreak, nil
	case *ast.ContinueStmt:
		return value.Void, flowContinue, nil
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return value.Void, flowReturn, nil
		}
		v, err := x.eval(stmt.Value)
		return v, flowReturn, err
	case *ast.FuncDecl:
		return x.execFuncDecl(stmt)
	case *ast.ClassDecl:
		return value.Void, flowNormal, x.declareClass(stmt)
	case *ast.TryStmt:
		return x.execTry(stmt)
	case *ast.ThrowStmt:
		return nil, flowNormal, x.throw(stmt)
	case *ast.BreakpointStmt:
		return value.Void, flowNormal, nil // debugger has been called by checkpoint
	}
	return nil, flowNormal, malformed(s, "unknown statement type %T", s)
}

// condition evaluates a condition, which has to be boolean.
func (x *Executor) condition(e ast.Expr, stmt string) (bool, error) {
	c, err := x.eval(e)
	if err != nil {
		return false, err
	}
	if !c.Is(value.BoolKind) {
		return false, value.Throwf(e.Pos(), value.TypeMismatch,
			"condition of %s must be bool, got %s", stmt, c.Type().Name)
	}
	return c.AsBool(), nil
}

func (x *Executor) execIf(s *ast.IfStmt) (*value.Value, flow, error) {
	c, err := x.condition(s.Cond, "if")
	if err != nil {
		return nil, flowNormal, err
	}
	if c {
		return settle(x.execBlock(s.Then))
	}
	return settle(x.execBlock(s.Else))
}

func (x *Executor) execWhile(s *ast.WhileStmt) (*value.Value, flow, error) {
	for {
		c, err := x.condition(s.Cond, "while")
		if err != nil {
			return nil, flowNormal, err
		}
		if !c {
			return value.Void, flowNormal, nil
		}
		v, fl, err := x.execBlock(s.Body)
		if err != nil {
			return nil, flowNormal, err
		}
		switch fl {
		case flowBreak:
			return value.Void, flowNormal, nil
		case flowReturn:
			return v, fl, nil
		}
	}
}

func (x *Executor) execFor(s *ast.ForStmt) (*value.Value, flow, error) {
	if s.Init != nil {
		if _, err := x.eval(s.Init); err != nil {
			return nil, flowNormal, err
		}
	}
	for {
		if s.Cond != nil {
			c, err := x.condition(s.Cond, "for")
			if err != nil {
				return nil, flowNormal, err
			}
			if !c {
				return value.Void, flowNormal, nil
			}
		}
		v, fl, err := x.execBlock(s.Body)
		if err != nil {
			return nil, flowNormal, err
		}
		switch fl {
		case flowBreak: // skips the step
			return value.Void, flowNormal, nil
		case flowReturn:
			return v, fl, nil
		}
		if s.Step != nil {
			if _, err := x.eval(s.Step); err != nil {
				return nil, flowNormal, err
			}
		}
	}
}

func (x *Executor) execFuncDecl(d *ast.FuncDecl) (*value.Value, flow, error) {
	fn := x.function(d)
	if d.Name == "" { // anonymous function literal in statement position
		return fn, flowNormal, nil
	}
	if err := x.ctx.Register(d.Name, fn); err != nil {
		return nil, flowNormal, value.Locate(err, d.Pos())
	}
	tracer().Debugf("declared function %s/%d", d.Name, len(d.Params))
	return fn, flowNormal, nil
}

// execTry executes try/catch/finally. Engine failures bypass both catch and
// finally, as they abort the run.
func (x *Executor) execTry(s *ast.TryStmt) (*value.Value, flow, error) {
	v, fl, err := x.execBlock(s.Body)
	if exc, isExc := value.AsException(err); isExc && s.HasCatch {
		tracer().Debugf("caught exception: %v", exc)
		v, fl, err = x.execCatch(s, exc)
	}
	if IsEngineFailure(err) {
		return nil, flowNormal, err
	}
	if s.HasFinally {
		fv, ffl, ferr := x.execBlock(s.Finally)
		if ferr != nil {
			return nil, flowNormal, ferr
		}
		if ffl != flowNormal { // finally's own control flow wins
			return settle(fv, ffl, nil)
		}
	}
	return settle(v, fl, err)
}

// execCatch binds the exception under the catch identifier while the catch
// block runs. A previous binding of the same name in the innermost scope is
// restored afterwards.
func (x *Executor) execCatch(s *ast.TryStmt, exc *value.Exception) (*value.Value, flow, error) {
	name := s.CatchName
	if name == "" {
		return x.execBlock(s.Catch)
	}
	excval := value.NewException(exc)
	shadowed, hadBinding := x.localBinding(name)
	if hadBinding {
		shadowed.AddRef() // keep alive while hidden
		if err := x.ctx.Update(name, excval); err != nil {
			return nil, flowNormal, err
		}
	} else if err := x.ctx.Register(name, excval); err != nil {
		return nil, flowNormal, value.Locate(err, s.Pos())
	}
	v, fl, err := x.execBlock(s.Catch)
	if hadBinding {
		if uerr := x.ctx.Update(name, shadowed); uerr != nil && err == nil {
			err = uerr
		}
		shadowed.DropRef()
	} else if uerr := x.ctx.Unregister(name); uerr != nil && err == nil {
		err = value.Locate(uerr, s.Pos())
	}
	return v, fl, err
}

// localBinding returns the value of a name in the innermost scope.
func (x *Executor) localBinding(name string) (*value.Value, bool) {
	scope := x.ctx.Globals
	if cf := x.ctx.CurrentFrame(); cf != nil {
		scope = cf.Locals
	}
	if tag := scope.ResolveTag(name); tag != nil {
		return tag.Value(), true
	}
	return nil, false
}

// throw raises a script exception from a throw statement. Throwing an exception
// value re-raises its message, wrapping the original as inner exception.
func (x *Executor) throw(s *ast.ThrowStmt) error {
	if s.Value == nil {
		return value.Throw(s.Pos(), "", "")
	}
	v, err := x.eval(s.Value)
	if err != nil {
		return err
	}
	if v.Is(value.ExceptionKind) {
		inner := v.AsException()
		return value.Throw(s.Pos(), inner.Category, inner.Message).Wrap(inner)
	}
	msg, err := value.ToString(v)
	if err != nil {
		return err
	}
	return value.Throw(s.Pos(), "", msg)
}

func (fl flow) String() string {
	switch fl {
	case flowBreak:
		return "break"
	case flowContinue:
		return "continue"
	case flowReturn:
		return "return"
	}
	return "normal"
}
