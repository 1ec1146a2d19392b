package exec

import (
	"fmt"

	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/runtime"
	"github.com/npillmayer/scriptum/value"
)

// Function is a user-defined function or method. It captures the executor it
// has been declared with, but no lexical environment: free variables of the body
// are resolved when the function is called.
type Function struct {
	decl  *ast.FuncDecl
	name  string
	x     *Executor
	owner *value.Type // type owning a method, nil for plain functions
}

var _ value.Callable = (*Function)(nil)

func (x *Executor) function(d *ast.FuncDecl) *value.Value {
	return value.NewCallable(&Function{decl: d, name: funcName(d), x: x})
}

func funcName(d *ast.FuncDecl) string {
	if d.Name == "" {
		return "<anonymous>"
	}
	return d.Name
}

// Name is part of interface value.Callable.
func (f *Function) Name() string {
	return f.name
}

// Arity returns the number of parameters of f.
func (f *Function) Arity() int {
	return len(f.decl.Params)
}

func (f *Function) String() string {
	return fmt.Sprintf("<function %s/%d>", f.name, f.Arity())
}

// Call is part of interface value.Callable.
//
// Parameters are bound positionally first, then by name. Every parameter has to
// be bound. The call frame is popped on every exit path.
func (f *Function) Call(inv value.Invocation) (*value.Value, error) {
	args, err := f.bindArgs(inv)
	if err != nil {
		return nil, err
	}
	ctx := f.x.ctx
	frame := runtime.NewCallFrame(f.name, inv.Origin)
	if err = ctx.PushFrame(frame); err != nil {
		return nil, err
	}
	if inv.This != nil {
		owner := f.owner
		if owner == nil {
			owner = inv.This.Type()
		}
		frame.WithThis(inv.This, owner)
	}
	for i, p := range f.decl.Params {
		tag, _ := frame.Locals.DefineTag(p)
		tag.Set(args[i])
	}
	v, fl, err := f.x.execBlock(f.decl.Body)
	if _, perr := ctx.PopFrame(); perr != nil {
		return nil, perr
	}
	if err != nil {
		return nil, err
	}
	if fl == flowReturn {
		return v, nil
	}
	return value.Void, nil
}

func (f *Function) bindArgs(inv value.Invocation) ([]*value.Value, error) {
	params := f.decl.Params
	args := make([]*value.Value, len(params))
	for i := 0; i < len(params) && i < len(inv.Args); i++ {
		args[i] = inv.Args[i]
	}
	for _, na := range inv.Named {
		bound := false
		for i, p := range params {
			if p == na.Name {
				args[i], bound = na.Value, true
			}
		}
		if !bound {
			return nil, value.Throwf(inv.Origin, value.InvalidArgument,
				"function '%s' has no parameter '%s'", f.name, na.Name)
		}
	}
	for _, a := range args {
		if a == nil {
			return nil, value.Throwf(inv.Origin, value.ArityMismatch,
				"function '%s' expects %d arguments, got %d", f.name, len(params),
				len(inv.Args)+len(inv.Named))
		}
	}
	return args, nil
}

// --- Classes ---------------------------------------------------------------

func visibility(private bool) value.Visibility {
	if private {
		return value.SameClass
	}
	return value.Public
}

// declareClass synthesizes a type from a class declaration and registers it as
// a constructable type. Executing the same declaration again is a no-op, thus
// a declaration always denotes the same type.
func (x *Executor) declareClass(d *ast.ClassDecl) error {
	if t := x.ctx.TypeForDecl(d.Name, d); t != nil {
		return nil
	}
	var parent *value.Type
	if d.Parent != "" {
		parent = x.ctx.LookupType(d.Parent)
		if parent == nil || parent.Kind != value.InstanceKind {
			return value.Throwf(d.Pos(), value.UnknownSymbol, "unknown base class '%s' of class '%s'",
				d.Parent, d.Name)
		}
	}
	t := value.NewClass(d.Name, parent)
	t.Decl = d
	seen := make(map[string]bool)
	for _, fd := range d.Fields {
		if seen[fd.Name] {
			return value.Throwf(fd.Pos(), value.DuplicateSymbol, "member '%s' of class '%s' declared twice",
				fd.Name, d.Name)
		}
		seen[fd.Name] = true
		t.AddField(fd.Name, visibility(fd.Private))
	}
	for _, md := range d.Methods {
		name := md.Func.Name
		if seen[name] {
			return value.Throwf(md.Func.Pos(), value.DuplicateSymbol, "member '%s' of class '%s' declared twice",
				name, d.Name)
		}
		seen[name] = true
		fn := &Function{decl: md.Func, name: d.Name + "." + name, x: x, owner: t}
		t.AddMethod(name, fn, visibility(md.Private))
	}
	initInstance := t.Behavior.Init
	t.Behavior.Init = func(v *value.Value, inv value.Invocation) error {
		if err := x.initFields(t, v, inv.Origin); err != nil {
			return err
		}
		return initInstance(v, inv)
	}
	if _, err := x.ctx.RegisterType(t); err != nil {
		return value.Locate(err, d.Pos())
	}
	tracer().Debugf("declared class %s with %d slots", d.Name, t.Size())
	return nil
}

// initFields evaluates the field initializers of a new instance, those of base
// classes first. Initializers are evaluated within a frame having the new instance
// as receiver.
func (x *Executor) initFields(t *value.Type, v *value.Value, at scriptum.Origin) error {
	if t.Parent != nil {
		if err := x.initFields(t.Parent, v, at); err != nil {
			return err
		}
	}
	decl, ok := t.Decl.(*ast.ClassDecl)
	if !ok || !hasInitializers(decl) {
		return nil
	}
	frame := runtime.NewCallFrame(t.Name+".<init>", at)
	if err := x.ctx.PushFrame(frame); err != nil {
		return err
	}
	frame.WithThis(v, t)
	var err error
	for _, fd := range decl.Fields {
		if fd.Init == nil {
			continue
		}
		var init *value.Value
		if init, err = x.eval(fd.Init); err != nil {
			break
		}
		if err = value.SetAttr(v, fd.Name, value.SameClass, init); err != nil {
			break
		}
	}
	if _, perr := x.ctx.PopFrame(); perr != nil {
		return perr
	}
	return err
}

func hasInitializers(d *ast.ClassDecl) bool {
	for _, fd := range d.Fields {
		if fd.Init != nil {
			return true
		}
	}
	return false
}
