/*
Package runtime implements the execution context of scriptum, consisting of
symbol tables, call frames and registries of built-ins and types.

For a thorough discussion of an interpreter's runtime environment, refer to
"Language Implementation Patterns" by Terence Parr.

Symbol Tables

Bindings of names to values are held in symbol tables. There is a table of
global bindings, a table of built-in callables and a table of constructable types.
Each active call owns a call frame with a table of local bindings.

Name resolution is dynamic: a name is looked up in the locals of the innermost call
frame first, then in the globals, then in the built-ins and finally in the types.
Frames of callers are not consulted.

Call Frames

This module implements a stack of call frames, one for each active function or
method call. Frames carry the receiver and owning type of method calls, which is
the base for visibility checks of members.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package runtime

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/value"
)

// T traces to key 'scriptum.runtime'.
func T() tracing.Trace {
	return tracing.Select("scriptum.runtime")
}

// DefaultMaxCallDepth is the default limit for nested calls.
const DefaultMaxCallDepth = 512

// ErrAborted is the engine failure for runs stopped by the host or by a debugger.
var ErrAborted = errors.New("execution aborted")

// Context is a type implementing an execution context for an interpreter.
// A context is created per run and is not safe for concurrent use.
type Context struct {
	Globals      *SymbolTable // global bindings
	Builtins     *SymbolTable // built-in callables, read-only for scripts
	Types        *SymbolTable // constructable types, bound to their constructors
	Stack        *CallStack   // runtime stack of call frames
	Log          *Logger      // sink for the log built-in
	Debugger     Debugger     // optional, may be nil
	MaxCallDepth int          // maximum number of nested calls
	types        map[string]*value.Type
}

// NewContext constructs a new execution context, initialized with empty
// tables and a logger without echo.
//
func NewContext() *Context {
	ctx := &Context{
		Globals:      NewSymbolTable(),
		Builtins:     NewSymbolTable(),
		Types:        NewSymbolTable(),
		Stack:        new(CallStack),
		Log:          NewLogger(nil),
		MaxCallDepth: DefaultMaxCallDepth,
		types:        make(map[string]*value.Type),
	}
	for _, t := range value.BuiltinTypes() {
		if t.Kind != value.VoidKind && t.Kind != value.CallableKind && t.Kind != value.ExceptionKind {
			ctx.bindType(t)
		}
	}
	return ctx
}

// --- Name resolution -------------------------------------------------------

// innermost returns the symbol table of the innermost active scope.
func (ctx *Context) innermost() *SymbolTable {
	if cf := ctx.Stack.Current(); cf != nil {
		return cf.Locals
	}
	return ctx.Globals
}

// lookupVariable finds a tag for a name in the current frame or in the globals.
func (ctx *Context) lookupVariable(name string) *Tag {
	if cf := ctx.Stack.Current(); cf != nil {
		if tag := cf.Locals.ResolveTag(name); tag != nil {
			return tag
		}
	}
	return ctx.Globals.ResolveTag(name)
}

// Resolve looks up a name in the current frame's locals, then globals, then
// built-ins, then types. Returns the value and true, or nil and false if the name
// is unbound.
func (ctx *Context) Resolve(name string) (*value.Value, bool) {
	if tag := ctx.lookupVariable(name); tag != nil {
		return tag.Value(), true
	}
	if tag := ctx.Builtins.ResolveTag(name); tag != nil {
		return tag.Value(), true
	}
	if tag := ctx.Types.ResolveTag(name); tag != nil {
		return tag.Value(), true
	}
	return nil, false
}

// IsVariable is a predicate: is name bound in the current frame or in the globals?
func (ctx *Context) IsVariable(name string) bool {
	return ctx.lookupVariable(name) != nil
}

// Register binds a new name in the innermost active scope. If the name is already
// bound in that scope, a DuplicateSymbol exception is returned.
func (ctx *Context) Register(name string, v *value.Value) error {
	scope := ctx.innermost()
	if scope.ResolveTag(name) != nil {
		return value.Throwf(scriptum.Origin{}, value.DuplicateSymbol, "symbol '%s' already defined", name)
	}
	tag, _ := scope.DefineTag(name)
	tag.Set(v)
	T().Debugf("register %s = %v", name, v)
	return nil
}

// Update re-binds an existing variable in the current frame or in the globals.
// If there is no such variable, an UnknownSymbol exception is returned.
func (ctx *Context) Update(name string, v *value.Value) error {
	tag := ctx.lookupVariable(name)
	if tag == nil {
		return value.Throwf(scriptum.Origin{}, value.UnknownSymbol, "unknown symbol '%s'", name)
	}
	tag.Set(v)
	return nil
}

// Assign updates a variable, or registers it in the innermost scope if it is
// not bound yet.
func (ctx *Context) Assign(name string, v *value.Value) {
	if tag := ctx.lookupVariable(name); tag != nil {
		tag.Set(v)
		return
	}
	tag, _ := ctx.innermost().DefineTag(name)
	tag.Set(v)
}

// Unregister removes a variable from the current frame or from the globals,
// releasing its value.
func (ctx *Context) Unregister(name string) error {
	if cf := ctx.Stack.Current(); cf != nil && cf.Locals.RemoveTag(name) {
		return nil
	}
	if ctx.Globals.RemoveTag(name) {
		return nil
	}
	return value.Throwf(scriptum.Origin{}, value.UnknownSymbol, "unknown symbol '%s'", name)
}

// DefineGlobal binds a name in the globals, independent of active frames.
// An existing binding is replaced. Used by hosts to inject values.
func (ctx *Context) DefineGlobal(name string, v *value.Value) {
	tag, _ := ctx.Globals.ResolveOrDefineTag(name)
	tag.Set(v)
}

// Global returns the value of a global variable.
func (ctx *Context) Global(name string) (*value.Value, bool) {
	if tag := ctx.Globals.ResolveTag(name); tag != nil {
		return tag.Value(), true
	}
	return nil, false
}

// RegisterBuiltin adds a callable to the built-ins.
func (ctx *Context) RegisterBuiltin(c value.Callable) {
	tag, old := ctx.Builtins.DefineTag(c.Name())
	if old != nil {
		old.release()
	}
	tag.Set(value.NewCallable(c))
}

// --- Types -----------------------------------------------------------------

func (ctx *Context) bindType(t *value.Type) {
	tag, _ := ctx.Types.DefineTag(t.Name)
	tag.Set(value.ConstructorOf(t))
	ctx.types[t.Name] = t
}

// RegisterType makes a type constructable by name. A type registered under an
// existing name is accepted only if it was synthesized from the same declaration;
// in that case the type already registered is returned. Otherwise a
// DuplicateSymbol exception is returned.
func (ctx *Context) RegisterType(t *value.Type) (*value.Type, error) {
	if old, ok := ctx.types[t.Name]; ok {
		if old.Decl != nil && old.Decl == t.Decl {
			return old, nil
		}
		return nil, value.Throwf(scriptum.Origin{}, value.DuplicateSymbol, "type '%s' already defined", t.Name)
	}
	ctx.bindType(t)
	T().Infof("registered type %s", t.Name)
	return t, nil
}

// LookupType finds a type by name.
func (ctx *Context) LookupType(name string) *value.Type {
	return ctx.types[name]
}

// TypeForDecl returns the type synthesized from a declaration, if any.
func (ctx *Context) TypeForDecl(name string, decl interface{}) *value.Type {
	if t, ok := ctx.types[name]; ok && decl != nil && t.Decl == decl {
		return t
	}
	return nil
}

// --- Frames ----------------------------------------------------------------

// PushFrame pushes a call frame. If the maximum call depth would be exceeded,
// a StackOverflow exception is returned and the frame is not pushed.
func (ctx *Context) PushFrame(cf *CallFrame) error {
	if ctx.MaxCallDepth > 0 && ctx.Stack.Depth() >= ctx.MaxCallDepth {
		return value.Throwf(cf.Caller, value.StackOverflow,
			"maximum call depth of %d exceeded calling '%s'", ctx.MaxCallDepth, cf.Name)
	}
	ctx.Stack.Push(cf)
	return nil
}

// PopFrame pops the innermost call frame.
func (ctx *Context) PopFrame() (*CallFrame, error) {
	return ctx.Stack.Pop()
}

// CurrentFrame returns the innermost call frame, or nil at top level.
func (ctx *Context) CurrentFrame() *CallFrame {
	return ctx.Stack.Current()
}

// This returns the receiver of the innermost method call, or nil.
func (ctx *Context) This() *value.Value {
	if cf := ctx.Stack.Current(); cf != nil {
		return cf.This
	}
	return nil
}

// IsCurrentMethodOwnedBy is a predicate: is the innermost call a method call of
// a method owned by type t?
func (ctx *Context) IsCurrentMethodOwnedBy(t *value.Type) bool {
	cf := ctx.Stack.Current()
	return cf != nil && cf.Owner != nil && value.SameType(cf.Owner, t)
}

// VisibilityFor returns the visibility the innermost call is granted for member
// name of v. Attributes take precedence over methods, as in member lookup.
func (ctx *Context) VisibilityFor(v *value.Value, name string) value.Visibility {
	if a := v.Type().FindAttribute(name); a != nil {
		return ctx.grantedFor(a.Owner)
	}
	return ctx.MethodVisibilityFor(v, name)
}

// MethodVisibilityFor returns the visibility the innermost call is granted for
// method name of v.
func (ctx *Context) MethodVisibilityFor(v *value.Value, name string) value.Visibility {
	if m := v.Type().FindMethod(name); m != nil {
		return ctx.grantedFor(m.Owner)
	}
	return value.Public
}

// grantedFor returns SameClass if the innermost call is a method owned by
// owner or by a type derived from it. Private members declared by a subtype
// stay hidden from methods of its ancestors.
func (ctx *Context) grantedFor(owner *value.Type) value.Visibility {
	if owner == nil {
		return value.Public
	}
	if ctx.IsCurrentMethodOwnedBy(owner) {
		return value.SameClass
	}
	if cf := ctx.Stack.Current(); cf != nil && cf.Owner != nil && cf.Owner.IsSubtypeOf(owner) {
		return value.SameClass
	}
	return value.Public
}

// Teardown releases all bindings and frames of the context.
func (ctx *Context) Teardown() {
	for ctx.Stack.Current() != nil {
		_, _ = ctx.Stack.Pop()
	}
	ctx.Globals.Clear()
	T().Debugf("execution context torn down")
}

func (ctx *Context) String() string {
	return fmt.Sprintf("<context globals=%v depth=%d>", ctx.Globals.Names(), ctx.Stack.Depth())
}
