package value

import (
	"fmt"

	"github.com/npillmayer/scriptum"
)

// Callable is the uniform invocation interface over native built-ins, user-defined
// functions, bound methods and constructors.
//
// Callables capture the execution context they run in when they are created;
// an invocation carries only the call-site data.
type Callable interface {
	Name() string
	Call(inv Invocation) (*Value, error)
}

// NamedArg is an argument passed by name.
type NamedArg struct {
	Name  string
	Value *Value
}

// Invocation holds the call-site data of a call.
type Invocation struct {
	Args   []*Value        // positional arguments
	Named  []NamedArg      // named arguments, in call order
	Origin scriptum.Origin // origin of the call expression
	This   *Value          // receiver for method calls, nil otherwise
}

// Arg returns positional argument i, or Void if there is no such argument.
func (inv Invocation) Arg(i int) *Value {
	if i < 0 || i >= len(inv.Args) {
		return Void
	}
	return inv.Args[i]
}

// NamedArg returns the argument passed by name, or nil.
func (inv Invocation) NamedArg(name string) *Value {
	for _, na := range inv.Named {
		if na.Name == name {
			return na.Value
		}
	}
	return nil
}

// --- Native functions ------------------------------------------------------

// NativeFunc is the signature of functions implemented in Go.
type NativeFunc func(inv Invocation) (*Value, error)

// Native is a callable implemented in Go.
type Native struct {
	name    string
	minArgs int
	fn      NativeFunc
}

var _ Callable = (*Native)(nil)

// NewNative creates a native callable. Calls with less than minArgs positional
// arguments fail with an ArityMismatch exception before fn is called.
func NewNative(name string, minArgs int, fn NativeFunc) *Native {
	return &Native{name: name, minArgs: minArgs, fn: fn}
}

// Name is part of interface Callable.
func (n *Native) Name() string {
	return n.name
}

// Call is part of interface Callable.
func (n *Native) Call(inv Invocation) (*Value, error) {
	if len(inv.Args) < n.minArgs {
		return nil, Throwf(inv.Origin, ArityMismatch,
			"function '%s' expects %d arguments, got %d", n.name, n.minArgs, len(inv.Args))
	}
	r, err := n.fn(inv)
	if err != nil {
		return nil, Locate(err, inv.Origin)
	}
	if r == nil {
		return Void, nil
	}
	return r, nil
}

func (n *Native) String() string {
	return fmt.Sprintf("<native %s>", n.name)
}

// --- Bound methods ---------------------------------------------------------

// BoundMethod is a method together with its receiver.
type BoundMethod struct {
	This   *Value
	Method *Method
}

var _ Callable = (*BoundMethod)(nil)

// Name is part of interface Callable.
func (bm *BoundMethod) Name() string {
	return bm.This.typ.Name + "." + bm.Method.Name
}

// Call is part of interface Callable.
func (bm *BoundMethod) Call(inv Invocation) (*Value, error) {
	inv.This = bm.This
	return bm.Method.Fn.Call(inv)
}
