package runtime

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/value"
)

// This module implements a stack of call frames.
// Call frames are used by an interpreter to allocate local storage
// for active function and method calls.

// ErrStackDiscipline is the engine failure for unbalanced frame operations.
var ErrStackDiscipline = errors.New("call stack discipline violated")

// CallFrame is a call frame, representing the local storage of a call.
type CallFrame struct {
	Name   string          // name of the called function
	Locals *SymbolTable    // local bindings, including parameters
	This   *value.Value    // receiver of a method call, or nil
	Owner  *value.Type     // type owning the called method, or nil
	Caller scriptum.Origin // origin of the call expression
	Parent *CallFrame
}

// NewCallFrame creates a new call frame.
func NewCallFrame(nm string, caller scriptum.Origin) *CallFrame {
	return &CallFrame{
		Name:   nm,
		Locals: NewSymbolTable(),
		Caller: caller,
	}
}

// WithThis binds a receiver and the type owning the method. Returns the frame
// (for chaining).
func (cf *CallFrame) WithThis(this *value.Value, owner *value.Type) *CallFrame {
	cf.This = this.AddRef()
	cf.Owner = owner
	return cf
}

func (cf *CallFrame) String() string {
	return fmt.Sprintf("<frame %s @ %v>", cf.Name, cf.Caller)
}

// IsRoot is a predicate: Is this the bottom-most frame?
func (cf *CallFrame) IsRoot() bool {
	return (cf.Parent == nil)
}

// release drops all references held by the frame.
func (cf *CallFrame) release() {
	cf.Locals.Clear()
	if cf.This != nil {
		cf.This.DropRef()
	}
}

// ---------------------------------------------------------------------------

// CallStack is a stack of call frames.
type CallStack struct {
	frames *arraystack.Stack
}

func (cst *CallStack) stack() *arraystack.Stack {
	if cst.frames == nil {
		cst.frames = arraystack.New()
	}
	return cst.frames
}

// Current gets the current call frame of a stack (TOS), or nil if no call is active.
func (cst *CallStack) Current() *CallFrame {
	if tos, ok := cst.stack().Peek(); ok {
		return tos.(*CallFrame)
	}
	return nil
}

// Depth returns the number of active frames.
func (cst *CallStack) Depth() int {
	return cst.stack().Size()
}

// Push pushes a frame as TOS, having the recent TOS as its parent.
func (cst *CallStack) Push(cf *CallFrame) {
	cf.Parent = cst.Current()
	cst.stack().Push(cf)
	T().P("frame", cf.Name).Debugf("pushing call frame, depth %d", cst.Depth())
}

// Pop pops the top-most frame and releases its bindings. Returns the popped frame.
// Popping from an empty stack is a violation of stack discipline.
func (cst *CallStack) Pop() (*CallFrame, error) {
	tos, ok := cst.stack().Pop()
	if !ok {
		T().Errorf("attempt to pop call frame from empty call stack")
		return nil, fmt.Errorf("pop from empty call stack: %w", ErrStackDiscipline)
	}
	cf := tos.(*CallFrame)
	T().Debugf("popping call frame [%s]", cf.Name)
	cf.release()
	return cf, nil
}

// Each iterates over the active frames, starting with the innermost.
func (cst *CallStack) Each(f func(*CallFrame)) {
	it := cst.stack().Iterator()
	for it.Next() {
		f(it.Value().(*CallFrame))
	}
}
