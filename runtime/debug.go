package runtime

import (
	"github.com/npillmayer/scriptum"
	"golang.org/x/tools/container/intsets"
)

// Debugger is an interface for observers of script execution. Executors call
// it before each statement and at breakpoint statements. Returning an error
// aborts the run.
type Debugger interface {
	BeforeStatement(ctx *Context, at scriptum.Origin) error
	Breakpoint(ctx *Context, at scriptum.Origin) error
}

// LineBreakpoints is a debugger which stops at breakpoint statements and before
// statements on selected lines.
type LineBreakpoints struct {
	lines intsets.Sparse
	Hits  []scriptum.Origin
	// OnHit is called for every hit, if set. An error aborts the run.
	OnHit func(ctx *Context, at scriptum.Origin) error
}

var _ Debugger = (*LineBreakpoints)(nil)

// NewLineBreakpoints creates a debugger with breakpoints at the given lines.
func NewLineBreakpoints(lines ...int) *LineBreakpoints {
	bp := &LineBreakpoints{}
	for _, l := range lines {
		bp.Set(l)
	}
	return bp
}

// Set adds a breakpoint for a line.
func (bp *LineBreakpoints) Set(line int) {
	bp.lines.Insert(line)
}

// Clear removes the breakpoint for a line.
func (bp *LineBreakpoints) Clear(line int) {
	bp.lines.Remove(line)
}

// IsSet is a predicate: is there a breakpoint for line?
func (bp *LineBreakpoints) IsSet(line int) bool {
	return bp.lines.Has(line)
}

// BeforeStatement is part of interface Debugger.
func (bp *LineBreakpoints) BeforeStatement(ctx *Context, at scriptum.Origin) error {
	if at.IsKnown() && bp.lines.Has(at.Line) {
		return bp.hit(ctx, at)
	}
	return nil
}

// Breakpoint is part of interface Debugger.
func (bp *LineBreakpoints) Breakpoint(ctx *Context, at scriptum.Origin) error {
	return bp.hit(ctx, at)
}

func (bp *LineBreakpoints) hit(ctx *Context, at scriptum.Origin) error {
	T().Infof("breakpoint hit at %v", at)
	bp.Hits = append(bp.Hits, at)
	if bp.OnHit != nil {
		return bp.OnHit(ctx, at)
	}
	return nil
}
