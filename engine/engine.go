package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/scriptum/builtin"
	"github.com/npillmayer/scriptum/exec"
	"github.com/npillmayer/scriptum/lang"
	"github.com/npillmayer/scriptum/runtime"
	"github.com/npillmayer/scriptum/value"
)

// Bindings are values supplied by the host, by name. After a run, the map holds
// the final values of these names.
type Bindings map[string]*value.Value

// Result is the outcome of a run. Exactly one of Value, Exception and Failure is
// set. Log holds the lines logged during the run.
type Result struct {
	Value     *value.Value
	Exception *value.Exception // uncaught script exception
	Failure   error            // engine failure
	Log       []string
}

// OK is a predicate: did the run produce a value?
func (r Result) OK() bool {
	return r.Exception == nil && r.Failure == nil
}

// Err returns the exception or failure of a run as an error, or nil.
func (r Result) Err() error {
	if r.Exception != nil {
		return r.Exception
	}
	return r.Failure
}

func (r Result) String() string {
	switch {
	case r.Failure != nil:
		return fmt.Sprintf("engine failure: %v", r.Failure)
	case r.Exception != nil:
		return fmt.Sprintf("uncaught exception: %v", r.Exception)
	}
	return r.Value.String()
}

// Run parses and executes a script. Cancelling c aborts the run before the next
// statement, resulting in an engine failure.
func Run(c context.Context, code string, bindings Bindings, opts ...Option) Result {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	stmts, err := lang.Parse(o.source, code)
	if err != nil {
		var serr *lang.SyntaxError
		if errors.As(err, &serr) {
			return Result{Exception: value.Throw(serr.Origin, value.SyntaxError, serr.Msg)}
		}
		return Result{Failure: err}
	}
	ctx := runtime.NewContext()
	defer ctx.Teardown()
	ctx.MaxCallDepth = o.maxDepth
	ctx.Debugger = o.debugger
	closeLog, err := setupLog(ctx, o)
	if err != nil {
		return Result{Failure: err}
	}
	defer closeLog()
	builtin.Install(ctx, builtin.Config{Out: o.out, In: o.in, Seed: o.seed})
	for name, v := range bindings {
		ctx.DefineGlobal(name, v)
	}
	v, err := exec.New(ctx).WithCancel(c).Execute(stmts)
	r := Result{Log: ctx.Log.Lines()}
	if exc, isExc := value.AsException(err); isExc {
		tracer().Infof("uncaught exception: %v", exc)
		r.Exception = exc
	} else if err != nil {
		tracer().Errorf("engine failure: %v", err)
		r.Failure = err
	} else {
		r.Value = v.AddRef() // survive teardown
	}
	for name := range bindings { // write back, host becomes an owner
		if v, ok := ctx.Global(name); ok {
			bindings[name] = v.AddRef()
		}
	}
	return r
}

// setupLog connects the logger of ctx to the configured sinks. The returned
// function closes the log file, if any.
func setupLog(ctx *runtime.Context, o *options) (func(), error) {
	noop := func() {}
	if o.logFile == "" {
		if o.echo != nil {
			ctx.Log.SetEcho(o.echo)
		}
		return noop, nil
	}
	f, err := os.OpenFile(o.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return noop, fmt.Errorf("cannot open log file: %w", err)
	}
	if o.echo != nil {
		ctx.Log.SetEcho(io.MultiWriter(o.echo, f))
	} else {
		ctx.Log.SetEcho(f)
	}
	return func() {
		if err := f.Close(); err != nil {
			tracer().Errorf("closing log file: %v", err)
		}
	}, nil
}

// Eval runs a script without bindings and returns its value. Exceptions and
// engine failures are returned as errors.
func Eval(code string, opts ...Option) (*value.Value, error) {
	r := Run(context.Background(), code, nil, opts...)
	return r.Value, r.Err()
}
