package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
	"github.com/npillmayer/scriptum/builtin"
	"github.com/npillmayer/scriptum/lang"
	"github.com/npillmayer/scriptum/runtime"
	"github.com/npillmayer/scriptum/value"
)

func newContext(bindings map[string]*value.Value) *runtime.Context {
	ctx := runtime.NewContext()
	builtin.Install(ctx, builtin.Config{Out: &bytes.Buffer{}, In: strings.NewReader(""), Seed: 1})
	for name, v := range bindings {
		ctx.DefineGlobal(name, v)
	}
	return ctx
}

func runIn(t *testing.T, ctx *runtime.Context, code string) (*value.Value, error) {
	t.Helper()
	stmts, err := lang.Parse("test", code)
	if err != nil {
		t.Fatalf("cannot parse %q: %v", code, err)
	}
	return New(ctx).Execute(stmts)
}

func run(t *testing.T, code string) (*value.Value, *runtime.Context, error) {
	t.Helper()
	ctx := newContext(nil)
	v, err := runIn(t, ctx, code)
	return v, ctx, err
}

func mustRun(t *testing.T, code string) (*value.Value, *runtime.Context) {
	t.Helper()
	v, ctx, err := run(t, code)
	if err != nil {
		t.Fatalf("unexpected error running %q: %v", code, err)
	}
	return v, ctx
}

// expectException checks that err is a script exception of category cat.
func expectException(t *testing.T, err error, cat value.Category) *value.Exception {
	t.Helper()
	exc, ok := value.AsException(err)
	if !ok {
		t.Fatalf("expected %s exception, got %v", cat, err)
	}
	if exc.Category != cat {
		t.Errorf("expected category %q, got %q (%v)", cat, exc.Category, exc)
	}
	return exc
}

func expectLog(t *testing.T, ctx *runtime.Context, lines ...string) {
	t.Helper()
	got := ctx.Log.Lines()
	if len(got) != len(lines) {
		t.Fatalf("expected log %v, got %v", lines, got)
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("expected log %v, got %v", lines, got)
			return
		}
	}
}

// --- Scenarios -------------------------------------------------------------

func TestExpressionWithBindings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(map[string]*value.Value{"a": value.Int(1), "b": value.Int(2)})
	v, err := runIn(t, ctx, "a + b * 2")
	if err != nil || v.AsInt() != 5 {
		t.Errorf("expected 5, got %v (%v)", v, err)
	}
}

func TestDivisionByZero(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	for _, code := range []string{"1/0", "7 % 0", "1.5 / 0.0", "x = 3; x /= 0"} {
		_, _, err := run(t, code)
		exc := expectException(t, err, value.DivisionByZero)
		if !strings.Contains(exc.Message, "division by zero") {
			t.Errorf("%s: unexpected message %q", code, exc.Message)
		}
		if exc.Origin.Line != 1 {
			t.Errorf("%s: expected exception with origin, got %v", code, exc.Origin)
		}
	}
}

func TestCompoundAssignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, "x = 5; x += 3; x")
	if v.AsInt() != 8 {
		t.Errorf("expected 8, got %v", v)
	}
	v, _ = mustRun(t, "x = 5; y = x++; z = ++x; [x, y, z]")
	if s, _ := value.ToString(v); s != "[7, 5, 7]" {
		t.Errorf("expected [7, 5, 7], got %s", s)
	}
}

func TestContinueInForLoop(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	_, ctx := mustRun(t, "for (i=0; i<3; i++) { if (i==1) continue; log(i); }")
	expectLog(t, ctx, "0", "2")
}

func TestFunctionCallAndArity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, "function f(a,b){ return a+b; } f(2,3)")
	if v.AsInt() != 5 {
		t.Errorf("expected 5, got %v", v)
	}
	_, ctx, err := run(t, "function f(a,b){ return a+b; } f(2)")
	exc := expectException(t, err, value.ArityMismatch)
	if !strings.Contains(exc.Message, "'f'") || !strings.Contains(exc.Message, "expects 2") ||
		!strings.Contains(exc.Message, "got 1") {
		t.Errorf("unexpected message %q", exc.Message)
	}
	if ctx.Stack.Depth() != 0 {
		t.Errorf("expected empty call stack, depth is %d", ctx.Stack.Depth())
	}
}

func TestTryCatchFinally(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, ctx := mustRun(t, "try { throw 'boom'; } catch(e) { log(e); } finally { log('done'); }")
	if !v.IsVoid() {
		t.Errorf("expected void, got %v", v)
	}
	expectLog(t, ctx, "boom", "done")
}

// --- Properties ------------------------------------------------------------

func TestIntegerArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	native := map[string]func(a, b int64) int64{
		"+": func(a, b int64) int64 { return a + b },
		"-": func(a, b int64) int64 { return a - b },
		"*": func(a, b int64) int64 { return a * b },
		"/": func(a, b int64) int64 { return a / b },
		"%": func(a, b int64) int64 { return a % b },
	}
	ctx := newContext(nil)
	for _, a := range []int64{-17, -1, 0, 3, 12345} {
		for _, b := range []int64{-4, -1, 1, 7, 100} {
			for op, fn := range native {
				code := fmt.Sprintf("(%d) %s (%d)", a, op, b)
				v, err := runIn(t, ctx, code)
				if err != nil || v.AsInt() != fn(a, b) {
					t.Errorf("%s: expected %d, got %v (%v)", code, fn(a, b), v, err)
				}
			}
		}
	}
}

func TestOperandTypes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	for _, code := range []string{"1 + 2.5", "'a' - 'b'", "true + 1", "[1] * 2", "1 == 'x'", "-'a'", "!0"} {
		_, _, err := run(t, code)
		expectException(t, err, value.TypeMismatch)
	}
	v, _ := mustRun(t, "'a' + 'b' + str(1.5)")
	if v.AsString() != "ab1.5" {
		t.Errorf("expected 'ab1.5', got %v", v)
	}
	v, _ = mustRun(t, "x = getenv('SCRIPTUM_SURELY_UNSET'); x == 0 || x != 'a'")
	if !v.AsBool() {
		t.Errorf("expected comparison with void to be allowed, got %v", v)
	}
}

func TestLastWriteWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, "x = 1; x = 'two'; x")
	if v.AsString() != "two" {
		t.Errorf("expected 'two', got %v", v)
	}
}

func TestIdentifierNotFound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	_, _, err := run(t, "y + 1")
	exc := expectException(t, err, value.IdentifierNotFound)
	if !strings.Contains(exc.Message, "'y'") {
		t.Errorf("expected message naming y, got %q", exc.Message)
	}
	if IsEngineFailure(err) {
		t.Errorf("unresolved identifier must not be an engine failure")
	}
}

func TestListRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(nil)
	if _, err := runIn(t, ctx, "l = [10, 'a', true, [1]]"); err != nil {
		t.Fatal(err)
	}
	want := []string{"10", "a", "true", "[1]"}
	for i, w := range want {
		v, err := runIn(t, ctx, fmt.Sprintf("l[%d]", i))
		if err != nil {
			t.Fatal(err)
		}
		if s, _ := value.ToString(v); s != w {
			t.Errorf("l[%d]: expected %s, got %s", i, w, s)
		}
	}
	_, err := runIn(t, ctx, "l[4]")
	expectException(t, err, value.IndexOutOfRange)
	_, err = runIn(t, ctx, "l['x']")
	expectException(t, err, value.TypeMismatch)
	v, err := runIn(t, ctx, "l[1] = 'b'; l")
	if s, _ := value.ToString(v); err != nil || s != `[10, "b", true, [1]]` {
		t.Errorf("unexpected list after element assignment: %s (%v)", s, err)
	}
}

func TestDictLiteral(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, `d = { "z": 1, a: 2 }; d["m"] = 3; d`)
	if keys := v.AsDict().Keys(); len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Errorf("expected keys in insertion order, got %v", keys)
	}
}

func TestIfRequiresBool(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	_, ctx, err := run(t, "if (1) log('then') else log('else')")
	expectException(t, err, value.TypeMismatch)
	expectLog(t, ctx)
	_, ctx = mustRun(t, "if (1 < 2) log('then') else log('else')")
	expectLog(t, ctx, "then")
	_, ctx = mustRun(t, "if (1 > 2) log('then') else log('else')")
	expectLog(t, ctx, "else")
}

func TestLoops(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	_, ctx := mustRun(t, "while (false) log('never')")
	expectLog(t, ctx)
	v, _ := mustRun(t, "for (i = 0; i < 10; i++) { if (i == 3) break }; i")
	if v.AsInt() != 3 {
		t.Errorf("expected break to skip the step, i = %v", v)
	}
	v, _ = mustRun(t, "function f() { i = 0; while (true) { i++; if (i == 4) return i * 10 } } f()")
	if v.AsInt() != 40 {
		t.Errorf("expected 40, got %v", v)
	}
}

func TestFinallyRunsOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	for _, code := range []string{
		"try { 1 } finally { log('f') }",
		"function g() { try { return 1 } finally { log('f') } } g()",
		"for (i = 0; i < 1; i++) { try { break } finally { log('f') } }",
		"for (i = 0; i < 1; i++) { try { continue } finally { log('f') } }",
		"try { try { throw 'x' } finally { log('f') } } catch (e) { }",
		"try { throw 'x' } catch (e) { 1 } finally { log('f') }",
	} {
		_, ctx := mustRun(t, code)
		expectLog(t, ctx, "f")
	}
	v, _ := mustRun(t, "function g() { try { return 1 } finally { log('f') } } g()")
	if v.AsInt() != 1 {
		t.Errorf("expected return value to survive finally, got %v", v)
	}
}

func TestFinallyMasks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	for _, code := range []string{
		"function g() { try { return 1 } finally { throw 'masked' } } g()",
		"try { throw 'a' } finally { throw 'masked' }",
		"try { throw 'a' } catch (e) { throw 'b' } finally { throw 'masked' }",
	} {
		_, _, err := run(t, code)
		exc := expectException(t, err, "")
		if exc.Message != "masked" {
			t.Errorf("%s: expected exception from finally, got %v", code, exc)
		}
	}
}

func TestCatchBinding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, ctx := mustRun(t, "e = 'outer'; try { throw 'inner' } catch (e) { log(e) }; e")
	expectLog(t, ctx, "inner")
	if v.AsString() != "outer" {
		t.Errorf("expected binding of e to be restored, got %v", v)
	}
	_, _, err := run(t, "try { throw 'x' } catch (ex) { }; ex")
	expectException(t, err, value.IdentifierNotFound)
	v, _ = mustRun(t, "try { [1][5] } catch (e) { e.kind + ': ' + e.message }")
	if !v.IsVoid() {
		t.Errorf("expected try statement to have value void, got %v", v)
	}
}

func TestRethrowWrapsInner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	_, _, err := run(t, "try { 1/0 } catch (e) {\n throw e\n}")
	exc := expectException(t, err, value.DivisionByZero)
	if exc.Inner == nil || exc.Inner.Origin.Line != 1 || exc.Origin.Line != 2 {
		t.Errorf("expected re-thrown exception wrapping the original, got %v", exc)
	}
}

func TestNoShortCircuit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, ctx := mustRun(t, "function t() { log('t'); return true } [false && t(), true || t()]")
	expectLog(t, ctx, "t", "t")
	if s, _ := value.ToString(v); s != "[false, true]" {
		t.Errorf("expected [false, true], got %s", s)
	}
}

func TestShortIf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, "x = 3; x > 2 ? ['big', 'small']")
	if v.AsString() != "big" {
		t.Errorf("expected 'big', got %v", v)
	}
	_, _, err := run(t, "true ? [1]")
	expectException(t, err, value.TypeMismatch)
}

func TestFunctionRedeclaration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	_, _, err := run(t, "function f() {}\nfunction f() {}")
	exc := expectException(t, err, value.DuplicateSymbol)
	if exc.Origin.Line != 2 {
		t.Errorf("expected origin of second declaration, got %v", exc.Origin)
	}
}

func TestFreeVariablesAreDynamic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, "y = 1; f = function() { return y }; y = 2; f()")
	if v.AsInt() != 2 {
		t.Errorf("expected free variable to be resolved at call time, got %v", v)
	}
}

func TestNamedArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, ctx := mustRun(t, "function f(a, b) { return a - b }")
	if _, ok := v.AsCallable().(*Function); !ok {
		t.Fatalf("expected user function, got %v", v)
	}
	fn, _ := ctx.Resolve("f")
	r, err := value.Call(fn, value.Invocation{
		Args:  []*value.Value{value.Int(10)},
		Named: []value.NamedArg{{Name: "b", Value: value.Int(3)}},
	})
	if err != nil || r.AsInt() != 7 {
		t.Errorf("expected 7, got %v (%v)", r, err)
	}
	_, err = value.Call(fn, value.Invocation{Named: []value.NamedArg{{Name: "c", Value: value.One}}})
	expectException(t, err, value.InvalidArgument)
}

// --- Classes ---------------------------------------------------------------

const counterClass = `
class Counter {
	private n = 0
	step = 1
	function inc() { this.n += this.step; return this }
	function get() { return this.n }
}
`

func TestClassInstances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, counterClass+"c = Counter(); c.step = 5; c.inc().inc().get()")
	if v.AsInt() != 10 {
		t.Errorf("expected 10, got %v", v)
	}
	_, _, err := run(t, counterClass+"c = Counter(); c.n")
	expectException(t, err, value.AccessViolation)
	_, _, err = run(t, counterClass+"c = Counter(); c.color = 'red'")
	expectException(t, err, value.NoSuchMember)
	_, _, err = run(t, counterClass+"c = Counter(); c.reset()")
	expectException(t, err, value.NoSuchMember)
}

func TestInheritanceAndConstructor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, _ := mustRun(t, `
	class Base {
		name = 'base'
		private secret = 42
		function hello() { return 'hello ' + this.name }
		function reveal() { return this.secret }
	}
	class Derived extends Base {
		function construct(n) { this.name = n }
	}
	d = Derived('d')
	[d.hello(), d.reveal()]`)
	if s, _ := value.ToString(v); s != `["hello d", 42]` {
		t.Errorf(`expected ["hello d", 42], got %s`, s)
	}
	_, _, err := run(t, "class D extends Nowhere {}")
	expectException(t, err, value.UnknownSymbol)
}

func TestPrivateMembersOfSubclass(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	classes := `
	class Shape {
		private id = 1
		function peek(o) { return o.size }
		function call(o) { return o.grow() }
	}
	class Box extends Shape {
		private size = 7
		private grow() { this.size += 1; return this.size }
		function both() { return this.id + this.size }
		function bigger() { return this.grow() }
	}
	s = Shape(); b = Box()
	`
	_, _, err := run(t, classes+"s.peek(b)")
	expectException(t, err, value.AccessViolation)
	_, _, err = run(t, classes+"s.call(b)")
	expectException(t, err, value.AccessViolation)
	_, _, err = run(t, classes+"b.peek(b)")
	expectException(t, err, value.AccessViolation)
	v, _ := mustRun(t, classes+"[b.both(), b.bigger()]")
	if l := v.AsList(); l.Elems[0].AsInt() != 8 || l.Elems[1].AsInt() != 8 {
		t.Errorf("expected subclass methods to see own and inherited private members, got %v", v)
	}
}

func TestClassDeclarationIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	v, ctx := mustRun(t, "for (i = 0; i < 2; i++) { class P { x = 1 } } p = P(); p.x")
	if v.AsInt() != 1 {
		t.Errorf("expected 1, got %v", v)
	}
	if ctx.LookupType("P") == nil {
		t.Errorf("expected type P to be registered")
	}
	_, _, err := run(t, "class P { }\nclass P { x }")
	expectException(t, err, value.DuplicateSymbol)
}

// --- Failures and control --------------------------------------------------

func TestMalformedTreeIsEngineFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(nil)
	log := &ast.ExprStmt{X: &ast.BinaryOp{Op: ast.Call, L: &ast.Ident{Name: "log"},
		R: &ast.ListData{Elems: []ast.Expr{&ast.StringLit{Value: "finally"}}}}}
	tree := []ast.Stmt{&ast.TryStmt{
		Body:       []ast.Stmt{&ast.ExprStmt{}},
		HasCatch:   true,
		HasFinally: true,
		Finally:    []ast.Stmt{log},
	}}
	_, err := New(ctx).Execute(tree)
	if !IsEngineFailure(err) || !errors.Is(err, ErrMalformedAST) {
		t.Errorf("expected malformed tree failure, got %v", err)
	}
	expectLog(t, ctx)
	_, err = New(ctx).Execute([]ast.Stmt{nil})
	if !errors.Is(err, ErrMalformedAST) {
		t.Errorf("expected malformed tree failure for nil statement, got %v", err)
	}
}

func TestStackOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(nil)
	ctx.MaxCallDepth = 50
	_, err := runIn(t, ctx, "function r(n) { return r(n + 1) } r(0)")
	expectException(t, err, value.StackOverflow)
	if ctx.Stack.Depth() != 0 {
		t.Errorf("expected all frames to be popped, depth is %d", ctx.Stack.Depth())
	}
}

func TestCancellation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(nil)
	stmts, err := lang.Parse("test", "while (true) { }")
	if err != nil {
		t.Fatal(err)
	}
	c, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(ctx).WithCancel(c).Execute(stmts)
	if !errors.Is(err, runtime.ErrAborted) || !IsEngineFailure(err) {
		t.Errorf("expected aborted run, got %v", err)
	}
}

func TestDebuggerAbort(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(nil)
	bp := runtime.NewLineBreakpoints(2)
	bp.OnHit = func(*runtime.Context, scriptum.Origin) error { return errors.New("stop") }
	ctx.Debugger = bp
	_, err := runIn(t, ctx, "x = 1\ny = 2\nz = 3")
	if !errors.Is(err, runtime.ErrAborted) {
		t.Errorf("expected aborted run, got %v", err)
	}
	if _, ok := ctx.Global("x"); !ok {
		t.Errorf("expected x to be assigned before the breakpoint")
	}
	if _, ok := ctx.Global("y"); ok {
		t.Errorf("expected y not to be assigned")
	}
}

func TestBreakpointStatement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(nil)
	bp := runtime.NewLineBreakpoints()
	ctx.Debugger = bp
	if _, err := runIn(t, ctx, "x = 1\nbreakpoint\nx"); err != nil {
		t.Fatal(err)
	}
	if len(bp.Hits) != 1 || bp.Hits[0].Line != 2 {
		t.Errorf("expected one hit on line 2, got %v", bp.Hits)
	}
}

func TestExternalBindingWriteBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.exec")
	defer teardown()
	//
	ctx := newContext(map[string]*value.Value{"a": value.Int(1)})
	if _, err := runIn(t, ctx, "a = a + 41"); err != nil {
		t.Fatal(err)
	}
	if a, _ := ctx.Global("a"); a.AsInt() != 42 {
		t.Errorf("expected a = 42, got %v", a)
	}
}
