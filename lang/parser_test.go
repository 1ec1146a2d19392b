package lang

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-test/deep"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
)

func init() {
	deep.NilSlicesAreEmpty = true
	deep.MaxDepth = 40
}

// stripOrigins clears the origins of all nodes, to compare ASTs by structure only.
func stripOrigins(stmts []ast.Stmt) []ast.Stmt {
	ast.InspectAll(stmts, func(n ast.Node, _ int) bool {
		reflect.ValueOf(n).Elem().FieldByName("Base").Set(reflect.ValueOf(ast.Base{}))
		return true
	})
	return stmts
}

func parse(t *testing.T, code string) []ast.Stmt {
	t.Helper()
	stmts, err := Parse("test", code)
	if err != nil {
		t.Fatalf("unexpected error parsing %q: %v", code, err)
	}
	return stripOrigins(stmts)
}

func id(name string) *ast.Ident        { return &ast.Ident{Name: name} }
func num(lexeme string) *ast.NumberLit { return &ast.NumberLit{Lexeme: lexeme} }

func bin(op ast.Operator, l, r ast.Expr) *ast.BinaryOp {
	return &ast.BinaryOp{Op: op, L: l, R: r}
}

func args(elems ...ast.Expr) *ast.ListData {
	return &ast.ListData{Elems: elems}
}

func expr(x ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: x}
}

// --- Lexer -----------------------------------------------------------------

func TestKeywordsAndIdentifiers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	toks, err := Tokenize("test", "if iffy while_ x1 for")
	if err != nil {
		t.Fatal(err)
	}
	want := []scriptum.TokType{Keyword, Ident, Ident, Ident, Keyword, EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, tok := range toks {
		if tok.TokType() != want[i] {
			t.Errorf("token %d (%v): expected type %d, got %d", i, tok, want[i], tok.TokType())
		}
	}
}

func TestCommentsNumbersStrings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	toks, err := Tokenize("test", "1 // one\n2.5 /* two\n and a half */ 'a\\n' \"q\\\"\"")
	if err != nil {
		t.Fatal(err)
	}
	lexemes := []string{"1", "2.5", "'a\\n'", "\"q\\\"\"", ""}
	types := []scriptum.TokType{Number, Number, String, String, EOF}
	for i, tok := range toks {
		if tok.Lexeme() != lexemes[i] || tok.TokType() != types[i] {
			t.Errorf("token %d: expected %q, got %q", i, lexemes[i], tok.Lexeme())
		}
	}
	if toks[1].Origin().Line != 2 {
		t.Errorf("expected 2.5 on line 2, got %v", toks[1].Origin())
	}
	if sp := toks[1].Span(); sp[0] != 9 || sp.Len() != 3 {
		t.Errorf("expected 2.5 to span (9…12), got %v", sp)
	}
	if s := unquote(toks[2].Lexeme()); s != "a\n" {
		t.Errorf("expected escaped newline, got %q", s)
	}
	if s := unquote(toks[3].Lexeme()); s != "q\"" {
		t.Errorf("expected escaped quote, got %q", s)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	_, err := Tokenize("test", "x = 1\ny = @")
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if serr.Origin.Line != 2 || serr.Origin.Source != "test" {
		t.Errorf("expected error on line 2 of test, got %v", serr.Origin)
	}
}

// --- Parser ----------------------------------------------------------------

func TestPrecedence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, "a = b = 1 + 2 * -3 == 7 && !c")
	want := []ast.Stmt{expr(
		bin(ast.Assign, id("a"), bin(ast.Assign, id("b"),
			bin(ast.And,
				bin(ast.Eq,
					bin(ast.Add, num("1"), bin(ast.Mul, num("2"), &ast.UnaryOp{Op: ast.Neg, X: num("3")})),
					num("7")),
				&ast.UnaryOp{Op: ast.Not, X: id("c")}))))}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestLeftAssociativity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, "x -= 10 - 4 - 3")
	want := []ast.Stmt{expr(bin(ast.SubAssign, id("x"),
		bin(ast.Sub, bin(ast.Sub, num("10"), num("4")), num("3"))))}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestPostfixChains(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, "o.f(1, x)[0]; i++; --j")
	want := []ast.Stmt{
		expr(bin(ast.Index,
			bin(ast.Call, bin(ast.Member, id("o"), id("f")), args(num("1"), id("x"))),
			num("0"))),
		expr(&ast.UnaryOp{Op: ast.PostInc, X: id("i")}),
		expr(&ast.UnaryOp{Op: ast.PreDec, X: id("j")}),
	}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestLiterals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, `d = { "a": [1, 2.5], b: true }; c ? ['x', false]`)
	want := []ast.Stmt{
		expr(bin(ast.Assign, id("d"), &ast.DictData{Entries: []ast.DictEntry{
			{Key: "a", Value: &ast.ListData{Elems: []ast.Expr{num("1"), num("2.5")}}},
			{Key: "b", Value: &ast.BoolLit{Value: true}},
		}})),
		expr(bin(ast.ShortIf, id("c"), &ast.ListData{Elems: []ast.Expr{
			&ast.StringLit{Value: "x"}, &ast.BoolLit{Value: false},
		}})),
	}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestControlStatements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, `
	for (i = 0; i < 3; i++) {
		if (i == 1) continue else { break }
	}
	while (true) return
	`)
	want := []ast.Stmt{
		&ast.ForStmt{
			Init: bin(ast.Assign, id("i"), num("0")),
			Cond: bin(ast.Lt, id("i"), num("3")),
			Step: &ast.UnaryOp{Op: ast.PostInc, X: id("i")},
			Body: []ast.Stmt{&ast.IfStmt{
				Cond: bin(ast.Eq, id("i"), num("1")),
				Then: []ast.Stmt{&ast.ContinueStmt{}},
				Else: []ast.Stmt{&ast.BreakStmt{}},
			}},
		},
		&ast.WhileStmt{Cond: &ast.BoolLit{Value: true}, Body: []ast.Stmt{&ast.ReturnStmt{}}},
	}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, "function add(a, b) { return a + b }\nf = function(x) { x }")
	want := []ast.Stmt{
		&ast.FuncDecl{Name: "add", Params: []string{"a", "b"}, Body: []ast.Stmt{
			&ast.ReturnStmt{Value: bin(ast.Add, id("a"), id("b"))},
		}},
		expr(bin(ast.Assign, id("f"), &ast.FuncDecl{Params: []string{"x"}, Body: []ast.Stmt{expr(id("x"))}})),
	}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestClassDeclaration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, `
	class Counter extends Base {
		private n = 0
		label
		function inc() { n++ }
		private reset() { n = 0 }
	}`)
	want := []ast.Stmt{&ast.ClassDecl{
		Name:   "Counter",
		Parent: "Base",
		Fields: []*ast.FieldDecl{
			{Name: "n", Private: true, Init: num("0")},
			{Name: "label"},
		},
		Methods: []*ast.MethodDecl{
			{Func: &ast.FuncDecl{Name: "inc", Params: []string{}, Body: []ast.Stmt{
				expr(&ast.UnaryOp{Op: ast.PostInc, X: id("n")}),
			}}},
			{Private: true, Func: &ast.FuncDecl{Name: "reset", Params: []string{}, Body: []ast.Stmt{
				expr(bin(ast.Assign, id("n"), num("0"))),
			}}},
		},
	}}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestTryStatement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts := parse(t, `try { throw "x" } catch (e) { log(e) } finally { breakpoint }`)
	want := []ast.Stmt{&ast.TryStmt{
		Body:       []ast.Stmt{&ast.ThrowStmt{Value: &ast.StringLit{Value: "x"}}},
		HasCatch:   true,
		CatchName:  "e",
		Catch:      []ast.Stmt{expr(bin(ast.Call, id("log"), args(id("e"))))},
		HasFinally: true,
		Finally:    []ast.Stmt{&ast.BreakpointStmt{}},
	}}
	if diff := deep.Equal(stmts, want); diff != nil {
		t.Error(diff)
	}
}

func TestOrigins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	stmts, err := Parse("script.sc", "x = 1\n\nwhile (x) x = 0")
	if err != nil {
		t.Fatal(err)
	}
	if org := stmts[1].Pos(); org.Source != "script.sc" || org.Line != 3 {
		t.Errorf("expected while on line 3 of script.sc, got %v", org)
	}
}

func TestSyntaxErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "scriptum.lang")
	defer teardown()
	//
	for _, code := range []string{
		"if (x {",
		"try { x }",
		"1 +",
		"f(1, 2",
		"class C { function () {} }",
		"{ 1: 2 }",
		"x = )",
	} {
		_, err := Parse("test", code)
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			t.Errorf("expected syntax error for %q, got %v", code, err)
		}
	}
}
