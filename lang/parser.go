package lang

import (
	"fmt"

	"github.com/npillmayer/scriptum"
	"github.com/npillmayer/scriptum/ast"
)

// SyntaxError is the error type for malformed input.
type SyntaxError struct {
	Origin scriptum.Origin
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %v: %s", e.Origin, e.Msg)
}

// Parse parses a script. source names the script in origins of AST nodes and in
// error messages, e.g. a filename.
func Parse(source, code string) ([]ast.Stmt, error) {
	toks, err := Tokenize(source, code)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parse()
}

// bailout is used to unwind the parser on the first syntax error.
type bailout struct {
	err *SyntaxError
}

type parser struct {
	toks []scriptum.Token
	pos  int
}

func (p *parser) parse() (stmts []ast.Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			tracer().Infof("%v", b.err)
			stmts, err = nil, b.err
		}
	}()
	for !p.at(EOF) {
		stmts = append(stmts, p.statement())
		p.optionalSemicolon()
	}
	return stmts, nil
}

// --- Token handling --------------------------------------------------------

func (p *parser) peek() scriptum.Token {
	return p.toks[p.pos]
}

func (p *parser) next() scriptum.Token {
	t := p.toks[p.pos]
	if t.TokType() != EOF {
		p.pos++
	}
	return t
}

func (p *parser) at(typ scriptum.TokType) bool {
	return p.peek().TokType() == typ
}

func (p *parser) atOp(lexeme string) bool {
	t := p.peek()
	return t.TokType() == Operator && t.Lexeme() == lexeme
}

func (p *parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.TokType() == Keyword && t.Lexeme() == kw
}

func (p *parser) errorf(t scriptum.Token, format string, args ...interface{}) {
	panic(bailout{&SyntaxError{Origin: t.Origin(), Msg: fmt.Sprintf(format, args...)}})
}

func (p *parser) expectOp(lexeme string) scriptum.Token {
	if !p.atOp(lexeme) {
		p.errorf(p.peek(), "expected '%s', found %v", lexeme, p.peek())
	}
	return p.next()
}

func (p *parser) expectKeyword(kw string) scriptum.Token {
	if !p.atKeyword(kw) {
		p.errorf(p.peek(), "expected '%s', found %v", kw, p.peek())
	}
	return p.next()
}

func (p *parser) ident() string {
	if !p.at(Ident) {
		p.errorf(p.peek(), "expected identifier, found %v", p.peek())
	}
	return p.next().Lexeme()
}

func (p *parser) optionalSemicolon() {
	for p.atOp(";") {
		p.next()
	}
}

// --- Statements ------------------------------------------------------------

func (p *parser) statement() ast.Stmt {
	t := p.peek()
	base := ast.At(t.Origin())
	if t.TokType() == Keyword {
		switch t.Lexeme() {
		case "if":
			p.next()
			cond := p.parenthesized()
			then := p.body()
			var els []ast.Stmt
			p.optionalSemicolon()
			if p.atKeyword("else") {
				p.next()
				els = p.body()
			}
			return &ast.IfStmt{Base: base, Cond: cond, Then: then, Else: els}
		case "while":
			p.next()
			cond := p.parenthesized()
			return &ast.WhileStmt{Base: base, Cond: cond, Body: p.body()}
		case "for":
			return p.forStatement()
		case "break":
			p.next()
			return &ast.BreakStmt{Base: base}
		case "continue":
			p.next()
			return &ast.ContinueStmt{Base: base}
		case "return":
			p.next()
			return &ast.ReturnStmt{Base: base, Value: p.optionalExpression()}
		case "throw":
			p.next()
			return &ast.ThrowStmt{Base: base, Value: p.optionalExpression()}
		case "breakpoint":
			p.next()
			return &ast.BreakpointStmt{Base: base}
		case "function":
			if p.toks[p.pos+1].TokType() == Ident {
				return p.function()
			}
		case "class":
			return p.class()
		case "try":
			return p.tryStatement()
		}
	}
	return &ast.ExprStmt{Base: base, X: p.expression()}
}

// optionalExpression parses an expression, if the statement does not end here.
func (p *parser) optionalExpression() ast.Expr {
	if p.at(EOF) || p.atOp(";") || p.atOp("}") {
		return nil
	}
	return p.expression()
}

func (p *parser) parenthesized() ast.Expr {
	p.expectOp("(")
	x := p.expression()
	p.expectOp(")")
	return x
}

// body parses a block or a single statement.
func (p *parser) body() []ast.Stmt {
	if p.atOp("{") {
		return p.block()
	}
	return []ast.Stmt{p.statement()}
}

func (p *parser) block() []ast.Stmt {
	p.expectOp("{")
	stmts := []ast.Stmt{}
	p.optionalSemicolon()
	for !p.atOp("}") {
		if p.at(EOF) {
			p.errorf(p.peek(), "unterminated block")
		}
		stmts = append(stmts, p.statement())
		p.optionalSemicolon()
	}
	p.next()
	return stmts
}

func (p *parser) forStatement() ast.Stmt {
	base := ast.At(p.expectKeyword("for").Origin())
	p.expectOp("(")
	f := &ast.ForStmt{Base: base}
	if !p.atOp(";") {
		f.Init = p.expression()
	}
	p.expectOp(";")
	if !p.atOp(";") {
		f.Cond = p.expression()
	}
	p.expectOp(";")
	if !p.atOp(")") {
		f.Step = p.expression()
	}
	p.expectOp(")")
	f.Body = p.body()
	return f
}

// function parses 'function name(params) { body }'. The name is optional for
// function literals.
func (p *parser) function() *ast.FuncDecl {
	base := ast.At(p.expectKeyword("function").Origin())
	f := &ast.FuncDecl{Base: base}
	if p.at(Ident) {
		f.Name = p.next().Lexeme()
	}
	f.Params = p.params()
	f.Body = p.block()
	return f
}

func (p *parser) params() []string {
	p.expectOp("(")
	params := []string{}
	for !p.atOp(")") {
		params = append(params, p.ident())
		if !p.atOp(")") {
			p.expectOp(",")
		}
	}
	p.next()
	return params
}

func (p *parser) class() ast.Stmt {
	base := ast.At(p.expectKeyword("class").Origin())
	c := &ast.ClassDecl{Base: base, Name: p.ident()}
	if p.atKeyword("extends") {
		p.next()
		c.Parent = p.ident()
	}
	p.expectOp("{")
	for p.optionalSemicolon(); !p.atOp("}"); p.optionalSemicolon() {
		if p.at(EOF) {
			p.errorf(p.peek(), "unterminated class declaration")
		}
		private := false
		if p.atKeyword("private") || p.atKeyword("public") {
			private = p.next().Lexeme() == "private"
		}
		if p.atKeyword("function") {
			t := p.peek()
			f := p.function()
			if f.Name == "" {
				p.errorf(t, "method of class '%s' without name", c.Name)
			}
			c.Methods = append(c.Methods, &ast.MethodDecl{Private: private, Func: f})
			continue
		}
		t := p.peek()
		name := p.ident()
		if p.atOp("(") { // method without keyword
			f := &ast.FuncDecl{Base: ast.At(t.Origin()), Name: name}
			f.Params = p.params()
			f.Body = p.block()
			c.Methods = append(c.Methods, &ast.MethodDecl{Private: private, Func: f})
			continue
		}
		fd := &ast.FieldDecl{Base: ast.At(t.Origin()), Name: name, Private: private}
		if p.atOp("=") {
			p.next()
			fd.Init = p.expression()
		}
		c.Fields = append(c.Fields, fd)
	}
	p.next()
	return c
}

func (p *parser) tryStatement() ast.Stmt {
	base := ast.At(p.expectKeyword("try").Origin())
	t := &ast.TryStmt{Base: base, Body: p.block()}
	if p.atKeyword("catch") {
		p.next()
		t.HasCatch = true
		if p.atOp("(") {
			p.next()
			t.CatchName = p.ident()
			p.expectOp(")")
		}
		t.Catch = p.block()
	}
	if p.atKeyword("finally") {
		p.next()
		t.HasFinally = true
		t.Finally = p.block()
	}
	if !t.HasCatch && !t.HasFinally {
		p.errorf(p.peek(), "expected 'catch' or 'finally', found %v", p.peek())
	}
	return t
}

// --- Expressions -----------------------------------------------------------

// Binding powers of binary operators. Assignment is right-associative and handled
// separately.
var precedence = map[string]int{
	"?":  1,
	"||": 2,
	"&&": 3,
	"==": 4, "!=": 4,
	"<": 5, "<=": 5, ">": 5, ">=": 5,
	"+": 6, "-": 6,
	"*": 7, "/": 7, "%": 7,
}

var binaryOps = map[string]ast.Operator{
	"?": ast.ShortIf, "||": ast.Or, "&&": ast.And, "==": ast.Eq, "!=": ast.Neq,
	"<": ast.Lt, "<=": ast.Le, ">": ast.Gt, ">=": ast.Ge,
	"+": ast.Add, "-": ast.Sub, "*": ast.Mul, "/": ast.Div, "%": ast.Mod,
}

var assignOps = map[string]ast.Operator{
	"=": ast.Assign, "+=": ast.AddAssign, "-=": ast.SubAssign, "*=": ast.MulAssign,
	"/=": ast.DivAssign, "%=": ast.ModAssign,
}

func (p *parser) expression() ast.Expr {
	lhs := p.binary(1)
	t := p.peek()
	if op, ok := assignOps[t.Lexeme()]; ok && t.TokType() == Operator {
		p.next()
		return &ast.BinaryOp{Base: ast.At(t.Origin()), Op: op, L: lhs, R: p.expression()}
	}
	return lhs
}

// binary parses binary operators with a binding power of at least minPrec.
func (p *parser) binary(minPrec int) ast.Expr {
	lhs := p.unary()
	for {
		t := p.peek()
		prec, ok := precedence[t.Lexeme()]
		if !ok || t.TokType() != Operator || prec < minPrec {
			return lhs
		}
		p.next()
		rhs := p.binary(prec + 1)
		lhs = &ast.BinaryOp{Base: ast.At(t.Origin()), Op: binaryOps[t.Lexeme()], L: lhs, R: rhs}
	}
}

func (p *parser) unary() ast.Expr {
	t := p.peek()
	if t.TokType() == Operator {
		var op ast.Operator
		switch t.Lexeme() {
		case "-":
			op = ast.Neg
		case "!":
			op = ast.Not
		case "++":
			op = ast.PreInc
		case "--":
			op = ast.PreDec
		}
		if op != ast.NoOp {
			p.next()
			return &ast.UnaryOp{Base: ast.At(t.Origin()), Op: op, X: p.unary()}
		}
	}
	return p.postfix(p.primary())
}

func (p *parser) postfix(x ast.Expr) ast.Expr {
	for {
		t := p.peek()
		if t.TokType() != Operator {
			return x
		}
		base := ast.At(t.Origin())
		switch t.Lexeme() {
		case "(":
			args := p.list("(", ")")
			x = &ast.BinaryOp{Base: base, Op: ast.Call, L: x, R: args}
		case "[":
			p.next()
			index := p.expression()
			p.expectOp("]")
			x = &ast.BinaryOp{Base: base, Op: ast.Index, L: x, R: index}
		case ".":
			p.next()
			nt := p.peek()
			name := p.memberName()
			x = &ast.BinaryOp{Base: base, Op: ast.Member, L: x, R: &ast.Ident{Base: ast.At(nt.Origin()), Name: name}}
		case "++":
			p.next()
			x = &ast.UnaryOp{Base: base, Op: ast.PostInc, X: x}
		case "--":
			p.next()
			x = &ast.UnaryOp{Base: base, Op: ast.PostDec, X: x}
		default:
			return x
		}
	}
}

// memberName accepts identifiers and keywords as member names.
func (p *parser) memberName() string {
	if p.at(Keyword) {
		return p.next().Lexeme()
	}
	return p.ident()
}

func (p *parser) primary() ast.Expr {
	t := p.peek()
	base := ast.At(t.Origin())
	switch t.TokType() {
	case Ident:
		p.next()
		return &ast.Ident{Base: base, Name: t.Lexeme()}
	case Number:
		p.next()
		return &ast.NumberLit{Base: base, Lexeme: t.Lexeme()}
	case String:
		p.next()
		return &ast.StringLit{Base: base, Value: unquote(t.Lexeme())}
	case Keyword:
		switch t.Lexeme() {
		case "true", "false":
			p.next()
			return &ast.BoolLit{Base: base, Value: t.Lexeme() == "true"}
		case "function":
			return p.function()
		}
	case Operator:
		switch t.Lexeme() {
		case "(":
			return p.parenthesized()
		case "[":
			return p.list("[", "]")
		case "{":
			return p.dict()
		}
	}
	p.errorf(t, "unexpected %v", t)
	return nil
}

// list parses a comma-separated list of expressions, enclosed in open and close.
func (p *parser) list(open, close string) *ast.ListData {
	l := &ast.ListData{Base: ast.At(p.expectOp(open).Origin()), Elems: []ast.Expr{}}
	for !p.atOp(close) {
		l.Elems = append(l.Elems, p.expression())
		if !p.atOp(close) {
			p.expectOp(",")
		}
	}
	p.next()
	return l
}

func (p *parser) dict() *ast.DictData {
	d := &ast.DictData{Base: ast.At(p.expectOp("{").Origin()), Entries: []ast.DictEntry{}}
	for !p.atOp("}") {
		t := p.next()
		var key string
		switch t.TokType() {
		case String:
			key = unquote(t.Lexeme())
		case Ident:
			key = t.Lexeme()
		default:
			p.errorf(t, "expected dict key, found %v", t)
		}
		p.expectOp(":")
		d.Entries = append(d.Entries, ast.DictEntry{Key: key, Value: p.expression()})
		if !p.atOp("}") {
			p.expectOp(",")
		}
	}
	p.next()
	return d
}
