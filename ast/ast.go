package ast

import (
	"fmt"

	"github.com/npillmayer/scriptum"
)

// Node is the common interface of statements and expressions.
type Node interface {
	Pos() scriptum.Origin
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Base carries the source origin of a node. It is embedded in every node type.
type Base struct {
	At scriptum.Origin
}

// Pos returns the source origin of a node.
func (b Base) Pos() scriptum.Origin {
	return b.At
}

// At creates a Base for an origin. Use as
//
//    &ast.Ident{Base: ast.At(org), Name: "x"}
//
func At(org scriptum.Origin) Base {
	return Base{At: org}
}

// === Statements ============================================================

// IfStmt is 'if (Cond) Then else Else'. Else may be empty.
type IfStmt struct {
	Base
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// WhileStmt is 'while (Cond) Body'.
type WhileStmt struct {
	Base
	Cond Expr
	Body []Stmt
}

// ForStmt is 'for (Init; Cond; Step) Body'. Each of Init, Cond and Step may be nil;
// a missing condition is always true.
type ForStmt struct {
	Base
	Init Expr
	Cond Expr
	Step Expr
	Body []Stmt
}

// BreakStmt is 'break'.
type BreakStmt struct {
	Base
}

// ContinueStmt is 'continue'.
type ContinueStmt struct {
	Base
}

// ReturnStmt is 'return Value'. Value may be nil.
type ReturnStmt struct {
	Base
	Value Expr
}

// ExprStmt is an expression in statement position.
type ExprStmt struct {
	Base
	X Expr
}

// FuncDecl is a function declaration. With a name and in statement position it
// declares a function in the current scope; in expression position it is a
// function literal.
type FuncDecl struct {
	Base
	Name   string
	Params []string
	Body   []Stmt
}

// ClassDecl declares a class. Parent is empty for classes without a base class.
type ClassDecl struct {
	Base
	Name    string
	Parent  string
	Fields  []*FieldDecl
	Methods []*MethodDecl
}

// FieldDecl declares an attribute of a class. Init may be nil.
type FieldDecl struct {
	Base
	Name    string
	Private bool
	Init    Expr
}

// MethodDecl declares a method of a class.
type MethodDecl struct {
	Private bool
	Func    *FuncDecl
}

// TryStmt is 'try Body catch (CatchName) Catch finally Finally'.
// Either catch or finally may be absent, as flagged by HasCatch and HasFinally.
type TryStmt struct {
	Base
	Body       []Stmt
	HasCatch   bool
	CatchName  string
	Catch      []Stmt
	HasFinally bool
	Finally    []Stmt
}

// ThrowStmt is 'throw Value'. Value may be nil.
type ThrowStmt struct {
	Base
	Value Expr
}

// BreakpointStmt is 'breakpoint', a hook for debuggers.
type BreakpointStmt struct {
	Base
}

func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*ForStmt) stmtNode()        {}
func (*BreakStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()       {}
func (*FuncDecl) stmtNode()       {}
func (*ClassDecl) stmtNode()      {}
func (*TryStmt) stmtNode()        {}
func (*ThrowStmt) stmtNode()      {}
func (*BreakpointStmt) stmtNode() {}

// === Expressions ===========================================================

// Ident is a reference to a named symbol.
type Ident struct {
	Base
	Name string
}

// NumberLit is a numeric literal. The lexeme is converted by the executor.
type NumberLit struct {
	Base
	Lexeme string
}

// StringLit is a string literal with escapes already resolved.
type StringLit struct {
	Base
	Value string
}

// BoolLit is 'true' or 'false'.
type BoolLit struct {
	Base
	Value bool
}

// ListData is a list literal '[e1, e2, …]'. It is also used for call arguments.
type ListData struct {
	Base
	Elems []Expr
}

// DictEntry is a key/value pair in a dict literal.
type DictEntry struct {
	Key   string
	Value Expr
}

// DictData is a dict literal '{ "k": v, … }'.
type DictData struct {
	Base
	Entries []DictEntry
}

// UnaryOp is an operator with one operand.
type UnaryOp struct {
	Base
	Op Operator
	X  Expr
}

// BinaryOp is an operator with two operands.
type BinaryOp struct {
	Base
	Op Operator
	L  Expr
	R  Expr
}

func (*Ident) exprNode()     {}
func (*NumberLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*ListData) exprNode()  {}
func (*DictData) exprNode()  {}
func (*UnaryOp) exprNode()   {}
func (*BinaryOp) exprNode()  {}
func (*FuncDecl) exprNode()  {}

// === Operators =============================================================

// Operator enumerates unary and binary operators.
type Operator int8

// Operators. The zero value is not a valid operator.
const (
	NoOp Operator = iota
	// binary
	Add
	Sub
	Mul
	Div
	Mod
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
	And
	Or
	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	Member
	Index
	Call
	ShortIf
	// unary
	Neg
	Not
	PreInc
	PreDec
	PostInc
	PostDec
)

var opNames = [...]string{
	NoOp: "<no-op>", Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Neq: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=", And: "&&", Or: "||",
	Assign: "=", AddAssign: "+=", SubAssign: "-=", MulAssign: "*=", DivAssign: "/=",
	ModAssign: "%=", Member: ".", Index: "[]", Call: "()", ShortIf: "?",
	Neg: "-", Not: "!", PreInc: "++", PreDec: "--", PostInc: "++", PostDec: "--",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("<op %d>", int8(op))
	}
	return opNames[op]
}

// IsAssignment is a predicate: does op store into its left operand?
func (op Operator) IsAssignment() bool {
	return op >= Assign && op <= ModAssign
}

// Arithmetic returns the arithmetic operator underlying a compound assignment,
// e.g. Add for AddAssign. Returns NoOp for simple assignment and all other operators.
func (op Operator) Arithmetic() Operator {
	switch op {
	case AddAssign, PreInc, PostInc:
		return Add
	case SubAssign, PreDec, PostDec:
		return Sub
	case MulAssign:
		return Mul
	case DivAssign:
		return Div
	case ModAssign:
		return Mod
	}
	return NoOp
}
