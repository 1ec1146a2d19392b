package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Inspect traverses a node in depth-first order, calling f for every node together
// with its nesting level. If f returns false, children of the node are skipped.
func Inspect(n Node, f func(Node, int) bool) {
	inspect(n, 0, f)
}

// InspectAll calls Inspect for each statement of a statement list.
func InspectAll(stmts []Stmt, f func(Node, int) bool) {
	for _, s := range stmts {
		inspect(s, 0, f)
	}
}

func inspect(n Node, level int, f func(Node, int) bool) {
	if n == nil || !f(n, level) {
		return
	}
	stmts := func(list []Stmt) {
		for _, s := range list {
			inspect(s, level+1, f)
		}
	}
	expr := func(e Expr) {
		if e != nil {
			inspect(e, level+1, f)
		}
	}
	switch x := n.(type) {
	case *IfStmt:
		expr(x.Cond)
		stmts(x.Then)
		stmts(x.Else)
	case *WhileStmt:
		expr(x.Cond)
		stmts(x.Body)
	case *ForStmt:
		expr(x.Init)
		expr(x.Cond)
		expr(x.Step)
		stmts(x.Body)
	case *ReturnStmt:
		expr(x.Value)
	case *ExprStmt:
		expr(x.X)
	case *FuncDecl:
		stmts(x.Body)
	case *ClassDecl:
		for _, fd := range x.Fields {
			expr(fd.Init)
		}
		for _, m := range x.Methods {
			inspect(m.Func, level+1, f)
		}
	case *TryStmt:
		stmts(x.Body)
		stmts(x.Catch)
		stmts(x.Finally)
	case *ThrowStmt:
		expr(x.Value)
	case *ListData:
		for _, e := range x.Elems {
			expr(e)
		}
	case *DictData:
		for _, e := range x.Entries {
			expr(e.Value)
		}
	case *UnaryOp:
		expr(x.X)
	case *BinaryOp:
		expr(x.L)
		expr(x.R)
	}
}

// Label returns a short, single-line description of a node, suitable for
// tree displays.
func Label(n Node) string {
	switch x := n.(type) {
	case *IfStmt:
		return "if"
	case *WhileStmt:
		return "while"
	case *ForStmt:
		return "for"
	case *BreakStmt:
		return "break"
	case *ContinueStmt:
		return "continue"
	case *ReturnStmt:
		return "return"
	case *ExprStmt:
		return "expr"
	case *FuncDecl:
		return fmt.Sprintf("function %s(%s)", x.Name, strings.Join(x.Params, ", "))
	case *ClassDecl:
		if x.Parent != "" {
			return fmt.Sprintf("class %s extends %s", x.Name, x.Parent)
		}
		return "class " + x.Name
	case *TryStmt:
		if x.HasCatch {
			return "try/catch(" + x.CatchName + ")"
		}
		return "try"
	case *ThrowStmt:
		return "throw"
	case *BreakpointStmt:
		return "breakpoint"
	case *Ident:
		return x.Name
	case *NumberLit:
		return x.Lexeme
	case *StringLit:
		return strconv.Quote(x.Value)
	case *BoolLit:
		return strconv.FormatBool(x.Value)
	case *ListData:
		return "[…]"
	case *DictData:
		return "{…}"
	case *UnaryOp:
		if x.Op == PostInc || x.Op == PostDec {
			return "(post)" + x.Op.String()
		}
		return x.Op.String()
	case *BinaryOp:
		return x.Op.String()
	}
	return fmt.Sprintf("<%T>", n)
}
