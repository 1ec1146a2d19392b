package scriptum

import "fmt"

// --- Tokens ---------------------------------------------------------

// TokType categorizes tokens. The constants are defined by the lexer in
// package lang.
type TokType int

// Token is a unit of script input as delivered by the lexer. For the input
// `x = 3.5` on line 3, the number token would be
//
//    TokType = Number      // category, see package lang
//    Lexeme  = "3.5"       // input text
//    Span    = 40…43       // byte positions within the script
//    Origin  = script:3:5  // line and column for diagnostics
//
type Token interface {
	TokType() TokType
	Lexeme() string
	Span() Span
	Origin() Origin
}

// Span is a range of byte positions of the input, from the first position up to
// the position just behind the end.
type Span [2]uint64

// Len is the number of bytes covered by the span.
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// --- Origins ----------------------------------------------------------

// Origin is a source location, attached to AST nodes and script exceptions
// for diagnostics. Lines and columns start at 1; a zero line denotes an
// unknown location.
type Origin struct {
	Source string // name of the script source, e.g. a filename
	Line   int
	Column int
}

// IsKnown is a predicate: does o denote an actual source position?
func (o Origin) IsKnown() bool {
	return o.Line > 0
}

func (o Origin) String() string {
	src := o.Source
	if src == "" {
		src = "<script>"
	}
	if !o.IsKnown() {
		return src
	}
	return fmt.Sprintf("%s:%d:%d", src, o.Line, o.Column)
}
