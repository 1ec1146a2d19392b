package lang

import (
	"fmt"
	"strings"
	"sync"

	"github.com/npillmayer/scriptum"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token types.
const (
	EOF scriptum.TokType = iota
	Ident
	Number
	String
	Operator // operators and punctuation, identified by their lexeme
	Keyword  // identified by their lexeme
)

// The tokens representing operators and punctuation
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=", "++", "--",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "?", ".", ",", ";", ":",
	"(", ")", "[", "]", "{", "}",
}

// The keyword tokens
var keywords = []string{
	"if", "else", "while", "for", "break", "continue", "return", "function",
	"class", "extends", "private", "public", "try", "catch", "finally", "throw",
	"true", "false", "breakpoint",
}

// --- lexmachine adapter ----------------------------------------------------

var lexer *lexmachine.Lexer
var lexerErr error
var initOnce sync.Once // monitors one-time initialization

// compiledLexer creates the lexmachine lexer on first use.
//
// Literals and keywords are added before the patterns for identifiers: for matches
// of equal length, lexmachine prefers the pattern added first.
func compiledLexer() (*lexmachine.Lexer, error) {
	initOnce.Do(func() {
		lexer = lexmachine.NewLexer()
		for _, lit := range operators {
			r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
			lexer.Add([]byte(r), makeToken(Operator))
		}
		for _, name := range keywords {
			lexer.Add([]byte(name), makeToken(Keyword))
		}
		lexer.Add([]byte(`//[^\n]*\n?`), skip)
		lexer.Add([]byte(`/\*([^*]|\r|\n|(\*+([^*/]|\r|\n)))*\*+/`), skip)
		lexer.Add([]byte(`"([^\\"]|(\\.))*"`), makeToken(String))
		lexer.Add([]byte(`'([^\\']|(\\.))*'`), makeToken(String))
		lexer.Add([]byte(`[0-9]+`), makeToken(Number))
		lexer.Add([]byte(`[0-9]+\.[0-9]+`), makeToken(Number))
		lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), makeToken(Ident))
		lexer.Add([]byte("( |\t|\n|\r)+"), skip)
		if lexerErr = lexer.Compile(); lexerErr != nil {
			tracer().Errorf("error compiling DFA: %v", lexerErr)
		}
	})
	return lexer, lexerErr
}

// skip is an action which ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// makeToken is an action which wraps a scanned match into a token.
func makeToken(typ scriptum.TokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(typ), string(m.Bytes), m), nil
	}
}

// --- Tokens ----------------------------------------------------------------

// token is the token type produced by the lexer.
type token struct {
	kind   scriptum.TokType
	lexeme string
	span   scriptum.Span
	origin scriptum.Origin
}

var _ scriptum.Token = token{}

func (t token) TokType() scriptum.TokType { return t.kind }
func (t token) Lexeme() string            { return t.lexeme }
func (t token) Span() scriptum.Span       { return t.span }
func (t token) Origin() scriptum.Origin   { return t.origin }

func (t token) String() string {
	if t.kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", t.lexeme)
}

// --- Scanning --------------------------------------------------------------

// Tokenize splits input into tokens. The last token is always of type EOF.
// source names the input in origins of tokens and errors.
func Tokenize(source, input string) ([]scriptum.Token, error) {
	lx, err := compiledLexer()
	if err != nil {
		return nil, err
	}
	scanner, err := lx.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	var toks []scriptum.Token
	tok, err, eof := scanner.Next()
	for !eof {
		if err != nil {
			if ui, is := err.(*machines.UnconsumedInput); is {
				org := scriptum.Origin{Source: source, Line: ui.StartLine, Column: ui.StartColumn}
				return nil, &SyntaxError{Origin: org, Msg: "unexpected character " + firstChar(input, ui.StartTC)}
			}
			return nil, err
		}
		t := tok.(*lexmachine.Token)
		toks = append(toks, token{
			kind:   scriptum.TokType(t.Type),
			lexeme: string(t.Lexeme),
			span:   scriptum.Span{uint64(t.TC), uint64(t.TC + len(t.Lexeme))},
			origin: scriptum.Origin{Source: source, Line: t.StartLine, Column: t.StartColumn},
		})
		tok, err, eof = scanner.Next()
	}
	end := token{kind: EOF, span: scriptum.Span{uint64(len(input)), uint64(len(input))}}
	end.origin = scriptum.Origin{Source: source, Line: strings.Count(input, "\n") + 1, Column: 1}
	toks = append(toks, end)
	tracer().Debugf("scanned %d tokens", len(toks))
	return toks, nil
}

func firstChar(input string, at int) string {
	if at < 0 || at >= len(input) {
		return "at end of input"
	}
	return fmt.Sprintf("%q", []rune(input[at:])[0])
}

// unquote resolves the escapes of a string literal, given with its enclosing
// quotes.
func unquote(lexeme string) string {
	body := []rune(lexeme[1 : len(lexeme)-1])
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteRune(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '0':
			b.WriteRune(0)
		case '\\', '\'', '"':
			b.WriteRune(body[i])
		default:
			b.WriteRune('\\')
			b.WriteRune(body[i])
		}
	}
	return b.String()
}
