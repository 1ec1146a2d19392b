package value

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/scriptum"
)

// Category classifies script exceptions raised by the interpreter. Exceptions
// thrown by scripts have an empty category.
type Category string

// Categories of exceptions raised by the interpreter itself.
const (
	ArityMismatch      Category = "ArityMismatch"
	DuplicateSymbol    Category = "DuplicateSymbol"
	UnknownSymbol      Category = "UnknownSymbol"
	DivisionByZero     Category = "DivisionByZero"
	TypeMismatch       Category = "TypeMismatch"
	IndexOutOfRange    Category = "IndexOutOfRange"
	KeyNotFound        Category = "KeyNotFound"
	NotCallable        Category = "NotCallable"
	NoSuchMember       Category = "NoSuchMember"
	AccessViolation    Category = "AccessViolation"
	InvalidArgument    Category = "InvalidArgument"
	StackOverflow      Category = "StackOverflow"
	IdentifierNotFound Category = "IdentifierNotFound"
	SyntaxError        Category = "SyntaxError"
)

// Exception is a script exception: a catchable, program-level error.
// It carries a message, an optional source origin and an optional inner exception.
//
// Exception implements the error interface. It is the only kind of error
// a script may catch; every other error is an engine failure.
type Exception struct {
	Category Category
	Message  string
	Origin   scriptum.Origin
	Inner    *Exception
}

// Throw creates a script exception.
func Throw(org scriptum.Origin, cat Category, msg string) *Exception {
	return &Exception{Category: cat, Message: msg, Origin: org}
}

// Throwf creates a script exception with a formatted message.
func Throwf(org scriptum.Origin, cat Category, format string, args ...interface{}) *Exception {
	return Throw(org, cat, fmt.Sprintf(format, args...))
}

// Error is part of the error interface.
func (e *Exception) Error() string {
	var b strings.Builder
	if e.Category != "" {
		b.WriteString(string(e.Category))
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Origin.IsKnown() {
		b.WriteString(" [")
		b.WriteString(e.Origin.String())
		b.WriteString("]")
	}
	if e.Inner != nil {
		b.WriteString(", caused by ")
		b.WriteString(e.Inner.Error())
	}
	return b.String()
}

// Unwrap returns the inner exception, if any.
func (e *Exception) Unwrap() error {
	if e.Inner == nil {
		return nil
	}
	return e.Inner
}

// At sets the origin of an exception, if it has none yet. Returns e.
func (e *Exception) At(org scriptum.Origin) *Exception {
	if !e.Origin.IsKnown() {
		e.Origin = org
	}
	return e
}

// Wrap sets the inner exception. Returns e.
func (e *Exception) Wrap(inner *Exception) *Exception {
	e.Inner = inner
	return e
}

// AsException checks if err is a script exception. It returns the exception and
// true, or nil and false for engine failures (and for nil errors).
func AsException(err error) (*Exception, bool) {
	var exc *Exception
	if err != nil && errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}

// Locate attaches an origin to err if err is a script exception without a known
// origin. Other errors are returned unchanged.
func Locate(err error, org scriptum.Origin) error {
	if exc, ok := AsException(err); ok {
		exc.At(org)
	}
	return err
}
