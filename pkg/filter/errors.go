package filter

import "fmt"

// ErrorKind classifies a filter error. Callers usually only display the
// message; the kind is there for tests and logging.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	SemanticError
)

func (k ErrorKind) String() string {
	if k == SemanticError {
		return "semantic"
	}
	return "syntax"
}

// Error is returned for every parse and evaluation failure. Offset is the
// byte position of the offending token, or -1 when there is none.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Offset int
}

func (e *Error) Error() string {
	return e.Msg
}

func syntaxErrorf(offset int, format string, args ...any) *Error {
	return &Error{Kind: SyntaxError, Msg: fmt.Sprintf(format, args...), Offset: offset}
}

func semanticErrorf(format string, args ...any) *Error {
	return &Error{Kind: SemanticError, Msg: fmt.Sprintf(format, args...), Offset: -1}
}
