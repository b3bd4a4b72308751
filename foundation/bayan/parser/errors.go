package parser

import (
	"fmt"
	"strings"

	mdwerror "github.com/msto63/bayan/foundation/core/error"
)

// ErrorList is the ordered list of positioned errors from one parse.
// A lexical error is always the only element.
type ErrorList []*mdwerror.Error

// Error summarizes the list
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// Err returns nil for an empty list, the list otherwise
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Unwrap exposes the individual errors to errors.Is and errors.As
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Details renders every error on its own line
func (l ErrorList) Details() string {
	lines := make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

func syntaxError(tok Token, format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.Newf(format, args...).
		WithCode(mdwerror.CodeSyntax).
		WithPosition(tok.Line, tok.Column).
		WithDetail("token", describe(tok))
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("%q", tok.Value)
	default:
		return tok.Value
	}
}
