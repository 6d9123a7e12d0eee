// Package formula parses and evaluates user-supplied arithmetic expressions
// against a fixed variable and function vocabulary. An expression is compiled
// once (parse, then a whitelist validation pass over the whole tree) and only
// evaluated after the entire tree has passed validation.
package formula

import "fmt"

// ErrorKind classifies formula failures.
type ErrorKind int

const (
	// KindSyntax: the expression is not parseable.
	KindSyntax ErrorKind = iota
	// KindSecurity: the expression references a disallowed identifier,
	// function or expression form.
	KindSecurity
	// KindEval: the expression is well-formed and safe but fails during
	// evaluation or does not produce a numeric result.
	KindEval
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindSecurity:
		return "security"
	case KindEval:
		return "evaluation"
	default:
		return "unknown"
	}
}

// Error is a formula failure. Formula errors are fatal to the calculation
// that supplied the formula: a bad formula invalidates the whole run.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("formula %s error: %s", e.Kind, e.Msg)
}

func syntaxErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Msg: fmt.Sprintf(format, args...)}
}

func securityErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindSecurity, Msg: fmt.Sprintf(format, args...)}
}

func evalErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindEval, Msg: fmt.Sprintf(format, args...)}
}
