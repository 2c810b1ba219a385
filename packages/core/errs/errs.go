// Package errs defines the closed set of failures produced while resolving
// variables, calling built-in functions and extracting values from responses.
//
// Diagnostics and execution reporting switch on [Kind]; no other error shapes
// escape the resolution packages.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a resolution failure.
type Kind int

const (
	UndefinedVariable Kind = iota
	InvalidSyntax
	InvalidOffset
	EnvVarNotFound
	DotenvError
	CircularReference
)

func (k Kind) String() string {
	switch k {
	case UndefinedVariable:
		return "undefined variable"
	case InvalidSyntax:
		return "invalid syntax"
	case InvalidOffset:
		return "invalid offset"
	case EnvVarNotFound:
		return "environment variable not found"
	case DotenvError:
		return "dotenv error"
	case CircularReference:
		return "circular reference"
	default:
		return "unknown"
	}
}

// Error is a resolution failure of a given Kind.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, &errs.Error{Kind: errs.InvalidSyntax}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Undefined(name string) error {
	return &Error{Kind: UndefinedVariable, Detail: name}
}

func Syntax(format string, args ...any) error {
	return &Error{Kind: InvalidSyntax, Detail: fmt.Sprintf(format, args...)}
}

func Offset(format string, args ...any) error {
	return &Error{Kind: InvalidOffset, Detail: fmt.Sprintf(format, args...)}
}

func EnvVarMissing(name string) error {
	return &Error{Kind: EnvVarNotFound, Detail: name}
}

func Dotenv(format string, args ...any) error {
	return &Error{Kind: DotenvError, Detail: fmt.Sprintf(format, args...)}
}

func Circular(format string, args ...any) error {
	return &Error{Kind: CircularReference, Detail: fmt.Sprintf(format, args...)}
}

// Unsupported reports a feature that is recognised but deliberately not
// implemented. It maps onto InvalidSyntax; this is the only place that
// mapping is made.
func Unsupported(feature string) error {
	return &Error{Kind: InvalidSyntax, Detail: feature + " is not supported"}
}

// KindOf returns the Kind carried by err, looking through wrapping.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
