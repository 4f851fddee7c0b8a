// Package bperrors defines Blueprint's error taxonomy (spec §7).
//
// Programmer-error conditions (nil pointers, violated internal
// invariants) panic via internal/invariant instead of returning one of
// these; everything here is a script-level or environment-level failure
// that a caller is expected to handle or report to the user.
package bperrors

import (
	"fmt"

	"github.com/blueprint-lang/blueprint/internal/ast"
)

// Position is re-exported here so error values stay decoupled from the
// ast package's internal layout while still citing file:line:col.
type Position = ast.Position

// Kind identifies which row of spec.md's §7 error table a failure belongs to.
type Kind string

const (
	KindName               Kind = "NameError"
	KindType               Kind = "TypeError"
	KindValue              Kind = "ValueError"
	KindArgument           Kind = "ArgumentError"
	KindIndex              Kind = "IndexError"
	KindKey                Kind = "KeyError"
	KindDivisionByZero     Kind = "DivisionByZero"
	KindImport             Kind = "ImportError"
	KindCircularImport     Kind = "CircularImport"
	KindUnresolvedEnvVar   Kind = "UnresolvedEnvVar"
	KindUnresolvedConfig   Kind = "UnresolvedConfigKey"
	KindUnknownOpRef       Kind = "UnknownOpRef"
	KindResolutionFailed   Kind = "ResolutionFailed"
	KindIO                 Kind = "IoError"
	KindHTTP               Kind = "HttpError"
	KindCommandFailed      Kind = "CommandFailed"
	KindInvalidOp          Kind = "InvalidOp"
	KindAssertion          Kind = "AssertionError"
	KindUser               Kind = "UserError"
	KindMutationDuringIter Kind = "MutationDuringIteration"
)

// Error is the concrete error type for every Blueprint-raised failure.
// Ops carry source spans so diagnostics can cite file:line:col (spec §7).
type Error struct {
	Kind     Kind
	Message  string
	Pos      *Position
	Suggest  string // fuzzy-matched "did you mean X" hint, optional
	Wrapped  error
}

func (e *Error) Error() string {
	loc := ""
	if e.Pos != nil {
		loc = fmt.Sprintf(" at %s:%d:%d", e.Pos.File, e.Pos.Line, e.Pos.Column)
	}
	suggest := ""
	if e.Suggest != "" {
		suggest = fmt.Sprintf(" (did you mean %q?)", e.Suggest)
	}
	return fmt.Sprintf("%s: %s%s%s", e.Kind, e.Message, loc, suggest)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is makes errors.Is(err, &bperrors.Error{Kind: k}) match any *Error in
// err's chain whose Kind is k; other target types never match.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newf(kind Kind, pos *Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func NameError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindName, pos, format, args...)
}

func TypeError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindType, pos, format, args...)
}

func ValueError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindValue, pos, format, args...)
}

func ArgumentError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindArgument, pos, format, args...)
}

func IndexError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindIndex, pos, format, args...)
}

func KeyError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindKey, pos, format, args...)
}

func DivisionByZero(pos *Position, op string) *Error {
	return newf(KindDivisionByZero, pos, "division by zero in %s", op)
}

func ImportError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindImport, pos, format, args...)
}

func CircularImport(pos *Position, chain []string) *Error {
	return newf(KindCircularImport, pos, "circular import: %v", chain)
}

func UnresolvedEnvVar(name string) *Error {
	return newf(KindUnresolvedEnvVar, nil, "environment variable %q is not set", name)
}

func UnresolvedConfigKey(key string) *Error {
	return newf(KindUnresolvedConfig, nil, "config key %q is not defined", key)
}

func UnknownOpRef(id int) *Error {
	return newf(KindUnknownOpRef, nil, "schema referenced non-existent op id %d", id)
}

func ResolutionFailed(format string, args ...interface{}) *Error {
	return newf(KindResolutionFailed, nil, format, args...)
}

func IOError(pos *Position, wrapped error) *Error {
	e := newf(KindIO, pos, "%v", wrapped)
	e.Wrapped = wrapped
	return e
}

func HTTPError(pos *Position, wrapped error) *Error {
	e := newf(KindHTTP, pos, "%v", wrapped)
	e.Wrapped = wrapped
	return e
}

func CommandFailed(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindCommandFailed, pos, format, args...)
}

func InvalidOp(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindInvalidOp, pos, format, args...)
}

func AssertionError(pos *Position, format string, args ...interface{}) *Error {
	return newf(KindAssertion, pos, format, args...)
}

func UserError(pos *Position, message string) *Error {
	return newf(KindUser, pos, "%s", message)
}

func MutationDuringIteration(pos *Position, method string) *Error {
	return newf(KindMutationDuringIter, pos, "mutating method %q called on a value under active iteration", method)
}

// WithSuggestion attaches a fuzzy "did you mean" hint and returns the
// same error for chaining at the call site.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggest = s
	return e
}
