// Package errz defines the error types raised by the bytecode core.
//
// Every error produced here signals a programming error on the caller's
// side (an out-of-range read, an overflowing constant pool, malformed
// bytecode handed to a decoder). They are deliberately distinct from the
// user-facing diagnostics a compiler front end reports for bad source.
package errz

import (
	"errors"
	"fmt"
)

// Kind represents the category of an error.
type Kind int

const (
	// KindBounds indicates an index or offset outside the valid range.
	KindBounds Kind = iota + 1
	// KindOverflow indicates a value that cannot be encoded, such as a
	// constant index past the 24-bit long form.
	KindOverflow
	// KindDecode indicates truncated or unexpected bytecode.
	KindDecode
	// KindSyntax indicates malformed assembler input.
	KindSyntax
	// KindInvariant indicates a line table that breaks its ordering rules.
	KindInvariant
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrOutOfRange = errors.New("index out of range")
	ErrOverflow   = errors.New("overflow")
	ErrDecode     = errors.New("decode error")
	ErrSyntax     = errors.New("syntax error")
	ErrInvariant  = errors.New("invariant violation")
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindBounds:
		return "bounds error"
	case KindOverflow:
		return "overflow error"
	case KindDecode:
		return "decode error"
	case KindSyntax:
		return "syntax error"
	case KindInvariant:
		return "invariant error"
	default:
		return "error"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindBounds:
		return ErrOutOfRange
	case KindOverflow:
		return ErrOverflow
	case KindDecode:
		return ErrDecode
	case KindSyntax:
		return ErrSyntax
	case KindInvariant:
		return ErrInvariant
	default:
		return nil
	}
}

// Error is a classified error with optional position information.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "bytecode.Line"
	Message string
	Index   int // offending index or offset, when applicable
	Limit   int // exclusive upper bound, when applicable
	Line    int // 1-based source line, 0 if unknown
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var msg string
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// WithCause wraps the error with a cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithLine attaches a source line to the error.
func (e *Error) WithLine(line int) *Error {
	e.Line = line
	return e
}

// Bounds returns a KindBounds error for index outside [0, limit).
func Bounds(op, what string, index, limit int) *Error {
	return &Error{
		Kind:    KindBounds,
		Op:      op,
		Message: fmt.Sprintf("%s %d out of range [0, %d)", what, index, limit),
		Index:   index,
		Limit:   limit,
	}
}

// Overflow returns a KindOverflow error.
func Overflow(op string, index, limit int) *Error {
	return &Error{
		Kind:    KindOverflow,
		Op:      op,
		Message: fmt.Sprintf("index %d exceeds maximum %d", index, limit-1),
		Index:   index,
		Limit:   limit,
	}
}

// Decodef returns a KindDecode error at the given offset.
func Decodef(op string, offset int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindDecode,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Index:   offset,
	}
}

// Syntaxf returns a KindSyntax error at the given source line.
func Syntaxf(line int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindSyntax,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// Invariantf returns a KindInvariant error.
func Invariantf(op string, index int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvariant,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Index:   index,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
