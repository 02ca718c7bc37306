package drawer

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it to a status without string matching.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindInvalidName         Kind = "invalid_name"
	KindBadRequest          Kind = "bad_request"
	KindIOError             Kind = "io_error"
	KindInconsistent        Kind = "inconsistent"
	KindRangeNotSatisfiable Kind = "range_not_satisfiable"
)

// Error is the structured failure returned by the catalog, the vaults and the service.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "RenameFolder"
	Message string // human-readable
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapIO wraps a disk or backend failure as KindIOError.
func WrapIO(op string, err error) *Error {
	return &Error{Kind: KindIOError, Op: op, Message: "storage operation failed", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
// Unclassified errors report KindIOError; nil reports "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOError
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the human-readable message of a classified error,
// falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// WithOp returns err with Op set when err is an *Error raised without one.
func WithOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		cp := *e
		cp.Op = op
		return &cp
	}
	return err
}
