// Package errors provides structured error reporting for vui.
//
// Errors that abort an operation are returned to the caller as *Error.
// Errors that are contained locally (a reconciliation subtree that could not
// be materialized, a panic recovered inside a setter) are reported to the
// process-wide ErrorHandler instead, so one bad subtree never aborts its
// siblings.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindBuild indicates an inconsistent builder session.
	KindBuild
	// KindReconcile indicates a subtree that could not be reconciled.
	KindReconcile
	// KindDecode indicates a malformed or incompatible remote payload.
	KindDecode
	// KindTransport indicates a network or protocol failure.
	KindTransport
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindReconcile:
		return "reconcile"
	case KindDecode:
		return "decode"
	case KindTransport:
		return "transport"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error represents a structured error in vui.
type Error struct {
	// Op is the operation that failed (e.g., "reconcile.create").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Path is the structural location in the virtual tree, if applicable.
	Path string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s] path=%s: %v", e.Op, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error with the timestamp set.
func New(op string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "reconcile.apply").
	Op string
	// Path is the structural location in the virtual tree, if applicable.
	Path string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("panic in %s at %s: %v", e.Op, e.Path, e.Value)
	case e.Op != "":
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	default:
		return fmt.Sprintf("panic: %v", e.Value)
	}
}

// ErrorHandler receives errors reported by vui.
type ErrorHandler interface {
	// HandleError is called when a contained error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
