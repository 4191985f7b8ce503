// Package types defines the value types that flow between the storage
// engine, the async façade, and the in-memory models: entities, their
// attribute blobs, and the structured errors every fallible operation
// returns instead of panicking or relying on exceptions.
package types

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed, per the error taxonomy in
// the design's error-handling section. Callers distinguish kinds with
// IsKind, with errors.Is against an *Error of the same Kind, or by
// inspecting Error.Kind.
type Kind int

const (
	// KindUnknown is the zero value; a properly constructed *Error
	// never carries it.
	KindUnknown Kind = iota
	// KindInvalidInput means a value violates a domain constraint
	// (name length, uniqueness, a cycle in a parent chain).
	KindInvalidInput
	// KindNotFound means an identifier did not resolve to a row.
	KindNotFound
	// KindAmbiguousKey means a Find request's partial key matched more
	// than one row (e.g. both local id and guid were set but disagree).
	KindAmbiguousKey
	// KindConflict means a unique-constraint violation occurred at the
	// storage layer.
	KindConflict
	// KindRestrictionViolation means the operation is forbidden by a
	// notebook or linked-notebook restriction.
	KindRestrictionViolation
	// KindStorageFailure means an I/O or SQL error occurred.
	KindStorageFailure
	// KindInternal means a broken invariant was detected (a missing
	// parent pointer, a lost projection). Always logged with context.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindAmbiguousKey:
		return "AmbiguousKey"
	case KindConflict:
		return "Conflict"
	case KindRestrictionViolation:
		return "RestrictionViolation"
	case KindStorageFailure:
		return "StorageFailure"
	case KindInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the structured error every storage and model operation
// returns. It travels across worker boundaries as data (see the async
// façade), so it is comparable by Kind and carries no unexported
// pointers beyond the wrapped cause.
type Error struct {
	Kind    Kind
	Op      string // the operation that failed, e.g. "AddNotebook"
	Message string // user-facing description
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, &Error{Kind: KindNotFound}) style checks work without
// requiring callers to reference private sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// NewError constructs a structured error for op with the given kind
// and message, optionally wrapping cause.
func NewError(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// IsKind reports whether err is a *types.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
