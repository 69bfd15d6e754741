// Package errs defines the error taxonomy shared by every core component.
//
// Every validation or semantic failure raised by the core carries a Kind so
// callers (and eventually the MCP dispatch layer) can map it onto a
// structured {code, message} response without string-matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a core error. See spec §7.
type Kind string

const (
	WorkspaceMissing     Kind = "WorkspaceMissing"
	NotFound             Kind = "NotFound"
	InvalidInput         Kind = "InvalidInput"
	InvalidMode          Kind = "InvalidMode"
	PaginationInvalid    Kind = "PaginationInvalid"
	Conflict             Kind = "Conflict"
	DependencyNotSat     Kind = "DependencyNotSatisfied"
	Cycle                Kind = "Cycle"
	BlockerReasonMissing Kind = "BlockerReasonMissing"
	LockContended        Kind = "LockContended"
	ResponseSizeExceeded Kind = "ResponseSizeExceeded"
	Internal             Kind = "Internal"
)

// Error is a typed core error. It wraps an optional underlying cause so
// errors.Is/errors.As still work against sentinels from lower layers
// (sql.ErrNoRows, sqlite busy errors, etc).
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a typed error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithDetails attaches structured details (e.g. {actual_tokens, max_tokens})
// used by ResponseSizeExceeded.
func (e *Error) WithDetails(d map[string]any) *Error {
	e.Details = d
	return e
}

// KindOf extracts the Kind of err, defaulting to Internal for anything the
// core didn't itself classify.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err (or something it wraps) is a core *Error of kind k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
