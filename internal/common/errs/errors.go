// Package errs defines the error kinds returned by the workflow services.
// Every business-rule failure is an *Error carrying one Kind; the HTTP layer
// translates kinds into status codes.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindState      Kind = "state"
	KindPermission Kind = "permission"
	KindOutOfOrder Kind = "out_of_order"
	KindLimit      Kind = "limit"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: KindState}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func State(format string, args ...any) *Error      { return newf(KindState, format, args...) }
func Permission(format string, args ...any) *Error { return newf(KindPermission, format, args...) }
func OutOfOrder(format string, args ...any) *Error { return newf(KindOutOfOrder, format, args...) }
func Limit(format string, args ...any) *Error      { return newf(KindLimit, format, args...) }
func Conflict(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func NotFound(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }

// KindOf returns the kind of the first *Error in err's chain, or "" for
// infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the caller should reload state and reapply.
// Only optimistic-lock conflicts qualify.
func IsRetryable(err error) bool {
	return Is(err, KindConflict)
}
