package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the core can surface. The
// delivery layer switches on the kind, never on message text.
type Kind string

const (
	KindUnauthorized   Kind = "unauthorized"    // no or invalid caller identity
	KindForbidden      Kind = "forbidden"       // authenticated but not permitted
	KindNotFound       Kind = "not_found"       // referenced record does not exist
	KindMissingFields  Kind = "missing_fields"  // required input absent
	KindInvalidContent Kind = "invalid_content" // input present but out of bounds
	KindMissingEmail   Kind = "missing_email"   // identity has no email claim
	KindUnavailable    Kind = "unavailable"     // downstream collaborator gave up
	KindInternal       Kind = "internal"        // unclassified failure
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags a downstream error with a kind while keeping the cause reachable
// via errors.Unwrap.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from any error in the chain, defaulting to
// KindInternal for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Unauthorized(message string) *Error   { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error      { return New(KindForbidden, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }
func MissingFields(message string) *Error  { return New(KindMissingFields, message) }
func InvalidContent(message string) *Error { return New(KindInvalidContent, message) }
func MissingEmail(message string) *Error   { return New(KindMissingEmail, message) }
func Unavailable(message string) *Error    { return New(KindUnavailable, message) }
