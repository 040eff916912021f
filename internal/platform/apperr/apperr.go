// Package apperr provides the typed failures raised by the request pipeline.
// A failure carries its kind, the HTTP status derived from the kind, a client-facing
// message and, for validation failures, the list of violations.
package apperr

import (
	"errors"
	"net/http"
	"slices"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal is the default for any failure that is not otherwise classified.
	KindInternal Kind = iota
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindValidation means one or more input constraints were violated.
	KindValidation
	// KindAuthentication means the credential is missing or wrong.
	KindAuthentication
	// KindMethodNotAllowed means the route exists but not for the request method.
	KindMethodNotAllowed
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindValidation:
		return "Validation"
	case KindAuthentication:
		return "Authentication"
	case KindMethodNotAllowed:
		return "MethodNotAllowed"
	default:
		return "Internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

const (
	defaultNotFoundMsg       = "Resource not found."
	defaultValidationMsg     = "Invalid data provided."
	defaultAuthenticationMsg = "Authentication failed."
	defaultMethodMsg         = "Method not allowed."
	defaultInternalMsg       = "An unexpected error occurred."
)

// Error is a typed failure. It is immutable once constructed.
type Error struct {
	kind    Kind
	message string
	details []string
	cause   error
}

// Error returns the failure message, followed by the cause when there is one.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the failure kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Status returns the HTTP status code of the failure.
func (e *Error) Status() int {
	return e.kind.Status()
}

// Message returns the client-facing message.
func (e *Error) Message() string {
	return e.message
}

// Details returns a copy of the violation list. It is nil for every kind but Validation.
func (e *Error) Details() []string {
	return slices.Clone(e.details)
}

func newError(kind Kind, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{kind: kind, message: message}
}

// NotFound creates a NotFound failure.
func NotFound(message string) *Error {
	return newError(KindNotFound, message, defaultNotFoundMsg)
}

// Validation creates a Validation failure carrying the given violations in order.
func Validation(message string, details ...string) *Error {
	e := newError(KindValidation, message, defaultValidationMsg)
	if len(details) > 0 {
		e.details = slices.Clone(details)
	}
	return e
}

// Authentication creates an Authentication failure.
func Authentication(message string) *Error {
	return newError(KindAuthentication, message, defaultAuthenticationMsg)
}

// MethodNotAllowed creates a MethodNotAllowed failure.
func MethodNotAllowed(message string) *Error {
	return newError(KindMethodNotAllowed, message, defaultMethodMsg)
}

// Internal creates an Internal failure wrapping cause.
func Internal(message string, cause error) *Error {
	e := newError(KindInternal, message, defaultInternalMsg)
	e.cause = cause
	return e
}

// As returns the typed failure in err's chain, if there is one.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first typed failure in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err. Untyped errors map to 500.
func StatusOf(err error) int {
	return KindOf(err).Status()
}
