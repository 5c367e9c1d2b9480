// Package apperror defines the error kinds shared by services and the HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConfiguration
	KindQuotaExceeded
	KindParse
	KindStore
	KindUpstream
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindValidation:    "validation",
	KindAuth:          "auth",
	KindNotFound:      "not_found",
	KindConfiguration: "configuration",
	KindQuotaExceeded: "quota_exceeded",
	KindParse:         "parse",
	KindStore:         "store",
	KindUpstream:      "upstream",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuth          = &Error{Kind: KindAuth, Message: "authentication failed"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrConfiguration = &Error{Kind: KindConfiguration, Message: "missing configuration"}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded, Message: "quota exceeded"}
	ErrParse         = &Error{Kind: KindParse, Message: "failed to parse model output"}
	ErrStore         = &Error{Kind: KindStore, Message: "store operation failed"}
	ErrUpstream      = &Error{Kind: KindUpstream, Message: "upstream call failed"}
)

// Error is a classified application error.
// Message is safe to show to callers; Err carries the internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation returns a KindValidation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Auth returns a KindAuth error.
func Auth(message string, cause error) *Error { return Wrap(KindAuth, message, cause) }

// NotFound returns a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Configuration returns a KindConfiguration error.
func Configuration(message string) *Error { return New(KindConfiguration, message) }

// QuotaExceeded returns a KindQuotaExceeded error.
func QuotaExceeded(message string, cause error) *Error { return Wrap(KindQuotaExceeded, message, cause) }

// Parse returns a KindParse error.
func Parse(message string, cause error) *Error { return Wrap(KindParse, message, cause) }

// Store returns a KindStore error.
func Store(message string, cause error) *Error { return Wrap(KindStore, message, cause) }

// Upstream returns a KindUpstream error.
func Upstream(message string, cause error) *Error { return Wrap(KindUpstream, message, cause) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-safe message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// Code returns the machine-readable code written in error bodies.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "INVALID_REQUEST"
	case KindAuth:
		return "UNAUTHORIZED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConfiguration:
		return "MISSING_CONFIGURATION"
	case KindQuotaExceeded:
		return "QUOTA_EXCEEDED"
	case KindParse:
		return "INVALID_MODEL_OUTPUT"
	case KindUpstream:
		return "UPSTREAM_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// StatusCode returns the default HTTP status for a kind.
// Configuration errors default to 500; handlers that treat them as a
// client problem override the status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
