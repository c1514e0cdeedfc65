// Package errors carries coded errors from the service layer to the
// HTTP boundary. The code decides the response status and the public
// message; the wrapped cause stays server-side for logging.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConflict             Code = "CONFLICT"
	CodeStateConflict        Code = "STATE_CONFLICT"
	CodeQuotaExceeded        Code = "QUOTA_EXCEEDED"
	CodeReferentialIntegrity Code = "REFERENTIAL_INTEGRITY"
	CodeRateLimit            Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal             Code = "INTERNAL_ERROR"
	CodeDependency           Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code renders at the HTTP boundary.
// DetailsAllowed gates whether WithDetails payloads reach the client;
// codes that could leak internals keep it off.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, retryable bool, msg string, detailsAllowed bool) Metadata {
	return Metadata{HTTPStatus: status, Retryable: retryable, PublicMessage: msg, DetailsAllowed: detailsAllowed}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:           meta(http.StatusBadRequest, false, "validation failed", true),
	CodeUnauthorized:         meta(http.StatusUnauthorized, false, "authentication required", false),
	CodeForbidden:            meta(http.StatusForbidden, false, "access denied", false),
	CodeNotFound:             meta(http.StatusNotFound, false, "resource not found", false),
	CodeConflict:             meta(http.StatusConflict, false, "conflict detected", false),
	CodeStateConflict:        meta(http.StatusUnprocessableEntity, false, "state transition disallowed", true),
	CodeQuotaExceeded:        meta(http.StatusUnprocessableEntity, false, "quota exceeded", true),
	CodeReferentialIntegrity: meta(http.StatusConflict, false, "record is still referenced", true),
	CodeRateLimit:            meta(http.StatusTooManyRequests, false, "rate limit exceeded", false),
	CodeInternal:             meta(http.StatusInternalServerError, true, "internal server error", false),
	CodeDependency:           meta(http.StatusServiceUnavailable, true, "dependency unavailable", true),
}

// MetadataFor resolves rendering metadata for a code. Unknown codes
// fall back to the internal-error row rather than panicking.
func MetadataFor(code Code) Metadata {
	meta, ok := metadataByCode[code]
	if !ok {
		return metadataByCode[CodeInternal]
	}
	return meta
}

// Error is the coded error type every layer above the repositories
// returns. Fields stay private so callers go through the accessors,
// which tolerate a nil receiver.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying cause. A nil
// cause degrades to New so call sites need not branch.
func Wrap(code Code, err error, message string) *Error {
	e := New(code, message)
	e.cause = err
	return e
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets a structured payload surfaced to the client when
// the code's metadata allows it.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the coded error from an error chain, or nil when the
// chain carries none.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
