package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error class returned in API error bodies.
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeRateLimit  Code = "RATE_LIMIT_EXCEEDED"
	CodeTimeout    Code = "TIMEOUT"
	CodeInternal   Code = "INTERNAL_ERROR"
	CodeDependency Code = "DEPENDENCY_ERROR"
)

// Metadata controls how a Code is rendered: status, public text, and whether
// the caller-supplied message and details may leak into the body.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	MessageAllowed bool
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", MessageAllowed: true, DetailsAllowed: true},
	CodeNotFound:   {HTTPStatus: http.StatusNotFound, PublicMessage: "Not Found", MessageAllowed: true},
	CodeRateLimit:  {HTTPStatus: http.StatusTooManyRequests, Retryable: true, PublicMessage: "Too Many Requests"},
	CodeTimeout:    {HTTPStatus: http.StatusGatewayTimeout, Retryable: true, PublicMessage: "Request Timeout"},
	CodeInternal:   {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "Internal Server Error"},
	CodeDependency: {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "Service Unavailable", DetailsAllowed: true},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
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

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Classify resolves err to a typed error. A request whose client went away
// maps to CodeTimeout; deadlines and driver failures stay internal so a store
// failure always reaches the caller as the generic internal error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	typed := As(err)
	if typed != nil && typed.code != CodeInternal {
		return typed
	}
	if stdErrors.Is(err, context.Canceled) {
		return Wrap(CodeTimeout, err, "request canceled")
	}
	if typed != nil {
		return typed
	}
	return Wrap(CodeInternal, err, "unexpected error")
}

// Transient reports whether err is a driver failure a retry may clear.
func Transient(err error) bool {
	return isTransientDriverError(err)
}
