package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Kind classifies an application failure.
type Kind int

const (
	KindInternal Kind = iota
	KindContract
	KindBusiness
	KindUnauthorized
	KindConflict
	KindNotFound
	KindIntegration
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindBusiness:
		return "business"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindIntegration:
		return "integration"
	default:
		return "internal"
	}
}

// StatusCode returns the HTTP status mapped to the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindContract:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBusiness:
		return http.StatusUnprocessableEntity
	case KindIntegration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks. Matching is by kind only.
var (
	ErrContract     = &AppError{Kind: KindContract, Message: "invalid input"}
	ErrBusiness     = &AppError{Kind: KindBusiness, Message: "business rule violated"}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrConflict     = &AppError{Kind: KindConflict, Message: "resource already exists"}
	ErrNotFound     = &AppError{Kind: KindNotFound, Message: "resource not found"}
	ErrIntegration  = &AppError{Kind: KindIntegration, Message: "downstream dependency failed"}
	ErrInternal     = &AppError{Kind: KindInternal, Message: "internal server error"}
)

// AppError is the typed error raised by every layer below the dispatch entry points.
type AppError struct {
	Kind    Kind
	Message string
	Details any
	Stack   string
	Err     error
}

// Option customizes an AppError at construction.
type Option func(*AppError)

// WithDetails attaches structured diagnostic data.
func WithDetails(details any) Option {
	return func(e *AppError) { e.Details = details }
}

// WithStack attaches an explicit stack trace.
func WithStack(stack string) Option {
	return func(e *AppError) { e.Stack = stack }
}

// WithCause wraps the underlying error.
func WithCause(err error) Option {
	return func(e *AppError) { e.Err = err }
}

// New creates an AppError of the given kind.
func New(kind Kind, message string, opts ...Option) *AppError {
	e := &AppError{Kind: kind, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Contract creates a 400 error for malformed input.
func Contract(message string, opts ...Option) *AppError {
	return New(KindContract, message, opts...)
}

// Business creates a 422 error for a violated domain rule.
func Business(message string, opts ...Option) *AppError {
	return New(KindBusiness, message, opts...)
}

// Unauthorized creates a 401 error for a missing or mismatched identity.
func Unauthorized(message string, opts ...Option) *AppError {
	return New(KindUnauthorized, message, opts...)
}

// Conflict creates a 409 error.
func Conflict(message string, opts ...Option) *AppError {
	return New(KindConflict, message, opts...)
}

// NotFound creates a 404 error.
func NotFound(message string, opts ...Option) *AppError {
	return New(KindNotFound, message, opts...)
}

// Integration creates a 502 error for a failing downstream dependency.
func Integration(message string, opts ...Option) *AppError {
	return New(KindIntegration, message, opts...)
}

// Internal creates a 500 error. A stack trace is captured unless one was supplied.
func Internal(message string, opts ...Option) *AppError {
	e := New(KindInternal, message, opts...)
	if e.Stack == "" {
		e.Stack = string(debug.Stack())
	}
	return e
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// StatusCode returns the HTTP status for this error
func (e *AppError) StatusCode() int {
	return e.Kind.StatusCode()
}

// Envelope is the uniform serialized error shape.
type Envelope struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
	Stack      string `json:"stack,omitempty"`
}

// Envelope converts the error to its wire shape.
func (e *AppError) Envelope(includeStack bool) Envelope {
	env := Envelope{
		Message:    e.Message,
		StatusCode: e.StatusCode(),
		Details:    e.Details,
	}
	if includeStack {
		env.Stack = e.Stack
	}
	return env
}

// Classify converts any error into an AppError. Unknown errors become Internal.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal server error", WithCause(err))
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
