package errors

import (
	"fmt"
)

// AppError is the error type fixturekit operations return. Code is
// stable across releases; Message is for humans and may change.
type AppError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets one detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError; retryability follows from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap is New with the cause attached.
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return New(code, message).WithCause(cause)
}

// NotFound reports an absent resource; id may be empty when the
// lookup was not by identifier.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		Retryable: false, Details: details,
	}
}

// Validation reports rejected input. The validation package fills the
// per-field breakdown into Details.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Retryable: false,
	}
}

// MissingField reports a required field left empty.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// Internal reports an unexpected failure with no better code.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// DatabaseError reports a database failure that earned no more
// specific translation; see database.FromDatabase for the ones that
// do.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred. Please try again.",
		Retryable: true, Cause: cause,
	}
}
