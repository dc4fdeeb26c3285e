package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryConfig  Category = "config"
	CategoryRequest Category = "request"
)

// ToastError is a structured error with a stable code and an explanation.
type ToastError struct {
	// Code is a unique error identifier (e.g., "T001").
	Code string

	// Category is the error type (runtime, config, request).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ToastError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ToastError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target carries the same code.
func (e *ToastError) Is(target error) bool {
	t, ok := target.(*ToastError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *ToastError) WithDetail(d string) *ToastError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *ToastError) WithDetailf(format string, args ...any) *ToastError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ToastError) WithSuggestion(s string) *ToastError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *ToastError) Wrap(err error) *ToastError {
	e.Wrapped = err
	return e
}

// LogAttrs returns the error as slog attributes for diagnostics.
func (e *ToastError) LogAttrs() []any {
	attrs := []any{slog.String("code", e.Code), slog.String("category", string(e.Category))}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.Any("err", e.Wrapped))
	}
	return attrs
}

// New creates a ToastError from a registered error code.
func New(code string) *ToastError {
	template, ok := registry[code]
	if !ok {
		return &ToastError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ToastError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ToastError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ToastError {
	return &ToastError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ToastError.
// An error that already is (or wraps) a ToastError is returned as-is.
func FromError(err error, code string) *ToastError {
	if err == nil {
		return nil
	}
	var te *ToastError
	if errors.As(err, &te) {
		return te
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first ToastError in err's chain, or "".
func Code(err error) string {
	var te *ToastError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
