package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrDuplicate    = errors.New("duplicate")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldError describes one rejected input value.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

type AppError struct {
	Kind    error
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

// Unwrap exposes both the kind sentinel and the cause so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func NewValidation(fields []FieldError) *AppError {
	return &AppError{Kind: ErrValidation, Message: "Validation failed", Fields: fields}
}

func NewDuplicate(message string) *AppError {
	return &AppError{Kind: ErrDuplicate, Message: message}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewUnauthorized(message string, err error) *AppError {
	return &AppError{Kind: ErrUnauthorized, Message: message, Err: err}
}

// ToHTTPStatus maps an error onto the status code returned to API callers.
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// As returns the *AppError inside err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
