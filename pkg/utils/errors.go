package utils

import (
	"errors"
	"fmt"
)

// ErrKind classifies service failures so handlers can map them to HTTP
// responses without matching on error text.
type ErrKind int

const (
	ErrValidation ErrKind = iota + 1
	ErrConflict
	ErrAuthorization
	ErrNotFound
	ErrGateway
	ErrSignature
	ErrState
)

// AppError is the error type returned by services. Wraps an optional cause.
type AppError struct {
	Kind    ErrKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) *AppError {
	return &AppError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...any) *AppError {
	return &AppError{Kind: ErrAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *AppError {
	return &AppError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewGatewayError(err error, format string, args ...any) *AppError {
	return &AppError{Kind: ErrGateway, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewSignatureError(format string, args ...any) *AppError {
	return &AppError{Kind: ErrSignature, Message: fmt.Sprintf(format, args...)}
}

func NewStateError(format string, args ...any) *AppError {
	return &AppError{Kind: ErrState, Message: fmt.Sprintf(format, args...)}
}

// ErrorKind extracts the classification from err, or 0 when err is not an
// AppError.
func ErrorKind(err error) ErrKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}
