// Package errors defines the coded error kinds shared by the friendbook
// backend and bot. Every boundary (store, API, client) translates failures
// into one of these kinds so callers can branch on Code instead of on
// concrete error types.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown     = "UNKNOWN"
	CodeValidation  = "VALIDATION"
	CodeNotFound    = "NOT_FOUND"
	CodePersistence = "PERSISTENCE"
	CodeStorage     = "STORAGE"
	CodeTransport   = "TRANSPORT"
	CodeConfig      = "CONFIG"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

// Code returns the error kind.
func (e *Error) Code() string {
	return e.code
}

// Message returns the message without the wrapped cause, safe to show to clients.
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

func newError(code, message string, cause error) *Error {
	return &Error{code: code, message: message, err: cause}
}

// NewValidationError reports client-caused input problems.
func NewValidationError(message string, cause error) error {
	return newError(CodeValidation, message, cause)
}

// NewNotFoundError reports an absent lookup target.
func NewNotFoundError(message string) error {
	return newError(CodeNotFound, message, nil)
}

// NewPersistenceError reports a database failure.
func NewPersistenceError(message string, cause error) error {
	return newError(CodePersistence, message, cause)
}

// NewStorageError reports a filesystem failure while handling media.
func NewStorageError(message string, cause error) error {
	return newError(CodeStorage, message, cause)
}

// NewTransportError reports a failed call to a remote service.
func NewTransportError(message string, cause error) error {
	return newError(CodeTransport, message, cause)
}

// NewConfigError reports invalid or unreadable configuration.
func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}
