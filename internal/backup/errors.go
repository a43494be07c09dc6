// Package backup orchestrates the dump, upload and retention phases of a
// MongoDB backup run.
package backup

import (
	"errors"
	"fmt"
)

// ErrorCode classifies backup errors by the phase or resource that failed.
type ErrorCode int

const (
	// ErrUnknown represents an unclassified error
	ErrUnknown ErrorCode = iota
	// ErrValidation represents a configuration validation error
	ErrValidation
	// ErrDump represents a failure of the dump subprocess
	ErrDump
	// ErrUpload represents a failure of the upload step
	ErrUpload
	// ErrIO represents a local filesystem error
	ErrIO
	// ErrTimeout represents an operation timeout
	ErrTimeout
	// ErrCanceled represents a canceled operation
	ErrCanceled
)

// Error is a backup operation error with a phase classification.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new backup error.
func NewError(code ErrorCode, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode reports whether err is a backup error with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var backupErr *Error
	if errors.As(err, &backupErr) {
		return backupErr.Code == code
	}
	return false
}

// IsTimeoutError reports whether err is a timeout error.
func IsTimeoutError(err error) bool {
	return IsErrorCode(err, ErrTimeout)
}

// IsCanceledError reports whether err is a cancellation error.
func IsCanceledError(err error) bool {
	return IsErrorCode(err, ErrCanceled)
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	return IsErrorCode(err, ErrValidation)
}
