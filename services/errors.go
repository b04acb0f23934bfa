package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error codes shared by every service; controllers map them to HTTP statuses.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeDatabase        = "DATABASE_ERROR"
	CodeArchiveDisabled = "ARCHIVE_DISABLED"
)

// ServiceError is a classified failure. Message is safe to show to the caller;
// Err keeps the underlying cause for logs.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches any ServiceError carrying the same code, so callers can write
// errors.Is(err, services.ErrNotFound).
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code
}

var (
	ErrValidation   = &ServiceError{Code: CodeValidation, Message: "invalid input"}
	ErrNotFound     = &ServiceError{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &ServiceError{Code: CodeConflict, Message: "conflict"}
	ErrUnauthorized = &ServiceError{Code: CodeUnauthorized, Message: "unauthorized"}
)

func validationError(format string, args ...interface{}) error {
	return &ServiceError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// notFound is returned both when the row is missing and when it belongs to
// another workshop; the message only names the entity.
func notFound(entity string) error {
	return &ServiceError{Code: CodeNotFound, Message: entity + " not found"}
}

func conflictError(format string, args ...interface{}) error {
	return &ServiceError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(message string) error {
	return &ServiceError{Code: CodeUnauthorized, Message: message}
}

func storeError(op string, err error) error {
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Code: CodeDatabase, Message: "failed to " + op, Err: err}
}

// CodeOf classifies err. Unclassified errors are reported as database errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeDatabase
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return "internal error"
}

// IsUniqueViolation reports duplicate-key errors from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint")
}
