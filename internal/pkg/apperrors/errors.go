package apperrors

import (
	"errors"
	"fmt"
)

// Lookup errors
var (
	ErrProgramNotFound        = errors.New("program not found")
	ErrCourseNotFound         = errors.New("course not found")
	ErrSnapshotRecordNotFound = errors.New("snapshot record not found")
	ErrStudentProfileNotFound = errors.New("student profile not found")
)

// Storage errors
var (
	ErrMalformedStorage = errors.New("malformed storage data")
	ErrUnknownTable     = errors.New("unknown catalog table")
)

// Integrity errors
var (
	ErrSchemaViolation     = errors.New("catalog schema violation")
	ErrDegreeLevelMismatch = errors.New("degree level does not match degree type")
)

// Request errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
)

// NewNotFoundError wraps a lookup sentinel with the key that missed
func NewNotFoundError(sentinel error, key interface{}) error {
	return &CustomError{
		Err:     sentinel,
		Message: fmt.Sprintf("%s: %v", sentinel.Error(), key),
		Code:    "NOT_FOUND",
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Code:    "VALIDATION_FAILED",
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
		Code:    "CONFLICT",
	}
}

// NewDegreeLevelMismatchError reports a level/degree pairing the engine refuses
func NewDegreeLevelMismatchError(level int, degreeType string) error {
	return (&CustomError{
		Err:     ErrDegreeLevelMismatch,
		Message: fmt.Sprintf("level %d cannot be paired with degree type %q", level, degreeType),
		Code:    "DEGREE_LEVEL_MISMATCH",
	}).WithDetails(map[string]interface{}{
		"level":      level,
		"degreeType": degreeType,
	})
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
