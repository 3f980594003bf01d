package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Validationf builds a VALIDATION_FAILED error with a field-specific message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: ErrValidation.Code, Message: fmt.Sprintf(format, args...)}
}

// Predefined errors
var (
	// Caller errors
	ErrValidation  = &Error{Code: "VALIDATION_FAILED", Message: "request validation failed"}
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "backtest job not found"}
	ErrJobConflict = &Error{Code: "JOB_CONFLICT", Message: "job is running"}

	// Dispatch outcomes
	ErrWorkerFailed = &Error{Code: "WORKER_FAILED", Message: "worker execution failed"}
	ErrJobCancelled = &Error{Code: "JOB_CANCELLED", Message: "operation was cancelled"}

	// Dataset errors
	ErrDatasetNotFound    = &Error{Code: "DATASET_NOT_FOUND", Message: "dataset not found"}
	ErrDatasetUnsupported = &Error{Code: "DATASET_UNSUPPORTED", Message: "unsupported dataset format"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
