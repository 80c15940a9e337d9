package utils

import "errors"

// ErrorKind is the machine-readable classification surfaced to callers.
// Storage errors are the only retryable kind.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "VALIDATION"
	ErrorKindConflict   ErrorKind = "CONFLICT"
	ErrorKindNotFound   ErrorKind = "NOT_FOUND"
	ErrorKindStorage    ErrorKind = "STORAGE"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) error {
	return &AppError{Kind: ErrorKindValidation, Message: message}
}

func NewConflictError(message string) error {
	return &AppError{Kind: ErrorKindConflict, Message: message}
}

func NewNotFoundError(message string) error {
	return &AppError{Kind: ErrorKindNotFound, Message: message}
}

// NewStorageError wraps a driver/transaction failure. Callers may retry.
func NewStorageError(err error) error {
	return &AppError{Kind: ErrorKindStorage, Message: "storage failure: " + err.Error(), Err: err}
}

// KindOf returns the classification of err. Unclassified errors are treated
// as storage failures so nothing silently loses its retryable signal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrorKindStorage
}

func IsRetryable(err error) bool {
	return KindOf(err) == ErrorKindStorage
}

var ErrorRecordNotFound = NewNotFoundError("record not found")
