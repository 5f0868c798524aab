package store

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the load step that failed
type ErrorCode string

const (
	ErrCodeInvalidTable ErrorCode = "INVALID_TABLE"
	ErrCodeConnect      ErrorCode = "CONNECT"
	ErrCodeBegin        ErrorCode = "BEGIN"
	ErrCodeDelete       ErrorCode = "DELETE"
	ErrCodeInsert       ErrorCode = "INSERT"
	ErrCodeCommit       ErrorCode = "COMMIT"
)

// Sentinels for errors.Is matching by code
var (
	ErrInvalidTable = &LoadError{Code: ErrCodeInvalidTable}
	ErrConnect      = &LoadError{Code: ErrCodeConnect}
	ErrInsert       = &LoadError{Code: ErrCodeInsert}
	ErrCommit       = &LoadError{Code: ErrCodeCommit}
)

// LoadError wraps a failed load. When it is returned the transaction
// has been rolled back and the destination table is unchanged.
type LoadError struct {
	Code       ErrorCode
	Table      string
	Message    string
	Underlying error
	Retry      bool
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s %q: %v", e.Code, e.Message, e.Table, e.Underlying)
	}
	return fmt.Sprintf("%s: %s %q", e.Code, e.Message, e.Table)
}

// Unwrap returns the underlying error
func (e *LoadError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *LoadError) Is(target error) bool {
	if t, ok := target.(*LoadError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// Retryable reports whether the host may retry the run
func (e *LoadError) Retryable() bool {
	return e.Retry
}

func newLoadError(code ErrorCode, table, message string, err error) *LoadError {
	return &LoadError{
		Code:       code,
		Table:      table,
		Message:    message,
		Underlying: err,
		Retry:      code == ErrCodeConnect || code == ErrCodeBegin || code == ErrCodeCommit,
	}
}
