package extract

import (
	"errors"
	"fmt"
)

// ErrorCode identifies why a table could not be extracted
type ErrorCode string

const (
	ErrCodeParse          ErrorCode = "PARSE_ERROR"
	ErrCodeAnchorNotFound ErrorCode = "ANCHOR_NOT_FOUND"
	ErrCodeBodyNotFound   ErrorCode = "BODY_NOT_FOUND"
	ErrCodeMissingColumn  ErrorCode = "MISSING_COLUMN"
)

// Sentinels for errors.Is matching by code
var (
	ErrAnchorNotFound = &ExtractError{Code: ErrCodeAnchorNotFound}
	ErrBodyNotFound   = &ExtractError{Code: ErrCodeBodyNotFound}
	ErrMissingColumn  = &ExtractError{Code: ErrCodeMissingColumn}
)

// ExtractError describes a failed extraction.
// Row and Index are only meaningful for MISSING_COLUMN.
type ExtractError struct {
	Code       ErrorCode
	Anchor     string
	Row        int
	Index      int
	Cells      int
	Underlying error
}

// Error implements the error interface
func (e *ExtractError) Error() string {
	switch e.Code {
	case ErrCodeAnchorNotFound:
		return fmt.Sprintf("%s: no element with id %q", e.Code, e.Anchor)
	case ErrCodeBodyNotFound:
		return fmt.Sprintf("%s: element %q has no tbody", e.Code, e.Anchor)
	case ErrCodeMissingColumn:
		return fmt.Sprintf("%s: %q row %d has %d cells, column %d required", e.Code, e.Anchor, e.Row, e.Cells, e.Index)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Underlying)
	}
	return string(e.Code)
}

// Unwrap returns the underlying error
func (e *ExtractError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *ExtractError) Is(target error) bool {
	if t, ok := target.(*ExtractError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// Retryable is always false: a reshaped page does not fix itself on retry
func (e *ExtractError) Retryable() bool {
	return false
}
