// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific fetch failure
type ErrorCode string

const (
	ErrCodeBadStatus    ErrorCode = "BAD_STATUS"
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeInvalidURL   ErrorCode = "INVALID_URL"
	ErrCodeBrowser      ErrorCode = "BROWSER_ERROR"
)

// Sentinels for errors.Is matching by code
var (
	ErrBadStatus = &FetchError{Code: ErrCodeBadStatus}
	ErrNetwork   = &FetchError{Code: ErrCodeNetworkError}
	ErrTimeout   = &FetchError{Code: ErrCodeTimeout}
	ErrBrowser   = &FetchError{Code: ErrCodeBrowser}
)

// FetchError wraps a failed fetch with additional context
type FetchError struct {
	Code       ErrorCode
	URL        string
	StatusCode int
	Message    string
	Underlying error
	Retry      bool
}

// Error implements the error interface
func (e *FetchError) Error() string {
	msg := e.Message
	if e.Code == ErrCodeBadStatus {
		msg = fmt.Sprintf("%s: HTTP %d", e.Message, e.StatusCode)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *FetchError) Is(target error) bool {
	if t, ok := target.(*FetchError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// Retryable reports whether the host may retry the run
func (e *FetchError) Retryable() bool {
	return e.Retry
}

// GetStatusCode returns the HTTP status of a BAD_STATUS failure
func (e *FetchError) GetStatusCode() int {
	return e.StatusCode
}

// NewFetchError creates a new FetchError
func NewFetchError(code ErrorCode, url, message string, err error) *FetchError {
	return &FetchError{
		Code:       code,
		URL:        url,
		Message:    message,
		Underlying: err,
	}
}

// WithRetry marks the error as retryable
func (e *FetchError) WithRetry() *FetchError {
	e.Retry = true
	return e
}

// BadStatus builds the error returned for a non-200 response.
// 429 and 5xx are retryable, everything else is not.
func BadStatus(url string, status int) *FetchError {
	e := NewFetchError(ErrCodeBadStatus, url, "unexpected response status", nil)
	e.StatusCode = status
	if status == http.StatusTooManyRequests || status >= 500 {
		e.Retry = true
	}
	return e
}

// NetworkFailure classifies a transport-level failure
func NetworkFailure(url string, err error) *FetchError {
	code := ErrCodeNetworkError
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		code = ErrCodeTimeout
	}
	return NewFetchError(code, url, "request failed", err).WithRetry()
}
