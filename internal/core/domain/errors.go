package domain

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced for operational triage.
const (
	ErrCodeInvalidDateFormat   = "IDG-60001"
	ErrCodeInvalidTenantDomain = "IDG-60002"
	ErrCodeStorageFailure      = "IDG-65001"
	ErrCodeDirectoryFailure    = "IDG-65002"
	ErrCodeCacheFailure        = "IDG-65003"
)

// ClientError signals invalid caller-supplied input. It is never retried and
// is surfaced to the caller verbatim.
type ClientError struct {
	Code    string
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ClientError) Unwrap() error { return e.Err }

// NewClientError builds a ClientError wrapping an optional cause.
func NewClientError(code, message string, err error) *ClientError {
	return &ClientError{Code: code, Message: message, Err: err}
}

// ServerError signals a storage, directory, or internal failure. The raw
// driver or directory error stays wrapped behind it.
type ServerError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServerError) Unwrap() error { return e.Err }

// NewServerError builds a ServerError wrapping an optional cause.
func NewServerError(code, message string, err error) *ServerError {
	return &ServerError{Code: code, Message: message, Err: err}
}

// IsClientError reports whether err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsServerError reports whether err is or wraps a ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
