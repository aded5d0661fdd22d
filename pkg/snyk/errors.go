package snyk

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents a single error object returned by the Snyk REST API.
type APIError struct {
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Title  string `json:"title,omitempty"  yaml:"title,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	default:
		return "unknown error"
	}
}

// ErrorDocument represents the top-level error envelope of the REST API.
type ErrorDocument struct {
	Errors []APIError `json:"errors"`
}

// Error implements the error interface for ErrorDocument.
func (e *ErrorDocument) Error() string {
	if len(e.Errors) == 0 {
		return "unknown error"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	return fmt.Sprintf("multiple errors: %v", e.Errors)
}

// FirstError returns the first error or nil.
func (e *ErrorDocument) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// InvalidArgumentError reports a malformed identifier that was rejected
// before any network traffic was attempted.
type InvalidArgumentError struct {
	Field string
	Value string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// NotFoundError reports a resource that does not exist or is not visible
// to the supplied credential. The API does not distinguish the two cases.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found or not accessible", e.Resource, e.ID)
}

// RateLimitError reports a throttled request that was still throttled after
// all transport-level retries. RetryAfter carries the server's advised wait,
// or zero when the server did not send one.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}

	return "rate limited"
}

// TransportError reports a connection, timeout, or protocol failure that
// persisted after all retries.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RequestError reports a non-2xx API response. Errors holds the parsed error
// objects from the response body when the body was parseable.
type RequestError struct {
	StatusCode int
	RetryAfter time.Duration
	Errors     []APIError
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Errors[0].Error())
	}

	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Detail returns the detail text of the first error object, or empty.
func (e *RequestError) Detail() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Detail
	}

	return ""
}

// OperationError reports a mutation that the API rejected.
type OperationError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}

	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired = errors.New("config is required")
	ErrTokenRequired  = errors.New("API token is required")
)

// IsInvalidArgument returns true if the error was caused by a malformed
// identifier.
func IsInvalidArgument(err error) bool {
	var invalidErr *InvalidArgumentError

	return errors.As(err, &invalidErr)
}

// IsNotFound returns true if the error indicates a missing or inaccessible
// resource, either as a typed lookup failure or a raw 404 response.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return true
	}

	var reqErr *RequestError

	return errors.As(err, &reqErr) && reqErr.StatusCode == 404
}

// IsRateLimited returns true if the error indicates request throttling.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError

	return errors.As(err, &rateErr)
}

// IsTransportFailure returns true if the error indicates a connectivity
// problem rather than an API-level rejection.
func IsTransportFailure(err error) bool {
	var transportErr *TransportError

	return errors.As(err, &transportErr)
}

// IsOperationFailed returns true if the error reports a rejected mutation.
func IsOperationFailed(err error) bool {
	var opErr *OperationError

	return errors.As(err, &opErr)
}
