package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type every voxnote component returns to its
// callers. Code is stable and machine-readable; Message is for humans.
type AppError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	// HTTPStatus is what the HTTP API answers with for this error.
	HTTPStatus int   `json:"-"`
	Cause      error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches the underlying error and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New builds an error whose Retryable flag follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Retryable: IsRetryableCode(code)}
}

// newDetailed is New with one detail pair; an empty key adds none.
func newDetailed(code ErrorCode, status int, msg, key string, value any) *AppError {
	e := New(code, msg, status)
	if key != "" {
		e.WithDetail(key, value)
	}
	return e
}

func InvalidEndpoint(endpoint string) *AppError {
	return newDetailed(ErrCodeInvalidEndpoint, http.StatusInternalServerError,
		"Invalid API endpoint.", "endpoint", endpoint)
}

// InvalidResponse reports a body that is not a JSON object.
func InvalidResponse(reason string) *AppError {
	return New(ErrCodeInvalidResponse, "Invalid response from server: "+reason, http.StatusBadGateway)
}

// NoData reports an empty response or audio that could not be read.
func NoData(reason string) *AppError {
	msg := "No data received."
	if reason != "" {
		msg = "No data received: " + reason
	}
	return New(ErrCodeNoData, msg, http.StatusUnprocessableEntity)
}

// ParsingFailed reports a JSON object without the expected field.
func ParsingFailed(field string) *AppError {
	return newDetailed(ErrCodeParsingFailed, http.StatusBadGateway,
		"Failed to parse response: missing "+field, "field", field)
}

// APIError carries the body of a non-2xx provider response as its message.
func APIError(body string, statusCode int) *AppError {
	return newDetailed(ErrCodeAPIError, http.StatusBadGateway, body, "status_code", statusCode)
}

// ServerError reports a non-2xx provider response with an empty body.
func ServerError(statusCode int) *AppError {
	return newDetailed(ErrCodeServerError, http.StatusBadGateway,
		fmt.Sprintf("Server error: %d", statusCode), "status_code", statusCode)
}

func FileTooLarge(sizeMB float64) *AppError {
	return newDetailed(ErrCodeFileTooLarge, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File too large (%.2f MB). Maximum size is 25 MB.", sizeMB), "size_mb", sizeMB)
}

// FileTooLargeUnknownSize is FileTooLarge for an upload whose length was not
// declared up front.
func FileTooLargeUnknownSize() *AppError {
	return New(ErrCodeFileTooLarge, "File too large. Maximum size is 25 MB.", http.StatusRequestEntityTooLarge)
}

// TransportFailure reports a connection error, or a timeout when timeout
// is set.
func TransportFailure(message string, timeout bool) *AppError {
	status := http.StatusServiceUnavailable
	if timeout {
		status = http.StatusGatewayTimeout
	}
	return newDetailed(ErrCodeTransportFailure, status, message, "timeout", timeout)
}

// MissingCredential reports a credential that resolved to nothing.
func MissingCredential(name string) *AppError {
	return newDetailed(ErrCodeMissingCredential, http.StatusInternalServerError,
		fmt.Sprintf("No API credential configured (%s).", name), "credential", name)
}

// InvalidInput rejects a caller-supplied value. field may be empty.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason, http.StatusBadRequest)
	e.Details = map[string]any{}
	if field != "" {
		e.Details["field"] = field
	}
	return e
}

func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func RateLimited(retryAfter time.Duration) *AppError {
	return newDetailed(ErrCodeRateLimited, http.StatusTooManyRequests,
		"Rate limit exceeded.", "retry_after_seconds", int(retryAfter/time.Second))
}

// Internal wraps a failure that fits no other code.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).WithCause(cause)
}

// KindOf returns the code of the first AppError in err's chain, or "".
func KindOf(err error) ErrorCode {
	if e, ok := AsAppError(err); ok {
		return e.Code
	}
	return ""
}

func IsKind(err error, code ErrorCode) bool {
	return err != nil && KindOf(err) == code
}

// IsTimeout reports a TransportFailure raised by a timeout.
func IsTimeout(err error) bool {
	var e *AppError
	if !stderrors.As(err, &e) || e.Code != ErrCodeTransportFailure {
		return false
	}
	t, _ := e.Details["timeout"].(bool)
	return t
}
