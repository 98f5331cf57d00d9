package errors

import stderrors "errors"

// ErrorResponse is the body the HTTP API sends for a failed request, and the
// payload of the "error" event on a status stream.
//
//	{"error": {"code": "FILE_TOO_LARGE", "message": "...", "retryable": false, "details": {"size_mb": 30.5}}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError. Cause is never sent.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse returns the client-visible form of e.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether err's chain holds an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// Wrap returns the AppError in err's chain. Anything else becomes
// INTERNAL_ERROR with err as the cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
