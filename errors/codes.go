package errors

import "slices"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline errors. This set is closed: a phase failure returned by the
// pipeline always carries one of these codes. Errors from a substituted
// client that carry no code are reported as TRANSPORT_FAILURE.
const (
	// ErrCodeInvalidEndpoint indicates the provider URL could not be built.
	ErrCodeInvalidEndpoint ErrorCode = "INVALID_ENDPOINT"
	// ErrCodeInvalidResponse indicates the provider answered with something that is not a JSON object.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	// ErrCodeNoData indicates there was no data to work with (empty body, unreadable file).
	ErrCodeNoData ErrorCode = "NO_DATA"
	// ErrCodeParsingFailed indicates the response was JSON but lacked the expected field.
	ErrCodeParsingFailed ErrorCode = "PARSING_FAILED"
	// ErrCodeAPIError indicates a non-2xx response that carried a body.
	ErrCodeAPIError ErrorCode = "API_ERROR"
	// ErrCodeServerError indicates a non-2xx response without a body.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
	// ErrCodeFileTooLarge indicates the audio exceeds the provider upload limit.
	ErrCodeFileTooLarge ErrorCode = "FILE_TOO_LARGE"
	// ErrCodeTransportFailure indicates a connection error or timeout.
	ErrCodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"
)

// Configuration errors. These are raised before any pipeline stage runs.
const (
	// ErrCodeMissingCredential indicates no API credential could be resolved.
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	// ErrCodeInvalidInput indicates the caller supplied invalid input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// ErrCodeRateLimited indicates the HTTP API rejected a request over its rate limit.
const ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

// ErrCodeInternal indicates an unexpected failure outside the taxonomy.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var pipelineCodes = []ErrorCode{
	ErrCodeInvalidEndpoint,
	ErrCodeInvalidResponse,
	ErrCodeNoData,
	ErrCodeParsingFailed,
	ErrCodeAPIError,
	ErrCodeServerError,
	ErrCodeFileTooLarge,
	ErrCodeTransportFailure,
}

// IsRetryableCode reports whether a caller may resubmit after this code.
// The pipeline itself never retries.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeTransportFailure, ErrCodeServerError, ErrCodeRateLimited:
		return true
	}
	return false
}

// PipelineCodes returns the closed set of pipeline error codes.
func PipelineCodes() []ErrorCode {
	return slices.Clone(pipelineCodes)
}

// IsPipelineCode reports whether code belongs to the pipeline taxonomy.
func IsPipelineCode(code ErrorCode) bool {
	return slices.Contains(pipelineCodes, code)
}
