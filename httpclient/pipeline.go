package httpclient

import (
	"errors"
	"strings"

	apperrors "github.com/kbukum/voxnote/errors"
)

// PipelineError maps an error returned by Do onto the pipeline error kinds.
// Errors that already carry an *apperrors.AppError pass through unchanged.
//
//	non-2xx with a body      -> APIError(body)
//	non-2xx without a body   -> ServerError(status)
//	timeout                  -> TransportFailure(msg, timeout=true)
//	connection failure       -> TransportFailure(msg, timeout=false)
//	unusable URL             -> InvalidEndpoint
//	body could not be encoded -> TransportFailure(msg, timeout=false)
func PipelineError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}

	var e *Error
	if !errors.As(err, &e) {
		return apperrors.TransportFailure(err.Error(), false).WithCause(err)
	}

	switch e.Kind {
	case KindStatus:
		if strings.TrimSpace(string(e.Body)) != "" {
			return apperrors.APIError(string(e.Body), e.StatusCode).WithCause(e)
		}
		return apperrors.ServerError(e.StatusCode).WithCause(e)
	case KindInvalidURL:
		return apperrors.InvalidEndpoint(e.URL).WithCause(e)
	case KindTimeout:
		return apperrors.TransportFailure(e.Message, true).WithCause(e)
	case KindEncode:
		return apperrors.TransportFailure("request not sent: "+e.Message, false).WithCause(e)
	default:
		return apperrors.TransportFailure(e.Message, false).WithCause(e)
	}
}
