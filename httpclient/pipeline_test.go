package httpclient

import (
	"fmt"
	"testing"

	apperrors "github.com/kbukum/voxnote/errors"
)

func TestPipelineError(t *testing.T) {
	tests := []struct {
		name    string
		in      error
		want    apperrors.ErrorCode
		timeout bool
	}{
		{"status with body", CheckStatus(500, []byte("rate limited")), apperrors.ErrCodeAPIError, false},
		{"status with blank body", CheckStatus(503, []byte("  \n")), apperrors.ErrCodeServerError, false},
		{"status without body", CheckStatus(401, nil), apperrors.ErrCodeServerError, false},
		{"timeout", timeoutError(fmt.Errorf("deadline")), apperrors.ErrCodeTransportFailure, true},
		{"connection", connectionError(fmt.Errorf("refused")), apperrors.ErrCodeTransportFailure, false},
		{"invalid url", invalidURLError("nope", fmt.Errorf("bad")), apperrors.ErrCodeInvalidEndpoint, false},
		{"encode failure", encodeError(fmt.Errorf("unsupported value")), apperrors.ErrCodeTransportFailure, false},
		{"foreign error", fmt.Errorf("boom"), apperrors.ErrCodeTransportFailure, false},
		{"already classified", apperrors.NoData("empty"), apperrors.ErrCodeNoData, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PipelineError(tc.in)
			if apperrors.KindOf(got) != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, got)
			}
			if apperrors.IsTimeout(got) != tc.timeout {
				t.Errorf("IsTimeout = %v, want %v", apperrors.IsTimeout(got), tc.timeout)
			}
		})
	}
}

func TestPipelineError_APIErrorKeepsBodyVerbatim(t *testing.T) {
	err := PipelineError(CheckStatus(500, []byte("rate limited")))
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Message != "rate limited" {
		t.Errorf("expected message %q, got %q", "rate limited", appErr.Message)
	}
	if appErr.Details["status_code"] != 500 {
		t.Errorf("expected status_code detail 500, got %v", appErr.Details["status_code"])
	}
}

func TestPipelineError_Nil(t *testing.T) {
	if PipelineError(nil) != nil {
		t.Error("expected nil for nil input")
	}
}
