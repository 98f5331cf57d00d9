package httpclient

import (
	"errors"
	"fmt"
)

// Kind says how an exchange failed.
type Kind int

const (
	// KindStatus is a response outside 2xx. Body holds what the server sent.
	KindStatus Kind = iota
	// KindTimeout is a request that ran past its deadline.
	KindTimeout
	// KindConnection is a request that never got a response.
	KindConnection
	// KindInvalidURL is a target that is not an absolute http(s) URL.
	KindInvalidURL
	// KindEncode is a request body that could not be serialized.
	KindEncode
)

var kindNames = map[Kind]string{
	KindStatus:     "status",
	KindTimeout:    "timeout",
	KindConnection: "connection",
	KindInvalidURL: "invalid_url",
	KindEncode:     "encode",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a failed exchange. Do returns it for every failure it detects
// itself; PipelineError turns it into an *errors.AppError.
type Error struct {
	Kind Kind
	// StatusCode is set for KindStatus only.
	StatusCode int
	Body       []byte
	// URL is the rejected target for KindInvalidURL.
	URL     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("httpclient: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the exchange ran past its deadline.
func (e *Error) Timeout() bool { return e.Kind == KindTimeout }

func statusError(statusCode int, body []byte) *Error {
	return &Error{
		Kind:       KindStatus,
		StatusCode: statusCode,
		Body:       body,
		Message:    fmt.Sprintf("%d bytes of response body", len(body)),
	}
}

func timeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Message: err.Error(), Err: err}
}

func connectionError(err error) *Error {
	return &Error{Kind: KindConnection, Message: err.Error(), Err: err}
}

func invalidURLError(target string, err error) *Error {
	return &Error{Kind: KindInvalidURL, URL: target, Message: fmt.Sprintf("invalid url %q: %v", target, err), Err: err}
}

func encodeError(err error) *Error {
	return &Error{Kind: KindEncode, Message: fmt.Sprintf("encode body: %v", err), Err: err}
}

// CheckStatus returns a KindStatus error for a status outside 2xx, or nil.
func CheckStatus(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return statusError(statusCode, body)
}

// IsTimeout reports whether err is an *Error of KindTimeout.
func IsTimeout(err error) bool {
	return kindOf(err) == KindTimeout
}

// IsConnection reports whether err is an *Error of KindConnection.
func IsConnection(err error) bool {
	return kindOf(err) == KindConnection
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return -1
}
