package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/voxnote/version"
)

// Client talks to one provider. Relative request paths are joined onto
// Config.BaseURL, and every exchange is bounded by Config.Timeout.
type Client struct {
	hc  *http.Client
	cfg Config
}

// New validates cfg and builds a Client with its own transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{hc: &http.Client{Transport: tr, Timeout: cfg.Timeout}, cfg: cfg}, nil
}

// Name is the configured client name, used in logs.
func (c *Client) Name() string { return c.cfg.Name }

// Unwrap exposes the underlying *http.Client.
func (c *Client) Unwrap() *http.Client { return c.hc }

// Do sends req and reads the whole response body. For a non-2xx status
// the response is returned together with a KindStatus *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	hr, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(hr)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	out := &Response{StatusCode: resp.StatusCode, Body: body, Headers: make(map[string]string, len(resp.Header))}
	for k := range resp.Header {
		out.Headers[k] = resp.Header.Get(k)
	}
	if e := CheckStatus(resp.StatusCode, body); e != nil {
		return out, e
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target, err := c.target(req.Path)
	if err != nil {
		return nil, err
	}
	body, ctype, err := encodeBody(req.Body)
	if err != nil {
		return nil, encodeError(err)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, invalidURLError(target, err)
	}

	hr.Header.Set("User-Agent", version.UserAgent())
	for _, headers := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range headers {
			hr.Header.Set(k, v)
		}
	}
	if ctype != "" && hr.Header.Get("Content-Type") == "" {
		hr.Header.Set("Content-Type", ctype)
	}

	auth := req.Auth
	if auth == nil {
		auth = c.cfg.Auth
	}
	auth.apply(hr)
	return hr, nil
}

// target resolves path against the base URL. Absolute URLs pass through.
// The result must be an absolute http(s) URL.
func (c *Client) target(path string) (string, error) {
	raw := path
	absolute := strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
	if !absolute && c.cfg.BaseURL != "" {
		raw = strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", invalidURLError(raw, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalidURLError(raw, errors.New("expected absolute http(s) URL"))
	}
	return raw, nil
}

// encodeBody turns a request body into a reader plus a default content
// type. Multipart bodies, readers, byte slices and strings are sent as is;
// anything else is encoded as JSON.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		data, ctype, err := v.Encode()
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), ctype, nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// transportError classifies a failed exchange. Caller cancellation counts
// as a connection failure, not a timeout.
func transportError(ctx context.Context, err error) *Error {
	if timedOut(ctx, err) {
		return timeoutError(err)
	}
	return connectionError(err)
}

func timedOut(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}
