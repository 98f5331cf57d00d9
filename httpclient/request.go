package httpclient

// Request is one call to the provider.
type Request struct {
	Method string
	// Path is joined onto Config.BaseURL unless it is already absolute.
	Path    string
	Headers map[string]string
	// Body is a *MultipartBody, io.Reader, []byte, string, or a value sent
	// as JSON.
	Body any
	// Auth replaces Config.Auth for this request.
	Auth *AuthConfig
}

// Response is a fully read response. Body is never nil for a non-empty
// reply.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}
