// Package httpclient is the HTTP transport shared by the transcription and
// refinement clients. It handles URL resolution, bearer authentication,
// JSON and multipart bodies, and classification of failures into a typed
// Error.
//
// A Client performs exactly one attempt per Do call; callers that need a
// retry policy wrap it themselves.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:    "transcription",
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 600 * time.Second,
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/audio/transcriptions",
//	    Body:   multipartBody,
//	    Auth:   httpclient.BearerAuth(token),
//	})
//
// PipelineError translates any error returned by Do into the pipeline error
// taxonomy of the errors package.
package httpclient
