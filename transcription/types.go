package transcription

// Request holds the audio and parameters for a transcription call.
type Request struct {
	// FileName is the original name of the audio file; its extension selects
	// the content type of the uploaded part.
	FileName string `json:"file_name"`
	// Audio is the raw file content.
	Audio []byte `json:"-"`
	// Model overrides the provider's configured model.
	Model string `json:"model,omitempty"`
	// Prompt is an optional vocabulary hint. Empty prompts are not sent.
	Prompt string `json:"prompt,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcription text.
	Text string `json:"text"`
}
