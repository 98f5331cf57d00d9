package llm

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is what an Adapter sends through its Dialect. Zero
// Model and MaxTokens take the adapter's configured values, as does a nil
// Temperature. A Temperature pointing at 0 is sent as 0.
type CompletionRequest struct {
	Model string
	// SystemPrompt becomes the leading system turn.
	SystemPrompt string
	Messages     []Message
	Temperature  *float64
	MaxTokens    int
}

// CompletionResponse is the generated text with whatever metadata the
// provider returned.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
	Usage   Usage  `json:"usage"`
}

// Usage is the token accounting of one completion. Providers that omit it
// leave it zero.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
