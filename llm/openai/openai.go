// Package openai provides the OpenAI chat-completions dialect for the llm
// adapter. Importing it registers the "openai" dialect.
package openai

import (
	"encoding/json"

	apperrors "github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/llm"
)

// DialectName is the registry name of this dialect.
const DialectName = "openai"

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps llm types to the /chat/completions wire format.
type Dialect struct{}

var _ llm.Dialect = (*Dialect)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   *usage   `json:"usage"`
}

type choice struct {
	Message *struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Name returns the dialect name.
func (d *Dialect) Name() string { return DialectName }

// ChatPath returns the chat-completions path.
func (d *Dialect) ChatPath() string { return "/chat/completions" }

// BuildRequest prepends SystemPrompt as a system message.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	messages := make([]llm.Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	return chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, nil
}

// ParseResponse extracts choices[0].message.content.
func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, apperrors.InvalidResponse("expected a JSON object")
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.ParsingFailed("choices")
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.ParsingFailed("choices")
	}
	first := resp.Choices[0]
	if first.Message == nil || first.Message.Content == nil {
		return nil, apperrors.ParsingFailed("choices[0].message.content")
	}

	out := &llm.CompletionResponse{Content: *first.Message.Content, Model: resp.Model}
	if resp.Usage != nil {
		out.Usage = llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}
