// Package llm provides a config-driven chat-completion adapter built on the
// httpclient package.
//
// The adapter works with any provider through the Dialect pattern, similar
// to how database/sql works with driver packages. A dialect maps the
// universal [CompletionRequest] and [CompletionResponse] types to and from a
// provider's JSON format; the [Adapter] handles transport, bearer
// credentials and error classification.
//
// # Usage
//
// Import a dialect package for side-effect registration, then create an adapter:
//
//	import (
//	    "github.com/kbukum/voxnote/llm"
//	    _ "github.com/kbukum/voxnote/llm/openai" // registers "openai"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    Model:   "gpt-4o-mini",
//	}, credential.Env("OPENAI_API_KEY"))
//
//	text, err := llm.Complete(ctx, adapter, "Clean up this transcript.", raw)
//
// Errors returned by Execute are always *errors.AppError values from the
// pipeline taxonomy, or a missing-credential configuration error.
package llm
