// Package transcription defines the speech-to-text provider contract and
// the multipart upload encoding shared by providers.
//
// # Backends
//
//   - transcription/openai: OpenAI-compatible /audio/transcriptions endpoint
//
// # Usage
//
//	p, err := openai.NewProvider(openai.Config{Model: "whisper-1"}, credential.Env("OPENAI_API_KEY"), log)
//	resp, err := p.Transcribe(ctx, transcription.Request{FileName: "memo.m4a", Audio: data})
package transcription
