package pipeline

import (
	"context"

	"github.com/kbukum/voxnote/recovery"
	"github.com/kbukum/voxnote/status"
	"github.com/kbukum/voxnote/transcription"
)

// MaxUploadBytes is the largest audio file accepted (25 MB).
const MaxUploadBytes int64 = 25 * 1024 * 1024

// Status messages reported to the sink.
const (
	MsgFileSize             = "Audio file size: %.2f MB"
	MsgUploading            = "Uploading audio..."
	MsgAwaitingTranscript   = "Waiting for transcription..."
	MsgTranscriptionTimeout = "Transcription timed out. The file may be too long or the server is slow."
	MsgRefining             = "Refining transcript..."
	MsgRefinementTimeout    = "Refinement timed out."
	MsgComplete             = "Transcription complete"
	MsgPreserved            = "Transcript preserved to %s despite failure"
	MsgNotPreserved         = "Refinement failed; transcript could not be preserved"
)

// Transcriber performs phase 1.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error)
}

// Refiner performs phase 2. An empty instruction selects the refiner's
// default prompt.
type Refiner interface {
	Refine(ctx context.Context, instruction, text string) (string, error)
}

// Recovery preserves a raw transcript and returns where it was written.
type Recovery interface {
	Save(ctx context.Context, t recovery.SavedTranscript) (string, error)
}

// Request is one submission. It is passed by value and never modified.
type Request struct {
	// AudioPath is the local path of the audio file.
	AudioPath string
	// RequiresRefinement enables phase 2.
	RequiresRefinement bool
	// RefinementPrompt overrides the refiner's default instruction.
	RefinementPrompt string
	// Status receives stage messages. Nil discards them.
	Status status.Sink
}

// Outcome is the result of a successful submission.
type Outcome struct {
	// OriginalText is the phase-1 text. It is set only when refinement ran
	// and succeeded.
	OriginalText *string `json:"original_text,omitempty"`
	// FinalText is the refined text, or the phase-1 text without refinement.
	FinalText string `json:"final_text"`
}
