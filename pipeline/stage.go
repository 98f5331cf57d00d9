package pipeline

// Stage is a step of a submission. Stages only move forward; Completed and
// Failed are terminal.
type Stage int

const (
	StageValidating Stage = iota
	StageUploading
	StageAwaitingTranscription
	StageAwaitingRefinement
	StageCompleted
	StageFailed
)

var stageNames = [...]string{
	StageValidating:            "validating",
	StageUploading:             "uploading",
	StageAwaitingTranscription: "awaiting_transcription",
	StageAwaitingRefinement:    "awaiting_refinement",
	StageCompleted:             "completed",
	StageFailed:                "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Terminal reports whether s is Completed or Failed.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}
