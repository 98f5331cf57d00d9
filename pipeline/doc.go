// Package pipeline runs the two-phase transcription flow for one audio file.
//
// A submission is validated, sent to a speech-to-text provider (phase 1) and,
// when requested, passed to a refinement provider (phase 2). Stage messages go
// to the caller's status.Sink in order. When phase 2 fails after phase 1
// succeeded, the raw transcript is handed to a recovery persister before the
// error is returned, so a completed transcription is never lost.
//
//	svc, err := pipeline.New(pipeline.Options{
//	    Transcriber: whisper,
//	    Refiner:     refiner,
//	    Recovery:    recovery.New(store),
//	})
//	out, err := svc.Submit(ctx, pipeline.Request{AudioPath: "standup.m4a", RequiresRefinement: true})
//
// A Service holds no per-request state and is safe for concurrent use.
package pipeline
