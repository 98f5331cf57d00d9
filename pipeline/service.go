package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/observability"
	"github.com/kbukum/voxnote/recovery"
	"github.com/kbukum/voxnote/status"
	"github.com/kbukum/voxnote/transcription"
)

// Options configures a Service.
type Options struct {
	// Transcriber is required.
	Transcriber Transcriber
	// Refiner is required only for submissions that request refinement.
	Refiner Refiner
	// Recovery preserves phase-1 text after a phase-2 failure. Optional.
	Recovery Recovery
	// MaxBytes overrides MaxUploadBytes.
	MaxBytes int64
	// Model and Prompt are forwarded to the transcriber; empty values leave
	// the provider defaults in place.
	Model  string
	Prompt string
	// ProviderName labels spans and logs.
	ProviderName string

	Logger  *logger.Logger
	Metrics *observability.Metrics
	// Now is the clock used for recovery timestamps.
	Now func() time.Time
}

// Service runs submissions. It is stateless after construction.
type Service struct {
	transcriber Transcriber
	refiner     Refiner
	recovery    Recovery
	maxBytes    int64
	model       string
	prompt      string
	provider    string
	log         *logger.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	if opts.Transcriber == nil {
		return nil, stderrors.New("pipeline: transcriber is required")
	}
	s := &Service{
		transcriber: opts.Transcriber,
		refiner:     opts.Refiner,
		recovery:    opts.Recovery,
		maxBytes:    opts.MaxBytes,
		model:       opts.Model,
		prompt:      opts.Prompt,
		provider:    opts.ProviderName,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}
	if s.maxBytes <= 0 {
		s.maxBytes = MaxUploadBytes
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.WithComponent("pipeline")
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// run carries the state of one submission.
type run struct {
	req   Request
	sink  status.Sink
	stage Stage
	log   *logger.Logger
	span  trace.Span
}

func (r *run) report(msg string) { r.sink.Report(msg) }

func (r *run) advance(next Stage) {
	if next <= r.stage && !next.Terminal() {
		return
	}
	r.stage = next
	r.span.AddEvent(next.String())
	r.log.Debug("stage", logger.Fields(logger.FieldStage, next.String()))
}

// Submit runs one submission to completion. Phase-1 failures are returned as
// is. A phase-2 failure is returned after the raw transcript was handed to
// the recovery persister; the recovery write is not cancelled by ctx.
func (s *Service) Submit(ctx context.Context, req Request) (*Outcome, error) {
	fileName := filepath.Base(req.AudioPath)
	ctx, span := observability.StartSpan(ctx, observability.SpanSubmit, trace.WithAttributes(
		attribute.String(observability.AttrFile, fileName),
		attribute.Bool(observability.AttrRefine, req.RequiresRefinement),
	))
	defer span.End()

	r := &run{
		req:   req,
		sink:  status.OrDiscard(req.Status),
		stage: StageValidating,
		log:   s.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldFile, fileName)),
		span:  span,
	}

	s.metrics.RecordStart(ctx)
	out, err := s.submit(ctx, r, fileName)
	if err != nil {
		r.advance(StageFailed)
		kind := string(errors.KindOf(err))
		span.SetAttributes(attribute.String(observability.AttrErrorKind, kind))
		observability.SetSpanError(span, err)
		s.metrics.RecordEnd(ctx, "error", req.RequiresRefinement)
		r.log.Warn("transcription failed", logger.Fields(logger.FieldErrorCode, kind, logger.FieldError, err.Error()))
		return nil, err
	}
	r.advance(StageCompleted)
	s.metrics.RecordEnd(ctx, "ok", req.RequiresRefinement)
	r.log.Info("transcription complete", logger.Fields("refined", out.OriginalText != nil, "chars", len(out.FinalText)))
	return out, nil
}

func (s *Service) submit(ctx context.Context, r *run, fileName string) (*Outcome, error) {
	audio, err := s.validate(ctx, r)
	if err != nil {
		s.metrics.RecordFailure(ctx, StageValidating.String(), string(errors.KindOf(err)))
		return nil, err
	}
	if r.req.RequiresRefinement && s.refiner == nil {
		return nil, errors.Validation("refinement requested but no refiner is configured")
	}

	raw, err := s.transcribe(ctx, r, fileName, audio)
	if err != nil {
		s.metrics.RecordFailure(ctx, r.stage.String(), string(errors.KindOf(err)))
		return nil, err
	}

	if !r.req.RequiresRefinement {
		r.report(MsgComplete)
		return &Outcome{FinalText: raw}, nil
	}

	refined, err := s.refine(ctx, r, raw)
	if err != nil {
		s.metrics.RecordFailure(ctx, StageAwaitingRefinement.String(), string(errors.KindOf(err)))
		return nil, s.preserve(ctx, r, fileName, raw, err)
	}

	r.report(MsgComplete)
	original := raw
	return &Outcome{OriginalText: &original, FinalText: refined}, nil
}

// validate checks the file size and reads the audio. The size message is
// reported whenever the file could be stat'ed.
func (s *Service) validate(ctx context.Context, r *run) ([]byte, error) {
	info, err := os.Stat(r.req.AudioPath)
	if err != nil {
		return nil, errors.NoData(fmt.Sprintf("cannot read audio file %s", r.req.AudioPath)).WithCause(err)
	}
	if info.IsDir() {
		return nil, errors.NoData(fmt.Sprintf("%s is a directory", r.req.AudioPath))
	}

	size := info.Size()
	mb := SizeMB(size)
	r.report(fmt.Sprintf(MsgFileSize, mb))
	r.span.SetAttributes(attribute.Int64(observability.AttrSizeBytes, size))
	s.metrics.RecordAudioSize(ctx, size)

	if err := validateSize(size, s.maxBytes); err != nil {
		return nil, err
	}

	audio, err := os.ReadFile(r.req.AudioPath)
	if err != nil {
		return nil, errors.NoData(fmt.Sprintf("cannot read audio file %s", r.req.AudioPath)).WithCause(err)
	}
	return audio, nil
}

// validateSize fails with FileTooLarge when size exceeds limit.
func validateSize(size, limit int64) error {
	if size > limit {
		return errors.FileTooLarge(SizeMB(size))
	}
	return nil
}

// SizeMB converts bytes to megabytes rounded to two decimals.
func SizeMB(size int64) float64 {
	return math.Round(float64(size)/(1024*1024)*100) / 100
}

func (s *Service) transcribe(ctx context.Context, r *run, fileName string, audio []byte) (string, error) {
	r.advance(StageUploading)
	r.report(MsgUploading)

	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe, trace.WithAttributes(
		attribute.String(observability.AttrProvider, s.provider),
	))
	defer span.End()

	r.advance(StageAwaitingTranscription)
	r.report(MsgAwaitingTranscript)

	start := time.Now()
	resp, err := s.transcriber.Transcribe(ctx, transcription.Request{
		FileName: fileName,
		Audio:    audio,
		Model:    s.model,
		Prompt:   s.prompt,
	})
	if err == nil && resp == nil {
		err = errors.NoData("empty transcription response")
	}
	if err != nil {
		err = asPipelineError(err)
		s.metrics.RecordPhase(ctx, "transcription", "error", time.Since(start))
		observability.SetSpanError(span, err)
		if errors.IsTimeout(err) {
			r.report(MsgTranscriptionTimeout)
		}
		return "", err
	}
	s.metrics.RecordPhase(ctx, "transcription", "ok", time.Since(start))
	return resp.Text, nil
}

func (s *Service) refine(ctx context.Context, r *run, raw string) (string, error) {
	r.advance(StageAwaitingRefinement)
	r.report(MsgRefining)

	ctx, span := observability.StartSpan(ctx, observability.SpanRefine)
	defer span.End()

	start := time.Now()
	refined, err := s.refiner.Refine(ctx, r.req.RefinementPrompt, raw)
	if err != nil {
		err = asPipelineError(err)
		s.metrics.RecordPhase(ctx, "refinement", "error", time.Since(start))
		observability.SetSpanError(span, err)
		if errors.IsTimeout(err) {
			r.report(MsgRefinementTimeout)
		}
		return "", err
	}
	s.metrics.RecordPhase(ctx, "refinement", "ok", time.Since(start))
	return refined, nil
}

// preserve saves raw after a phase-2 failure and returns cause, annotated
// with the recovery location when the save succeeded. Save failures are
// logged only.
func (s *Service) preserve(ctx context.Context, r *run, fileName, raw string, cause error) error {
	if s.recovery == nil {
		r.log.Warn("no recovery persister configured; raw transcript not preserved")
		r.report(MsgNotPreserved)
		return cause
	}

	saveCtx := context.WithoutCancel(ctx)
	saveCtx, span := observability.StartSpan(saveCtx, observability.SpanRecover)
	defer span.End()

	location, err := s.recovery.Save(saveCtx, recovery.SavedTranscript{
		SourceFileName: fileName,
		RawText:        raw,
		CreatedAt:      s.now(),
	})
	if err != nil {
		observability.SetSpanError(span, err)
		s.metrics.RecordRecovery(saveCtx, "failed")
		r.log.Error("failed to preserve transcript", logger.ErrorFields("recovery", err))
		r.report(MsgNotPreserved)
		return cause
	}

	span.SetAttributes(attribute.String(observability.AttrRecoveryPath, location))
	s.metrics.RecordRecovery(saveCtx, "saved")
	r.report(fmt.Sprintf(MsgPreserved, location))
	return withDetail(cause, "recovery_location", location)
}

// asPipelineError keeps pipeline and configuration errors. Anything else a
// phase returns, including a plain error from a substituted client, is a
// failed exchange and becomes TransportFailure.
func asPipelineError(err error) error {
	if ae, ok := errors.AsAppError(err); ok {
		switch {
		case errors.IsPipelineCode(ae.Code),
			ae.Code == errors.ErrCodeMissingCredential,
			ae.Code == errors.ErrCodeInvalidInput:
			return err
		}
	}
	timeout := stderrors.Is(err, context.DeadlineExceeded)
	return errors.TransportFailure(err.Error(), timeout).WithCause(err)
}

// withDetail returns a copy of err's AppError with key set. The original
// error value is left untouched.
func withDetail(err error, key string, value any) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return err
	}
	clone := *appErr
	clone.Details = make(map[string]any, len(appErr.Details)+1)
	for k, v := range appErr.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}
