package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/pipeline"
	"github.com/kbukum/voxnote/recovery"
	"github.com/kbukum/voxnote/status"
	"github.com/kbukum/voxnote/transcription"
	"github.com/kbukum/voxnote/validation"
)

const (
	formAudio  = "audio"
	formRefine = "refine"
	formPrompt = "prompt"

	maxPromptLength = 4000
	statusBuffer    = 64
)

// Submitter runs one submission.
type Submitter interface {
	Submit(ctx context.Context, req pipeline.Request) (*pipeline.Outcome, error)
}

// SavedStore lists and reads recovery notes.
type SavedStore interface {
	List(ctx context.Context) ([]recovery.Entry, error)
	Read(ctx context.Context, name string) (string, error)
}

// SavedNote is the body of GET /v1/saved/:name.
type SavedNote struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Handlers serves the voxnote API routes.
type Handlers struct {
	submitter Submitter
	saved     SavedStore
	tempDir   string
	log       *logger.Logger
}

// NewHandlers creates the route handlers. saved may be nil, in which case
// the saved-note routes are not mounted. An empty tempDir uses os.TempDir.
func NewHandlers(submitter Submitter, saved SavedStore, tempDir string, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handlers{
		submitter: submitter,
		saved:     saved,
		tempDir:   tempDir,
		log:       log.WithComponent("server"),
	}
}

// Register mounts the routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.POST(PathTranscriptions, h.Transcribe)
	if h.saved != nil {
		r.GET(PathSaved, h.ListSaved)
		r.GET(PathSaved+"/:name", h.ReadSaved)
	}
}

// upload is an audio file spooled to a private temp directory.
type upload struct {
	dir    string
	path   string
	refine bool
	prompt string
}

func (u *upload) request(sink status.Sink) pipeline.Request {
	return pipeline.Request{
		AudioPath:          u.path,
		RequiresRefinement: u.refine,
		RefinementPrompt:   u.prompt,
		Status:             sink,
	}
}

func (h *Handlers) cleanup(u *upload) {
	if err := os.RemoveAll(u.dir); err != nil {
		h.log.Warn("Failed to remove upload", logger.ErrorFields("cleanup", err))
	}
}

// Transcribe handles POST /v1/transcriptions. The response is JSON unless
// the client asks for text/event-stream (or ?stream=true), in which case
// stage messages are streamed as they happen.
func (h *Handlers) Transcribe(c *gin.Context) {
	up, err := h.readUpload(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if wantsStream(c) {
		h.stream(c, up)
		return
	}
	defer h.cleanup(up)

	ctx := c.Request.Context()
	rec := &status.Recorder{}
	sink := status.Multi(rec, status.Logging(h.log.WithContext(ctx)))
	outcome, err := h.submitter.Submit(ctx, up.request(sink))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TranscriptionResponse{Data: outcome, Status: rec.Messages()})
}

type submitResult struct {
	outcome *pipeline.Outcome
	err     error
}

func (h *Handlers) stream(c *gin.Context, up *upload) {
	ctx := c.Request.Context()
	events := status.NewChannel(statusBuffer)
	done := make(chan submitResult, 1)

	go func() {
		defer h.cleanup(up)
		sink := status.Multi(events, status.Logging(h.log.WithContext(ctx)))
		outcome, err := h.submitter.Submit(ctx, up.request(sink))
		done <- submitResult{outcome: outcome, err: err}
		events.Close()
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	msgs := events.C()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				res := <-done
				if res.err != nil {
					c.SSEvent("error", apperrors.Wrap(res.err).ToResponse().Error)
				} else {
					c.SSEvent("result", res.outcome)
				}
				c.Writer.Flush()
				if n := events.Dropped(); n > 0 {
					h.log.WithContext(ctx).Warn("Status events dropped", logger.Fields("dropped", n))
				}
				return
			}
			c.SSEvent("status", msg)
			c.Writer.Flush()
		}
	}
}

func (h *Handlers) readUpload(c *gin.Context) (*upload, error) {
	fh, err := c.FormFile(formAudio)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			if n := c.Request.ContentLength; n > 0 {
				return nil, apperrors.FileTooLarge(pipeline.SizeMB(n))
			}
			return nil, apperrors.FileTooLargeUnknownSize()
		case errors.Is(err, http.ErrMissingFile):
			return nil, apperrors.InvalidInput(formAudio, "an audio file is required")
		default:
			return nil, apperrors.InvalidInput(formAudio, "could not read multipart form").WithCause(err)
		}
	}

	prompt := c.PostForm(formPrompt)
	refine, boolErr := parseBool(c.PostForm(formRefine))
	v := validation.New().
		Extension(formAudio, fh.Filename, transcription.Extensions()).
		MaxLength(formPrompt, prompt, maxPromptLength).
		Custom(boolErr == nil, formRefine, "must be a boolean")
	if err := v.Validate(); err != nil {
		return nil, err
	}

	dir := filepath.Join(h.baseTempDir(), "voxnote-upload-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperrors.Internal(err)
	}
	up := &upload{
		dir:    dir,
		path:   filepath.Join(dir, uploadName(fh.Filename)),
		refine: refine,
		prompt: prompt,
	}
	if err := c.SaveUploadedFile(fh, up.path); err != nil {
		h.cleanup(up)
		return nil, apperrors.Internal(err)
	}
	return up, nil
}

func (h *Handlers) baseTempDir() string {
	if h.tempDir != "" {
		return h.tempDir
	}
	return os.TempDir()
}

// ListSaved handles GET /v1/saved.
func (h *Handlers) ListSaved(c *gin.Context) {
	entries, err := h.saved.List(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if entries == nil {
		entries = []recovery.Entry{}
	}
	RespondOK(c, entries)
}

// ReadSaved handles GET /v1/saved/:name. Clients that accept text/markdown
// get the note verbatim.
func (h *Handlers) ReadSaved(c *gin.Context) {
	name := c.Param("name")
	content, err := h.saved.Read(c.Request.Context(), name)
	if err != nil {
		if apperrors.IsKind(err, apperrors.ErrCodeNoData) {
			c.AbortWithStatusJSON(http.StatusNotFound, apperrors.Wrap(err).ToResponse())
			return
		}
		RespondWithError(c, err)
		return
	}
	if strings.Contains(c.GetHeader("Accept"), "text/markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
		return
	}
	RespondOK(c, SavedNote{Name: name, Content: content})
}

func wantsStream(c *gin.Context) bool {
	if ok, err := strconv.ParseBool(c.Query("stream")); err == nil && ok {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// uploadName keeps the client's base file name so recovery notes and
// provider requests carry it. Unusable names fall back to "audio".
func uploadName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "audio"
	}
	return base
}
