// Package recovery preserves a raw transcript when the refinement phase
// fails, so a completed transcription is never lost.
//
// Each saved transcript is a markdown note written once under the
// SavedTranscriptions directory of a storage backend. Notes are never
// modified or deleted by this package.
package recovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	apperrors "github.com/kbukum/voxnote/errors"
	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/storage"
)

const (
	// DefaultDirectory is the directory notes are written to.
	DefaultDirectory = "SavedTranscriptions"

	filePrefix  = "transcription_"
	fileExt     = ".md"
	nameLayout  = "2006-01-02_15-04-05"
	savedLayout = "2006-01-02 15:04:05"

	// maxSuffix bounds the _NN collision suffixes tried within one second.
	maxSuffix = 999
)

// SavedTranscript is the content of one recovery note.
type SavedTranscript struct {
	SourceFileName string
	RawText        string
	CreatedAt      time.Time
}

// Entry describes a stored note.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"saved_at"`
}

// Persister writes recovery notes to a storage backend.
type Persister struct {
	store storage.Storage
	dir   string
	now   func() time.Time
	log   *logger.Logger
}

// Option configures a Persister.
type Option func(*Persister)

// WithDirectory overrides the notes directory.
func WithDirectory(dir string) Option {
	return func(p *Persister) {
		if d := strings.Trim(dir, "/"); d != "" {
			p.dir = d
		}
	}
}

// WithClock sets the time source used when a transcript has no CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Persister) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a Persister backed by store.
func New(store storage.Storage, opts ...Option) *Persister {
	p := &Persister{
		store: store,
		dir:   DefaultDirectory,
		now:   time.Now,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithComponent("recovery")
	return p
}

// Directory returns the notes directory relative to the storage root.
func (p *Persister) Directory() string { return p.dir }

// Save writes t as a new note and returns its location. Two saves in the same
// second get distinct names (_02, _03, ...); an existing note is never
// overwritten because every write is an exclusive create.
func (p *Persister) Save(ctx context.Context, t SavedTranscript) (string, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = p.now()
	}
	body := Render(t)

	for n := 1; n <= maxSuffix; n++ {
		name := FileName(t.CreatedAt, n)
		full := path.Join(p.dir, name)

		err := p.store.Create(ctx, full, bytes.NewReader(body))
		if errors.Is(err, storage.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("recovery: write %s: %w", full, err)
		}

		location := p.location(ctx, full)
		p.log.Info("transcript preserved", logger.Fields(
			logger.FieldFile, t.SourceFileName,
			"location", location,
		))
		return location, nil
	}
	return "", fmt.Errorf("recovery: no free file name for %s", t.CreatedAt.Format(nameLayout))
}

// List returns the saved notes, oldest first.
func (p *Persister) List(ctx context.Context) ([]Entry, error) {
	files, err := p.store.List(ctx, p.dir+"/")
	if err != nil {
		return nil, fmt.Errorf("recovery: list: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		name := path.Base(f.Path)
		if path.Dir(f.Path) != p.dir {
			continue
		}
		savedAt, ok := ParseFileName(name)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Name: name, Path: f.Path, Size: f.Size, SavedAt: savedAt})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].SavedAt.Equal(entries[j].SavedAt) {
			return entries[i].SavedAt.Before(entries[j].SavedAt)
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Read returns the markdown of the note with the given file name.
func (p *Persister) Read(ctx context.Context, name string) (string, error) {
	if _, ok := ParseFileName(name); !ok || strings.ContainsAny(name, `/\`) {
		return "", apperrors.InvalidInput("name", fmt.Sprintf("%q is not a saved transcription", name))
	}
	data, err := storage.ReadAll(ctx, p.store, path.Join(p.dir, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperrors.NoData(fmt.Sprintf("saved transcription %s not found", name)).WithCause(err)
		}
		return "", fmt.Errorf("recovery: read %s: %w", name, err)
	}
	return string(data), nil
}

func (p *Persister) location(ctx context.Context, full string) string {
	if u, err := p.store.URL(ctx, full); err == nil && u != "" {
		return u
	}
	return full
}

// FileName returns the note name for a save at ts. n is the 1-based attempt;
// attempts after the first get a two-digit suffix.
func FileName(ts time.Time, n int) string {
	stamp := ts.Format(nameLayout)
	if n <= 1 {
		return filePrefix + stamp + fileExt
	}
	return fmt.Sprintf("%s%s_%02d%s", filePrefix, stamp, n, fileExt)
}

// ParseFileName extracts the save time from a note name. It reports false
// for names this package did not produce.
func ParseFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return time.Time{}, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	if len(stem) < len(nameLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(nameLayout, stem[:len(nameLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	rest := stem[len(nameLayout):]
	if rest != "" && (len(rest) < 3 || rest[0] != '_' || strings.Trim(rest[1:], "0123456789") != "") {
		return time.Time{}, false
	}
	return ts, true
}

// Render produces the markdown note for t.
func Render(t SavedTranscript) []byte {
	var b bytes.Buffer
	b.WriteString("# Saved Transcription\n\n")
	fmt.Fprintf(&b, "**Saved:** %s\n", t.CreatedAt.Format(savedLayout))
	fmt.Fprintf(&b, "**Source file:** %s\n\n", t.SourceFileName)
	b.WriteString("---\n\n")
	b.WriteString(t.RawText)
	return b.Bytes()
}
