package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrAlreadyExists = errors.New("storage: object already exists")
	ErrNotFound      = errors.New("storage: object not found")
	// ErrInvalidPath rejects an empty path or one outside the backend root.
	ErrInvalidPath = errors.New("storage: invalid path")
)

// FileInfo describes one stored object.
type FileInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Storage is a flat object store addressed by slash-separated paths
// relative to the backend root.
type Storage interface {
	// Upload writes the object, replacing any existing one.
	Upload(ctx context.Context, path string, r io.Reader) error
	// Create writes the object only if the path is free and returns
	// ErrAlreadyExists otherwise. Of concurrent callers on one path, at
	// most one succeeds.
	Create(ctx context.Context, path string, r io.Reader) error
	// Download opens the object; ErrNotFound if it is missing.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	// URL locates the object for humans: file:// locally, the object URL
	// on S3.
	URL(ctx context.Context, path string) (string, error)
	// List returns the objects under prefix sorted by path.
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// ReadAll downloads a whole object.
func ReadAll(ctx context.Context, s Storage, path string) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
