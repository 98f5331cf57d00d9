// Package local stores objects as files under a base directory.
package local

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kbukum/voxnote/logger"
	"github.com/kbukum/voxnote/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Storage is a storage.Storage backed by the local filesystem.
type Storage struct {
	root string
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage roots a Storage at basePath and creates the directory. A
// leading "~" is replaced by the user's home directory.
func NewStorage(basePath string) (*Storage, error) {
	p, err := expandHome(basePath)
	if err != nil {
		return nil, err
	}
	if p, err = filepath.Abs(p); err != nil {
		return nil, fmt.Errorf("storage: base path %q: %w", basePath, err)
	}
	if err := os.MkdirAll(p, dirPerm); err != nil {
		return nil, fmt.Errorf("storage: base path %q: %w", p, err)
	}
	return &Storage{root: p}, nil
}

// BasePath is the absolute root directory.
func (s *Storage) BasePath() string { return s.root }

// Upload writes the object, truncating an existing file.
func (s *Storage) Upload(_ context.Context, path string, r io.Reader) error {
	return s.write(path, r, os.O_TRUNC)
}

// Create writes the object with O_EXCL. A half-written file is removed so
// the name can be claimed again.
func (s *Storage) Create(_ context.Context, path string, r io.Reader) error {
	err := s.write(path, r, os.O_EXCL)
	if errors.Is(err, fs.ErrExist) {
		return storage.ErrAlreadyExists
	}
	return err
}

func (s *Storage) write(path string, r io.Reader, mode int) error {
	full, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return fmt.Errorf("storage: %s: %w", path, err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|mode, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return fmt.Errorf("storage: open %s: %w", path, err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if mode == os.O_EXCL {
			_ = os.Remove(full)
		}
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return nil
}

// Download opens the file. The caller closes it.
func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := s.abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	return f, nil
}

func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	full, err := s.abs(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return true, nil
}

// URL is the file:// URL of the object.
func (s *Storage) URL(_ context.Context, path string) (string, error) {
	full, err := s.abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(full)}).String(), nil
}

// List walks the directory that holds prefix and returns the files whose
// relative path starts with it, sorted by path. A missing directory is an
// empty listing.
func (s *Storage) List(_ context.Context, prefix string) ([]storage.FileInfo, error) {
	dir := filepath.Join(s.root, filepath.FromSlash(prefix))
	if !strings.HasSuffix(prefix, "/") {
		dir = filepath.Dir(dir)
	}
	if !strings.HasPrefix(dir, s.root) {
		return nil, storage.ErrInvalidPath
	}

	out := []storage.FileInfo{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, storage.FileInfo{
			Path:         rel,
			Size:         info.Size(),
			LastModified: info.ModTime(),
			ContentType:  contentType(p),
		})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []storage.FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", prefix, err)
	}
	slices.SortFunc(out, func(a, b storage.FileInfo) int { return cmp.Compare(a.Path, b.Path) })
	return out, nil
}

// abs maps a slash path under the root. Cleaning it as a rooted path means
// ".." segments stop at the root.
func (s *Storage) abs(path string) (string, error) {
	sep := string(filepath.Separator)
	clean := filepath.Clean(sep + filepath.FromSlash(path))
	if clean == sep {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidPath, path)
	}
	return filepath.Join(s.root, clean), nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
