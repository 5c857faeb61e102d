package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

// LocalStore keeps uploaded images in a single directory on disk
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

var _ ports.ImageStore = (*LocalStore)(nil)

// Dir returns the upload directory
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes content to filename. A partially written file is removed on failure.
func (s *LocalStore) Save(ctx context.Context, filename string, content io.Reader) error {
	if !entities.ValidFilename(filename) {
		return fmt.Errorf("invalid filename %q", filename)
	}

	path := filepath.Join(s.dir, filename)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}

	_, err = io.Copy(dst, &ctxReader{ctx: ctx, r: content})
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write upload file: %w", err)
	}

	return nil
}

// Path returns the location of filename if it exists as a regular file
func (s *LocalStore) Path(filename string) (string, error) {
	if !entities.ValidFilename(filename) {
		return "", entities.ErrImageNotFound
	}

	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", entities.ErrImageNotFound
		}
		return "", fmt.Errorf("stat upload file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", entities.ErrImageNotFound
	}

	return path, nil
}

// Remove deletes filename
func (s *LocalStore) Remove(filename string) error {
	if !entities.ValidFilename(filename) {
		return entities.ErrImageNotFound
	}

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entities.ErrImageNotFound
		}
		return fmt.Errorf("remove upload file: %w", err)
	}

	return nil
}

// ctxReader stops a copy once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
