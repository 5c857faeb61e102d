package ports

import (
	"context"
	"io"
)

// ImageStore persists uploaded images under opaque filenames
type ImageStore interface {
	Save(ctx context.Context, filename string, content io.Reader) error
	// Path returns the on-disk location of filename, or an error wrapping
	// entities.ErrNotFound when it does not exist
	Path(filename string) (string, error)
	Remove(filename string) error
}
