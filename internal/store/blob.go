package store

import (
	"context"
	"io"
)

// Blob defines the operations the helpers need from a single bucket.
type Blob interface {
	// Download copies the object at key into w.
	Download(ctx context.Context, key string, w io.Writer) (*TransferInfo, error)

	// Upload copies r into the object at key.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (*TransferInfo, error)

	// Rename moves the object at key to newKey.
	Rename(ctx context.Context, key, newKey string) error

	// List returns the objects under prefix, grouped by delimiter when it is not empty.
	List(ctx context.Context, prefix, delimiter string) (*ListResult, error)

	Close() error
}
