// Package storage keeps uploaded poster files. Files are addressed by a
// flat name; Get on a missing name returns common.ErrFileNotFound.
package storage

import (
	"context"
	"io"
)

// BlobStore is implemented by the local directory and S3 backends.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}
