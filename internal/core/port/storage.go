package port

import (
	"context"
	"io"
)

// FileStore abstracts physical attachment storage.
type FileStore interface {
	// Save writes the stream under the given folder with a randomized
	// filename derived from ext, returning the stored relative path and the
	// number of bytes written.
	Save(ctx context.Context, folder, ext string, r io.Reader) (string, int64, error)
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
	Remove(ctx context.Context, storedPath string) error
}
