package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/campusio/intl-office/internal/core/port"
)

// DiskStore keeps attachment bytes on the local filesystem under a base
// directory, one folder per request domain.
type DiskStore struct {
	baseDir string
}

// NewDiskStore prepares the base directory and returns a store rooted there.
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage: base directory is required")
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}

	return &DiskStore{baseDir: baseDir}, nil
}

// Save writes the stream under folder with a randomized filename and
// returns the stored path relative to the base directory.
func (s *DiskStore) Save(_ context.Context, folder, ext string, r io.Reader) (string, int64, error) {
	folder = filepath.Clean(folder)
	if strings.Contains(folder, "..") {
		return "", 0, fmt.Errorf("storage: invalid folder %q", folder)
	}

	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: create folder: %w", err)
	}

	ext = strings.TrimPrefix(ext, ".")
	name := uuid.NewString()
	if ext != "" {
		name = name + "." + ext
	}

	relPath := filepath.Join(folder, name)
	fullPath := filepath.Join(s.baseDir, relPath)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, fmt.Errorf("storage: write file: %w", err)
	}

	return relPath, written, nil
}

// Open returns a reader over the stored file. Callers translate
// os.ErrNotExist into their own not-found error.
func (s *DiskStore) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(storedPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Remove unlinks the stored file. A missing file is not an error.
func (s *DiskStore) Remove(_ context.Context, storedPath string) error {
	fullPath, err := s.resolve(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

func (s *DiskStore) resolve(storedPath string) (string, error) {
	cleaned := filepath.Clean(storedPath)
	if cleaned == "" || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: invalid path %q", storedPath)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

var _ port.FileStore = (*DiskStore)(nil)
