// Package storage keeps uploaded hazard photos on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// LocalStorage writes files under a directory served at a public URL prefix.
type LocalStorage struct {
	dir      string
	prefix   string
	maxBytes int64
}

// NewLocalStorage creates the directory if needed.
func NewLocalStorage(dir, publicPrefix string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{
		dir:      dir,
		prefix:   "/" + strings.Trim(publicPrefix, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Dir returns the root directory.
func (s *LocalStorage) Dir() string { return s.dir }

// Prefix returns the public URL prefix.
func (s *LocalStorage) Prefix() string { return s.prefix }

func (s *LocalStorage) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

// Save stores r under key (a slash separated relative path) and returns its
// public URL and size. Partial files are removed on failure.
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader) (string, int64, error) {
	target, err := s.path(key)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create photo dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create photo file: %w", err)
	}

	// Read one byte past the limit to detect oversized uploads.
	n, err := io.Copy(f, io.LimitReader(&ctxReader{ctx: ctx, r: r}, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("failed to write photo: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("failed to close photo file: %w", closeErr)
	case n > s.maxBytes:
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(target)
		return "", 0, err
	}

	return s.prefix + path.Clean("/"+key), n, nil
}

// Delete removes the file stored under key. Missing files are not an error.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
