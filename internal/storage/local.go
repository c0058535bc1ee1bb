package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	tempPattern = ".upload-*.part"
	// CreateTemp opens files 0600.
	fileMode os.FileMode = 0o644
)

type localStorage struct {
	dir string
}

// NewLocal stores blobs as files in dir, creating it if absent.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("documents directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &localStorage{dir: dir}, nil
}

// Put streams r into a temp file beside the target and renames it into place.
func (s *localStorage) Put(ctx context.Context, key string, r io.Reader, _ PutOptions) (ObjectInfo, error) {
	if err := ValidateKey(key); err != nil {
		return ObjectInfo{}, err
	}
	// The directory may have been removed since startup.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create documents dir: %w", err)
	}

	// Fixed-length pattern: any key up to the filesystem's name limit still fits.
	tmp, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: r})
	if err == nil {
		err = tmp.Chmod(fileMode)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		return ObjectInfo{}, fmt.Errorf("rename %s: %w", key, err)
	}
	return ObjectInfo{Key: key, Size: n}, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
