// Package storage persists uploaded documents as blobs keyed by filename.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInvalidKey is returned for keys that are not a single safe path segment.
var ErrInvalidKey = errors.New("filename must be a single path segment")

// PutOptions carries optional upload metadata. Size is -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Key  string
	Size int64
}

// Storage writes blobs by key. A second Put with the same key replaces the first.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
}

// ValidateKey rejects empty names, dot segments, separators and NUL bytes.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return ErrInvalidKey
	case strings.ContainsAny(key, `/\`+"\x00"):
		return ErrInvalidKey
	}
	return nil
}
