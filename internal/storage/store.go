// Package storage holds uploaded images behind a small object-store
// interface keyed by slash-separated paths.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no object exists under the key
	ErrNotFound = errors.New("storage: object not found")
	// ErrInvalidKey is returned for empty, absolute or escaping keys
	ErrInvalidKey = errors.New("storage: invalid key")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string
	ContentType  string
	ETag         string
	Size         int64
	LastModified time.Time
}

// Object is an open object. The caller must close Body.
type Object struct {
	ObjectInfo
	Body io.ReadCloser
}

// Store is an object store
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (*ObjectInfo, error)
	Get(ctx context.Context, key string) (*Object, error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects keys that could escape the store root
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	if strings.HasSuffix(key, metaSuffix) {
		return ErrInvalidKey
	}
	return nil
}
