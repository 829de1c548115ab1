package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

const metaSuffix = ".meta.json"

type objectMeta struct {
	ContentType string `json:"contentType"`
	ETag        string `json:"etag"`
	Size        int64  `json:"size"`
}

// FileStore keeps objects as files under a root directory. Content type and
// ETag live in a JSON sidecar next to each object.
type FileStore struct {
	root string
	log  zerolog.Logger
}

// NewFileStore creates the root directory if needed
func NewFileStore(root string, log zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FileStore{
		root: root,
		log:  log.With().Str("component", "storage").Logger(),
	}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put writes the object atomically: data goes to a temp file that is renamed
// into place once fully written.
func (s *FileStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (*ObjectInfo, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := md5.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write object: %w", err)
	}

	meta := objectMeta{
		ContentType: contentType,
		ETag:        `"` + hex.EncodeToString(hash.Sum(nil)) + `"`,
		Size:        size,
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path+metaSuffix, metaData, 0644); err != nil {
		return nil, fmt.Errorf("write object metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("commit object: %w", err)
	}

	s.log.Debug().Str("key", key).Int64("size", size).Msg("Object stored")

	return s.Stat(ctx, key)
}

// Stat returns object metadata without opening the body
func (s *FileStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, ErrNotFound
	}

	info := &ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
	}

	meta, err := s.readMeta(path)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Object metadata missing, sniffing content type")
		mt, detectErr := mimetype.DetectFile(path)
		if detectErr != nil {
			return nil, detectErr
		}
		info.ContentType = mt.String()
		info.ETag = fmt.Sprintf(`"%x-%x"`, fi.ModTime().UnixNano(), fi.Size())
		return info, nil
	}

	info.ContentType = meta.ContentType
	info.ETag = meta.ETag
	return info, nil
}

func (s *FileStore) readMeta(path string) (*objectMeta, error) {
	data, err := os.ReadFile(path + metaSuffix)
	if err != nil {
		return nil, err
	}
	var meta objectMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Get opens an object for reading
func (s *FileStore) Get(ctx context.Context, key string) (*Object, error) {
	info, err := s.Stat(ctx, key)
	if err != nil {
		return nil, err
	}

	path, _ := s.path(key)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Object{ObjectInfo: *info, Body: f}, nil
}

// Delete removes an object and its metadata. Deleting a missing object
// returns ErrNotFound.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if err := os.Remove(path + metaSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
