package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/storage"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"
)

const (
	imagePrefix   = "images/"
	publicPrefix  = "/uploads/"
	msgUploadDone = "Image uploadée avec succès"
)

var extRe = regexp.MustCompile(`^[a-z0-9]{1,5}$`)

// UploadFile is one multipart file as received by the handler
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// uploadService is the concrete implementation of UploadService
type uploadService struct {
	store   storage.Store
	maxSize int64
	now     func() time.Time
	log     zerolog.Logger
}

// newUploadService creates a new UploadService
func newUploadService(store storage.Store, maxSize int64, log zerolog.Logger) *uploadService {
	return &uploadService{
		store:   store,
		maxSize: maxSize,
		now:     time.Now,
		log:     log.With().Str("service", "upload").Logger(),
	}
}

// Upload validates the file and stores it under a fresh key. Type and
// declared size are checked before anything is read or written.
func (s *uploadService) Upload(ctx context.Context, f *UploadFile) (*models.UploadResult, error) {
	contentType := mediaType(f.ContentType)
	sniff := contentType == "" || contentType == "application/octet-stream"

	if !sniff {
		if err := validation.ValidateImageType(contentType).OrNil(); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateImageSize(f.Size, s.maxSize).OrNil(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(f.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := validation.ValidateImageSize(int64(len(data)), s.maxSize).OrNil(); err != nil {
		return nil, err
	}

	if sniff {
		contentType = mediaType(mimetype.Detect(data).String())
		if err := validation.ValidateImageType(contentType).OrNil(); err != nil {
			return nil, err
		}
	}

	key := s.imageKey(f.Filename, contentType)
	info, err := s.store.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	result := &models.UploadResult{
		URL:         publicPrefix + strings.TrimPrefix(key, imagePrefix),
		Key:         key,
		ContentType: contentType,
		Size:        info.Size,
		Message:     msgUploadDone,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		result.Width = cfg.Width
		result.Height = cfg.Height
	} else {
		s.log.Debug().Err(err).Str("key", key).Msg("Image header not decodable")
	}

	s.log.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int64("size", info.Size).
		Msg("Image uploaded")

	return result, nil
}

// imageKey builds images/<millis>_<random>.<ext>. The extension comes from
// the original filename and falls back to the one matching the type.
func (s *uploadService) imageKey(filename, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !extRe.MatchString(ext) {
		ext = validation.AllowedImageTypes[contentType]
	}
	return fmt.Sprintf("%s%d_%s.%s", imagePrefix, s.now().UnixMilli(), randomSuffix(), ext)
}

// Open returns the stored image served at /uploads/<name>
func (s *uploadService) Open(ctx context.Context, name string) (*storage.Object, error) {
	obj, err := s.store.Get(ctx, imagePrefix+strings.TrimPrefix(name, "/"))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", name, err)
	}
	return obj, nil
}

// mediaType drops parameters and normalizes case
func mediaType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
