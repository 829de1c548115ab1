package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	msgImageNotFound   = "Image non trouvée"
	defaultImageType   = "image/jpeg"
	uploadCacheControl = "public, max-age=31536000"
	multipartOverhead  = 1 << 20
)

// UploadHandler handles image upload and delivery
type UploadHandler struct {
	services *service.Services
	maxSize  int64
	log      zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(services *service.Services, maxSize int64, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		services: services,
		maxSize:  maxSize,
		log:      log.With().Str("handler", "upload").Logger(),
	}
}

// Upload handles POST /api/upload (multipart field "file")
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// Only the reader limit is known here, not the payload size
			errs := validation.ValidateImageSize(tooLarge.Limit, h.maxSize)
			errs[0].Value = nil
			respondError(c, h.log, errs, msgImageNotFound)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.MsgNoFile})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.log, err, msgImageNotFound)
		return
	}
	defer f.Close()

	res, err := h.services.Upload.Upload(c.Request.Context(), &service.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, h.log, err, msgImageNotFound)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// Serve handles GET /uploads/*path
func (h *UploadHandler) Serve(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("path"), "/")

	obj, err := h.services.Upload.Open(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.log, err, msgImageNotFound)
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", uploadCacheControl)
	if obj.ETag != "" {
		c.Header("ETag", obj.ETag)
		if match := c.GetHeader("If-None-Match"); match != "" && etagMatches(match, obj.ETag) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = defaultImageType
	}
	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, nil)
}

// etagMatches reports whether an If-None-Match header lists etag
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
