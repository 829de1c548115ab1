package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /api/admin/export?resource=...&format=...
// Streams the export directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	resources := strings.Join(service.ExportResources, ", ")

	resource := c.Query("resource")
	if resource == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource parameter is required (" + resources + ")"})
		return
	}
	if !isExportResource(resource) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be one of: " + resources})
		return
	}

	format := c.DefaultQuery("format", "ndjson")
	if format != "ndjson" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json"})
		return
	}

	h.log.Info().
		Str("resource", resource).
		Str("format", format).
		Msg("Starting streaming export")

	err := h.services.Export.StreamResource(c.Request.Context(), c.Writer, resource, format)
	if err != nil {
		if errors.Is(err, service.ErrUnknownResource) || errors.Is(err, service.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
	}
}

func isExportResource(resource string) bool {
	for _, r := range service.ExportResources {
		if r == resource {
			return true
		}
	}
	return false
}
