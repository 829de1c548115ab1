package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/rs/zerolog"
)

// contentMessages are the user-facing messages of one content kind
type contentMessages struct {
	NotFound string
	Created  string
	Updated  string
	Deleted  string
}

var kindMessages = map[models.Kind]contentMessages{
	models.KindArticle: {
		NotFound: "Article non trouvé",
		Created:  "Article créé",
		Updated:  "Article mis à jour",
		Deleted:  "Article supprimé",
	},
	models.KindRecommendation: {
		NotFound: "Recommandation non trouvée",
		Created:  "Recommandation créée",
		Updated:  "Recommandation mise à jour",
		Deleted:  "Recommandation supprimée",
	},
}

// ContentHandler serves one content kind on both the admin and public APIs
type ContentHandler struct {
	services *service.Services
	kind     models.Kind
	msg      contentMessages
	log      zerolog.Logger
}

// NewContentHandler creates a new ContentHandler for kind
func NewContentHandler(services *service.Services, kind models.Kind, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		services: services,
		kind:     kind,
		msg:      kindMessages[kind],
		log:      log.With().Str("handler", string(kind)).Logger(),
	}
}

// List handles GET /api/admin/{kind}
func (h *ContentHandler) List(c *gin.Context) {
	items, err := h.services.Content.List(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /api/admin/{kind}/:id
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.services.Content.Get(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Create handles POST /api/admin/{kind}
func (h *ContentHandler) Create(c *gin.Context) {
	var in models.ContentInput
	if !bindJSON(c, &in) {
		return
	}

	item, err := h.services.Content.Create(c.Request.Context(), h.kind, &in)
	if err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": item.ID, "message": h.msg.Created})
}

// Update handles PUT /api/admin/{kind}/:id
func (h *ContentHandler) Update(c *gin.Context) {
	var in models.ContentInput
	if !bindJSON(c, &in) {
		return
	}

	if _, err := h.services.Content.Update(c.Request.Context(), h.kind, c.Param("id"), &in); err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.msg.Updated})
}

// Delete handles DELETE /api/admin/{kind}/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.services.Content.Delete(c.Request.Context(), h.kind, c.Param("id")); err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.msg.Deleted})
}

// ListPublished handles GET /api/{kind}
func (h *ContentHandler) ListPublished(c *gin.Context) {
	items, err := h.services.Content.ListPublished(c.Request.Context(), h.kind)
	if err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetPublished handles GET /api/{kind}/:id
func (h *ContentHandler) GetPublished(c *gin.Context) {
	item, err := h.services.Content.GetPublished(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, h.msg.NotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}
