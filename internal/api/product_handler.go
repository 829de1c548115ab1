package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	msgProductNotFound = "Produit non trouvé"
	msgProductCreated  = "Produit créé"
	msgProductUpdated  = "Produit mis à jour"
	msgProductDeleted  = "Produit supprimé"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(services *service.Services, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		services: services,
		log:      log.With().Str("handler", "products").Logger(),
	}
}

// List handles GET /api/admin/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.services.Product.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get handles GET /api/admin/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.services.Product.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, withImages(p))
}

// Create handles POST /api/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.services.Product.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": p.ID, "message": msgProductCreated})
}

// Update handles PUT /api/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	if _, err := h.services.Product.Update(c.Request.Context(), c.Param("id"), &in); err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgProductUpdated})
}

// Delete handles DELETE /api/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.services.Product.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgProductDeleted})
}

// ListPublished handles GET /api/products
func (h *ProductHandler) ListPublished(c *gin.Context) {
	products, err := h.services.Product.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetPublished handles GET /api/products/:id
func (h *ProductHandler) GetPublished(c *gin.Context) {
	p, err := h.services.Product.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, msgProductNotFound)
		return
	}
	c.JSON(http.StatusOK, withImages(p))
}

// productDetail is a single-product read. Images is always an array there,
// unlike list rows which omit it.
type productDetail struct {
	*models.Product
	Images []models.ProductImage `json:"images"`
}

func withImages(p *models.Product) productDetail {
	images := p.Images
	if images == nil {
		images = []models.ProductImage{}
	}
	return productDetail{Product: p, Images: images}
}
