package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	msgServerError     = "Erreur serveur"
	msgInvalidBody     = "Corps de requête invalide"
	msgUnauthenticated = "Non authentifié"
	msgTooManyRequests = "Trop de requêtes, réessayez plus tard"
)

// respondError maps service errors onto the three public error tiers.
// Validation and not-found errors are shown to the client; anything else
// is logged and hidden behind a generic 500.
func respondError(c *gin.Context, log zerolog.Logger, err error, notFound string) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error(), "fields": []validation.ValidationError(verrs)})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
	}
}

// bindJSON decodes the request body and answers 400 on malformed JSON
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return false
	}
	return true
}
