package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/mailer"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/mavilleverte/mvv-api/internal/validation"
	"github.com/rs/zerolog"
)

const msgSendFailed = "Erreur lors de l'envoi de l'email"

// ContactHandler relays the public contact form
type ContactHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(services *service.Services, log zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		services: services,
		log:      log.With().Str("handler", "contact").Logger(),
	}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req models.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.services.Contact.Submit(c.Request.Context(), &req)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error()})
			return
		}

		var perr *mailer.ProviderError
		if errors.As(err, &perr) {
			h.log.Error().Err(err).Int("provider_status", perr.StatusCode).Msg("Contact relay rejected by provider")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgSendFailed, "details": providerDetails(perr)})
			return
		}
		respondError(c, h.log, err, msgServerError)
		return
	}

	c.JSON(http.StatusOK, res)
}

// providerDetails returns the provider's JSON body, or the raw text as a
// JSON string when it is not valid JSON.
func providerDetails(perr *mailer.ProviderError) interface{} {
	if json.Valid(perr.Body) {
		return json.RawMessage(perr.Body)
	}
	return string(perr.Body)
}
