package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/mavilleverte/mvv-api/internal/config"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	sessionName          = "mvv_admin"
	sessionAuthenticated = "authenticated"
	sessionLogin         = "login"

	msgBadCredentials = "Identifiants incorrects"
	msgLoggedIn       = "Connexion réussie"
	msgLoggedOut      = "Déconnexion réussie"
)

// AuthHandler handles the admin session endpoints
type AuthHandler struct {
	services *service.Services
	store    *sessions.CookieStore
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler with a signed cookie store
func NewAuthHandler(services *service.Services, cfg config.AuthConfig, log zerolog.Logger) *AuthHandler {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.CookieSecure,
	}

	return &AuthHandler{
		services: services,
		store:    store,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

func (h *AuthHandler) authenticated(c *gin.Context) bool {
	sess, err := h.store.Get(c.Request, sessionName)
	if err != nil {
		return false
	}
	auth, ok := sess.Values[sessionAuthenticated].(bool)
	return ok && auth
}

// RequireAdmin rejects requests without an authenticated admin session
func (h *AuthHandler) RequireAdmin(c *gin.Context) {
	if !h.authenticated(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthenticated})
		return
	}
	c.Next()
}

// Login handles POST /api/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.services.Auth.Login(c.Request.Context(), req.Login, req.Password); err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgBadCredentials})
			return
		}
		respondError(c, h.log, err, msgBadCredentials)
		return
	}

	// A stale or forged cookie yields an error alongside a fresh session,
	// which is what a login should start from anyway.
	sess, _ := h.store.Get(c.Request, sessionName)
	sess.Values[sessionAuthenticated] = true
	sess.Values[sessionLogin] = req.Login
	if err := sess.Save(c.Request, c.Writer); err != nil {
		respondError(c, h.log, err, msgBadCredentials)
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": true, "message": msgLoggedIn})
}

// Logout handles POST /api/admin/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, _ := h.store.Get(c.Request, sessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request, c.Writer); err != nil {
		respondError(c, h.log, err, msgUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": false, "message": msgLoggedOut})
}

// Session handles GET /api/admin/session
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": h.authenticated(c)})
}
