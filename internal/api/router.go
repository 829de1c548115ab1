package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/config"
	"github.com/mavilleverte/mvv-api/internal/models"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/rs/zerolog"
)

const serviceName = "mvv-api"

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. health may be nil.
func NewRouter(services *service.Services, cfg *config.Config, health HealthChecker, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Error().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).
			Msg("Invalid trusted proxies, using the socket address as client IP")
		router.SetTrustedProxies(nil)
	}

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigin))

	// Handlers
	articles := NewContentHandler(services, models.KindArticle, log)
	recommendations := NewContentHandler(services, models.KindRecommendation, log)
	products := NewProductHandler(services, log)
	uploads := NewUploadHandler(services, cfg.Storage.MaxUploadSize, log)
	contact := NewContactHandler(services, log)
	auth := NewAuthHandler(services, cfg.Auth, log)
	exports := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(health))
	router.GET("/metrics", metricsHandler(services, log))

	router.GET("/uploads/*path", uploads.Serve)

	api := router.Group("/api")
	{
		api.POST("/contact",
			rateLimitMiddleware("contact", cfg.RateLimit.ContactRPS, cfg.RateLimit.ContactBurst, log),
			contact.Submit)
		api.POST("/upload", noStore, auth.RequireAdmin, uploads.Upload)

		// Public read endpoints, published rows only
		public := api.Group("", publicCache)
		{
			public.GET("/articles", articles.ListPublished)
			public.GET("/articles/:id", articles.GetPublished)
			public.GET("/recommendations", recommendations.ListPublished)
			public.GET("/recommendations/:id", recommendations.GetPublished)
			public.GET("/products", products.ListPublished)
			public.GET("/products/:id", products.GetPublished)
		}

		admin := api.Group("/admin", noStore)
		{
			admin.POST("/login",
				rateLimitMiddleware("login", cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst, log),
				auth.Login)
			admin.POST("/logout", auth.Logout)
			admin.GET("/session", auth.Session)

			protected := admin.Group("", auth.RequireAdmin)
			{
				for path, h := range map[string]*ContentHandler{
					"/articles":        articles,
					"/recommendations": recommendations,
				} {
					protected.GET(path, h.List)
					protected.POST(path, h.Create)
					protected.GET(path+"/:id", h.Get)
					protected.PUT(path+"/:id", h.Update)
					protected.DELETE(path+"/:id", h.Delete)
				}

				protected.GET("/products", products.List)
				protected.POST("/products", products.Create)
				protected.GET("/products/:id", products.Get)
				protected.PUT("/products/:id", products.Update)
				protected.DELETE("/products/:id", products.Delete)

				protected.GET("/export", exports.StreamExport)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route non trouvée"})
	})

	return router
}

// healthCheck returns the health status
func healthCheck(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.HealthCheck(ctx); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   serviceName,
		})
	}
}

// metricsHandler returns row counts per table. A failed count answers 503
// with the tables that could not be read.
func metricsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		counts := gin.H{}
		var failed []string
		for _, resource := range service.ExportResources {
			n, err := services.Export.GetCount(ctx, resource)
			if err != nil {
				log.Error().Err(err).Str("resource", resource).Msg("Metrics count failed")
				failed = append(failed, resource)
				continue
			}
			counts[resource] = n
		}

		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"database":  counts,
				"failed":    failed,
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": msgServerError,
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS. Credentials are only allowed for an explicit
// origin since browsers refuse them with "*".
func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// publicCache lets browsers and CDNs keep public reads for a minute
func publicCache(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=60")
	c.Next()
}

// noStore keeps admin responses out of every cache
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Next()
}
