package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mavilleverte/mvv-api/internal/api"
	"github.com/mavilleverte/mvv-api/internal/config"
	"github.com/mavilleverte/mvv-api/internal/database"
	"github.com/mavilleverte/mvv-api/internal/mailer"
	"github.com/mavilleverte/mvv-api/internal/repository"
	"github.com/mavilleverte/mvv-api/internal/service"
	"github.com/mavilleverte/mvv-api/internal/storage"
	"github.com/mavilleverte/mvv-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Ma Ville Verte API server...")

	if os.Getenv("ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize object store
	store, err := storage.NewFileStore(cfg.Storage.UploadDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object store")
	}

	// Contact relay stays in development mode without a provider key
	var m service.Mailer
	if cfg.MailEnabled() {
		m = mailer.NewResendClient(mailer.Options{
			APIKey:     cfg.Mail.ResendAPIKey,
			Endpoint:   cfg.Mail.Endpoint,
			Timeout:    cfg.Mail.Timeout,
			MaxRetries: uint64(cfg.Mail.MaxRetries),
			RetryBase:  cfg.Mail.RetryBase,
		}, log)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, contact messages will only be logged")
	}

	repos := repository.New(db)
	services := service.NewServices(repos, store, m, cfg, log)
	router := api.NewRouter(services, cfg, db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
