package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// MinSessionSecretLength is the minimum accepted length of SESSION_SECRET.
const MinSessionSecretLength = 32

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Mail      MailConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// PublicBaseURL prefixes relative image URLs in public responses.
	PublicBaseURL string
	AllowedOrigin string
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the socket address is the client IP.
	TrustedProxies []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// StorageConfig holds object store settings for uploaded images
type StorageConfig struct {
	UploadDir     string
	MaxUploadSize int64 // in bytes
}

// MailConfig holds the transactional email provider settings.
// An empty ResendAPIKey puts the contact relay in development mode.
type MailConfig struct {
	ResendAPIKey string
	Endpoint     string
	From         string
	To           string
	Timeout      time.Duration
	MaxRetries   int
	RetryBase    time.Duration
}

// AuthConfig holds the admin credentials and session settings
type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string
	SessionSecret     string
	SessionMaxAge     time.Duration
	CookieSecure      bool
}

// RateLimitConfig holds per-IP limits for the public write endpoints
type RateLimitConfig struct {
	ContactRPS   float64
	ContactBurst int
	LoginRPS     float64
	LoginBurst   int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "https://mvvem-web.pages.dev"),
			AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
			TrustedProxies:  getListEnv("TRUSTED_PROXIES"),
		},
		Database: loadDatabase(),
		Storage: StorageConfig{
			UploadDir:     getEnv("UPLOAD_DIR", "./data/objects"),
			MaxUploadSize: getInt64Env("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
		},
		Mail: MailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			Endpoint:     getEnv("RESEND_ENDPOINT", "https://api.resend.com/emails"),
			From:         getEnv("CONTACT_FROM", "Ma Ville Verte <onboarding@resend.dev>"),
			To:           getEnv("CONTACT_TO", "mavilleverte@proton.me"),
			Timeout:      getDurationEnv("MAIL_TIMEOUT", 10*time.Second),
			MaxRetries:   getIntEnv("MAIL_MAX_RETRIES", 3),
			RetryBase:    getDurationEnv("MAIL_RETRY_BASE", 200*time.Millisecond),
		},
		Auth: AuthConfig{
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			SessionSecret:     getEnv("SESSION_SECRET", ""),
			SessionMaxAge:     getDurationEnv("SESSION_MAX_AGE", 12*time.Hour),
			CookieSecure:      getBoolEnv("COOKIE_SECURE", true),
		},
		RateLimit: RateLimitConfig{
			ContactRPS:   getFloatEnv("CONTACT_RATE_RPS", 0.05),
			ContactBurst: getIntEnv("CONTACT_RATE_BURST", 3),
			LoginRPS:     getFloatEnv("LOGIN_RATE_RPS", 0.1),
			LoginBurst:   getIntEnv("LOGIN_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database section. Used by tooling that must
// not require the HTTP server secrets.
func LoadDatabase() (*DatabaseConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	db := loadDatabase()
	if err := db.Validate(); err != nil {
		return nil, err
	}
	return &db, nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", "postgres"),
		Name:         getEnv("DB_NAME", "mavilleverte"),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
		MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	for _, proxy := range c.Server.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %q is neither an IP nor a CIDR", proxy)
			}
		}
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.Mail.MaxRetries < 0 {
		return fmt.Errorf("MAIL_MAX_RETRIES must not be negative, got %d", c.Mail.MaxRetries)
	}
	if len(c.Auth.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes long, got %d",
			MinSessionSecretLength, len(c.Auth.SessionSecret))
	}
	if c.Auth.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required (generate one with: mvvctl hash-password)")
	}
	if _, err := bcrypt.Cost([]byte(c.Auth.AdminPasswordHash)); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
	}
	return nil
}

// Validate checks the database section
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MailEnabled reports whether contact messages are relayed to the provider.
func (c *Config) MailEnabled() bool {
	return c.Mail.ResendAPIKey != ""
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blank entries
func getListEnv(key string) []string {
	var list []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
