// Package config loads the application configuration from the environment.
//
// A .env file is loaded if present (local development); in production the
// variables come from the process environment. Missing optional values get
// defaults here so the rest of the code never reads os.Getenv directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dmcervs/donatec/internal/validation"
)

type Config struct {
	// Application
	AppEnv string // "development" or "production"
	Port   int
	DBPath string

	// Frontend integration
	FrontendURL    string
	AllowedOrigins []string

	// Security
	JWTSecret           string
	InstitutionalDomain string
	AdminEmail          string // may run the delete-all maintenance primitive

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Email
	ResendAPIKey string
	EmailFrom    string

	// AI description helper
	GeminiAPIKey string
}

// Load reads the environment (and an optional .env file) into a Config.
//
// JWT_SECRET is the only hard requirement: without it no token can be
// issued or verified, so the server refuses to start.
func Load() (*Config, error) {
	// Ignore the error: a missing .env just means plain env vars.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                8080,
		DBPath:              getEnv("DB_PATH", "data/donatec.db"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		InstitutionalDomain: getEnv("INSTITUTIONAL_DOMAIN", validation.DefaultDomain),
		AdminEmail:          validation.NormalizeEmail(os.Getenv("ADMIN_EMAIL")),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:   os.Getenv("GOOGLE_CALLBACK_URL"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		EmailFrom:           getEnv("EMAIL_FROM", "Donatec <no-reply@donatec.mx>"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set")
	}

	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}

	origins := getEnv("ALLOWED_ORIGINS", cfg.FrontendURL)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in development mode. Dev mode logs
// emails instead of sending them.
func (c *Config) IsDev() bool {
	return c.AppEnv != "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
