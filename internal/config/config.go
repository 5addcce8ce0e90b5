package config

import (
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultDatabaseURL   = "cinespot.db"
	defaultPublicBaseURL = "http://localhost:8080"
	defaultUploadDir     = "./uploads"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "24h"
	defaultTMDBBaseURL   = "https://api.themoviedb.org/3"
)

// Config is the full runtime configuration, filled from the environment.
type Config struct {
	Port        string
	DatabaseURL string

	// PublicBaseURL prefixes relative image paths in API responses.
	PublicBaseURL string
	UploadDir     string

	JWTSecret string
	JWTTTL    time.Duration

	// Bootstrap admin account, created on startup when both are set.
	AdminEmail    string
	AdminPassword string

	TMDBBaseURL string
	TMDBAPIKey  string

	// Optional Meilisearch full-text index. Empty host disables it.
	MeiliHost   string
	MeiliAPIKey string
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", defaultPort),
		DatabaseURL:   getEnv("DATABASE_URL", defaultDatabaseURL),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL), "/"),
		UploadDir:     getEnv("UPLOAD_DIR", defaultUploadDir),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		JWTTTL:        getDuration("JWT_TTL", defaultJWTTTL),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", defaultTMDBBaseURL),
		TMDBAPIKey:    os.Getenv("TMDB_API_KEY"),
		MeiliHost:     os.Getenv("MEILI_HOST"),
		MeiliAPIKey:   os.Getenv("MEILI_API_KEY"),
	}

	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("WARNING: JWT_SECRET is not set, using insecure default")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %s", key, raw, fallback)
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
