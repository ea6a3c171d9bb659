package config

import (
	"os"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Empty DatabaseURL/RedisURL mean "use the in-memory stores",
// which keeps local development and unit tests dependency-free.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	JWTSigningKey string
	SessionTTL    time.Duration

	SMTP SMTP
}

// SMTP holds outbound mail settings. FromAddr doubles as the auth identity.
type SMTP struct {
	Host     string
	Port     string
	FromAddr string
	Password string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("OLIVECRM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	sessionTTL := 12 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			sessionTTL = d
		}
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSigningKey: jwtSigningKey,
		SessionTTL:    sessionTTL,
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envOr("SMTP_PORT", "587"),
			FromAddr: os.Getenv("SMTP_FROM"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
