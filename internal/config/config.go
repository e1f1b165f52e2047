package config

import (
	"os"
	"time"
)

// Config carries the process-level settings, read once at startup from the
// environment (a .env file is loaded by main before this runs).
type Config struct {
	Addr          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

func Load() *Config {
	return &Config{
		Addr:          getenv("ADDR", ":8080"),
		PostgresDSN:   getenv("POSTGRES_DSN", "host=localhost user=user password=password dbname=devdialogue port=5432 sslmode=disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getenv("JWT_SECRET", "dev-only-secret"),
		JWTIssuer:     getenv("JWT_ISSUER", "devdialogue"),
		JWTTTL:        getduration("JWT_TTL", 72*time.Hour),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
