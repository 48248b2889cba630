package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it (godotenv does not override existing vars).
//
// Recognized variables:
//
//	LISTEN_ADDR                 HTTP bind address
//	DATABASE_DSN                PostgreSQL DSN
//	JWT_SECRET                  HMAC signing key
//	ACCESS_TOKEN_MINUTES_TTL    access-token lifetime, minutes
//	REFRESH_TOKEN_DAYS_TTL      refresh-token lifetime, days
//	COOKIE_DOMAIN               refresh cookie Domain attribute
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_MINUTES_TTL"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_DAYS_TTL"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			config.RefreshTokenValidityDuration = time.Duration(days) * 24 * time.Hour
		}
	}
	if v := os.Getenv("COOKIE_DOMAIN"); v != "" {
		config.CookieDomain = v
	}
}
