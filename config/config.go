package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type EmailConfig struct {
	Provider     string // "resend" or "smtp"
	From         string
	AppBaseURL   string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	JWTSecret     string
	JWTIssuer     string
	AuthTokenTTL  time.Duration
	ResetTokenTTL time.Duration
	ResendWindow  time.Duration
	Email         EmailConfig
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("error load env %s", err)
	}

	return Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     envOr("JWT_ISSUER", "ecommerce"),
		AuthTokenTTL:  envDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		ResetTokenTTL: envDuration("RESET_TOKEN_TTL", 30*time.Minute),
		ResendWindow:  envDuration("VERIFICATION_RESEND_WINDOW", time.Hour),
		Email: EmailConfig{
			Provider:     envOr("EMAIL_PROVIDER", "smtp"),
			From:         os.Getenv("EMAIL_FROM"),
			AppBaseURL:   os.Getenv("APP_BASE_URL"),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			SMTPHost:     envOr("SMTP_HOST", "localhost"),
			SMTPPort:     envInt("SMTP_PORT", 1025),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
	}
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s %q, using default", key, value)
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s %q, using default", key, value)
		return fallback
	}
	return parsed
}
