package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	SupabaseURL        string
	SupabaseServiceKey string
	JWTSecret          string
	Port               string
	Environment        string
	AllowedOrigins     []string
	BaseURL            string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CodeSweepInterval time.Duration

	// AllowInsecureBypass skips the 2FA prior-code invalidation step.
	// It can only be true outside production; see NewConfig.
	AllowInsecureBypass bool
}

func NewConfig() *Config {
	allowedOriginsStr := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := []string{"http://localhost:3000"}
	if allowedOriginsStr != "" {
		allowedOrigins = strings.Split(allowedOriginsStr, ",")
	}

	environment := getEnvOrDefault("ENVIRONMENT", "development")

	sweepInterval := time.Hour
	if raw := os.Getenv("CODE_SWEEP_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			sweepInterval = d
		}
	}

	return &Config{
		SupabaseURL:         os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey:  os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Port:                getEnvOrDefault("PORT", "8080"),
		Environment:         environment,
		AllowedOrigins:      allowedOrigins,
		BaseURL:             getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		SMTPHost:            getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUsername:        os.Getenv("SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:            getEnvOrDefault("SMTP_FROM", "no-reply@sevispass.gov.pg"),
		CodeSweepInterval:   sweepInterval,
		AllowInsecureBypass: environment != "production" && os.Getenv("DEV_AUTH_BYPASS") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
