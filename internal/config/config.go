package config

import (
	"log"
	"os"
	"time"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	DatabaseURL         string
	RedisURL            string
	Port                string
	Env                 string
	LogLevel            string
	LogFormat           string
	SessionSecret       string
	TokenEncryptionKey  string
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleCallbackURL   string
	KakaoClientID       string
	KakaoClientSecret   string
	KakaoCallbackURL    string
	OpenAIAPIKey        string
	NotifyWebhookURL    string
	NotifyWebhookSecret string
	Timezone            string
	SweepSchedule       string
	SeedDevData         bool
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		Port:                getEnvWithDefault("PORT", "8080"),
		Env:                 getEnvWithDefault("ENV", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvWithDefault("LOG_FORMAT", "text"),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		TokenEncryptionKey:  os.Getenv("TOKEN_ENCRYPTION_KEY"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:   os.Getenv("GOOGLE_CALLBACK_URL"),
		KakaoClientID:       os.Getenv("KAKAO_CLIENT_ID"),
		KakaoClientSecret:   os.Getenv("KAKAO_CLIENT_SECRET"),
		KakaoCallbackURL:    os.Getenv("KAKAO_CALLBACK_URL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		NotifyWebhookURL:    os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookSecret: os.Getenv("NOTIFY_WEBHOOK_SECRET"),
		Timezone:            getEnvWithDefault("TIMEZONE", "Asia/Seoul"),
		SweepSchedule:       getEnvWithDefault("SWEEP_SCHEDULE", "* * * * *"),
		SeedDevData:         os.Getenv("SEED_DEV_DATA") == "true",
	}

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	return cfg
}

// Location resolves the configured fixed timezone. Falls back to UTC so a bad
// TIMEZONE value never takes the service down.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("WARNING: invalid TIMEZONE %q, falling back to UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
