package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	RedisURL string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	PerspectiveAPIKey string
	ToxicityThreshold float64
	ModerationTimeout time.Duration

	SlackReportWebhook string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	MeiliSearchHost string
	MeiliMasterKey  string

	RateLimitPost time.Duration
	VerifyCodeTTL time.Duration

	// Location defines the calendar day used for daily check-in dedup.
	Location *time.Location
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getEnv("DB_NAME", "needu"),
		DBPort: getEnv("DB_PORT", "5432"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		PerspectiveAPIKey: os.Getenv("PERSPECTIVE_API_KEY"),

		SlackReportWebhook: os.Getenv("SLACK_WEBHOOK_REPORT"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getEnv("SMTP_FROM", "needu"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.ModerationTimeout, err = parseDuration(getEnv("MODERATION_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid MODERATION_TIMEOUT: %w", err)
	}
	if cfg.RateLimitPost, err = parseDuration(getEnv("RATE_LIMIT_POST", "15s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}
	if cfg.VerifyCodeTTL, err = parseDuration(getEnv("VERIFY_CODE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid VERIFY_CODE_TTL: %w", err)
	}

	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.ToxicityThreshold, err = strconv.ParseFloat(getEnv("TOXICITY_THRESHOLD", "0.35"), 64); err != nil {
		return nil, fmt.Errorf("invalid TOXICITY_THRESHOLD: %w", err)
	}

	if cfg.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Asia/Seoul")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
