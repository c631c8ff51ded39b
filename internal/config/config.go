package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL      string
	HTTPPort         string
	LogLevel         string
	LogFormat        string
	JWTSecret        string
	TokenTTL         time.Duration
	PendingActionTTL time.Duration
}

var AppConfig Config

// LoadConfig reads .env (if present) and the process environment into AppConfig.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DATABASE_URL", "finchat.db")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("PENDING_ACTION_TTL", 10*time.Minute)

	cfg := Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		HTTPPort:         v.GetString("HTTP_PORT"),
		LogLevel:         strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		PendingActionTTL: v.GetDuration("PENDING_ACTION_TTL"),
	}

	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.PendingActionTTL <= 0 {
		return fmt.Errorf("PENDING_ACTION_TTL must be positive, got %s", cfg.PendingActionTTL)
	}

	AppConfig = cfg
	return nil
}

// IsPostgres reports whether DatabaseURL points at a Postgres server rather than a SQLite file.
func (c Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}
