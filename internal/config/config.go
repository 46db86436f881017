package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment
// variables (optionally seeded from a .env file).
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	JWTSecret     string
	TokenLifetime time.Duration

	// ManagerRoles is the set of user statuses granted manager access in
	// addition to admins. Empty means admins only.
	ManagerRoles []string

	SettingsPath string
	KafkaBrokers []string
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	// Best effort; environment variables take precedence anyway.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		ManagerRoles: splitList(getEnv("MANAGER_ROLES", "Moniteur,Bar")),
		SettingsPath: getEnv("SETTINGS_PATH", "settings.json"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
	}

	lifetime := getEnv("TOKEN_LIFETIME", "24h")
	d, err := time.ParseDuration(lifetime)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_LIFETIME %q: %w", lifetime, err)
	}
	cfg.TokenLifetime = d

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
