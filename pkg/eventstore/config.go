package eventstore

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadConfigFromEnv reads EVENTSTORE_* environment variables into a Config,
// falling back to development-friendly defaults.
func LoadConfigFromEnv() (Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("EVENTSTORE_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid EVENTSTORE_PORT: %w", err)
	}
	maxConns, _ := strconv.Atoi(getEnvOrDefault("EVENTSTORE_MAX_CONNS", "20"))
	minConns, _ := strconv.Atoi(getEnvOrDefault("EVENTSTORE_MIN_CONNS", "2"))

	maxLifetime, err := time.ParseDuration(getEnvOrDefault("EVENTSTORE_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid EVENTSTORE_MAX_CONN_LIFETIME: %w", err)
	}
	maxIdle, err := time.ParseDuration(getEnvOrDefault("EVENTSTORE_MAX_CONN_IDLE_TIME", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid EVENTSTORE_MAX_CONN_IDLE_TIME: %w", err)
	}

	cfg := Config{
		Host:            getEnvOrDefault("EVENTSTORE_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("EVENTSTORE_USER", "rootsignal"),
		Password:        os.Getenv("EVENTSTORE_PASSWORD"),
		Database:        getEnvOrDefault("EVENTSTORE_DB", "rootsignal"),
		SSLMode:         getEnvOrDefault("EVENTSTORE_SSLMODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MaxConnLifetime: maxLifetime,
		MaxConnIdleTime: maxIdle,
	}
	if cfg.Password == "" {
		return Config{}, fmt.Errorf("EVENTSTORE_PASSWORD is required")
	}
	if cfg.MinConns > cfg.MaxConns {
		return Config{}, fmt.Errorf("EVENTSTORE_MIN_CONNS (%d) cannot exceed EVENTSTORE_MAX_CONNS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
