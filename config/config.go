// Package config loads process configuration for the payroll server from a
// .env file and the environment. Payroll rules (tax bands, rates, shift) are
// not process configuration: they live in the store and the factory documents.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       int
	DBPath     string
	ConfigFile string // optional JSON/YAML payroll configuration to seed
	LogLevel   string
	Env        string
	Workers    int
}

// Load reads .env (a missing file is fine) and then the PAYROLL_* variables.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PAYROLL_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_PORT: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKERS", "4"))
	if err != nil || workers <= 0 {
		return nil, fmt.Errorf("invalid PAYROLL_WORKERS: %q", os.Getenv("PAYROLL_WORKERS"))
	}

	return &Config{
		Port:       port,
		DBPath:     getEnv("PAYROLL_DB", "payroll.db"),
		ConfigFile: getEnv("PAYROLL_CONFIG", ""),
		LogLevel:   getEnv("PAYROLL_LOG_LEVEL", "info"),
		Env:        getEnv("PAYROLL_ENV", "development"),
		Workers:    workers,
	}, nil
}

// SlogLevel maps LogLevel onto slog. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether logs should be concise.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
