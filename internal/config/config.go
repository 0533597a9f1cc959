// Package config loads the settings of the forwarded-echo server from the
// environment. The trust policy itself is read by forwarded.FromEnv.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	ListenAddr      string
	LogLevel        slog.Level
	AllowedOrigins  []string // CORS origins for browser callers; empty disables CORS headers
	MetricsPath     string
	ShutdownTimeout time.Duration
}

// Load reads the configuration through getenv, which has the signature of
// os.Getenv. A nil getenv uses os.Getenv.
func Load(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(getenv, "LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv(getenv, "SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0, got %s", timeout)
	}

	metricsPath := getEnv(getenv, "METRICS_PATH", "/metrics")
	if !strings.HasPrefix(metricsPath, "/") {
		return nil, fmt.Errorf("METRICS_PATH must start with '/', got %q", metricsPath)
	}

	return &Config{
		ListenAddr:      getEnv(getenv, "LISTEN_ADDR", ":8080"),
		LogLevel:        level,
		AllowedOrigins:  parseOrigins(getenv("ALLOWED_ORIGINS")),
		MetricsPath:     metricsPath,
		ShutdownTimeout: timeout,
	}, nil
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := strings.TrimSpace(getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
