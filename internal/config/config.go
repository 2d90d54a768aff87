// Package config содержит логику чтения конфигурации сервиса зарядных станций.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress  = "localhost:8080"
	defaultAuthSecret  = "evolve-secret"
	defaultCORSOrigins = "http://localhost:5173"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress       string        `env:"RUN_ADDRESS"`
	DatabaseURI      string        `env:"DATABASE_URI"`
	SimulatedLatency time.Duration `env:"SIMULATED_LATENCY"`
	AuthSecret       string        `env:"AUTH_SECRET"`
	CORSOrigins      []string      `env:"CORS_ORIGINS" envSeparator:","`
	MetricsAddress   string        `env:"METRICS_ADDRESS"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envLatency := cfg.SimulatedLatency
	envAuthSecret := cfg.AuthSecret
	envCORSOrigins := cfg.CORSOrigins
	envMetricsAddress := cfg.MetricsAddress

	var corsOrigins string

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory storage if empty")
	flag.DurationVar(&cfg.SimulatedLatency, "l", 0, "simulated latency before every operation")
	flag.StringVar(&cfg.AuthSecret, "s", defaultAuthSecret, "secret for signing session cookies")
	flag.StringVar(&corsOrigins, "c", defaultCORSOrigins, "comma-separated list of allowed CORS origins")
	flag.StringVar(&cfg.MetricsAddress, "m", "", "address for a separate metrics server")

	flag.Parse()

	cfg.CORSOrigins = splitList(corsOrigins)

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envLatency != 0 {
		cfg.SimulatedLatency = envLatency
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if len(envCORSOrigins) > 0 {
		cfg.CORSOrigins = envCORSOrigins
	}
	if envMetricsAddress != "" {
		cfg.MetricsAddress = envMetricsAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.SimulatedLatency < 0 {
		return nil, fmt.Errorf("simulated latency must not be negative: %s", cfg.SimulatedLatency)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
