// Package config resolves harness configuration from the environment once at
// process start. Business logic never reads env vars directly; it receives
// this struct (or the pieces of it) by injection.
package config

import (
	"os"
	"time"
)

// Config holds reporting and collaborator configuration.
type Config struct {
	// DatabaseURL is the backing-store DSN (postgres:// or a sqlite file
	// path). Required by the reporter; its absence is the one fatal
	// configuration error in the subsystem.
	DatabaseURL string

	// Environment tags every record (e.g. "test", "staging", "prod").
	Environment string

	// ReportTimeout bounds every backing-store call so a reporting outage
	// can never hang a suite.
	ReportTimeout time.Duration

	// RedisAddr enables duplicate-failure suppression when set.
	RedisAddr     string
	RedisPassword string

	// OTLPEndpoint enables telemetry export when set. OTLPInsecure turns off
	// TLS for local collectors.
	OTLPEndpoint string
	OTLPInsecure bool

	LogLevel string
}

// Load reads configuration from environment variables, applying defaults for
// everything except DatabaseURL, which stays empty when unset so the reporter
// can refuse construction.
func Load() *Config {
	environment := os.Getenv("TEST_ENVIRONMENT")
	if environment == "" {
		environment = "test"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	timeout := 5 * time.Second
	if raw := os.Getenv("REPORT_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Environment:   environment,
		ReportTimeout: timeout,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		OTLPEndpoint:  os.Getenv("OTLP_ENDPOINT"),
		OTLPInsecure:  os.Getenv("OTLP_INSECURE") == "true",
		LogLevel:      logLevel,
	}
}
