package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TEST_ENVIRONMENT", "")
	t.Setenv("REPORT_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 5*time.Second, cfg.ReportTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://ci@db.lab/ddn_tests?sslmode=disable")
	t.Setenv("TEST_ENVIRONMENT", "staging")
	t.Setenv("REPORT_TIMEOUT", "2s")
	t.Setenv("REDIS_ADDR", "redis.lab:6379")
	t.Setenv("OTLP_ENDPOINT", "otel.lab:4317")
	t.Setenv("OTLP_INSECURE", "true")

	cfg := Load()
	assert.Equal(t, "postgres://ci@db.lab/ddn_tests?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 2*time.Second, cfg.ReportTimeout)
	assert.Equal(t, "redis.lab:6379", cfg.RedisAddr)
	assert.Equal(t, "otel.lab:4317", cfg.OTLPEndpoint)
	assert.True(t, cfg.OTLPInsecure)
}

func TestLoadIgnoresBadTimeout(t *testing.T) {
	t.Setenv("REPORT_TIMEOUT", "soon")
	assert.Equal(t, 5*time.Second, Load().ReportTimeout)
}

func TestLoadEndpointsDefaults(t *testing.T) {
	os.Unsetenv("DDN_EXASCALER_ENDPOINT")
	eps := LoadEndpoints()
	assert.Equal(t, "http://exascaler.ddn.local", eps.EXAScaler)
	assert.Equal(t, "http://s3.exascaler.ddn.local", eps.S3)
}

func TestLoadEndpointProfile(t *testing.T) {
	dir := t.TempDir()
	profile := []byte("exascaler: http://exa.lab9.ddn.local\ns3: http://s3.lab9.ddn.local\napi_key: k\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lab9.yaml"), profile, 0o600))

	eps, err := LoadEndpointProfile(dir, "LAB9")
	require.NoError(t, err)
	assert.Equal(t, "http://exa.lab9.ddn.local", eps.EXAScaler)
	assert.Equal(t, "http://s3.lab9.ddn.local", eps.S3)
	// Unset profile fields keep the env-derived defaults.
	assert.Equal(t, "http://emf.ddn.local", eps.EMF)
}

func TestLoadEndpointProfileMissing(t *testing.T) {
	_, err := LoadEndpointProfile(t.TempDir(), "nope")
	assert.Error(t, err)
}
