package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 8*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 0.20, cfg.SLABuffer)
	assert.True(t, cfg.ClampConfidence)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "casetrail.decisions", cfg.KafkaTopic)
	assert.Equal(t, "database/cases.json", cfg.CaseFile)
	assert.True(t, cfg.FallbackOnly(), "no oracle credentials means fallback-only")
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CASETRAIL_ADDR", ":9090")
	t.Setenv("ORACLE_ENDPOINT", "https://oracle.example.com/v1/classify")
	t.Setenv("ORACLE_API_KEY", "secret")
	t.Setenv("ORACLE_TIMEOUT", "3s")
	t.Setenv("SLA_BUFFER", "0.25")
	t.Setenv("CLAMP_CONFIDENCE", "false")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 0.25, cfg.SLABuffer)
	assert.False(t, cfg.ClampConfidence)
	assert.False(t, cfg.FallbackOnly())
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestFallbackOnlyNeedsBothValues(t *testing.T) {
	t.Setenv("ORACLE_API_KEY", "secret")

	cfg := FromEnv()
	assert.True(t, cfg.FallbackOnly(), "an API key without an endpoint is not a usable oracle")
}
