package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything main needs to wire the service. Values come from
// the environment so deployments stay twelve-factor; FromEnv keeps main lean.
type Config struct {
	Addr string

	// Remote reasoning oracle. An empty APIKey means fallback-only mode.
	OracleEndpoint string
	OracleAPIKey   string
	OracleTimeout  time.Duration

	// Circuit breaker for the oracle client.
	BreakerMaxFailures uint32
	BreakerCooldown    time.Duration

	// Classification policy.
	SLABuffer       float64 // AT_RISK buffer as a fraction of the SLA target
	ClampConfidence bool    // clamp out-of-range confidence instead of rejecting

	// Verdict cache (redis). Empty addr disables caching.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Audit store. Empty DSN means the in-memory store.
	PostgresDSN string

	// Decision fan-out (kafka). Empty brokers disables the sink.
	KafkaBrokers []string
	KafkaTopic   string

	// Bearer auth for decision-log queries.
	JWTSigningKey string

	// Case database (JSON file, read-only).
	CaseFile string
}

// FromEnv builds a Config from environment variables, applying defaults that
// match a local development setup.
func FromEnv() Config {
	cfg := Config{
		Addr:               getenv("CASETRAIL_ADDR", ":8080"),
		OracleEndpoint:     getenv("ORACLE_ENDPOINT", ""),
		OracleAPIKey:       getenv("ORACLE_API_KEY", ""),
		OracleTimeout:      getduration("ORACLE_TIMEOUT", 8*time.Second),
		BreakerMaxFailures: uint32(getint("ORACLE_BREAKER_FAILURES", 5)),
		BreakerCooldown:    getduration("ORACLE_BREAKER_COOLDOWN", 30*time.Second),
		SLABuffer:          getfloat("SLA_BUFFER", 0.20),
		ClampConfidence:    getbool("CLAMP_CONFIDENCE", true),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		CacheTTL:           getduration("VERDICT_CACHE_TTL", 15*time.Minute),
		PostgresDSN:        getenv("POSTGRES_DSN", ""),
		KafkaTopic:         getenv("KAFKA_DECISIONS_TOPIC", "casetrail.decisions"),
		JWTSigningKey:      getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		CaseFile:           getenv("CASE_FILE", "database/cases.json"),
	}
	if brokers := getenv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

// FallbackOnly reports whether the remote oracle is configured at all.
func (c Config) FallbackOnly() bool {
	return c.OracleAPIKey == "" || c.OracleEndpoint == ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getfloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return fallback
}
