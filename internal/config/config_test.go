package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "DB_PROVIDER_CONFIG", "RPS_LIMIT", "RPS_BURST",
		"SESSION_SECRET", "SESSION_TTL", "SESSION_COOKIE_NAME", "SESSION_COOKIE_SECURE", "SESSION_STORE",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "CORS_ALLOWED_ORIGIN"} {
		t.Setenv(key, "")
	}

	cfg := Load(zap.NewNop())
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "", cfg.DBProviderConfig)
	require.Equal(t, 10.0, cfg.RPSLimit)
	require.Equal(t, 20, cfg.RPSBurst)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, "studyhub_session", cfg.SessionCookieName)
	require.Equal(t, "memory", cfg.SessionStore)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "studyhub-events", cfg.KafkaTopic)
	require.Len(t, cfg.SessionSecret, 64, "an ephemeral secret should be generated")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("RPS_LIMIT", "2.5")
	t.Setenv("RPS_BURST", "7")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("DB_PROVIDER_CONFIG", `{"db_type":"memory"}`)

	cfg := Load(zap.NewNop())
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, 2.5, cfg.RPSLimit)
	require.Equal(t, 7, cfg.RPSBurst)
	require.Equal(t, "s3cret", cfg.SessionSecret)
	require.Equal(t, 90*time.Minute, cfg.SessionTTL)
	require.True(t, cfg.SessionCookieSecure)
	require.Equal(t, "redis", cfg.SessionStore)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, `{"db_type":"memory"}`, cfg.DBProviderConfig)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RPS_BURST", "many")
	t.Setenv("SESSION_TTL", "-1h")
	t.Setenv("SESSION_COOKIE_SECURE", "maybe")

	cfg := Load(zap.NewNop())
	require.Equal(t, 20, cfg.RPSBurst)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.SessionCookieSecure)
}
