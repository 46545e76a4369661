package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the service configuration resolved from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// DBProviderConfig is the JSON document handed to the storage provider factory.
	DBProviderConfig string

	RPSLimit float64
	RPSBurst int

	SessionSecret       string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	SessionStore        string
	RedisAddr           string

	KafkaBrokers []string
	KafkaTopic   string

	// CORSAllowedOrigin is "*" or a comma-separated list of origins. Browsers
	// only send the session cookie cross-origin to listed origins; "*" never
	// allows credentials.
	CORSAllowedOrigin string
}

const (
	defaultPort       = "8080"
	defaultCookieName = "studyhub_session"
	defaultKafkaTopic = "studyhub-events"
	defaultSessionTTL = 24 * time.Hour
)

// Load reads .env (when present) and the process environment.
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg := &Config{
		Port:                getEnv("PORT", defaultPort),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DBProviderConfig:    os.Getenv("DB_PROVIDER_CONFIG"),
		RPSLimit:            getFloat(logger, "RPS_LIMIT", 10),
		RPSBurst:            getInt(logger, "RPS_BURST", 20),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		SessionTTL:          getDuration(logger, "SESSION_TTL", defaultSessionTTL),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", defaultCookieName),
		SessionCookieSecure: getBool(logger, "SESSION_COOKIE_SECURE", false),
		SessionStore:        strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", defaultKafkaTopic),
		CORSAllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		logger.Warn("SESSION_SECRET not set, generated an ephemeral secret; sessions will not survive restarts")
	}

	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("session_store", cfg.SessionStore),
		zap.Int("kafka_brokers", len(cfg.KafkaBrokers)),
	)
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(logger *zap.Logger, key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer in environment, using default", zap.String("key", key), zap.String("value", raw), zap.Int("default", fallback))
		return fallback
	}
	return v
}

func getFloat(logger *zap.Logger, key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("invalid number in environment, using default", zap.String("key", key), zap.String("value", raw), zap.Float64("default", fallback))
		return fallback
	}
	return v
}

func getBool(logger *zap.Logger, key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("invalid boolean in environment, using default", zap.String("key", key), zap.String("value", raw), zap.Bool("default", fallback))
		return fallback
	}
	return v
}

func getDuration(logger *zap.Logger, key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		logger.Warn("invalid duration in environment, using default", zap.String("key", key), zap.String("value", raw), zap.Duration("default", fallback))
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
