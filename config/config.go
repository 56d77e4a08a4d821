package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Telegram Bot API
	TelegramToken string

	// Deriv feed credentials
	DerivAPIToken string
	DerivAppID    string

	// Supported pairs (comma-separated stream symbols, e.g. "frxEURUSD,frxGBPUSD")
	SupportedPairs string

	// Indicator / alert tuning
	HistoryLength   int
	IndicatorPeriod int
	SignalThreshold float64

	// Infrastructure
	MetricsAddr     string
	SQLitePath      string
	RedisAddr       string // empty disables the Redis alert stream
	RedisPassword   string
	AlertWebhookURL string // empty disables the webhook sink
	AssetsDir       string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env file")
	}

	return &Config{
		TelegramToken: mustEnv("TELEGRAM_TOKEN"),
		DerivAPIToken: mustEnv("DERIV_API_TOKEN"),
		DerivAppID:    getEnv("DERIV_APP_ID", "1089"),

		SupportedPairs: getEnv("SUPPORTED_PAIRS", "frxEURUSD,frxGBPUSD"),

		HistoryLength:   getEnvInt("PRICE_HISTORY_LENGTH", 50),
		IndicatorPeriod: getEnvInt("INDICATOR_PERIOD", 14),
		SignalThreshold: getEnvFloat("SIGNAL_THRESHOLD", 0.0005),

		MetricsAddr:     getEnv("METRICS_ADDR", ":9090"),
		SQLitePath:      getEnv("SQLITE_PATH", "data/alerts.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		AssetsDir:       getEnv("ASSETS_DIR", "assets"),
	}
}

// ParsePairs parses the SupportedPairs string into a list of stream symbols.
// Blank entries are skipped.
func (c *Config) ParsePairs() []string {
	parts := strings.Split(c.SupportedPairs, ",")
	pairs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring invalid %s value: %q", key, v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("[config] ignoring invalid %s value: %q", key, v)
		return fallback
	}
	return f
}
