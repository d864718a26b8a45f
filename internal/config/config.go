package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port   string
	DBPath string

	EbayClientID     string
	EbayClientSecret string
	EbaySandbox      bool

	OpenAIAPIKey string
	GeminiAPIKey string

	CacheTTL          time.Duration
	RateLimitCapacity int
	RateLimitInterval time.Duration
	EbayMinInterval   time.Duration
}

// Load reads configuration from the environment, after loading an optional
// .env file. Errors from the .env load are ignored since the file may not
// exist.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:   getenv("PORT", "8080"),
		DBPath: getenv("DB_PATH", "bluberry.db"),

		EbayClientID:     os.Getenv("EBAY_CLIENT_ID"),
		EbayClientSecret: os.Getenv("EBAY_CLIENT_SECRET"),
		EbaySandbox:      getenvBool("EBAY_SANDBOX", false),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		CacheTTL:          getenvDuration("PRICE_CACHE_TTL", 24*time.Hour),
		RateLimitCapacity: getenvInt("RATE_LIMIT_CAPACITY", 10),
		RateLimitInterval: getenvDuration("RATE_LIMIT_INTERVAL", time.Minute),
		EbayMinInterval:   getenvDuration("EBAY_MIN_INTERVAL", 10*time.Second),
	}

	log.Info().
		Str("port", cfg.Port).
		Str("dbPath", cfg.DBPath).
		Bool("ebayConfigured", cfg.EbayClientID != "").
		Bool("ebaySandbox", cfg.EbaySandbox).
		Bool("openaiConfigured", cfg.OpenAIAPIKey != "").
		Bool("geminiConfigured", cfg.GeminiAPIKey != "").
		Msg("configuration loaded")

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean in environment, using default")
		return fallback
	}
	return b
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration in environment, using default")
		return fallback
	}
	return d
}
