package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ServerPort string
	LogLevel   string

	RiotAPIKey     string
	RiotAPIBaseURL string

	DBPath string

	CacheTTL time.Duration

	// ValidateWebhooks gates the synchronous ping sent to a webhook URL
	// before it is registered.
	ValidateWebhooks bool

	RateLimitPerMinute int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RiotAPIKey:         getEnv("RIOT_API_KEY", ""),
		RiotAPIBaseURL:     getEnv("RIOT_API_BASE_URL", "https://americas.api.riotgames.com"),
		DBPath:             getEnv("DB_PATH", "gateway.db"),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		ValidateWebhooks:   getEnvBool("VALIDATE_WEBHOOKS", true),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("db_path", cfg.DBPath).
		Str("riot_base_url", cfg.RiotAPIBaseURL).
		Dur("cache_ttl", cfg.CacheTTL).
		Bool("validate_webhooks", cfg.ValidateWebhooks).
		Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
