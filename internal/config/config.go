package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	HTTP   HTTPConfig
	Tavily TavilyConfig
	Gemini GeminiConfig
	Redis  RedisConfig
	Log    LogConfig
}

type HTTPConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type TavilyConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// MaxRetries bounds transient-failure retries before the gateway
	// degrades to the fallback corpus.
	MaxRetries int
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	RetryDelay  time.Duration
}

// RedisConfig is optional; an empty URL disables the session store and the
// service runs purely on caller-held exclusion state.
type RedisConfig struct {
	URL        string
	SessionTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration from the environment, preferring a local .env
// file when one exists. Provider credentials are mandatory: there is no
// baked-in default key.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}

	tavilyRetries, err := getEnvInt("TAVILY_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	geminiMaxTokens, err := getEnvInt("GEMINI_MAX_TOKENS", 1024)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Port:            port,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Tavily: TavilyConfig{
			APIKey:     os.Getenv("TAVILY_API_KEY"),
			BaseURL:    getEnv("TAVILY_BASE_URL", "https://api.tavily.com"),
			Timeout:    20 * time.Second,
			MaxRetries: tavilyRetries,
		},
		Gemini: GeminiConfig{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout:     45 * time.Second,
			Temperature: 0.7,
			MaxTokens:   geminiMaxTokens,
			MaxRetries:  3,
			RetryDelay:  2 * time.Second,
		},
		Redis: RedisConfig{
			URL:        os.Getenv("REDIS_URL"),
			SessionTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (config *Config) validate() error {
	if config.Tavily.APIKey == "" {
		return errors.New("TAVILY_API_KEY is required")
	}
	if config.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if config.HTTP.Port <= 0 || config.HTTP.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", config.HTTP.Port)
	}
	return nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
