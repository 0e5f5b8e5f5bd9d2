package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredKeys(t *testing.T) {
	t.Helper()
	t.Setenv("TAVILY_API_KEY", "tavily-test-key")
	t.Setenv("GEMINI_API_KEY", "gemini-test-key")
}

func clearOptionalKeys(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT",
		"TAVILY_BASE_URL", "TAVILY_MAX_RETRIES",
		"GEMINI_MODEL", "GEMINI_MAX_TOKENS",
		"REDIS_URL",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredKeys(t)
	clearOptionalKeys(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "tavily-test-key", cfg.Tavily.APIKey)
	assert.Equal(t, "https://api.tavily.com", cfg.Tavily.BaseURL)
	assert.Equal(t, 2, cfg.Tavily.MaxRetries)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 1024, cfg.Gemini.MaxTokens)
	assert.Equal(t, 0.7, cfg.Gemini.Temperature)
	assert.Equal(t, "", cfg.Redis.URL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredKeys(t)
	clearOptionalKeys(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("TAVILY_BASE_URL", "http://localhost:9999")
	t.Setenv("TAVILY_MAX_RETRIES", "5")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")
	t.Setenv("GEMINI_MAX_TOKENS", "2048")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:9999", cfg.Tavily.BaseURL)
	assert.Equal(t, 5, cfg.Tavily.MaxRetries)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 2048, cfg.Gemini.MaxTokens)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRequiresTavilyKey(t *testing.T) {
	clearOptionalKeys(t)
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-test-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	clearOptionalKeys(t)
	t.Setenv("TAVILY_API_KEY", "tavily-test-key")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadRejectsMalformedPort(t *testing.T) {
	setRequiredKeys(t)
	clearOptionalKeys(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsOutOfRangePort(t *testing.T) {
	setRequiredKeys(t)
	clearOptionalKeys(t)
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}
