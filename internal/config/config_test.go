package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModelID)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 0.3, cfg.MarathiKeywordThreshold)
	assert.Equal(t, 20.0, cfg.NearbyRadiusKm)
	assert.Equal(t, 2, cfg.NearbyPageSize)
	assert.Equal(t, 7, cfg.TaskDueDays)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("GEMINI_MAX_RETRIES", "5")
	t.Setenv("LANG_KEYWORD_THRESHOLD", "0.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.GeminiMaxRetries)
	assert.Equal(t, 0.5, cfg.MarathiKeywordThreshold)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestValidateRejectsCacheTTLBeyondSession(t *testing.T) {
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("SEARCH_CACHE_TTL", "30m")

	require.Error(t, Load().Validate())
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	t.Setenv("LANG_KEYWORD_THRESHOLD", "1.5")

	require.Error(t, Load().Validate())
}

func TestValidateRejectsNegativeRetries(t *testing.T) {
	t.Setenv("GEMINI_MAX_RETRIES", "-1")

	require.Error(t, Load().Validate())
}
