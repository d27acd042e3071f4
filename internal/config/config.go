package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Gemini
	GeminiAPIKey     string
	GeminiModelID    string
	GeminiTimeout    time.Duration
	GeminiMaxRetries int
	Temperature      float32
	TopP             float32
	MaxOutputTokens  int32

	// Backend REST API
	BackendBaseURL string
	BackendTimeout time.Duration
	ClientID       string

	// Redis session store
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	SessionTTL     time.Duration
	SearchCacheTTL time.Duration

	// Language detection
	MarathiKeywordThreshold float64

	// Nearby search defaults
	NearbyRadiusKm float64
	NearbyPageSize int
	PromptTimezone string
	TaskDueDays    int

	// Per-IP rate limit for /search; zero disables it.
	SearchRateLimit float64
	SearchRateBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:    getEnv("GEMINI_MODEL_ID", "gemini-2.0-flash"),
		GeminiTimeout:    getEnvAsDuration("GEMINI_TIMEOUT", 10*time.Second),
		GeminiMaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 3),
		Temperature:      float32(getEnvAsFloat("GEMINI_TEMPERATURE", 0.9)),
		TopP:             float32(getEnvAsFloat("GEMINI_TOP_P", 1)),
		MaxOutputTokens:  int32(getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 2048)),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", ""),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 20*time.Second),
		ClientID:       getEnv("BACKEND_CLIENT_ID", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SessionTTL:     getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		SearchCacheTTL: getEnvAsDuration("SEARCH_CACHE_TTL", 30*time.Minute),

		MarathiKeywordThreshold: getEnvAsFloat("LANG_KEYWORD_THRESHOLD", 0.3),

		NearbyRadiusKm: getEnvAsFloat("NEARBY_RADIUS_KM", 20),
		NearbyPageSize: getEnvAsInt("NEARBY_PAGE_SIZE", 2),
		PromptTimezone: getEnv("PROMPT_TIMEZONE", "Asia/Kolkata"),
		TaskDueDays:    getEnvAsInt("TASK_DUE_DAYS", 7),

		SearchRateLimit: getEnvAsFloat("SEARCH_RATE_LIMIT", 0),
		SearchRateBurst: getEnvAsInt("SEARCH_RATE_BURST", 10),
	}
}

// Validate rejects configurations that would silently misbehave at runtime.
func (c *Config) Validate() error {
	if c.SearchCacheTTL > c.SessionTTL {
		return fmt.Errorf("config: SEARCH_CACHE_TTL (%s) must not exceed SESSION_TTL (%s)", c.SearchCacheTTL, c.SessionTTL)
	}
	if c.MarathiKeywordThreshold < 0 || c.MarathiKeywordThreshold > 1 {
		return fmt.Errorf("config: LANG_KEYWORD_THRESHOLD must be in [0,1], got %v", c.MarathiKeywordThreshold)
	}
	if c.GeminiMaxRetries < 0 {
		return fmt.Errorf("config: GEMINI_MAX_RETRIES must not be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
