package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAllowedOrigins lists the browser origins served by default.
var DefaultAllowedOrigins = []string{
	"https://reflectivei.github.io",
	"https://yxpzdb7o9z.preview.c24.airoapp.ai",
	"https://reflectivai-app-prod.pages.dev",
	"https://production.reflectivai-app-prod.pages.dev",
	"http://localhost:5173",
	"http://localhost:3000",
}

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Session persistence
	SessionStore      string
	SessionTTL        time.Duration
	SessionKeyPrefix  string
	SessionTable      string
	SaveTimeout       time.Duration
	ChatHistoryWindow int
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	DatabaseURL       string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// LLM providers
	LLMProvider         string
	LLMFallbackProvider string
	LLMTimeout          time.Duration
	ProviderKeys        []string
	ProviderKey         string
	OpenAIAPIKey        string
	ProviderURL         string
	ProviderModel       string
	BedrockModelID      string
	GeminiAPIKey        string
	GeminiModel         string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),

		SessionStore:      strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "redis"))),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionKeyPrefix:  getEnv("SESSION_KEY_PREFIX", "sess:"),
		SessionTable:      getEnv("SESSION_TABLE", "coaching_sessions"),
		SaveTimeout:       getEnvAsDuration("SAVE_TIMEOUT", 5*time.Second),
		ChatHistoryWindow: getEnvAsInt("CHAT_HISTORY_WINDOW", 20),
		RedisAddr:         getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		DatabaseURL:       getEnv("DATABASE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai"))),
		LLMFallbackProvider: strings.ToLower(strings.TrimSpace(getEnv("LLM_FALLBACK_PROVIDER", ""))),
		LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		ProviderKeys:        getEnvAsList("PROVIDER_KEYS", nil),
		ProviderKey:         getEnv("PROVIDER_KEY", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		ProviderURL:         getEnv("PROVIDER_URL", ""),
		ProviderModel:       getEnv("PROVIDER_MODEL", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
	}
}

// AIConfigured reports whether any provider credential is present.
func (c *Config) AIConfigured() bool {
	if c == nil {
		return false
	}
	switch c.LLMProvider {
	case "bedrock":
		return c.BedrockModelID != ""
	case "gemini":
		return c.GeminiAPIKey != ""
	default:
		return len(c.ProviderKeys) > 0 || c.ProviderKey != "" || c.OpenAIAPIKey != ""
	}
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	// Bare integers are seconds, matching the KV expirationTtl convention.
	if secs, err := strconv.Atoi(valueStr); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma or semicolon separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		if defaultValue == nil {
			return nil
		}
		return append([]string(nil), defaultValue...)
	}
	parts := strings.FieldsFunc(valueStr, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
