package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "SESSION_STORE", "SESSION_TTL", "CORS_ALLOWED_ORIGINS", "LLM_PROVIDER", "PROVIDER_KEYS", "PROVIDER_KEY", "OPENAI_API_KEY", "CHAT_HISTORY_WINDOW"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SessionStore != "redis" {
		t.Fatalf("expected redis session store by default, got %s", cfg.SessionStore)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SessionKeyPrefix != "sess:" {
		t.Fatalf("expected sess: prefix, got %s", cfg.SessionKeyPrefix)
	}
	if cfg.ChatHistoryWindow != 20 {
		t.Fatalf("expected chat window 20, got %d", cfg.ChatHistoryWindow)
	}
	if len(cfg.CORSAllowedOrigins) != len(DefaultAllowedOrigins) {
		t.Fatalf("expected default origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.ProviderKeys != nil {
		t.Fatalf("expected no provider keys, got %v", cfg.ProviderKeys)
	}
	if cfg.AIConfigured() {
		t.Fatalf("expected ai to be unconfigured without keys")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_STORE", " DynamoDB ")
	t.Setenv("SESSION_TTL", "3600")
	t.Setenv("SAVE_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example;")
	t.Setenv("PROVIDER_KEYS", "gsk_one; gsk_two ,")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CHAT_HISTORY_WINDOW", "12")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.SessionStore != "dynamodb" {
		t.Fatalf("expected normalized store name, got %q", cfg.SessionStore)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected bare seconds ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SaveTimeout != 2*time.Second {
		t.Fatalf("expected save timeout override, got %s", cfg.SaveTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.ProviderKeys) != 2 || cfg.ProviderKeys[0] != "gsk_one" {
		t.Fatalf("unexpected provider keys %v", cfg.ProviderKeys)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.ChatHistoryWindow != 12 {
		t.Fatalf("expected chat window override, got %d", cfg.ChatHistoryWindow)
	}
	if !cfg.AIConfigured() {
		t.Fatalf("expected ai configured from key pool")
	}
}

func TestAIConfiguredPerProvider(t *testing.T) {
	if !(&Config{LLMProvider: "bedrock", BedrockModelID: "anthropic.claude"}).AIConfigured() {
		t.Fatalf("bedrock with model id should be configured")
	}
	if (&Config{LLMProvider: "gemini"}).AIConfigured() {
		t.Fatalf("gemini without key should not be configured")
	}
	var nilCfg *Config
	if nilCfg.AIConfigured() {
		t.Fatalf("nil config should not be configured")
	}
}
