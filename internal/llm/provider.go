package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/salescoach-api/internal/config"
	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

// NewFromConfig builds the configured provider chain: the primary provider,
// optionally backed by LLM_FALLBACK_PROVIDER, each instrumented under its own
// name. awsCfg is only read for bedrock.
func NewFromConfig(ctx context.Context, cfg *config.Config, awsCfg aws.Config, m *metrics.CoachMetrics, logger *logging.Logger) (Client, error) {
	if logger == nil {
		logger = logging.Default()
	}
	primary, err := newProvider(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	client := Client(NewInstrumentedClient(providerName(cfg.LLMProvider), primary, m, logger))

	fallbackName := strings.ToLower(strings.TrimSpace(cfg.LLMFallbackProvider))
	if fallbackName == "" || fallbackName == providerName(cfg.LLMProvider) {
		return client, nil
	}
	fallback, err := newProvider(ctx, fallbackName, cfg, awsCfg)
	if err != nil {
		logger.Warn("fallback LLM provider unavailable", "provider", fallbackName, "error", err)
		return client, nil
	}
	return NewFallbackClient(client, NewInstrumentedClient(fallbackName, fallback, m, logger), logger), nil
}

func providerName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderOpenAI
	}
	return name
}

func newProvider(ctx context.Context, name string, cfg *config.Config, awsCfg aws.Config) (Client, error) {
	switch providerName(name) {
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			Keys:    cfg.ProviderKeys,
			Key:     firstNonEmpty(cfg.ProviderKey, cfg.OpenAIAPIKey),
			URL:     cfg.ProviderURL,
			Model:   cfg.ProviderModel,
			Timeout: cfg.LLMTimeout,
		}), nil
	case ProviderBedrock:
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			return nil, fmt.Errorf("llm: BEDROCK_MODEL_ID is required for provider %q", ProviderBedrock)
		}
		return NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", name)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
