package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

const (
	openAIURL   = "https://api.openai.com/v1/chat/completions"
	openAIModel = "gpt-4o"
	groqURL     = "https://api.groq.com/openai/v1/chat/completions"
	groqModel   = "llama-3.3-70b-versatile"
	groqPrefix  = "gsk_"
)

// ErrNoProviderKey is returned when no API key is configured.
var ErrNoProviderKey = errors.New("llm: no AI provider key configured")

// ProviderError is a non-2xx reply from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("AI provider error: %d - %s", e.StatusCode, e.Body)
}

// OpenAIConfig configures an OpenAI-compatible chat completions client.
// Keys is a pool picked from at random per request; Key is used when the
// pool is empty. URL and Model override the per-key defaults.
type OpenAIConfig struct {
	Keys       []string
	Key        string
	URL        string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenAIClient talks to OpenAI or any compatible endpoint. Keys starting with
// gsk_ are routed to Groq unless URL or Model are set explicitly.
type OpenAIClient struct {
	keys  []string
	key   string
	url   string
	model string
	http  *http.Client
	pick  func(n int) int
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	keys := make([]string, 0, len(cfg.Keys))
	for _, k := range cfg.Keys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return &OpenAIClient{
		keys:  keys,
		key:   strings.TrimSpace(cfg.Key),
		url:   strings.TrimSpace(cfg.URL),
		model: strings.TrimSpace(cfg.Model),
		http:  httpClient,
		pick:  rand.IntN,
	}
}

// selectKey returns a pooled key when any exist, else the single key.
func (c *OpenAIClient) selectKey() string {
	if len(c.keys) > 0 {
		return c.keys[c.pick(len(c.keys))]
	}
	return c.key
}

// endpoint resolves the URL and model for a key.
func (c *OpenAIClient) endpoint(key, model string) (string, string) {
	isGroq := strings.HasPrefix(key, groqPrefix)
	url := c.url
	if url == "" {
		url = openAIURL
		if isGroq {
			url = groqURL
		}
	}
	if model == "" {
		model = c.model
	}
	if model == "" {
		model = openAIModel
		if isGroq {
			model = groqModel
		}
	}
	return url, model
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int32           `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int32 `json:"prompt_tokens"`
		CompletionTokens int32 `json:"completion_tokens"`
		TotalTokens      int32 `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	key := c.selectKey()
	if key == "" {
		return Response{}, ErrNoProviderKey
	}
	url, model := c.endpoint(key, req.Model)

	messages := make([]Message, 0, len(req.Messages)+1)
	if system := req.systemText(); system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, req.Messages...)

	body := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.temperature(),
		MaxTokens:   req.maxTokens(),
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &ProviderError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Response{}, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Response{}, errors.New("llm: provider returned no choices")
	}

	return Response{
		Text:       decoded.Choices[0].Message.Content,
		StopReason: decoded.Choices[0].FinishReason,
		Usage: Usage{
			InputTokens:  decoded.Usage.PromptTokens,
			OutputTokens: decoded.Usage.CompletionTokens,
			TotalTokens:  decoded.Usage.TotalTokens,
		},
	}, nil
}
