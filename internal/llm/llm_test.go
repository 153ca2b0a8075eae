package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/salescoach-api/internal/config"
	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

type capturedRequest struct {
	auth string
	body chatCompletionRequest
}

func completionServer(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(reply))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestOpenAIClientComplete(t *testing.T) {
	t.Run("sends system prompt and defaults", func(t *testing.T) {
		server, captured := completionServer(t, http.StatusOK, "*nods* Go on.")
		client := NewOpenAIClient(OpenAIConfig{Key: "sk-test", URL: server.URL})

		resp, err := client.Complete(context.Background(), Request{
			System:   []string{"You are an HCP.", "  "},
			Messages: []Message{{Role: RoleUser, Content: "Hello doctor"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "*nods* Go on.", resp.Text)
		assert.Equal(t, int32(12), resp.Usage.InputTokens)
		assert.Equal(t, int32(5), resp.Usage.OutputTokens)
		assert.Equal(t, "stop", resp.StopReason)

		assert.Equal(t, "Bearer sk-test", captured.auth)
		assert.Equal(t, "gpt-4o", captured.body.Model)
		assert.Equal(t, DefaultMaxTokens, captured.body.MaxTokens)
		assert.InDelta(t, DefaultTemperature, captured.body.Temperature, 0.0001)
		assert.Nil(t, captured.body.ResponseFormat)
		require.Len(t, captured.body.Messages, 2)
		assert.Equal(t, Message{Role: RoleSystem, Content: "You are an HCP."}, captured.body.Messages[0])
	})

	t.Run("groq key selects groq model", func(t *testing.T) {
		server, captured := completionServer(t, http.StatusOK, "ok")
		client := NewOpenAIClient(OpenAIConfig{Keys: []string{"gsk_abc"}, URL: server.URL})

		_, err := client.Complete(context.Background(), Request{
			Messages:    []Message{{Role: RoleUser, Content: "hi"}},
			MaxTokens:   300,
			Temperature: 0.3,
			JSON:        true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Bearer gsk_abc", captured.auth)
		assert.Equal(t, "llama-3.3-70b-versatile", captured.body.Model)
		assert.Equal(t, int32(300), captured.body.MaxTokens)
		require.NotNil(t, captured.body.ResponseFormat)
		assert.Equal(t, "json_object", captured.body.ResponseFormat.Type)
	})

	t.Run("non-2xx becomes provider error", func(t *testing.T) {
		server, _ := completionServer(t, http.StatusTooManyRequests, "slow down")
		client := NewOpenAIClient(OpenAIConfig{Key: "sk-test", URL: server.URL})

		_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
		var perr *ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
		assert.Equal(t, "AI provider error: 429 - slow down", perr.Error())
	})

	t.Run("no key configured", func(t *testing.T) {
		client := NewOpenAIClient(OpenAIConfig{Keys: []string{" ", ""}})
		_, err := client.Complete(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrNoProviderKey)
	})
}

func TestOpenAIClientEndpointSelection(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{Keys: []string{"sk-a", "gsk_b"}})
	client.pick = func(int) int { return 1 }
	key := client.selectKey()
	assert.Equal(t, "gsk_b", key)

	url, model := client.endpoint(key, "")
	assert.Equal(t, groqURL, url)
	assert.Equal(t, groqModel, model)

	url, model = client.endpoint("sk-a", "")
	assert.Equal(t, openAIURL, url)
	assert.Equal(t, openAIModel, model)

	_, model = client.endpoint("sk-a", "gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", model)
}

type mockConverse struct {
	input *bedrockruntime.ConverseInput
	text  string
	err   error
}

func (m *mockConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = in
	if m.err != nil {
		return nil, m.err
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: " " + m.text + " "}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(40), OutputTokens: aws.Int32(9), TotalTokens: aws.Int32(49)},
	}, nil
}

func TestBedrockClientComplete(t *testing.T) {
	api := &mockConverse{text: "*leans forward* Tell me more."}
	client := NewBedrockClient(api, "anthropic.claude-3-haiku")

	resp, err := client.Complete(context.Background(), Request{
		System: []string{"roleplay"},
		Messages: []Message{
			{Role: RoleAssistant, Content: "Good to see you."},
			{Role: RoleUser, Content: "Thanks for your time."},
			{Role: RoleUser, Content: "   "},
		},
		MaxTokens:   400,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "*leans forward* Tell me more.", resp.Text)
	assert.Equal(t, int32(49), resp.Usage.TotalTokens)

	require.NotNil(t, api.input)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	require.Len(t, api.input.Messages, 3)
	assert.Equal(t, brtypes.ConversationRoleUser, api.input.Messages[0].Role)
	assert.Equal(t, brtypes.ConversationRoleAssistant, api.input.Messages[1].Role)
	assert.Len(t, api.input.System, 1)
	assert.Equal(t, int32(400), aws.ToInt32(api.input.InferenceConfig.MaxTokens))

	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: "hcp", Content: "x"}}})
	assert.ErrorContains(t, err, "unsupported role")

	api.err = errors.New("throttled")
	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.ErrorContains(t, err, "throttled")
}

func TestGeminiTurns(t *testing.T) {
	system, history, last, err := geminiTurns(Request{
		System: []string{"base"},
		Messages: []Message{
			{Role: RoleSystem, Content: "extra"},
			{Role: RoleAssistant, Content: "Good to see you."},
			{Role: RoleUser, Content: "Hello"},
			{Role: RoleAssistant, Content: "*nods*"},
			{Role: RoleUser, Content: "Our data shows..."},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "base\n\nextra", system)
	require.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "user", history[2].Role)
	assert.Equal(t, "model", history[3].Role)
	assert.Equal(t, "Our data shows...", last)

	_, _, _, err = geminiTurns(Request{System: []string{"only system"}})
	assert.Error(t, err)
}

func bedrockText(t *testing.T, msg brtypes.Message) string {
	t.Helper()
	require.Len(t, msg.Content, 1)
	block, ok := msg.Content[0].(*brtypes.ContentBlockMemberText)
	require.True(t, ok)
	return block.Value
}

func TestBedrockConversationStartsWithUser(t *testing.T) {
	api := &mockConverse{text: "ok"}
	client := NewBedrockClient(api, "anthropic.claude-3-haiku")

	// A chat window cut mid-history opens on an assistant turn and can
	// carry back-to-back turns from the same side.
	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleAssistant, Content: "Earlier answer."},
			{Role: RoleAssistant, Content: "Follow-up."},
			{Role: RoleUser, Content: "First question."},
			{Role: RoleUser, Content: "Second question."},
		},
	})
	require.NoError(t, err)

	msgs := api.input.Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, brtypes.ConversationRoleUser, msgs[0].Role)
	assert.Equal(t, openingTurn, bedrockText(t, msgs[0]))
	assert.Equal(t, brtypes.ConversationRoleAssistant, msgs[1].Role)
	assert.Equal(t, "Earlier answer.\n\nFollow-up.", bedrockText(t, msgs[1]))
	assert.Equal(t, brtypes.ConversationRoleUser, msgs[2].Role)
	assert.Equal(t, "First question.\n\nSecond question.", bedrockText(t, msgs[2]))
	for i := 1; i < len(msgs); i++ {
		assert.NotEqual(t, msgs[i-1].Role, msgs[i].Role, "turn %d repeats its role", i)
	}
}

func TestGeminiHistoryStartsWithUser(t *testing.T) {
	_, history, last, err := geminiTurns(Request{
		Messages: []Message{
			{Role: RoleAssistant, Content: "*smiles* Good morning."},
			{Role: RoleUser, Content: "Thanks for seeing me."},
		},
	})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, genai.Text(openingTurn), history[0].Parts[0])
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "Thanks for seeing me.", last)
}

func TestConversationTurns(t *testing.T) {
	system, turns, err := conversationTurns([]Message{
		{Role: RoleSystem, Content: " extra "},
		{Role: RoleUser, Content: "a"},
		{Role: RoleUser, Content: "  "},
		{Role: RoleUser, Content: "b"},
		{Role: RoleAssistant, Content: "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"extra"}, system)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "a\n\nb"},
		{Role: RoleAssistant, Content: "c"},
	}, turns)

	_, _, err = conversationTurns([]Message{{Role: "hcp", Content: "x"}})
	assert.ErrorContains(t, err, "unsupported role")
}

type stubClient struct {
	calls int
	resp  Response
	err   error
}

func (s *stubClient) Complete(context.Context, Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackClient(t *testing.T) {
	logger := logging.Discard()

	t.Run("primary success skips fallback", func(t *testing.T) {
		primary := &stubClient{resp: Response{Text: "primary"}}
		fallback := &stubClient{resp: Response{Text: "fallback"}}
		resp, err := NewFallbackClient(primary, fallback, logger).Complete(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "primary", resp.Text)
		assert.Zero(t, fallback.calls)
	})

	t.Run("primary failure uses fallback", func(t *testing.T) {
		primary := &stubClient{err: errors.New("down")}
		fallback := &stubClient{resp: Response{Text: "fallback"}}
		resp, err := NewFallbackClient(primary, fallback, logger).Complete(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "fallback", resp.Text)
	})

	t.Run("both fail returns fallback error", func(t *testing.T) {
		primary := &stubClient{err: errors.New("down")}
		fallback := &stubClient{err: errors.New("also down")}
		_, err := NewFallbackClient(primary, fallback, logger).Complete(context.Background(), Request{})
		assert.EqualError(t, err, "also down")
	})

	t.Run("no fallback returns primary error", func(t *testing.T) {
		primary := &stubClient{err: errors.New("down")}
		_, err := NewFallbackClient(primary, nil, logger).Complete(context.Background(), Request{})
		assert.EqualError(t, err, "down")
	})
}

func TestInstrumentedClientRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCoachMetrics(reg)

	ok := NewInstrumentedClient("openai", &stubClient{resp: Response{Text: "x", Usage: Usage{InputTokens: 10, OutputTokens: 4}}}, m, logging.Discard())
	tick := time.Unix(0, 0)
	ok.now = func() time.Time {
		tick = tick.Add(400 * time.Millisecond)
		return tick
	}
	_, err := ok.Complete(context.Background(), Request{})
	require.NoError(t, err)

	failing := NewInstrumentedClient("bedrock", &stubClient{err: errors.New("boom")}, m, logging.Discard())
	_, err = failing.Complete(context.Background(), Request{})
	require.Error(t, err)

	snap := metrics.SnapshotLLMLatency(reg)
	assert.Equal(t, int64(1), snap.Total)
	assert.Greater(t, snap.P50Ms, 250.0)
	assert.LessOrEqual(t, snap.P50Ms, 500.0)
}

func TestCompleteJSON(t *testing.T) {
	stub := &stubClient{resp: Response{Text: "Here you go:\n```json\n{\"empathy\": 4}\n```"}}
	obj, raw, err := CompleteJSON(context.Background(), stub, Request{})
	require.NoError(t, err)
	assert.Equal(t, 4.0, obj["empathy"])
	assert.Contains(t, raw, "empathy")

	stub.resp.Text = "no json here"
	_, raw, err = CompleteJSON(context.Background(), stub, Request{})
	assert.ErrorIs(t, err, ErrNotJSON)
	assert.Equal(t, "no json here", raw)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{LLMProvider: "openai", ProviderKey: "sk-x", LLMFallbackProvider: "bedrock"}
	client, err := NewFromConfig(context.Background(), cfg, aws.Config{}, nil, logging.Discard())
	require.NoError(t, err)
	_, isInstrumented := client.(*InstrumentedClient)
	assert.True(t, isInstrumented, "bedrock fallback without a model id is skipped")

	cfg.BedrockModelID = "anthropic.claude-3-haiku"
	cfg.AWSRegion = "us-east-1"
	client, err = NewFromConfig(context.Background(), cfg, aws.Config{Region: "us-east-1"}, nil, logging.Discard())
	require.NoError(t, err)
	_, isFallback := client.(*FallbackClient)
	assert.True(t, isFallback)

	_, err = NewFromConfig(context.Background(), &config.Config{LLMProvider: "watson"}, aws.Config{}, nil, logging.Discard())
	assert.Error(t, err)
}
