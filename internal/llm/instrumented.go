package llm

import (
	"context"
	"time"

	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

// InstrumentedClient records latency and token usage for a named provider.
type InstrumentedClient struct {
	provider string
	next     Client
	metrics  *metrics.CoachMetrics
	logger   *logging.Logger
	now      func() time.Time
}

func NewInstrumentedClient(provider string, next Client, m *metrics.CoachMetrics, logger *logging.Logger) *InstrumentedClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &InstrumentedClient{provider: provider, next: next, metrics: m, logger: logger, now: time.Now}
}

func (c *InstrumentedClient) Complete(ctx context.Context, req Request) (Response, error) {
	start := c.now()
	resp, err := c.next.Complete(ctx, req)
	elapsed := c.now().Sub(start)

	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Warn("llm completion failed", "provider", c.provider, "duration_ms", elapsed.Milliseconds(), "error", err)
	} else {
		c.metrics.ObserveTokens(c.provider, int64(resp.Usage.InputTokens), int64(resp.Usage.OutputTokens))
		c.logger.Debug("llm completion", "provider", c.provider, "duration_ms", elapsed.Milliseconds(),
			"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	}
	c.metrics.ObserveLLM(c.provider, status, elapsed.Seconds())
	return resp, err
}
