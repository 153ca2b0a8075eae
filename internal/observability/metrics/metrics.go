package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "salescoach"

	// LLMLatencyMetric is the fully qualified histogram name.
	LLMLatencyMetric = namespace + "_llm_latency_seconds"
)

// CoachMetrics exposes counters/histograms for coaching flows.
type CoachMetrics struct {
	llmLatency       *prometheus.HistogramVec
	llmTokens        *prometheus.CounterVec
	signalsExtracted *prometheus.CounterVec
	feedbackFallback *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
}

func NewCoachMetrics(reg prometheus.Registerer) *CoachMetrics {
	m := &CoachMetrics{
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_seconds",
			Help:      "Latency of LLM completions",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30, 60},
		}, []string{"provider", "status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens used by the LLM",
		}, []string{"provider", "type"}), // type: input, output
		signalsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_extracted_total",
			Help:      "Coaching signals extracted from model replies",
		}, []string{"type"}),
		feedbackFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_fallback_total",
			Help:      "Model-derived results replaced by defaults",
		}, []string{"kind"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_store_errors_total",
			Help:      "Session store failures absorbed by the reducer",
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.llmLatency, m.llmTokens, m.signalsExtracted, m.feedbackFallback, m.storeErrors)
	return m
}

func (m *CoachMetrics) ObserveLLM(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider, status).Observe(seconds)
}

func (m *CoachMetrics) ObserveTokens(provider string, input, output int64) {
	if m == nil {
		return
	}
	if input > 0 {
		m.llmTokens.WithLabelValues(provider, "input").Add(float64(input))
	}
	if output > 0 {
		m.llmTokens.WithLabelValues(provider, "output").Add(float64(output))
	}
}

func (m *CoachMetrics) ObserveSignal(signalType string) {
	if m == nil {
		return
	}
	m.signalsExtracted.WithLabelValues(signalType).Inc()
}

func (m *CoachMetrics) ObserveFallback(kind string) {
	if m == nil {
		return
	}
	m.feedbackFallback.WithLabelValues(kind).Inc()
}

func (m *CoachMetrics) ObserveStoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}
