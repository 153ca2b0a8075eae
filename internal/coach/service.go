// Package coach implements the request-level coaching operations: chat,
// roleplay, SQL translation, knowledge Q&A and the preset dashboard content.
package coach

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/salescoach-api/internal/cues"
	"github.com/wolfman30/salescoach-api/internal/llm"
	"github.com/wolfman30/salescoach-api/internal/observability/metrics"
	"github.com/wolfman30/salescoach-api/internal/session"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

const (
	Version    = "2.0.0"
	WorkerName = "salescoach-v2"

	defaultDifficulty    = "intermediate"
	defaultHistoryWindow = 20
	summarySignalCount   = 5
)

// Service holds the collaborators shared by every coaching operation.
type Service struct {
	llm          llm.Client
	sessions     *session.Reducer
	extractor    cues.Extractor
	metrics      *metrics.CoachMetrics
	gatherer     prometheus.Gatherer
	logger       *logging.Logger
	now          func() time.Time
	pick         func(n int) int
	newID        func() string
	window       int
	aiConfigured bool
}

type Option func(*Service)

func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.CoachMetrics, gatherer prometheus.Gatherer) Option {
	return func(s *Service) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithClock fixes the time source used for timestamps and turn ordering.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
			s.extractor.Now = now
		}
	}
}

// WithPicker replaces the random preset selector. pick(n) must return a
// value in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// WithIDs replaces the generator for roleplay, query and signal identifiers.
func WithIDs(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
			s.extractor.NewID = newID
		}
	}
}

// WithHistoryWindow sets how many chat messages are sent to the provider.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithAIConfigured overrides the health report's provider status.
func WithAIConfigured(configured bool) Option {
	return func(s *Service) { s.aiConfigured = configured }
}

// newUUID is the default generator for roleplay, query and signal IDs.
func newUUID() string {
	return uuid.NewString()
}

func NewService(client llm.Client, sessions *session.Reducer, opts ...Option) *Service {
	s := &Service{
		llm:          client,
		sessions:     sessions,
		logger:       logging.Default(),
		now:          time.Now,
		pick:         rand.IntN,
		newID:        newUUID,
		window:       defaultHistoryWindow,
		aiConfigured: client != nil,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(cues.TimestampLayout)
}

func (s *Service) complete(ctx context.Context, req llm.Request) (string, error) {
	if s.llm == nil {
		return "", llm.ErrNoProviderKey
	}
	resp, err := s.llm.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ask sends one system prompt and one user prompt.
func (s *Service) ask(ctx context.Context, system, prompt string) (string, error) {
	return s.complete(ctx, llm.Request{
		System:   []string{system},
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	})
}

func (s *Service) recordSignals(signals []cues.Signal) {
	for _, sig := range signals {
		s.metrics.ObserveSignal(string(sig.Type))
	}
}

// HealthResponse reports liveness and provider configuration.
type HealthResponse struct {
	OK           bool   `json:"ok"`
	Status       string `json:"status"`
	Worker       string `json:"worker"`
	AIConfigured bool   `json:"aiConfigured"`
	Message      string `json:"message"`
}

func (s *Service) Health() HealthResponse {
	msg := "No AI provider key configured"
	if s.aiConfigured {
		msg = "AI provider configured"
	}
	return HealthResponse{
		OK:           true,
		Status:       "ok",
		Worker:       WorkerName,
		AIConfigured: s.aiConfigured,
		Message:      msg,
	}
}

// StatusResponse lists the served endpoints.
type StatusResponse struct {
	Status     string                   `json:"status"`
	Version    string                   `json:"version"`
	Endpoints  map[string][]string      `json:"endpoints"`
	LLMLatency *metrics.LatencySnapshot `json:"llmLatency,omitempty"`
	Timestamp  string                   `json:"timestamp"`
}

func (s *Service) Status() StatusResponse {
	resp := StatusResponse{
		Status:  "operational",
		Version: Version,
		Endpoints: map[string][]string{
			"chat":       {"POST /api/chat/send", "GET /api/chat/messages", "POST /api/chat/clear", "GET|POST /api/chat/summary"},
			"roleplay":   {"POST /api/roleplay/start", "POST /api/roleplay/respond", "POST /api/roleplay/eq-analysis", "POST /api/roleplay/end", "GET /api/roleplay/session"},
			"dashboard":  {"GET /api/dashboard/insights", "GET /api/daily-focus"},
			"sql":        {"POST /api/sql/translate", "GET /api/sql/history"},
			"knowledge":  {"POST /api/knowledge/ask"},
			"frameworks": {"POST /api/frameworks/advice", "POST /api/heuristics/customize", "POST /api/modules/exercise"},
			"coach":      {"GET|POST /api/coach/prompts"},
		},
		Timestamp: s.timestamp(),
	}
	if s.gatherer != nil {
		snap := metrics.SnapshotLLMLatency(s.gatherer)
		resp.LLMLatency = &snap
	}
	return resp
}

// InsightResponse is a dashboard insight stamped with the serve time.
type InsightResponse struct {
	Insight
	Timestamp string `json:"timestamp"`
}

func (s *Service) DashboardInsights() InsightResponse {
	return InsightResponse{Insight: insightPresets[s.pick(len(insightPresets))], Timestamp: s.timestamp()}
}

// FocusResponse is a daily focus card echoed with the caller's filters.
// Role and Specialty are null when not supplied.
type FocusResponse struct {
	Focus
	Role      *string `json:"role"`
	Specialty *string `json:"specialty"`
	Timestamp string  `json:"timestamp"`
}

func (s *Service) DailyFocus(role, specialty *string) FocusResponse {
	return FocusResponse{
		Focus:     focusPresets[s.pick(len(focusPresets))],
		Role:      role,
		Specialty: specialty,
		Timestamp: s.timestamp(),
	}
}
