package coach

import (
	"context"
	"strings"

	"github.com/wolfman30/salescoach-api/internal/cues"
	"github.com/wolfman30/salescoach-api/internal/llm"
	"github.com/wolfman30/salescoach-api/internal/scoring"
	"github.com/wolfman30/salescoach-api/internal/session"
)

const (
	replyMaxTokens    int32   = 400
	replyTemperature  float32 = 0.7
	liveEQMaxTokens   int32   = 300
	liveEQTemperature float32 = 0.3
	feedbackMaxTokens int32   = 1200
	feedbackTemp      float32 = 0.35
)

type RoleplayStartRequest struct {
	ScenarioID string                   `json:"scenarioId"`
	Difficulty string                   `json:"difficulty,omitempty"`
	Scenario   *session.ScenarioContext `json:"scenario,omitempty"`
}

type RoleplayStartResponse struct {
	Session   *session.Roleplay `json:"session"`
	SessionID string            `json:"sessionId"`
}

// RoleplayStart opens a roleplay with the stakeholder's opening line,
// replacing any roleplay already running in the session.
func (s *Service) RoleplayStart(ctx context.Context, sessionID string, req RoleplayStartRequest) (RoleplayStartResponse, error) {
	scenarioID := strings.TrimSpace(req.ScenarioID)
	if scenarioID == "" {
		return RoleplayStartResponse{}, required("scenarioId", "scenarioId required")
	}
	difficulty := strings.TrimSpace(req.Difficulty)
	if difficulty == "" {
		difficulty = defaultDifficulty
	}

	now := s.now()
	rp := &session.Roleplay{
		ID:         s.newID(),
		ScenarioID: scenarioID,
		Difficulty: difficulty,
		Scenario:   req.Scenario,
		Messages:   []session.RoleplayMessage{},
		StartedAt:  now.UnixMilli(),
	}

	st := s.sessions.Load(ctx, sessionID)
	st.StartRoleplay(rp)
	_ = st.AppendRoleplayTurn(session.RoleStakeholder, openingMessage(req.Scenario), now)
	s.sessions.Save(ctx, sessionID, st)

	return RoleplayStartResponse{Session: rp, SessionID: sessionID}, nil
}

type RoleplayRespondRequest struct {
	Message string `json:"message"`
}

type RoleplayRespondResponse struct {
	Session    *session.Roleplay `json:"session"`
	EQAnalysis scoring.LiveEQ    `json:"eqAnalysis"`
	Reply      string            `json:"reply"`
	Signals    []cues.Signal     `json:"signals"`
	SessionID  string            `json:"sessionId"`
}

// RoleplayRespond records the rep's turn, generates the stakeholder's reply
// and scores the conversation so far. A provider failure yields a canned
// reply and default scores rather than an error.
func (s *Service) RoleplayRespond(ctx context.Context, sessionID string, req RoleplayRespondRequest) (RoleplayRespondResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return RoleplayRespondResponse{}, required("message", "message required")
	}

	st := s.sessions.Load(ctx, sessionID)
	if st.Roleplay == nil {
		return RoleplayRespondResponse{}, ErrNoActiveRoleplay
	}
	if err := st.AppendRoleplayTurn(session.RoleUser, message, s.now()); err != nil {
		return RoleplayRespondResponse{}, ErrNoActiveRoleplay
	}
	rp := st.Roleplay
	log := s.logger.WithSession(sessionID)

	var (
		reply   string
		signals []cues.Signal
		eq      scoring.LiveEQ
	)
	text, err := s.complete(ctx, llm.Request{
		System:      []string{buildRoleplayPrompt(rp.Scenario, rp.Difficulty)},
		Messages:    roleplayHistory(rp.Messages),
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		log.Warn("roleplay reply failed, using fallback", "error", err)
		s.metrics.ObserveFallback("roleplay_reply")
		reply = fallbackRoleplayReply
		signals = []cues.Signal{}
		eq = scoring.DefaultLiveEQ()
	} else {
		reply = text
		signals = s.extractor.Extract(reply)
		eq = s.liveEQ(ctx, sessionID, rp.Messages)
	}

	_ = st.AppendRoleplayTurn(session.RoleAssistant, reply, s.now())
	st.AppendSignals(signals...)
	s.recordSignals(signals)
	s.sessions.Save(ctx, sessionID, st)

	return RoleplayRespondResponse{
		Session:    rp,
		EQAnalysis: eq,
		Reply:      reply,
		Signals:    signals,
		SessionID:  sessionID,
	}, nil
}

type RoleplayEQResponse struct {
	EQAnalysis scoring.LiveEQ `json:"eqAnalysis"`
	SessionID  string         `json:"sessionId"`
}

// RoleplayEQ scores the running roleplay without advancing it.
func (s *Service) RoleplayEQ(ctx context.Context, sessionID string) (RoleplayEQResponse, error) {
	st := s.sessions.Load(ctx, sessionID)
	if st.Roleplay == nil {
		return RoleplayEQResponse{}, ErrNoActiveRoleplay
	}
	return RoleplayEQResponse{EQAnalysis: s.liveEQ(ctx, sessionID, st.Roleplay.Messages), SessionID: sessionID}, nil
}

type RoleplayEndResponse struct {
	Analysis  scoring.Feedback  `json:"analysis"`
	Session   *session.Roleplay `json:"session"`
	SessionID string            `json:"sessionId"`
}

// RoleplayEnd produces the final feedback and closes the roleplay.
func (s *Service) RoleplayEnd(ctx context.Context, sessionID string) (RoleplayEndResponse, error) {
	st := s.sessions.Load(ctx, sessionID)
	if st.Roleplay == nil {
		return RoleplayEndResponse{}, ErrNoActiveRoleplay
	}
	analysis := s.feedback(ctx, sessionID, st.Roleplay.Messages)
	ended := st.EndRoleplay()
	s.sessions.Save(ctx, sessionID, st)

	return RoleplayEndResponse{Analysis: analysis, Session: ended, SessionID: sessionID}, nil
}

type RoleplaySessionResponse struct {
	Active    bool              `json:"active"`
	Session   *session.Roleplay `json:"session"`
	SessionID string            `json:"sessionId"`
}

func (s *Service) RoleplaySession(ctx context.Context, sessionID string) RoleplaySessionResponse {
	st := s.sessions.Load(ctx, sessionID)
	return RoleplaySessionResponse{Active: st.Roleplay != nil, Session: st.Roleplay, SessionID: sessionID}
}

// liveEQ scores the rep's turns so far. It returns zeros before the rep has
// spoken and defaults when the provider fails.
func (s *Service) liveEQ(ctx context.Context, sessionID string, messages []session.RoleplayMessage) scoring.LiveEQ {
	if !hasRepTurn(messages) {
		return scoring.ZeroLiveEQ()
	}
	if s.llm == nil {
		s.metrics.ObserveFallback("live_eq")
		return scoring.DefaultLiveEQ()
	}
	parsed, _, err := llm.CompleteJSON(ctx, s.llm, llm.Request{
		System:      []string{liveEQPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: transcript(messages)}},
		MaxTokens:   liveEQMaxTokens,
		Temperature: liveEQTemperature,
	})
	if err != nil {
		s.logger.WithSession(sessionID).Warn("live EQ analysis failed, using defaults", "error", err)
		s.metrics.ObserveFallback("live_eq")
		return scoring.DefaultLiveEQ()
	}
	return scoring.NormalizeLiveEQ(parsed)
}

// feedback builds the end-of-roleplay report. Any provider or parse failure
// resolves to the normalizer's defaults.
func (s *Service) feedback(ctx context.Context, sessionID string, messages []session.RoleplayMessage) scoring.Feedback {
	if s.llm == nil {
		s.metrics.ObserveFallback("feedback")
		return scoring.DefaultFeedback()
	}
	parsed, _, err := llm.CompleteJSON(ctx, s.llm, llm.Request{
		System:      []string{feedbackPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Analyze this conversation:\n\n" + transcript(messages)}},
		MaxTokens:   feedbackMaxTokens,
		Temperature: feedbackTemp,
	})
	if err != nil {
		s.logger.WithSession(sessionID).Warn("roleplay feedback failed, using defaults", "error", err)
		s.metrics.ObserveFallback("feedback")
		return scoring.DefaultFeedback()
	}
	return scoring.NormalizeFeedback(parsed)
}

// roleplayHistory maps persona turns to assistant and everything else to user.
func roleplayHistory(messages []session.RoleplayMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		role := llm.RoleUser
		switch m.Role {
		case session.RoleStakeholder, session.RoleAssistant, session.RoleHCP:
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}

func hasRepTurn(messages []session.RoleplayMessage) bool {
	for _, m := range messages {
		if m.Role == session.RoleUser || m.Role == session.RoleRep {
			return true
		}
	}
	return false
}
