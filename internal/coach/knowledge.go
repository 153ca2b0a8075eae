package coach

import (
	"context"
	"strings"

	"github.com/wolfman30/salescoach-api/internal/scoring"
	"github.com/wolfman30/salescoach-api/internal/session"
)

type SQLTranslateRequest struct {
	Query string `json:"query"`
}

type SQLTranslateResponse struct {
	SQL         string   `json:"sql"`
	Explanation string   `json:"explanation"`
	Columns     []string `json:"columns"`
	QueryID     string   `json:"queryId"`
	SessionID   string   `json:"sessionId"`
}

// SQLTranslate turns a natural-language question into SQL over the pharma
// sales schema and logs it in the session. A reply that is not JSON is
// returned verbatim as the SQL.
func (s *Service) SQLTranslate(ctx context.Context, sessionID string, req SQLTranslateRequest) (SQLTranslateResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return SQLTranslateResponse{}, required("query", "Query is required")
	}

	st := s.sessions.Load(ctx, sessionID)
	text, err := s.ask(ctx, sqlSystemPrompt, buildSQLPrompt(query))
	if err != nil {
		s.logger.WithSession(sessionID).Error("sql translation failed", "error", err)
		return SQLTranslateResponse{}, providerFailure("sql translate", err)
	}

	resp := SQLTranslateResponse{SQL: text, Explanation: defaultSQLExplanation, Columns: []string{}}
	if parsed := scoring.ParseJSONObject(text); parsed != nil {
		resp.SQL, _ = parsed["sql"].(string)
		resp.Explanation, _ = parsed["explanation"].(string)
		resp.Columns = scoring.NormalizeStrings(parsed["columns"], []string{})
	} else {
		s.metrics.ObserveFallback("sql")
	}

	resp.QueryID = s.newID()
	resp.SessionID = sessionID
	st.AppendQuery(session.QueryRecord{
		ID:              resp.QueryID,
		NaturalLanguage: query,
		SQLQuery:        resp.SQL,
		Explanation:     resp.Explanation,
		Columns:         resp.Columns,
		Timestamp:       s.now().UnixMilli(),
	})
	s.sessions.Save(ctx, sessionID, st)
	return resp, nil
}

type SQLHistoryResponse struct {
	Queries   []session.QueryRecord `json:"queries"`
	SessionID string                `json:"sessionId"`
}

func (s *Service) SQLHistory(ctx context.Context, sessionID string) SQLHistoryResponse {
	st := s.sessions.Load(ctx, sessionID)
	return SQLHistoryResponse{Queries: st.SQLQueries, SessionID: sessionID}
}

type KnowledgeAskRequest struct {
	Question       string `json:"question"`
	ArticleContext string `json:"articleContext,omitempty"`
}

type KnowledgeAskResponse struct {
	Answer        string   `json:"answer"`
	RelatedTopics []string `json:"relatedTopics"`
}

func (s *Service) KnowledgeAsk(ctx context.Context, req KnowledgeAskRequest) (KnowledgeAskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return KnowledgeAskResponse{}, required("question", "Question is required")
	}
	answer, err := s.ask(ctx, knowledgeSystemPrompt, buildKnowledgePrompt(req.Question, req.ArticleContext))
	if err != nil {
		return KnowledgeAskResponse{}, providerFailure("knowledge ask", err)
	}
	return KnowledgeAskResponse{Answer: answer, RelatedTopics: scoring.ExtractRelatedTopics(answer)}, nil
}

type FrameworkAdviceRequest struct {
	Framework string `json:"framework"`
	Situation string `json:"situation"`
}

type FrameworkAdviceResponse struct {
	Advice    string `json:"advice"`
	Framework string `json:"framework"`
	Situation string `json:"situation"`
}

func (s *Service) FrameworksAdvice(ctx context.Context, req FrameworkAdviceRequest) (FrameworkAdviceResponse, error) {
	if strings.TrimSpace(req.Framework) == "" || strings.TrimSpace(req.Situation) == "" {
		return FrameworkAdviceResponse{}, required("framework", "Framework and situation are required")
	}
	advice, err := s.ask(ctx, frameworksSystemPrompt, buildFrameworkPrompt(req.Framework, req.Situation))
	if err != nil {
		return FrameworkAdviceResponse{}, providerFailure("frameworks advice", err)
	}
	return FrameworkAdviceResponse{Advice: advice, Framework: req.Framework, Situation: req.Situation}, nil
}

type HeuristicRequest struct {
	Heuristic string `json:"heuristic"`
	Context   string `json:"context,omitempty"`
}

type HeuristicResponse struct {
	Customized string `json:"customized"`
	Original   string `json:"original"`
	Context    string `json:"context,omitempty"`
}

func (s *Service) HeuristicsCustomize(ctx context.Context, req HeuristicRequest) (HeuristicResponse, error) {
	if strings.TrimSpace(req.Heuristic) == "" {
		return HeuristicResponse{}, required("heuristic", "Heuristic is required")
	}
	customized, err := s.ask(ctx, heuristicSystemPrompt, buildHeuristicPrompt(req.Heuristic, req.Context))
	if err != nil {
		return HeuristicResponse{}, providerFailure("heuristics customize", err)
	}
	return HeuristicResponse{Customized: customized, Original: req.Heuristic, Context: req.Context}, nil
}

type ExerciseRequest struct {
	Module string `json:"module"`
	Skill  string `json:"skill"`
}

type ExerciseResponse struct {
	Exercise string `json:"exercise"`
	Module   string `json:"module"`
	Skill    string `json:"skill"`
}

func (s *Service) ModulesExercise(ctx context.Context, req ExerciseRequest) (ExerciseResponse, error) {
	if strings.TrimSpace(req.Module) == "" || strings.TrimSpace(req.Skill) == "" {
		return ExerciseResponse{}, required("module", "Module and skill are required")
	}
	exercise, err := s.ask(ctx, exerciseSystemPrompt, buildExercisePrompt(req.Module, req.Skill))
	if err != nil {
		return ExerciseResponse{}, providerFailure("modules exercise", err)
	}
	return ExerciseResponse{Exercise: exercise, Module: req.Module, Skill: req.Skill}, nil
}

type CoachPromptsRequest struct {
	Context *ChatContext `json:"context,omitempty"`
}

type CoachPromptsResponse struct {
	ConversationStarters []string     `json:"conversationStarters"`
	SuggestedTopics      []string     `json:"suggestedTopics"`
	Context              *ChatContext `json:"context,omitempty"`
	Timestamp            string       `json:"timestamp"`
}

// CoachPrompts suggests conversation starters and topics, falling back to
// the preset lists when the provider fails or replies with something other
// than JSON.
func (s *Service) CoachPrompts(ctx context.Context, req CoachPromptsRequest) CoachPromptsResponse {
	resp := CoachPromptsResponse{
		ConversationStarters: append([]string(nil), defaultConversationStarters...),
		SuggestedTopics:      append([]string(nil), defaultSuggestedTopics...),
		Context:              req.Context,
		Timestamp:            s.timestamp(),
	}

	text, err := s.ask(ctx, coachSystemPrompt, buildCoachPrompt(req.Context))
	if err != nil {
		s.logger.Warn("coach prompts failed, using presets", "error", err)
		s.metrics.ObserveFallback("coach_prompts")
		return resp
	}
	parsed := scoring.ParseJSONObject(text)
	if parsed == nil {
		s.metrics.ObserveFallback("coach_prompts")
		return resp
	}
	resp.ConversationStarters = scoring.NormalizeStrings(parsed["conversationStarters"], defaultConversationStarters)
	resp.SuggestedTopics = scoring.NormalizeStrings(parsed["suggestedTopics"], defaultSuggestedTopics)
	return resp
}
