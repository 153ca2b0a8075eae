package coach

import (
	"context"
	"strings"

	"github.com/wolfman30/salescoach-api/internal/cues"
	"github.com/wolfman30/salescoach-api/internal/llm"
	"github.com/wolfman30/salescoach-api/internal/scoring"
	"github.com/wolfman30/salescoach-api/internal/session"
)

// ChatSendRequest is a coaching chat turn. Content is accepted as an alias
// for Message.
type ChatSendRequest struct {
	Message string       `json:"message"`
	Content string       `json:"content,omitempty"`
	Context *ChatContext `json:"context,omitempty"`
}

type ChatSendResponse struct {
	Response  string        `json:"response"`
	Signals   []cues.Signal `json:"signals,omitempty"`
	SessionID string        `json:"sessionId"`
}

// ChatSend appends the user's message, asks the coach, records the reply and
// any inline JSON signals, and saves the session.
func (s *Service) ChatSend(ctx context.Context, sessionID string, req ChatSendRequest) (ChatSendResponse, error) {
	message := req.Message
	if strings.TrimSpace(message) == "" {
		message = req.Content
	}
	if strings.TrimSpace(message) == "" {
		return ChatSendResponse{}, required("message", "Message is required")
	}

	st := s.sessions.Load(ctx, sessionID)
	st.AppendChat(llm.RoleUser, message)

	history := st.RecentChat(s.window)
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := s.complete(ctx, llm.Request{
		System:   []string{buildChatSystemPrompt(req.Context)},
		Messages: messages,
	})
	if err != nil {
		s.logger.WithSession(sessionID).Error("chat completion failed", "error", err)
		return ChatSendResponse{}, providerFailure("chat send", err)
	}

	st.AppendChat(llm.RoleAssistant, reply)
	signals := s.extractor.ParseJSON(reply)
	st.AppendSignals(signals...)
	s.recordSignals(signals)
	s.sessions.Save(ctx, sessionID, st)

	return ChatSendResponse{Response: reply, Signals: signals, SessionID: sessionID}, nil
}

type ChatMessagesResponse struct {
	Messages  []session.ChatMessage `json:"messages"`
	SessionID string                `json:"sessionId"`
}

func (s *Service) ChatMessages(ctx context.Context, sessionID string) ChatMessagesResponse {
	st := s.sessions.Load(ctx, sessionID)
	return ChatMessagesResponse{Messages: st.ChatMessages, SessionID: sessionID}
}

type ChatClearResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// ChatClear drops the chat history and keeps everything else in the session.
func (s *Service) ChatClear(ctx context.Context, sessionID string) ChatClearResponse {
	s.sessions.Clear(ctx, sessionID)
	return ChatClearResponse{Success: true, SessionID: sessionID}
}

type ChatSummaryResponse struct {
	Summary         string        `json:"summary"`
	KeyTakeaways    []string      `json:"keyTakeaways"`
	SkillsDiscussed []string      `json:"skillsDiscussed"`
	ActionItems     []string      `json:"actionItems"`
	Highlights      []cues.Signal `json:"signalIntelligenceHighlights,omitempty"`
	SessionID       string        `json:"sessionId"`
}

// ChatSummary summarizes the chat so far. An empty history short-circuits
// without calling the provider.
func (s *Service) ChatSummary(ctx context.Context, sessionID string) (ChatSummaryResponse, error) {
	st := s.sessions.Load(ctx, sessionID)
	if len(st.ChatMessages) == 0 {
		return ChatSummaryResponse{
			Summary:         emptySummary,
			KeyTakeaways:    []string{},
			SkillsDiscussed: []string{},
			ActionItems:     []string{},
			SessionID:       sessionID,
		}, nil
	}

	text, err := s.ask(ctx, summarySystemPrompt, buildSummaryPrompt(st.ChatMessages))
	if err != nil {
		s.logger.WithSession(sessionID).Error("chat summary failed", "error", err)
		return ChatSummaryResponse{}, providerFailure("chat summary", err)
	}

	return ChatSummaryResponse{
		Summary:         text,
		KeyTakeaways:    scoring.ExtractBulletPoints(text, "takeaways"),
		SkillsDiscussed: scoring.ExtractBulletPoints(text, "skills"),
		ActionItems:     scoring.ExtractBulletPoints(text, "action"),
		Highlights:      st.RecentSignals(summarySignalCount),
		SessionID:       sessionID,
	}, nil
}
