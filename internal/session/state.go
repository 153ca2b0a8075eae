// Package session owns the persisted shape of a coaching session and the
// rules for loading, trimming and saving it.
package session

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/salescoach-api/internal/cues"
)

// Retention limits applied on every mutation and again before each write.
const (
	MaxChatMessages   = 100
	MaxMessageContent = 10000
	MaxSQLQueries     = 50
	MaxSignals        = 50
)

// ErrNoRoleplay is returned when a roleplay turn is recorded without an
// active roleplay.
var ErrNoRoleplay = errors.New("session: no active roleplay")

// Role identifies the speaker of a roleplay message.
type Role string

const (
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
	RoleStakeholder Role = "stakeholder"
	RoleHCP         Role = "hcp"
	RoleRep         Role = "rep"
)

// ChatMessage is one turn of the coaching chat.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRecord logs a natural-language to SQL translation.
type QueryRecord struct {
	ID              string   `json:"id"`
	NaturalLanguage string   `json:"naturalLanguage"`
	SQLQuery        string   `json:"sqlQuery"`
	Explanation     string   `json:"explanation"`
	Columns         []string `json:"columns,omitempty"`
	Timestamp       int64    `json:"timestamp"`
}

// ScenarioContext describes the simulated encounter supplied by the client.
type ScenarioContext struct {
	ID                     string   `json:"id,omitempty"`
	Title                  string   `json:"title,omitempty"`
	Stakeholder            string   `json:"stakeholder,omitempty"`
	EnvironmentalContext   string   `json:"environmentalContext,omitempty"`
	HCPMood                string   `json:"hcpMood,omitempty"`
	PotentialInterruptions []string `json:"potentialInterruptions,omitempty"`
	Challenges             []string `json:"challenges,omitempty"`
	InitialCue             string   `json:"initialCue,omitempty"`
	Difficulty             string   `json:"difficulty,omitempty"`
}

// RoleplayMessage is one turn of a roleplay. Timestamp is Unix milliseconds.
type RoleplayMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Roleplay is the active simulated conversation, if any.
type Roleplay struct {
	ID         string            `json:"id"`
	ScenarioID string            `json:"scenarioId"`
	Difficulty string            `json:"difficulty"`
	Scenario   *ScenarioContext  `json:"scenario,omitempty"`
	Messages   []RoleplayMessage `json:"messages"`
	StartedAt  int64             `json:"startTime,omitempty"`
	TurnCount  int               `json:"turnCount"`
}

// State is everything persisted for one session.
type State struct {
	ChatMessages []ChatMessage `json:"chatMessages"`
	SQLQueries   []QueryRecord `json:"sqlQueries"`
	Roleplay     *Roleplay     `json:"roleplay"`
	Signals      []cues.Signal `json:"signals"`
}

// NewState returns the empty default state.
func NewState() State {
	return State{
		ChatMessages: []ChatMessage{},
		SQLQueries:   []QueryRecord{},
		Signals:      []cues.Signal{},
	}
}

// Sanitize applies every retention cap and returns a new State. Signals keep
// only type, signal, interpretation, suggestedResponse and timestamp. The
// roleplay passes through untouched. Sanitize is idempotent.
func Sanitize(s State) State {
	out := NewState()
	out.Roleplay = s.Roleplay

	for _, m := range lastN(s.ChatMessages, MaxChatMessages) {
		out.ChatMessages = append(out.ChatMessages, ChatMessage{
			Role:    m.Role,
			Content: truncateRunes(m.Content, MaxMessageContent),
		})
	}
	out.SQLQueries = append(out.SQLQueries, lastN(s.SQLQueries, MaxSQLQueries)...)
	for _, sig := range lastN(s.Signals, MaxSignals) {
		out.Signals = append(out.Signals, cues.Signal{
			Type:              sig.Type,
			Signal:            sig.Signal,
			Interpretation:    sig.Interpretation,
			SuggestedResponse: sig.SuggestedResponse,
			Timestamp:         sig.Timestamp,
		})
	}
	return out
}

// AppendChat records a chat turn.
func (s *State) AppendChat(role, content string) {
	s.ChatMessages = lastN(append(s.ChatMessages, ChatMessage{Role: role, Content: content}), MaxChatMessages)
}

// ClearChat drops the chat history and nothing else.
func (s *State) ClearChat() {
	s.ChatMessages = []ChatMessage{}
}

// StartRoleplay replaces any active roleplay with rp.
func (s *State) StartRoleplay(rp *Roleplay) {
	s.Roleplay = rp
}

// AppendRoleplayTurn adds a message to the active roleplay. User turns bump
// the turn count.
func (s *State) AppendRoleplayTurn(role Role, content string, at time.Time) error {
	if s.Roleplay == nil {
		return ErrNoRoleplay
	}
	s.Roleplay.Messages = append(s.Roleplay.Messages, RoleplayMessage{
		Role:      role,
		Content:   content,
		Timestamp: at.UnixMilli(),
	})
	if role == RoleUser || role == RoleRep {
		s.Roleplay.TurnCount++
	}
	return nil
}

// AppendSignals accumulates extracted signals.
func (s *State) AppendSignals(signals ...cues.Signal) {
	if len(signals) == 0 {
		return
	}
	s.Signals = lastN(append(s.Signals, signals...), MaxSignals)
}

// AppendQuery logs a SQL translation.
func (s *State) AppendQuery(q QueryRecord) {
	s.SQLQueries = lastN(append(s.SQLQueries, q), MaxSQLQueries)
}

// EndRoleplay clears the active roleplay and returns it.
func (s *State) EndRoleplay() *Roleplay {
	rp := s.Roleplay
	s.Roleplay = nil
	return rp
}

// RecentChat returns up to n of the latest chat messages.
func (s *State) RecentChat(n int) []ChatMessage {
	return lastN(s.ChatMessages, n)
}

// RecentSignals returns up to n of the latest signals.
func (s *State) RecentSignals(n int) []cues.Signal {
	out := lastN(s.Signals, n)
	if out == nil {
		return []cues.Signal{}
	}
	return out
}

// fillDefaults replaces null collections from older or hand-written records.
func (s *State) fillDefaults() {
	if s.ChatMessages == nil {
		s.ChatMessages = []ChatMessage{}
	}
	if s.SQLQueries == nil {
		s.SQLQueries = []QueryRecord{}
	}
	if s.Signals == nil {
		s.Signals = []cues.Signal{}
	}
	if s.Roleplay != nil && s.Roleplay.Messages == nil {
		s.Roleplay.Messages = []RoleplayMessage{}
	}
}

func lastN[T any](items []T, n int) []T {
	if n <= 0 {
		return items[:0]
	}
	if len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
