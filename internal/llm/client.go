// Package llm is the language-model capability used by the coaching flows:
// send a system prompt plus messages, get text back.
package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Defaults applied when a request leaves MaxTokens or Temperature at zero.
const (
	DefaultMaxTokens   int32   = 2000
	DefaultTemperature float32 = 0.7
)

// Message is one provider-facing chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request is a provider-agnostic completion request. Zero MaxTokens and
// Temperature take the package defaults. JSON asks the provider for a JSON
// object; callers must still treat the reply as untrusted text.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	JSON        bool
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client completes a chat request.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

func (r Request) maxTokens() int32 {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

func (r Request) temperature() float32 {
	if r.Temperature > 0 {
		return r.Temperature
	}
	return DefaultTemperature
}

// systemText joins non-blank system blocks.
func (r Request) systemText() string {
	parts := make([]string, 0, len(r.System))
	for _, block := range r.System {
		if strings.TrimSpace(block) != "" {
			parts = append(parts, block)
		}
	}
	return strings.Join(parts, "\n\n")
}

// openingTurn stands in for the user when a conversation opens on an
// assistant turn, as a roleplay does with the stakeholder's greeting.
const openingTurn = "Begin the conversation."

// conversationTurns prepares messages for providers that require strict
// user/assistant alternation starting with the user (Bedrock Converse,
// Gemini). Blank turns are dropped, system turns are returned separately,
// consecutive same-role turns are merged and a leading assistant turn gets
// a user turn in front of it.
func conversationTurns(messages []Message) ([]string, []Message, error) {
	var system []string
	turns := make([]Message, 0, len(messages)+1)
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			system = append(system, content)
			continue
		case RoleUser, RoleAssistant:
		default:
			return nil, nil, fmt.Errorf("llm: unsupported role %q", msg.Role)
		}
		if n := len(turns); n > 0 && turns[n-1].Role == msg.Role {
			turns[n-1].Content += "\n\n" + content
			continue
		}
		if len(turns) == 0 && msg.Role == RoleAssistant {
			turns = append(turns, Message{Role: RoleUser, Content: openingTurn})
		}
		turns = append(turns, Message{Role: msg.Role, Content: content})
	}
	return system, turns, nil
}
