package cues

import "strings"

// SignalType is the coaching taxonomy a cue is classified into.
type SignalType string

const (
	SignalVerbal         SignalType = "verbal"
	SignalEngagement     SignalType = "engagement"
	SignalContextual     SignalType = "contextual"
	SignalConversational SignalType = "conversational"
)

// Valid reports whether t is one of the known signal types.
func (t SignalType) Valid() bool {
	switch t {
	case SignalVerbal, SignalEngagement, SignalContextual, SignalConversational:
		return true
	}
	return false
}

// Interpretation is the classification of a single cue.
type Interpretation struct {
	Type              SignalType `json:"type"`
	Interpretation    string     `json:"interpretation"`
	SuggestedResponse string     `json:"suggestedResponse"`
}

// Rule pairs a keyword predicate with the interpretation it yields.
type Rule struct {
	Name   string
	Result Interpretation
	match  func(lower string) bool
}

// Matches reports whether the rule fires for cue.
func (r Rule) Matches(cue string) bool {
	return r.match(strings.ToLower(cue))
}

func allOf(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if !strings.Contains(s, w) {
				return false
			}
		}
		return true
	}
}

func anyOf(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}

// Evaluated top to bottom; first match wins.
var rules = []Rule{
	{
		Name:  "lean-forward",
		match: allOf("lean", "forward"),
		Result: Interpretation{
			Type:              SignalEngagement,
			Interpretation:    "HCP is showing increased interest in this topic",
			SuggestedResponse: "Good opportunity to provide more detail or ask a discovery question",
		},
	},
	{
		Name:  "nod",
		match: anyOf("nod"),
		Result: Interpretation{
			Type:              SignalEngagement,
			Interpretation:    "HCP appears to agree or understand the point",
			SuggestedResponse: "Continue building on this topic or move to next key message",
		},
	},
	{
		Name: "time-pressure",
		match: func(s string) bool {
			return strings.Contains(s, "glance") && anyOf("watch", "clock")(s)
		},
		Result: Interpretation{
			Type:              SignalContextual,
			Interpretation:    "Time pressure signal - HCP may be feeling rushed",
			SuggestedResponse: "Consider summarizing key points or asking about priorities",
		},
	},
	{
		Name:  "crossed-arms",
		match: allOf("cross", "arm"),
		Result: Interpretation{
			Type:              SignalEngagement,
			Interpretation:    "Possible resistance or skepticism",
			SuggestedResponse: "Acknowledge their perspective, ask an open-ended question",
		},
	},
	{
		Name:  "device-interruption",
		match: anyOf("phone", "pager", "buzz"),
		Result: Interpretation{
			Type:              SignalContextual,
			Interpretation:    "External interruption - may affect attention",
			SuggestedResponse: "Offer to pause or recap when they return focus",
		},
	},
	{
		Name:  "clinical-interruption",
		match: anyOf("nurse", "staff", "enter"),
		Result: Interpretation{
			Type:              SignalContextual,
			Interpretation:    "Clinical environment interruption",
			SuggestedResponse: "Remain patient, acknowledge the demands of their role",
		},
	},
	{
		Name:  "frown",
		match: anyOf("frown", "furrow"),
		Result: Interpretation{
			Type:              SignalVerbal,
			Interpretation:    "Possible confusion or concern about what was said",
			SuggestedResponse: "Clarify or ask if they have questions about the point",
		},
	},
	{
		Name:  "raised-eyebrow",
		match: anyOf("eyebrow", "raise"),
		Result: Interpretation{
			Type:              SignalVerbal,
			Interpretation:    "Curiosity or skepticism signal",
			SuggestedResponse: "Provide evidence or ask what specifically prompted the reaction",
		},
	},
	{
		Name:  "smile",
		match: anyOf("smile", "laugh"),
		Result: Interpretation{
			Type:              SignalEngagement,
			Interpretation:    "Positive rapport signal",
			SuggestedResponse: "Good moment to reinforce relationship or transition topics",
		},
	},
	{
		Name:  "reaches-for",
		match: anyOf("picks up", "reaches for"),
		Result: Interpretation{
			Type:              SignalEngagement,
			Interpretation:    "HCP taking action - may indicate readiness to engage",
			SuggestedResponse: "Allow moment to complete, then continue or transition",
		},
	},
}

var defaultInterpretation = Interpretation{
	Type:              SignalContextual,
	Interpretation:    "Observable behavior that may provide context",
	SuggestedResponse: "Continue observing and adapt approach as needed",
}

// Interpret classifies a cue using the ordered keyword rules, falling back to
// a generic contextual reading when nothing matches.
func Interpret(cue string) Interpretation {
	lower := strings.ToLower(cue)
	for _, r := range rules {
		if r.match(lower) {
			return r.Result
		}
	}
	return defaultInterpretation
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Default returns the interpretation used when no rule matches.
func Default() Interpretation {
	return defaultInterpretation
}
