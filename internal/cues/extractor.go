package cues

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is ISO-8601 with millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Signal is a classified, identified observation shown in the insights panel.
type Signal struct {
	ID                string     `json:"id,omitempty"`
	Type              SignalType `json:"type"`
	Signal            string     `json:"signal"`
	Interpretation    string     `json:"interpretation"`
	SuggestedResponse string     `json:"suggestedResponse"`
	Timestamp         string     `json:"timestamp"`
}

// Extractor composes Tokenize and Interpret. NewID and Now are injectable so
// tests can pin identifiers and timestamps; zero values use uuid and the
// wall clock.
type Extractor struct {
	NewID func() string
	Now   func() time.Time
}

var defaultExtractor Extractor

// ExtractSignals runs the default extractor over a reply.
func ExtractSignals(text string) []Signal {
	return defaultExtractor.Extract(text)
}

// Extract returns one signal per cue in left-to-right order. Replies without
// cues produce an empty, non-nil slice.
func (e Extractor) Extract(text string) []Signal {
	signals := []Signal{}
	for _, seg := range Tokenize(text) {
		if seg.Kind != KindCue {
			continue
		}
		interp := Interpret(seg.Text)
		signals = append(signals, Signal{
			ID:                e.id(),
			Type:              interp.Type,
			Signal:            seg.Text,
			Interpretation:    interp.Interpretation,
			SuggestedResponse: interp.SuggestedResponse,
			Timestamp:         e.timestamp(),
		})
	}
	return signals
}

// jsonSignalPattern finds flat JSON objects that mention a "type" key.
var jsonSignalPattern = regexp.MustCompile(`\{[^}]*"type"[^}]*\}`)

type jsonSignal struct {
	Type           string `json:"type"`
	Observation    string `json:"observation"`
	Interpretation string `json:"interpretation"`
	Coaching       string `json:"coaching"`
}

// ParseJSONSignals runs the default extractor's JSON signal parser.
func ParseJSONSignals(text string) []Signal {
	return defaultExtractor.ParseJSON(text)
}

// ParseJSON collects inline signal objects of the form
// {"type","observation","interpretation","coaching"} from coach replies.
// Objects that fail to decode, lack type or observation, or carry an unknown
// type are skipped.
func (e Extractor) ParseJSON(text string) []Signal {
	signals := []Signal{}
	for _, raw := range jsonSignalPattern.FindAllString(text, -1) {
		var js jsonSignal
		if err := json.Unmarshal([]byte(raw), &js); err != nil {
			continue
		}
		typ := SignalType(strings.ToLower(strings.TrimSpace(js.Type)))
		if !typ.Valid() || strings.TrimSpace(js.Observation) == "" {
			continue
		}
		signals = append(signals, Signal{
			ID:                e.id(),
			Type:              typ,
			Signal:            js.Observation,
			Interpretation:    js.Interpretation,
			SuggestedResponse: js.Coaching,
			Timestamp:         e.timestamp(),
		})
	}
	return signals
}

func (e Extractor) id() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e Extractor) timestamp() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return now().UTC().Format(TimestampLayout)
}
