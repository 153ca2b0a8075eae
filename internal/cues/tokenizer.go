// Package cues turns roleplay replies into structured coaching signals.
//
// A cue is a span of stage direction wrapped in single asterisks, for
// example "*glances at watch*". Tokenize splits a reply into prose and cue
// segments, Interpret classifies a cue, and Extractor composes the two.
package cues

import (
	"regexp"
	"strings"
)

// Marker delimits a cue on both sides.
const Marker = "*"

// Kind distinguishes prose from cue segments.
type Kind string

const (
	KindProse Kind = "prose"
	KindCue   Kind = "cue"
)

// Segment is one emitted piece of a tokenized reply. Start and End are byte
// offsets of the original span; for cues the span includes both markers.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// A cue body is one or more non-marker bytes, so "**" never forms a cue and
// an unmatched trailing marker falls through to prose.
var cuePattern = regexp.MustCompile(`\*([^*]+)\*`)

// Tokenize splits text into ordered prose and cue segments.
//
// Prose is emitted verbatim, surrounding whitespace included, but only when it
// holds non-whitespace content. Cue text is trimmed. Empty or blank input
// yields no segments.
func Tokenize(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	matches := cuePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{Kind: KindProse, Text: text, Start: 0, End: len(text)}}
	}

	segments := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		segments = appendProse(segments, text, last, m[0])
		segments = append(segments, Segment{
			Kind:  KindCue,
			Text:  strings.TrimSpace(text[m[2]:m[3]]),
			Start: m[0],
			End:   m[1],
		})
		last = m[1]
	}
	return appendProse(segments, text, last, len(text))
}

func appendProse(segments []Segment, text string, start, end int) []Segment {
	if start >= end {
		return segments
	}
	chunk := text[start:end]
	if strings.TrimSpace(chunk) == "" {
		return segments
	}
	return append(segments, Segment{Kind: KindProse, Text: chunk, Start: start, End: end})
}

// Cues returns only the cue texts of text, in order of appearance.
func Cues(text string) []string {
	var out []string
	for _, seg := range Tokenize(text) {
		if seg.Kind == KindCue {
			out = append(out, seg.Text)
		}
	}
	return out
}

// Render joins segments back into display text. Prose is written as-is and
// cues are re-wrapped in markers.
func Render(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case KindCue:
			b.WriteString(Marker)
			b.WriteString(seg.Text)
			b.WriteString(Marker)
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}
