package scoring

// LiveEQ is the per-turn EQ snapshot shown while a roleplay is running.
type LiveEQ struct {
	Empathy           float64 `json:"empathy"`
	Clarity           float64 `json:"clarity"`
	Compliance        float64 `json:"compliance"`
	Discovery         float64 `json:"discovery"`
	ObjectionHandling float64 `json:"objectionHandling"`
	Confidence        float64 `json:"confidence"`
	ActiveListening   float64 `json:"activeListening"`
	Adaptability      float64 `json:"adaptability"`
	ActionInsight     float64 `json:"actionInsight"`
	Resilience        float64 `json:"resilience"`
	Summary           string  `json:"summary,omitempty"`
}

// NormalizeLiveEQ clamps each metric of a decoded model response, defaulting
// anything missing to 3.
func NormalizeLiveEQ(parsed any) LiveEQ {
	m, _ := parsed.(map[string]any)
	summary, _ := m["summary"].(string)
	return LiveEQ{
		Empathy:           Score(m["empathy"]),
		Clarity:           Score(m["clarity"]),
		Compliance:        Score(m["compliance"]),
		Discovery:         Score(m["discovery"]),
		ObjectionHandling: Score(m["objectionHandling"]),
		Confidence:        Score(m["confidence"]),
		ActiveListening:   Score(m["activeListening"]),
		Adaptability:      Score(m["adaptability"]),
		ActionInsight:     Score(m["actionInsight"]),
		Resilience:        Score(m["resilience"]),
		Summary:           summary,
	}
}

// ZeroLiveEQ is reported before the rep has said anything.
func ZeroLiveEQ() LiveEQ {
	return LiveEQ{}
}

// DefaultLiveEQ is reported when the provider call fails.
func DefaultLiveEQ() LiveEQ {
	return uniformLiveEQ(DefaultScore)
}

func uniformLiveEQ(v float64) LiveEQ {
	return LiveEQ{
		Empathy:           v,
		Clarity:           v,
		Compliance:        v,
		Discovery:         v,
		ObjectionHandling: v,
		Confidence:        v,
		ActiveListening:   v,
		Adaptability:      v,
		ActionInsight:     v,
		Resilience:        v,
	}
}
