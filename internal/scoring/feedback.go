package scoring

// EQScore is one emotional-intelligence metric.
type EQScore struct {
	Metric   string  `json:"metric"`
	Score    float64 `json:"score"`
	Evidence string  `json:"evidence"`
}

// SkillScore is one sales-skill rating.
type SkillScore struct {
	Skill    string  `json:"skill"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// SignalIntelligence summarizes how the rep handled observable signals.
type SignalIntelligence struct {
	SignalsNoticed      int      `json:"signalsNoticed"`
	SignalsActedOn      int      `json:"signalsActedOn"`
	MissedOpportunities []string `json:"missedOpportunities"`
	EffectiveResponses  []string `json:"effectiveResponses"`
}

// Feedback is the end-of-roleplay assessment.
type Feedback struct {
	OverallScore         float64            `json:"overallScore"`
	EQScore              float64            `json:"eqScore"`
	TechnicalScore       float64            `json:"technicalScore"`
	EQScores             []EQScore          `json:"eqScores"`
	SalesSkillScores     []SkillScore       `json:"salesSkillScores"`
	SignalIntelligence   SignalIntelligence `json:"signalIntelligence"`
	TopStrengths         []string           `json:"topStrengths"`
	PriorityImprovements []string           `json:"priorityImprovements"`
	NextSteps            []string           `json:"nextSteps"`
	Strengths            []string           `json:"strengths"`
	AreasForImprovement  []string           `json:"areasForImprovement"`
	FrameworksApplied    []string           `json:"frameworksApplied"`
	Recommendations      []string           `json:"recommendations"`
}

const (
	DefaultOverallScore   = 75.0
	DefaultEQScore        = 72.0
	DefaultTechnicalScore = 78.0
)

var defaultEQScores = []EQScore{
	{Metric: "empathy", Score: 3, Evidence: "Demonstrated understanding of HCP perspective"},
	{Metric: "clarity", Score: 3, Evidence: "Communication was generally clear"},
	{Metric: "compliance", Score: 4, Evidence: "Maintained appropriate professional boundaries"},
	{Metric: "discovery", Score: 3, Evidence: "Asked relevant questions"},
	{Metric: "objection-handling", Score: 3, Evidence: "Addressed concerns adequately"},
	{Metric: "confidence", Score: 3, Evidence: "Showed professional assurance"},
	{Metric: "active-listening", Score: 3, Evidence: "Responded to HCP statements"},
	{Metric: "adaptability", Score: 3, Evidence: "Adjusted approach during conversation"},
	{Metric: "action-insight", Score: 3, Evidence: "Provided useful information"},
	{Metric: "resilience", Score: 3, Evidence: "Maintained composure throughout"},
}

var defaultSkillScores = []SkillScore{
	{Skill: "Opening & Rapport", Score: 3, Feedback: "Established basic rapport"},
	{Skill: "Needs Discovery", Score: 3, Feedback: "Gathered some relevant information"},
	{Skill: "Value Presentation", Score: 3, Feedback: "Communicated product value"},
	{Skill: "Objection Handling", Score: 3, Feedback: "Addressed objections adequately"},
	{Skill: "Closing & Next Steps", Score: 3, Feedback: "Attempted to establish next steps"},
}

var (
	defaultTopStrengths = []string{
		"Acknowledged HCP concerns before presenting solutions",
		"Used evidence-based language when discussing product",
		"Maintained professional composure throughout interaction",
	}
	defaultPriorityImprovements = []string{
		"Ask 2-3 discovery questions before presenting product benefits",
		"Confirm understanding of HCP's top priority explicitly",
		"Practice citing specific trial data points",
	}
	defaultNextSteps = []string{
		"Prepare 3 discovery questions for next HCP conversation",
		"Review key trial endpoints to cite when discussing efficacy",
		"Practice 20-second acknowledgment of common objections",
	}
	defaultStrengths           = []string{"Clear value communication", "Good rapport"}
	defaultAreasForImprovement = []string{"Ask more open-ended questions"}
	defaultFrameworksApplied   = []string{"active-listening", "value-based-messaging"}
	defaultRecommendations     = []string{"Practice discovery questions", "Review clinical data"}
)

// DefaultEQScores returns a fresh copy of the ten default EQ metrics.
func DefaultEQScores() []EQScore {
	return append([]EQScore{}, defaultEQScores...)
}

// DefaultSkillScores returns a fresh copy of the five default sales skills.
func DefaultSkillScores() []SkillScore {
	return append([]SkillScore{}, defaultSkillScores...)
}

// DefaultFeedback is the assessment returned when the model produced nothing
// usable.
func DefaultFeedback() Feedback {
	return NormalizeFeedback(nil)
}

// NormalizeFeedback coerces a decoded model response into a complete
// Feedback. It never fails; every missing or malformed field is defaulted.
func NormalizeFeedback(parsed any) Feedback {
	obj, _ := parsed.(map[string]any)

	return Feedback{
		OverallScore:         clampPercent(obj["overallScore"], DefaultOverallScore),
		EQScore:              clampPercent(obj["eqScore"], DefaultEQScore),
		TechnicalScore:       clampPercent(obj["technicalScore"], DefaultTechnicalScore),
		EQScores:             normalizeEQScores(obj["eqScores"]),
		SalesSkillScores:     normalizeSkillScores(obj["salesSkillScores"]),
		SignalIntelligence:   normalizeSignalIntelligence(obj["signalIntelligence"]),
		TopStrengths:         NormalizeStrings(obj["topStrengths"], defaultTopStrengths),
		PriorityImprovements: NormalizeStrings(obj["priorityImprovements"], defaultPriorityImprovements),
		NextSteps:            NormalizeStrings(obj["nextSteps"], defaultNextSteps),
		Strengths:            NormalizeStrings(obj["strengths"], defaultStrengths),
		AreasForImprovement:  NormalizeStrings(obj["areasForImprovement"], defaultAreasForImprovement),
		FrameworksApplied:    NormalizeStrings(obj["frameworksApplied"], defaultFrameworksApplied),
		Recommendations:      NormalizeStrings(obj["recommendations"], defaultRecommendations),
	}
}

func normalizeEQScores(value any) []EQScore {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return DefaultEQScores()
	}
	out := make([]EQScore, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		out = append(out, EQScore{
			Metric:   asLabel(m["metric"], "unknown"),
			Score:    Score(m["score"]),
			Evidence: asLabel(m["evidence"], "No specific evidence cited"),
		})
	}
	return out
}

func normalizeSkillScores(value any) []SkillScore {
	items, ok := value.([]any)
	if !ok || len(items) == 0 {
		return DefaultSkillScores()
	}
	out := make([]SkillScore, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		out = append(out, SkillScore{
			Skill:    asLabel(m["skill"], "Unknown"),
			Score:    Score(m["score"]),
			Feedback: asLabel(m["feedback"], "No specific feedback"),
		})
	}
	return out
}

func normalizeSignalIntelligence(value any) SignalIntelligence {
	m, ok := value.(map[string]any)
	if !ok {
		return SignalIntelligence{MissedOpportunities: []string{}, EffectiveResponses: []string{}}
	}
	return SignalIntelligence{
		SignalsNoticed:      asCount(m["signalsNoticed"]),
		SignalsActedOn:      asCount(m["signalsActedOn"]),
		MissedOpportunities: filterStrings(m["missedOpportunities"]),
		EffectiveResponses:  filterStrings(m["effectiveResponses"]),
	}
}
