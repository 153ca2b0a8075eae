package coach

import (
	"fmt"
	"strings"

	"github.com/wolfman30/salescoach-api/internal/session"
)

const signalFrameworkPrompt = `You are ReflectivAI — an AI Sales Coach for life sciences sales professionals.

Signal Intelligence (Core, Always On):
Signal Intelligence is the ability to notice, interpret, and respond appropriately to OBSERVABLE interaction signals during HCP conversations.

Valid signal types (strict):
- verbal: tone shifts, pacing, certainty vs hesitation, word choice
- conversational: deflection, repetition, topic avoidance, question patterns
- engagement: silence, reduced responsiveness, abrupt closure, time pressure
- contextual: urgency cues, alignment language, stakeholder presence, environmental factors

Hard guardrails (mandatory):
- Do NOT infer emotional state, intent, or personality traits
- Do NOT assign permanent labels or make character judgments
- Signals must be framed as hypotheses ("may indicate...") not truths
- Ground every signal in evidence: quote or closely paraphrase from the conversation
- Focus on observable, actionable patterns only

Signal format:
{
  "type": "verbal|conversational|engagement|contextual",
  "observation": "Direct quote or close paraphrase",
  "interpretation": "What this may indicate (hypothesis only)",
  "coaching": "Actionable response strategy"
}`

const chatSystemPrompt = `You are ReflectivAI, an expert AI Sales Coach for life sciences sales professionals.

` + signalFrameworkPrompt + `

Your role:
- Provide actionable, evidence-based coaching
- Help sales reps improve their HCP interactions
- Focus on emotional intelligence, active listening, and value communication
- Use frameworks like SPIN Selling, Challenger Sale, and consultative selling
- Be supportive but direct—prioritize growth over comfort`

const roleplaySystemPrompt = `You are simulating a healthcare professional (HCP) in a pharma sales roleplay scenario.

CRITICAL RULES FOR SITUATIONAL CUES:
1. Include 1-2 situational cues per response wrapped in *asterisks* at natural points
2. Cues should describe OBSERVABLE behaviors only - what the HCP is doing, not their internal state
3. Types of cues to include:
   - Body language: *crosses arms*, *leans forward*, *glances at watch*, *nods slowly*
   - Environmental: *phone buzzes on desk*, *nurse enters briefly*, *pager goes off*
   - Micro-expressions: *slight frown*, *raises eyebrow*, *brief smile*
   - Actions: *picks up prescription pad*, *sets down coffee*, *adjusts glasses*
4. Place cues naturally within dialogue, not just at beginning or end
5. Cues should reflect the conversation flow - if rep is doing well, show positive signals; if struggling, show concern signals

RESPONSE FORMAT:
Include situational cues naturally in your HCP dialogue. Example:
"*Leans back in chair* That's an interesting point about the efficacy data. *Glances at the clinical summary* But I'm still concerned about the cost implications for my patients."

BEHAVIOR GUIDELINES:
- Respond authentically as the HCP based on the scenario context
- Show realistic resistance, questions, and concerns
- React to the sales rep's approach with appropriate verbal and non-verbal signals
- Escalate or de-escalate based on rep's skill in handling the conversation
- If difficulty is "advanced", be more challenging with objections
- If difficulty is "beginner", be more receptive and give clearer signals`

const liveEQPrompt = `Analyze the sales rep's demonstrated emotional intelligence in real-time.

Score these 10 EI metrics (0-5 scale):
- empathy: ability to recognize and respond to HCP concerns
- clarity: clear, concise communication without jargon overload
- compliance: staying within appropriate professional boundaries
- discovery: asking thoughtful questions vs. pushing agenda
- objection-handling: addressing concerns with empathy and evidence
- confidence: professional assurance without arrogance
- active-listening: demonstrating understanding of HCP statements
- adaptability: flexibility in adjusting approach based on signals
- action-insight: providing actionable, valuable information
- resilience: composure when facing resistance or objections

Return JSON ONLY:
{
  "empathy": number,
  "clarity": number,
  "compliance": number,
  "discovery": number,
  "objectionHandling": number,
  "confidence": number,
  "activeListening": number,
  "adaptability": number,
  "actionInsight": number,
  "resilience": number,
  "summary": string (1-2 sentence overall assessment)
}`

const feedbackPrompt = `Analyze this pharmaceutical sales roleplay conversation and provide comprehensive performance feedback.

Return JSON with this exact structure:
{
  "overallScore": number (0-100),
  "eqScore": number (0-100),
  "technicalScore": number (0-100),

  "eqScores": [
    {"metric": "empathy", "score": number (0-5), "evidence": string},
    {"metric": "clarity", "score": number (0-5), "evidence": string},
    {"metric": "compliance", "score": number (0-5), "evidence": string},
    {"metric": "discovery", "score": number (0-5), "evidence": string},
    {"metric": "objection-handling", "score": number (0-5), "evidence": string},
    {"metric": "confidence", "score": number (0-5), "evidence": string},
    {"metric": "active-listening", "score": number (0-5), "evidence": string},
    {"metric": "adaptability", "score": number (0-5), "evidence": string},
    {"metric": "action-insight", "score": number (0-5), "evidence": string},
    {"metric": "resilience", "score": number (0-5), "evidence": string}
  ],

  "salesSkillScores": [
    {"skill": "Opening & Rapport", "score": number (0-5), "feedback": string},
    {"skill": "Needs Discovery", "score": number (0-5), "feedback": string},
    {"skill": "Value Presentation", "score": number (0-5), "feedback": string},
    {"skill": "Objection Handling", "score": number (0-5), "feedback": string},
    {"skill": "Closing & Next Steps", "score": number (0-5), "feedback": string}
  ],

  "signalIntelligence": {
    "signalsNoticed": number,
    "signalsActedOn": number,
    "missedOpportunities": [string],
    "effectiveResponses": [string]
  },

  "topStrengths": [string] (3-5 specific strengths with evidence),
  "priorityImprovements": [string] (3-5 actionable improvements),
  "nextSteps": [string] (3-5 concrete practice recommendations),

  "strengths": [string] (broader list of capabilities),
  "areasForImprovement": [string] (broader development areas),
  "frameworksApplied": [string] (e.g., "active-listening", "SPIN", "objection-handling"),
  "recommendations": [string] (strategic guidance)
}

SCORING GUIDELINES:
- 0: Not demonstrated at all
- 1: Attempted but ineffective
- 2: Basic level, room for improvement
- 3: Competent, meets expectations
- 4: Strong, above average
- 5: Exceptional, exemplary performance

For each EQ metric, cite specific evidence from the conversation.
For sales skills, provide actionable feedback.
Be specific, cite examples from the transcript, and focus on pharmaceutical sales context.`

const (
	summarySystemPrompt    = "You are a coaching session summarizer. Provide structured, actionable summaries."
	sqlSystemPrompt        = "You are a SQL expert for pharma sales analytics."
	knowledgeSystemPrompt  = "You are a knowledgeable expert in pharmaceutical sales, clinical research, and healthcare systems."
	frameworksSystemPrompt = "You are an expert in sales frameworks and methodologies."
	heuristicSystemPrompt  = "You are a sales training expert specializing in practical heuristics."
	exerciseSystemPrompt   = "You are a training designer for pharmaceutical sales teams."
	coachSystemPrompt      = "You are a sales coaching expert providing conversation guidance."
)

const (
	defaultInitialCue       = "*The HCP looks up from reviewing patient charts as you enter*"
	scenarioPromptCue       = "*The HCP looks up from their computer as you enter, a stack of patient files on the desk*"
	openingWithSetting      = " Good to see you. I have about 15 minutes before my next patient. What would you like to discuss?"
	openingWithoutSetting   = " Good to see you. What would you like to discuss today?"
	fallbackRoleplayReply   = "*Pauses thoughtfully* I appreciate you sharing that. Can you tell me more about the clinical evidence supporting this approach?"
	emptySummary            = "No conversation history to summarize."
	defaultHeuristicContext = "General pharmaceutical sales"
	defaultSQLExplanation   = "SQL query generated"
)

// ChatContext narrows coaching to a therapeutic area and audience.
type ChatContext struct {
	DiseaseState    string `json:"diseaseState,omitempty"`
	Specialty       string `json:"specialty,omitempty"`
	HCPCategory     string `json:"hcpCategory,omitempty"`
	InfluenceDriver string `json:"influenceDriver,omitempty"`
}

func buildChatSystemPrompt(c *ChatContext) string {
	prompt := chatSystemPrompt
	if c == nil {
		return prompt
	}
	if c.DiseaseState != "" {
		prompt += "\n\nDisease State Context: " + c.DiseaseState
	}
	if c.Specialty != "" {
		prompt += "\nHCP Specialty: " + c.Specialty
	}
	if c.HCPCategory != "" {
		prompt += "\nHCP Category: " + c.HCPCategory
	}
	if c.InfluenceDriver != "" {
		prompt += "\nInfluence Driver: " + c.InfluenceDriver
	}
	return prompt
}

func buildRoleplayPrompt(sc *session.ScenarioContext, difficulty string) string {
	if sc == nil {
		return roleplaySystemPrompt + "\n\nDifficulty: " + difficulty
	}
	return fmt.Sprintf(`%s

SCENARIO CONTEXT:
- Scenario: %s
- Stakeholder: %s
- Setting: %s
- HCP Current Mood: %s
- Potential Interruptions: %s
- Key Challenges: %s
- Difficulty: %s

INITIAL CUE (if starting conversation):
%s

Remember: Your response must include 1-2 situational cues wrapped in *asterisks* that describe observable behaviors.`,
		roleplaySystemPrompt,
		orDefault(sc.Title, "General HCP Meeting"),
		orDefault(sc.Stakeholder, "Healthcare Professional"),
		orDefault(sc.EnvironmentalContext, "Medical office during a scheduled meeting"),
		orDefault(sc.HCPMood, "Neutral, professional, time-conscious"),
		orDefault(strings.Join(sc.PotentialInterruptions, ", "), "Phone calls, staff interruptions"),
		orDefault(strings.Join(sc.Challenges, ", "), "Time constraints, skepticism about new treatments"),
		difficulty,
		orDefault(sc.InitialCue, scenarioPromptCue),
	)
}

func openingMessage(sc *session.ScenarioContext) string {
	cue := defaultInitialCue
	if sc != nil && sc.InitialCue != "" {
		cue = sc.InitialCue
	}
	if sc != nil && sc.EnvironmentalContext != "" {
		return cue + openingWithSetting
	}
	return cue + openingWithoutSetting
}

func buildSummaryPrompt(messages []session.ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return `Analyze this coaching conversation and provide:
1. A brief summary (2-3 sentences)
2. Key takeaways (3-5 bullet points)
3. Skills discussed (list)
4. Action items for the sales rep (3-5 specific actions)
5. Signal Intelligence highlights (if any)

Conversation:
` + strings.Join(lines, "\n\n")
}

func buildSQLPrompt(query string) string {
	return `Convert this natural language query to SQL for a pharma sales database.

Database schema:
- hcp_interactions (id, hcp_id, rep_id, date, duration, outcome, notes)
- hcps (id, name, specialty, institution, tier)
- products (id, name, therapeutic_area, launch_date)
- prescriptions (id, hcp_id, product_id, date, quantity)
- territories (id, name, region, rep_id)

Query: ` + query + `

Provide:
1. SQL query
2. Brief explanation
3. Expected result columns

Format as JSON:
{
  "sql": "...",
  "explanation": "...",
  "columns": [...]
}`
}

func buildKnowledgePrompt(question, articleContext string) string {
	prompt := "Answer this question about life sciences sales with factual rigor and practical advice.\n\nQuestion: " + question
	if articleContext != "" {
		prompt += "\n\nContext: " + articleContext
	}
	return prompt
}

func buildFrameworkPrompt(framework, situation string) string {
	return fmt.Sprintf(`Apply the %s framework to this sales situation:

%s

Provide:
1. Framework overview (2-3 sentences)
2. How to apply it to this situation (step-by-step)
3. Example dialogue
4. Key takeaways`, framework, situation)
}

func buildHeuristicPrompt(heuristic, context string) string {
	return fmt.Sprintf(`Customize this sales heuristic for the given context:

Heuristic: %s
Context: %s

Provide:
1. Customized version
2. When to use it
3. Example application`, heuristic, orDefault(context, defaultHeuristicContext))
}

func buildExercisePrompt(module, skill string) string {
	return fmt.Sprintf(`Create a training exercise for:

Module: %s
Skill: %s

Provide:
1. Exercise name
2. Objective (what the rep will learn)
3. Instructions (step-by-step)
4. Success criteria
5. Estimated time`, module, skill)
}

func buildCoachPrompt(c *ChatContext) string {
	prompt := "Generate 3 conversation starters and 6 suggested coaching topics for a pharmaceutical sales rep."
	if c != nil {
		if c.DiseaseState != "" {
			prompt += "\nDisease State: " + c.DiseaseState
		}
		if c.Specialty != "" {
			prompt += "\nHCP Specialty: " + c.Specialty
		}
		if c.HCPCategory != "" {
			prompt += "\nHCP Category: " + c.HCPCategory
		}
		if c.InfluenceDriver != "" {
			prompt += "\nInfluence Driver: " + c.InfluenceDriver
		}
	}
	return prompt + "\n\nFormat as JSON:\n{\n  \"conversationStarters\": [...],\n  \"suggestedTopics\": [...]\n}"
}

// transcript numbers roleplay turns for the analysis prompts.
func transcript(messages []session.RoleplayMessage) string {
	lines := make([]string, 0, len(messages))
	for i, m := range messages {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
