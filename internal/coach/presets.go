package coach

// Exercise is a short practice activity attached to a daily insight.
type Exercise struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Insight is a dashboard tip of the day.
type Insight struct {
	DailyTip          string   `json:"dailyTip"`
	FocusArea         string   `json:"focusArea"`
	SuggestedExercise Exercise `json:"suggestedExercise"`
	MotivationalQuote string   `json:"motivationalQuote"`
}

// Focus is a daily focus card.
type Focus struct {
	Title      string `json:"title"`
	Focus      string `json:"focus"`
	MicroTask  string `json:"microTask"`
	Reflection string `json:"reflection"`
}

var insightPresets = []Insight{
	{
		DailyTip:  "Take time today to research your client's recent activities, publications, or clinical interests. Personalized preparation builds trust and demonstrates genuine partnership.",
		FocusArea: "Active Listening",
		SuggestedExercise: Exercise{
			Title:       "5-Minute Sales Story Reflection",
			Description: "After each client interaction, jot down the main points they emphasized. What mattered most to them? What questions did they ask? Use this to refine your next conversation.",
		},
		MotivationalQuote: "Success is not just about making sales—it's about making meaningful connections that drive better patient outcomes.",
	},
	{
		DailyTip:  "Practice the 3-second pause before responding to objections. This brief moment helps you respond thoughtfully rather than react defensively.",
		FocusArea: "Objection Handling",
		SuggestedExercise: Exercise{
			Title:       "Objection Reframing Practice",
			Description: "List 3 common objections you hear. For each, write down: (1) The underlying concern, (2) A clarifying question, (3) A value-based response that addresses their real need.",
		},
		MotivationalQuote: "Every objection is an opportunity to understand your client's priorities more deeply.",
	},
	{
		DailyTip:  "Focus on asking one powerful question today that helps your HCP articulate their biggest challenge. Listen more than you speak.",
		FocusArea: "Curiosity & Discovery",
		SuggestedExercise: Exercise{
			Title:       "Question Quality Audit",
			Description: "Review your last 3 conversations. How many questions did you ask vs. statements you made? Aim for a 60/40 question-to-statement ratio.",
		},
		MotivationalQuote: "The quality of your questions determines the quality of your relationships.",
	},
	{
		DailyTip:  "When presenting clinical data, connect each data point to a specific patient outcome or clinical workflow improvement. Make the science tangible.",
		FocusArea: "Value Communication",
		SuggestedExercise: Exercise{
			Title:       "Data-to-Impact Translation",
			Description: "Take 3 key data points from your product. For each, write: (1) The clinical metric, (2) What it means for patient care, (3) How it impacts the HCP's practice.",
		},
		MotivationalQuote: "Data informs, but stories inspire action.",
	},
	{
		DailyTip:  "Build resilience by celebrating small wins. Did an HCP ask a follow-up question? That's engagement. Did they share a patient case? That's trust building.",
		FocusArea: "Resilience & Adaptability",
		SuggestedExercise: Exercise{
			Title:       "Win Recognition Journal",
			Description: "At the end of each day, write down 3 small wins—moments of progress, connection, or learning. Review weekly to see patterns of growth.",
		},
		MotivationalQuote: "Resilience isn't about never facing setbacks—it's about learning and adapting from each one.",
	},
}

var focusPresets = []Focus{
	{
		Title:      "Active Listening",
		Focus:      "Use open-ended questions and mirror one key phrase from your HCP's response to show you're truly hearing them.",
		MicroTask:  "In your next interaction, mirror one key phrase the HCP uses and ask a follow-up question about it.",
		Reflection: "Where did I assume instead of clarifying?",
	},
	{
		Title:      "Objection Handling",
		Focus:      "Pause 3 seconds before responding to objections. Use that time to identify the underlying concern.",
		MicroTask:  "When you hear an objection today, pause, then ask: 'Help me understand what's driving that concern?'",
		Reflection: "Did I address the real concern or just the surface objection?",
	},
	{
		Title:      "Value Communication",
		Focus:      "Connect every clinical data point to a specific patient outcome or workflow improvement.",
		MicroTask:  "Before your next meeting, prepare 3 'data-to-impact' statements that link your product's evidence to real-world clinical benefits.",
		Reflection: "Did my HCP see how this impacts their patients?",
	},
	{
		Title:      "Curiosity & Discovery",
		Focus:      "Ask questions that help HCPs articulate their challenges. Aim for 60% questions, 40% statements.",
		MicroTask:  "Start your next conversation with: 'What's the biggest challenge you're facing with [condition] patients right now?'",
		Reflection: "Did I learn something new about my HCP's priorities?",
	},
	{
		Title:      "Resilience & Adaptability",
		Focus:      "Recognize small wins and learn from setbacks. Every interaction is data for improvement.",
		MicroTask:  "After each call, write down: (1) One thing that went well, (2) One thing to adjust next time.",
		Reflection: "What did I learn from today's challenges?",
	},
}

var defaultConversationStarters = []string{
	"What are your biggest challenges with [disease state] patients?",
	"How do you currently approach treatment decisions for [condition]?",
	"What would make the biggest difference in your patient outcomes?",
}

var defaultSuggestedTopics = []string{
	"Clinical evidence review",
	"Patient case studies",
	"Formulary access strategies",
	"Treatment algorithms",
	"Safety considerations",
	"Real-world outcomes data",
}
