package cues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		cue            string
		wantType       SignalType
		wantInterprets string
	}{
		{"leans forward", SignalEngagement, "HCP is showing increased interest in this topic"},
		{"LEANS FORWARD slightly", SignalEngagement, "HCP is showing increased interest in this topic"},
		{"nods slowly", SignalEngagement, "HCP appears to agree or understand the point"},
		{"glances at watch", SignalContextual, "Time pressure signal - HCP may be feeling rushed"},
		{"glances at the clock", SignalContextual, "Time pressure signal - HCP may be feeling rushed"},
		{"crosses arms", SignalEngagement, "Possible resistance or skepticism"},
		{"phone buzzes", SignalContextual, "External interruption - may affect attention"},
		{"pager goes off", SignalContextual, "External interruption - may affect attention"},
		{"a nurse knocks", SignalContextual, "Clinical environment interruption"},
		{"frowns", SignalVerbal, "Possible confusion or concern about what was said"},
		{"brow furrows", SignalVerbal, "Possible confusion or concern about what was said"},
		{"raises an eyebrow", SignalVerbal, "Curiosity or skepticism signal"},
		{"smiles warmly", SignalEngagement, "Positive rapport signal"},
		{"laughs", SignalEngagement, "Positive rapport signal"},
		{"picks up the brochure", SignalEngagement, "HCP taking action - may indicate readiness to engage"},
		{"reaches for the study", SignalEngagement, "HCP taking action - may indicate readiness to engage"},
		{"flies to the moon", SignalContextual, "Observable behavior that may provide context"},
		{"", SignalContextual, "Observable behavior that may provide context"},
	}

	for _, tt := range tests {
		t.Run(tt.cue, func(t *testing.T) {
			got := Interpret(tt.cue)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantInterprets, got.Interpretation)
			assert.NotEmpty(t, got.SuggestedResponse)
		})
	}
}

func TestInterpretPriority(t *testing.T) {
	// lean+forward outranks nod even when both are present.
	assert.Equal(t, "lean-forward", ruleFor("nods and leans forward"))
	// glance without watch or clock falls through to later rules.
	assert.Equal(t, "smile", ruleFor("glances over and smiles"))
	// "enter" in "centered" still reads as a clinical interruption.
	assert.Equal(t, "clinical-interruption", ruleFor("centered posture"))
}

func TestInterpretIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Interpret("leans forward"), Interpret("leans forward"))
	}
	assert.Equal(t, Default(), Interpret("flies to the moon"))
}

func TestRulesReturnsCopy(t *testing.T) {
	table := Rules()
	require.Len(t, table, 10)
	table[0].Name = "mutated"
	assert.Equal(t, "lean-forward", Rules()[0].Name)
	assert.True(t, table[1].Matches("Nods"))
}

func TestSignalTypeValid(t *testing.T) {
	assert.True(t, SignalConversational.Valid())
	assert.False(t, SignalType("emotional").Valid())
}

func ruleFor(cue string) string {
	for _, r := range Rules() {
		if r.Matches(cue) {
			return r.Name
		}
	}
	return ""
}
