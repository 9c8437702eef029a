package policy

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/scaffold-engine/internal/kernel"
)

func TestNeutralPolicyNoConflict(t *testing.T) {
	result, err := DetectConflict(&RunPolicy{})
	if err != nil {
		t.Fatal(err)
	}
	if result.HasConflict() {
		t.Error("empty policy must not conflict")
	}
	if result.MScore < 0 {
		t.Errorf("m score: got %f", result.MScore)
	}
}

func TestContradictoryPolicyDetectsFriction(t *testing.T) {
	policy := &RunPolicy{
		Temperature:             Float(1.8),
		OutputFormat:            "bullet_points",
		MaxLengthGuidance:       "concise, under 100 words",
		Compact:                 Bool(true),
		SkipDisclaimers:         true,
		RemoveProhibitedActions: []string{"*"},
	}
	result, err := DetectConflict(policy)
	if err != nil {
		t.Fatal(err)
	}
	if !result.HasConflict() {
		t.Errorf("creative-but-strict-and-unsafe policy must conflict, got %s", result.Signal)
	}
	if result.LayerValues["safety_priority"] >= 0.1 {
		t.Errorf("stripped safety must be near zero, got %f", result.LayerValues["safety_priority"])
	}
}

func TestAggressivePresetLowSafety(t *testing.T) {
	values := LayerValues(FromPreset(BuiltinPresets()["aggressive"]))
	if values["safety_priority"] >= 0.1 {
		t.Errorf("aggressive preset safety must be < 0.1, got %f", values["safety_priority"])
	}
}

func TestLayerValuesBounded(t *testing.T) {
	extreme := &RunPolicy{
		Temperature:             Float(2.0),
		OutputFormat:            "json",
		MaxLengthGuidance:       "under 10 words",
		Compact:                 Bool(true),
		SkipDisclaimers:         true,
		RemoveProhibitedActions: []string{"*"},
		ExtraMustInclude:        []string{"a", "b", "c", "d", "e"},
		ExtraProhibitedActions:  []string{"x", "y", "z", "w"},
	}
	for name, v := range LayerValues(extreme) {
		if v < 0 || v > 1 {
			t.Errorf("%s=%f out of bounds", name, v)
		}
	}
}

func TestConflictSummary(t *testing.T) {
	result, err := DetectConflict(&RunPolicy{})
	if err != nil {
		t.Fatal(err)
	}
	summary := result.Summary()
	if !strings.Contains(summary, "m_score=") || !strings.Contains(summary, "signal=") {
		t.Errorf("summary: got %q", summary)
	}
}

func TestCoherencePresent(t *testing.T) {
	result, err := DetectConflict(&RunPolicy{Temperature: Float(0.8)})
	if err != nil {
		t.Fatal(err)
	}
	if result.Coherence < 0 || result.Coherence > 1 {
		t.Errorf("coherence out of range: %f", result.Coherence)
	}
	if result.Signal == kernel.SignalFriction {
		t.Error("mild temperature alone must not conflict")
	}
}
