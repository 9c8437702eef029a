// Package selection scores and ranks reasoning templates against free-text
// input across four signal layers, with saturation, cross-layer
// reinforcement, and confidence/ambiguity gating.
package selection

// #region layer-weights

// LayerWeights holds the per-layer combination weights. Intent is trusted
// most: exact-phrase hits are rarely false positives.
type LayerWeights struct {
	Surface    float64
	Intent     float64
	Structural float64
	Contextual float64
}

// DefaultLayerWeights returns the standard weight split.
func DefaultLayerWeights() LayerWeights {
	return LayerWeights{
		Surface:    0.20,
		Intent:     0.40,
		Structural: 0.30,
		Contextual: 0.10,
	}
}

// #endregion layer-weights

// #region context-keys

// Context keys recognized by the contextual layer.
const (
	ContextDomain        = "domain"
	ContextPriorTemplate = "prior_template_id"
)

// #endregion context-keys

// #region params

// Params holds every tunable knob in the layered scorer. Constructed per
// call via DefaultParams and adjusted; never persisted.
// A zero MinConfidence disables the confidence gate, a zero AmbiguityMargin
// disables ambiguity flagging.
type Params struct {
	Weights LayerWeights

	// Saturation rates; higher k = faster diminishing returns.
	SurfaceSaturation float64
	IntentSaturation  float64

	// Intent phrase matching.
	MinIntentCoverage float64
	ExactPhraseBonus  float64

	// Cross-layer interaction.
	Reinforcement   float64
	LayerActivation float64

	// Structural layer.
	StructuralMinOverlap int

	// Selection gates.
	MinConfidence   float64
	AmbiguityMargin float64

	// Contextual inputs and per-template score bias.
	Context map[string]string
	Bias    map[string]float64
}

// DefaultParams returns permissive defaults: nothing is rejected or flagged
// unless the caller opts in.
func DefaultParams() Params {
	return Params{
		Weights:              DefaultLayerWeights(),
		SurfaceSaturation:    0.7,
		IntentSaturation:     1.0,
		MinIntentCoverage:    0.5,
		ExactPhraseBonus:     0.3,
		Reinforcement:        0.15,
		LayerActivation:      0.05,
		StructuralMinOverlap: 2,
		MinConfidence:        0,
		AmbiguityMargin:      0,
	}
}

// #endregion params

// #region layer-breakdown

// LayerBreakdown is the per-layer score set, each value in [0, 1].
type LayerBreakdown struct {
	Surface    float64
	Intent     float64
	Structural float64
	Contextual float64
}

// ActiveCount returns how many layers exceed the activation threshold.
func (l LayerBreakdown) ActiveCount(threshold float64) int {
	count := 0
	for _, v := range [4]float64{l.Surface, l.Intent, l.Structural, l.Contextual} {
		if v > threshold {
			count++
		}
	}
	return count
}

// #endregion layer-breakdown

// #region template-score

// TemplateScore is the full scoring breakdown for one template.
// Produced fresh per call; immutable thereafter.
type TemplateScore struct {
	TemplateID    string
	Total         float64
	Layers        LayerBreakdown
	Reinforcement float64 // cross-layer multiplier, >= 1
	Bias          float64 // per-template bias multiplier, default 1
	PreBias       float64 // weighted * reinforcement, before bias
	IntentDetail  map[string]float64
	KeywordDetail map[string]float64
}

// #endregion template-score

// #region selection-mode

// Mode records which cascade stage produced a selection.
type Mode string

const (
	ModeCallerID  Mode = "caller_id"
	ModeToolMatch Mode = "tool_match"
	ModeScored    Mode = "scored"
	ModeDefault   Mode = "default"
	ModeNone      Mode = "none"
)

// #endregion selection-mode

// #region explanation

// Explanation records how a selection was made, for logging and debugging.
// Ambiguous is advisory metadata, never an error.
type Explanation struct {
	SelectedID string
	Mode       Mode
	Scores     []TemplateScore
	ToolName   string
	Input      string
	Confidence float64
	Ambiguous  bool
}

// #endregion explanation
