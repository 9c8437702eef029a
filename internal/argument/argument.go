// Package argument analyzes argument structure over four normalized layers
// and classifies detected friction against an ordered fallacy table.
package argument

import (
	"fmt"

	"github.com/danielpatrickdp/scaffold-engine/internal/kernel"
)

// #region layers

// LayerNames is the fixed layer order for argument analysis.
var LayerNames = []string{
	"premise_strength",
	"inferential_link",
	"structural_validity",
	"scope_consistency",
}

// Inferential link weighted highest: most fallacies break the
// premise-to-conclusion link.
var layerWeights = []float64{0.25, 0.30, 0.25, 0.20}

// LayerValueMap pairs the fixed layer names with a value vector.
func LayerValueMap(values []float64) map[string]float64 {
	out := make(map[string]float64, len(LayerNames))
	for i, name := range LayerNames {
		if i < len(values) {
			out[name] = values[i]
		}
	}
	return out
}

// #endregion layers

// #region detect

// DetectFriction runs the detection kernel over the four argument layers.
// Exactly 4 values are required; values are clamped into [0, 1].
func DetectFriction(layerValues []float64) (kernel.DetectionResult, error) {
	if len(layerValues) != 4 {
		return kernel.DetectionResult{}, fmt.Errorf("exactly 4 layer values required for argument analysis, got %d", len(layerValues))
	}
	opts := kernel.DefaultOptions()
	opts.Weights = layerWeights
	return kernel.Detect(LayerNames, kernel.ClampAll(layerValues), opts)
}

// #endregion detect

// #region fallacy-table

// FallacyResult is the classification outcome for one argument.
type FallacyResult struct {
	Name           string
	DisplayName    string
	Explanation    string
	IsValid        bool
	Confidence     float64
	MatchingLayers []string
}

type signature struct {
	name        string
	displayName string
	explanation string
	predicate   func(v map[string]float64) bool
}

// Ordered most-specific first: 4-constraint rules, then 3, then 2. First
// match wins; the ordering is part of the classification contract.
var fallacySignatures = []signature{
	{
		name:        "straw_man",
		displayName: "Straw Man",
		explanation: "The argument misrepresents the original position by shifting scope while maintaining internal logic.",
		predicate: func(v map[string]float64) bool {
			return v["premise_strength"] > 0.4 &&
				v["inferential_link"] > 0.4 &&
				v["structural_validity"] > 0.4 &&
				v["scope_consistency"] < 0.3
		},
	},
	{
		name:        "false_dilemma",
		displayName: "False Dilemma",
		explanation: "The argument presents a limited set of options while ignoring valid alternatives.",
		predicate: func(v map[string]float64) bool {
			return v["premise_strength"] > 0.5 &&
				v["inferential_link"] > 0.4 &&
				v["structural_validity"] < 0.4 &&
				v["scope_consistency"] < 0.3
		},
	},
	{
		name:        "affirming_the_consequent",
		displayName: "Affirming the Consequent",
		explanation: "The argument assumes that because the consequent is true, the antecedent must be true.",
		predicate: func(v map[string]float64) bool {
			return v["premise_strength"] > 0.6 &&
				v["inferential_link"] < 0.3 &&
				v["structural_validity"] < 0.35
		},
	},
	{
		name:        "circular_reasoning",
		displayName: "Circular Reasoning",
		explanation: "The conclusion is assumed in the premises, creating a logical circle.",
		predicate: func(v map[string]float64) bool {
			return v["inferential_link"] > 0.6 &&
				v["structural_validity"] < 0.3 &&
				v["premise_strength"] < 0.5
		},
	},
	{
		name:        "appeal_to_authority",
		displayName: "Appeal to Authority",
		explanation: "The argument relies on authority rather than evidence to support the premises.",
		predicate: func(v map[string]float64) bool {
			return v["premise_strength"] < 0.3 &&
				v["inferential_link"] > 0.5 &&
				v["structural_validity"] > 0.5
		},
	},
	{
		name:        "hasty_generalization",
		displayName: "Hasty Generalization",
		explanation: "The argument draws a broad conclusion from insufficient or unrepresentative evidence.",
		predicate: func(v map[string]float64) bool {
			return v["premise_strength"] > 0.4 &&
				v["premise_strength"] < 0.7 &&
				v["scope_consistency"] < 0.3
		},
	},
	{
		name:        "non_sequitur",
		displayName: "Non Sequitur",
		explanation: "The conclusion does not logically follow from the premises.",
		predicate: func(v map[string]float64) bool {
			return v["premise_strength"] > 0.4 &&
				v["inferential_link"] < 0.2 &&
				v["structural_validity"] > 0.4
		},
	},
}

// #endregion fallacy-table

// #region classify

// Classify maps a detection result and its layer values to a fallacy.
// No friction means the argument form is consistent. Friction with no
// matching signature is reported as unclassified, never forced into the
// nearest known pattern.
func Classify(result kernel.DetectionResult, layerValues map[string]float64) FallacyResult {
	if result.Signal != kernel.SignalFriction {
		return FallacyResult{
			Name:        "valid_argument",
			DisplayName: "Valid Argument",
			Explanation: "No structural friction detected; the argument form is consistent.",
			IsValid:     true,
			Confidence:  kernel.Clamp(result.Coherence),
		}
	}

	for _, sig := range fallacySignatures {
		if sig.predicate(layerValues) {
			// Lower coherence means higher confidence that something is wrong.
			matching := make([]string, 0, len(LayerNames))
			for _, name := range LayerNames {
				if _, ok := layerValues[name]; ok {
					matching = append(matching, name)
				}
			}
			return FallacyResult{
				Name:           sig.name,
				DisplayName:    sig.displayName,
				Explanation:    sig.explanation,
				IsValid:        false,
				Confidence:     kernel.Clamp(1 - result.Coherence),
				MatchingLayers: matching,
			}
		}
	}

	matching := make([]string, 0, len(layerValues))
	for _, name := range LayerNames {
		if _, ok := layerValues[name]; ok {
			matching = append(matching, name)
		}
	}
	return FallacyResult{
		Name:           "unclassified_friction",
		DisplayName:    "Unclassified Friction",
		Explanation:    "Structural friction detected but no known fallacy pattern matched.",
		IsValid:        false,
		Confidence:     kernel.Clamp(1 - result.Coherence),
		MatchingLayers: matching,
	}
}

// Analyze runs detection and classification in one step.
func Analyze(layerValues []float64) (kernel.DetectionResult, FallacyResult, error) {
	result, err := DetectFriction(layerValues)
	if err != nil {
		return kernel.DetectionResult{}, FallacyResult{}, err
	}
	return result, Classify(result, LayerValueMap(kernel.ClampAll(layerValues))), nil
}

// #endregion classify
