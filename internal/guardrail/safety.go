package guardrail

import (
	"math"
	"strings"

	"github.com/danielpatrickdp/scaffold-engine/internal/kernel"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
	"github.com/danielpatrickdp/scaffold-engine/internal/textmatch"
)

// #region safety-layers

// SafetyLayerNames is the fixed layer order for content-safety detection.
var SafetyLayerNames = []string{
	"escalation_density",
	"prohibited_density",
	"topic_sensitivity",
	"response_length_risk",
}

// Prohibited density weighted highest: a confirmed prohibited hit is the
// strongest single signal.
var safetyWeights = []float64{0.30, 0.35, 0.20, 0.15}

// #endregion safety-layers

// #region sensitive-keywords

var sensitiveTopicKeywords = []string{
	"self harm", "suicide", "overdose", "weapon", "explosive",
	"medical emergency", "chest pain", "lawsuit", "liability",
	"bankruptcy", "foreclosure", "eviction", "abuse", "violence",
	"threat", "stalking", "minor", "diagnosis", "prescription",
}

// #endregion sensitive-keywords

// #region layer-computation

// responseLengthCeiling is the word count at which length risk saturates.
const responseLengthCeiling = 1200

// ContentSafetyLayers derives the four safety layer values from a check
// result and the content itself. All values land in [0, 1].
func ContentSafetyLayers(content string, tpl *template.Template, check Check) []float64 {
	contentLower := normalizeContent(content)
	words := len(strings.Fields(content))

	escalation := 0.0
	if n := len(tpl.Guardrails.EscalationTriggers); n > 0 {
		hits := 0
		for _, flag := range check.Flags {
			if strings.HasPrefix(flag, "escalation_trigger_detected: ") {
				hits++
			}
		}
		escalation = float64(hits) / float64(n)
	}

	prohibited := 0.0
	if len(check.HardViolations) > 0 {
		// Saturating count: one violation is already severe.
		prohibited = 1 - math.Exp(-1.2*float64(len(check.HardViolations)))
	}

	topicHits := 0
	for _, kw := range sensitiveTopicKeywords {
		if textmatch.PhraseMatches(contentLower, kw) {
			topicHits++
		}
	}
	topic := 1 - math.Exp(-0.6*float64(topicHits))

	lengthRisk := math.Min(float64(words)/responseLengthCeiling, 1)

	return []float64{
		kernel.Clamp(escalation),
		kernel.Clamp(prohibited),
		kernel.Clamp(topic),
		kernel.Clamp(lengthRisk),
	}
}

// #endregion layer-computation

// #region detect

// DetectSafetyFriction runs the detection kernel over the safety layers.
// Values are clamped into [0, 1].
func DetectSafetyFriction(layerValues []float64) (kernel.DetectionResult, error) {
	opts := kernel.DefaultOptions()
	opts.Weights = safetyWeights
	return kernel.Detect(SafetyLayerNames, kernel.ClampAll(layerValues), opts)
}

// #endregion detect
