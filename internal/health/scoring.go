// Package health scores templates across four richness layers (micro,
// meso, macro, meta), runs friction detection per template, and analyzes
// cross-template coupling for the whole portfolio.
package health

import (
	"math"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region layer-names

// LayerNames is the fixed layer order for template health. These measure
// definition richness, not match quality.
var LayerNames = []string{"micro", "meso", "macro", "meta"}

// #endregion layer-names

// #region caps

// Caps chosen so a well-rounded template scores ~0.7-0.8 and only an
// exceptionally rich one saturates at 1.0. Cap-based normalization keeps
// each score interpretable in isolation, unlike min-max across the
// portfolio.
const (
	microCap = 15
	mesoCap  = 12
	macroCap = 12
	metaCap  = 10

	// Knowledge activation entries beyond this stop counting toward meso.
	knowledgeCredit = 5
)

// #endregion caps

// #region scoring

// ScoreTemplateLayers maps each template section to a layer value in
// [0, 1]: micro = trigger surface, meso = reasoning depth, macro = output
// shaping, meta = guardrail coverage.
func ScoreTemplateLayers(tpl *template.Template) map[string]float64 {
	app := tpl.Applicability
	microRaw := len(app.Tools) + len(app.Keywords) + len(app.IntentPhrases)

	mesoRaw := len(tpl.ReasoningSteps) + min(len(tpl.KnowledgeActivation), knowledgeCredit)

	out := tpl.Output
	macroRaw := len(out.FormatOptions) + len(out.MustInclude) + len(out.NeverInclude)
	if out.Format != template.DefaultFormat {
		macroRaw++
	}
	if out.MaxLengthGuidance != "" {
		macroRaw++
	}

	g := tpl.Guardrails
	metaRaw := len(g.Disclaimers) + len(g.EscalationTriggers) + len(g.ProhibitedActions)

	return map[string]float64{
		"micro": math.Min(float64(microRaw)/microCap, 1),
		"meso":  math.Min(float64(mesoRaw)/mesoCap, 1),
		"macro": math.Min(float64(macroRaw)/macroCap, 1),
		"meta":  math.Min(float64(metaRaw)/metaCap, 1),
	}
}

// #endregion scoring
