package health

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/scaffold-engine/internal/kernel"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region result-types

// TemplateHealth is the per-template analysis outcome.
type TemplateHealth struct {
	TemplateID    string
	Layers        map[string]float64
	MScore        float64
	Coherence     float64
	DominantLayer string
	Signal        kernel.Signal
	TensionPairs  []kernel.TensionPair
}

// Coupling is a same-layer interaction score between two templates.
type Coupling struct {
	TemplateA string
	TemplateB string
	Layer     string
	Score     float64
}

// PortfolioHealth aggregates per-template results with cross-template
// coupling.
type PortfolioHealth struct {
	Templates       []TemplateHealth
	Coupling        []Coupling
	AvgCoherence    float64
	PortfolioSignal string
}

// Portfolio signal vocabulary.
const (
	PortfolioEmergence = "portfolio_emergence"
	PortfolioFriction  = "portfolio_friction"
	PortfolioMixed     = "portfolio_mixed"
	PortfolioBaseline  = "portfolio_baseline"
	PortfolioEmpty     = "portfolio_empty"
)

// #endregion result-types

// #region interaction

// InteractionScore is the symmetric agreement between two layer values.
func InteractionScore(a, b float64) float64 {
	return math.Max(0, 1-math.Abs(a-b))
}

// #endregion interaction

// #region per-template

// AnalyzeTemplate scores one template's layers and runs friction detection
// over them with equal weights.
func AnalyzeTemplate(tpl *template.Template) (TemplateHealth, error) {
	layers := ScoreTemplateLayers(tpl)
	values := make([]float64, len(LayerNames))
	for i, name := range LayerNames {
		values[i] = layers[name]
	}

	result, err := kernel.Detect(LayerNames, values, kernel.DefaultOptions())
	if err != nil {
		return TemplateHealth{}, err
	}

	return TemplateHealth{
		TemplateID:    tpl.ID,
		Layers:        layers,
		MScore:        result.MScore,
		Coherence:     result.Coherence,
		DominantLayer: result.DominantLayer,
		Signal:        result.Signal,
		TensionPairs:  result.TensionPairs,
	}, nil
}

// #endregion per-template

// #region coupling

// crossTemplateCoupling computes same-layer interaction scores between
// every template pair, most coupled first.
func crossTemplateCoupling(results []TemplateHealth) []Coupling {
	var coupling []Coupling
	for i, ra := range results {
		for _, rb := range results[i+1:] {
			for _, layer := range LayerNames {
				coupling = append(coupling, Coupling{
					TemplateA: ra.TemplateID,
					TemplateB: rb.TemplateID,
					Layer:     layer,
					Score:     round3(InteractionScore(ra.Layers[layer], rb.Layers[layer])),
				})
			}
		}
	}
	sort.SliceStable(coupling, func(i, j int) bool {
		return coupling[i].Score > coupling[j].Score
	})
	return coupling
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// #endregion coupling

// #region portfolio

// AnalyzePortfolio analyzes every template and derives the portfolio-level
// signal from the set of per-template signals.
func AnalyzePortfolio(templates []*template.Template) (PortfolioHealth, error) {
	results := make([]TemplateHealth, 0, len(templates))
	for _, tpl := range templates {
		r, err := AnalyzeTemplate(tpl)
		if err != nil {
			return PortfolioHealth{}, err
		}
		results = append(results, r)
	}

	var coupling []Coupling
	if len(results) > 1 {
		coupling = crossTemplateCoupling(results)
	}

	avgCoherence := 0.0
	signals := make(map[kernel.Signal]struct{})
	for _, r := range results {
		avgCoherence += r.Coherence
		signals[r.Signal] = struct{}{}
	}
	if len(results) > 0 {
		avgCoherence = round3(avgCoherence / float64(len(results)))
	}

	var portfolioSignal string
	switch {
	case len(signals) == 0:
		portfolioSignal = PortfolioEmpty
	case len(signals) > 1:
		portfolioSignal = PortfolioMixed
	default:
		for s := range signals {
			switch s {
			case kernel.SignalEmergence:
				portfolioSignal = PortfolioEmergence
			case kernel.SignalFriction:
				portfolioSignal = PortfolioFriction
			default:
				portfolioSignal = PortfolioBaseline
			}
		}
	}

	return PortfolioHealth{
		Templates:       results,
		Coupling:        coupling,
		AvgCoherence:    avgCoherence,
		PortfolioSignal: portfolioSignal,
	}, nil
}

// #endregion portfolio
