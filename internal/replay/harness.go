// Package replay re-runs recorded selection turns against the current
// template registry and reports drift from the expected outcomes.
package replay

import (
	"github.com/danielpatrickdp/scaffold-engine/internal/selection"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region types

// TurnResult is the outcome of replaying one recorded turn.
type TurnResult struct {
	TurnID     string
	SelectedID string
	Mode       selection.Mode
	Confidence float64
	Ambiguous  bool

	ExpectedID   string
	ExpectedMode string
	HasExpected  bool
	Matched      bool
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns int
	Matches    int
	Mismatches int
	NoExpected int

	ByMode map[selection.Mode]int
}

// #endregion types

// #region replay

// Replay runs every fixture turn through selection in order. Turns see the
// previously selected template as prior-template context unless the fixture
// turn pins its own context, mirroring live conversation continuity.
func Replay(reg *template.Registry, fixture *Fixture) []TurnResult {
	engine := selection.NewEngine(nil)
	base := fixture.Params.ToParams()

	expected := make(map[string]FixtureExpectedResult, len(fixture.ExpectedResults))
	for _, exp := range fixture.ExpectedResults {
		expected[exp.TurnID] = exp
	}

	results := make([]TurnResult, 0, len(fixture.Turns))
	priorID := ""

	for _, turn := range fixture.Turns {
		p := base
		p.Context = map[string]string{}
		for k, v := range turn.Context {
			p.Context[k] = v
		}
		if priorID != "" {
			if _, ok := p.Context[selection.ContextPriorTemplate]; !ok {
				p.Context[selection.ContextPriorTemplate] = priorID
			}
		}

		tpl, expl := engine.Match(reg, turn.ToolName, turn.Input, turn.CallerTemplateID, p)

		result := TurnResult{
			TurnID:     turn.TurnID,
			SelectedID: expl.SelectedID,
			Mode:       expl.Mode,
			Confidence: expl.Confidence,
			Ambiguous:  expl.Ambiguous,
		}
		if exp, ok := expected[turn.TurnID]; ok {
			result.ExpectedID = exp.TemplateID
			result.ExpectedMode = exp.Mode
			result.HasExpected = true
			result.Matched = exp.TemplateID == expl.SelectedID &&
				(exp.Mode == "" || exp.Mode == string(expl.Mode))
		}
		results = append(results, result)

		if tpl != nil {
			priorID = tpl.ID
		}
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []TurnResult) Summary {
	s := Summary{
		TotalTurns: len(results),
		ByMode:     make(map[selection.Mode]int),
	}
	for _, r := range results {
		s.ByMode[r.Mode]++
		switch {
		case !r.HasExpected:
			s.NoExpected++
		case r.Matched:
			s.Matches++
		default:
			s.Mismatches++
		}
	}
	return s
}

// #endregion replay
