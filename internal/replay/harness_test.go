package replay

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/scaffold-engine/internal/selection"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

func replayRegistry(t *testing.T) *template.Registry {
	t.Helper()
	reg := template.NewRegistry()
	templates := []*template.Template{
		{
			ID:          "budget_analysis",
			Domain:      "finance",
			Description: "Analyze spending patterns and budgets",
			Applicability: template.Applicability{
				Tools:    []string{"analyze_budget"},
				Keywords: []string{"budget", "spending", "expenses"},
			},
		},
		{
			ID:          "trip_planning",
			Domain:      "travel",
			Description: "Plan itineraries and logistics",
			Applicability: template.Applicability{
				Keywords: []string{"itinerary", "flight", "hotel"},
			},
		},
	}
	for _, tpl := range templates {
		if err := reg.Register(tpl); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestReplayMatchesExpectations(t *testing.T) {
	reg := replayRegistry(t)
	fixture := &Fixture{
		Turns: []FixtureTurn{
			{TurnID: "t1", Input: "review my budget and spending"},
			{TurnID: "t2", Input: "book a flight and hotel"},
			{TurnID: "t3", ToolName: "analyze_budget"},
		},
		ExpectedResults: []FixtureExpectedResult{
			{TurnID: "t1", TemplateID: "budget_analysis", Mode: "scored"},
			{TurnID: "t2", TemplateID: "trip_planning"},
			{TurnID: "t3", TemplateID: "budget_analysis", Mode: "tool_match"},
		},
	}

	results := Replay(reg, fixture)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Matched {
			t.Errorf("turn %s: selected %s via %s, expected %s", r.TurnID, r.SelectedID, r.Mode, r.ExpectedID)
		}
	}

	want := Summary{
		TotalTurns: 3,
		Matches:    3,
		ByMode: map[selection.Mode]int{
			selection.ModeScored:    2,
			selection.ModeToolMatch: 1,
		},
	}
	if diff := cmp.Diff(want, Summarize(results)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestReplayReportsMismatch(t *testing.T) {
	reg := replayRegistry(t)
	fixture := &Fixture{
		Turns: []FixtureTurn{
			{TurnID: "t1", Input: "review my budget"},
		},
		ExpectedResults: []FixtureExpectedResult{
			{TurnID: "t1", TemplateID: "trip_planning"},
		},
	}

	results := Replay(reg, fixture)
	if results[0].Matched {
		t.Error("mismatch not reported")
	}
	summary := Summarize(results)
	if summary.Mismatches != 1 {
		t.Errorf("summary: %+v", summary)
	}
}

func TestReplayCarriesPriorTemplateContext(t *testing.T) {
	reg := replayRegistry(t)
	fixture := &Fixture{
		Turns: []FixtureTurn{
			{TurnID: "t1", Input: "review my budget"},
			// One keyword hit each; prior-template credit breaks the tie.
			{TurnID: "t2", Input: "expenses flight"},
		},
	}

	results := Replay(reg, fixture)
	if results[1].SelectedID != "budget_analysis" {
		t.Errorf("turn 2 selected %s", results[1].SelectedID)
	}
	summary := Summarize(results)
	if summary.NoExpected != 2 {
		t.Errorf("summary: %+v", summary)
	}
}

func TestReplayTurnContextOverridesPrior(t *testing.T) {
	reg := replayRegistry(t)
	fixture := &Fixture{
		Turns: []FixtureTurn{
			{TurnID: "t1", Input: "review my budget"},
			{
				TurnID:  "t2",
				Input:   "expenses flight",
				Context: map[string]string{selection.ContextPriorTemplate: "trip_planning"},
			},
		},
	}

	results := Replay(reg, fixture)
	if results[1].SelectedID != "trip_planning" {
		t.Errorf("pinned context ignored: selected %s", results[1].SelectedID)
	}
}

func TestReplayBiasFromFixtureParams(t *testing.T) {
	reg := replayRegistry(t)
	fixture := &Fixture{
		Params: FixtureParams{Bias: map[string]float64{"trip_planning": 5.0}},
		Turns: []FixtureTurn{
			{TurnID: "t1", Input: "budget flight"},
		},
	}

	results := Replay(reg, fixture)
	if results[0].SelectedID != "trip_planning" {
		t.Errorf("bias ignored: selected %s", results[0].SelectedID)
	}
}

func TestReplayNoMatchTurn(t *testing.T) {
	reg := replayRegistry(t)
	fixture := &Fixture{
		Turns: []FixtureTurn{
			{TurnID: "t1", Input: "zxq unrelated gibberish"},
		},
	}

	results := Replay(reg, fixture)
	if results[0].SelectedID != "" || results[0].Mode != selection.ModeNone {
		t.Errorf("got %+v", results[0])
	}
}
