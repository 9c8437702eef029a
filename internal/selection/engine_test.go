package selection

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

func newTemplate(id string) *template.Template {
	return &template.Template{
		ID:          id,
		Version:     "1.0",
		Domain:      "general",
		Description: "a template for " + id,
	}
}

func TestSaturateDiminishingReturns(t *testing.T) {
	k := 0.7
	for n := 1; n < 10; n++ {
		gain := saturate(float64(n+1), k) - saturate(float64(n), k)
		prev := saturate(float64(n), k) - saturate(float64(n-1), k)
		if gain >= prev {
			t.Errorf("n=%d: gain %f not smaller than previous %f", n, gain, prev)
		}
	}
	if saturate(0, k) != 0 || saturate(-1, k) != 0 {
		t.Error("non-positive raw must saturate to zero")
	}
	if saturate(3, k) < 0.8 {
		t.Errorf("3 hits should be near 0.85, got %f", saturate(3, k))
	}
}

func TestIntentPhraseBeatsKeyword(t *testing.T) {
	a := newTemplate("a")
	a.Applicability.Keywords = []string{"budget"}
	b := newTemplate("b")
	b.Applicability.IntentPhrases = []string{"create a budget"}

	eng := NewEngine(nil)
	selected, expl := eng.Select([]*template.Template{a, b}, "I want to create a budget", DefaultParams())
	if selected == nil || selected.ID != "b" {
		t.Fatalf("expected intent-phrase template b, got %+v", expl)
	}
	if expl.Mode != ModeScored {
		t.Errorf("mode: got %s", expl.Mode)
	}
}

func TestExactPhraseBonusApplied(t *testing.T) {
	tpl := newTemplate("exact")
	tpl.Applicability.IntentPhrases = []string{"track my spending"}

	eng := NewEngine(nil)
	p := DefaultParams()

	exact := eng.Score([]*template.Template{tpl}, "please track my spending", p)
	partial := eng.Score([]*template.Template{tpl}, "track all the spending of my team", p)
	if len(exact) != 1 || len(partial) != 1 {
		t.Fatal("expected one score each")
	}
	if exact[0].Layers.Intent <= partial[0].Layers.Intent {
		t.Errorf("verbatim phrase should outscore scattered tokens: %f vs %f",
			exact[0].Layers.Intent, partial[0].Layers.Intent)
	}
	if got := exact[0].IntentDetail["track my spending"]; math.Abs(got-1.3) > 1e-9 {
		t.Errorf("expected coverage 1.0 plus bonus 0.3, got %f", got)
	}
}

func TestCoverageFloorDropsWeakPhrases(t *testing.T) {
	tpl := newTemplate("floor")
	tpl.Applicability.IntentPhrases = []string{"plan a family vacation budget"}

	eng := NewEngine(nil)
	scores := eng.Score([]*template.Template{tpl}, "budget", DefaultParams())
	if len(scores) != 1 {
		t.Fatal("expected one score")
	}
	// 1/5 tokens present, below the 0.5 coverage floor.
	if scores[0].Layers.Intent != 0 {
		t.Errorf("expected zero intent below coverage floor, got %f", scores[0].Layers.Intent)
	}
}

func TestStructuralOverlapFloor(t *testing.T) {
	tpl := newTemplate("struct")
	tpl.Description = "analyzes recurring subscription charges"
	tpl.Applicability.Keywords = []string{"subscription"}

	eng := NewEngine(nil)
	p := DefaultParams()

	one := eng.Score([]*template.Template{tpl}, "subscription", p)
	if one[0].Layers.Structural != 0 {
		t.Errorf("single-token overlap must be zero, got %f", one[0].Layers.Structural)
	}

	two := eng.Score([]*template.Template{tpl}, "recurring subscription", p)
	want := 2.0 / 4.0
	if math.Abs(two[0].Layers.Structural-want) > 1e-9 {
		t.Errorf("expected raw ratio %f, got %f", want, two[0].Layers.Structural)
	}
}

func TestContextualDomainAndPriorTemplate(t *testing.T) {
	tpl := newTemplate("ctx")
	tpl.Domain = "finance"
	tpl.Applicability.Keywords = []string{"money"}

	eng := NewEngine(nil)
	p := DefaultParams()
	p.Context = map[string]string{ContextDomain: "finance"}
	scores := eng.Score([]*template.Template{tpl}, "money matters", p)
	if scores[0].Layers.Contextual != 0.5 {
		t.Errorf("domain match: expected 0.5, got %f", scores[0].Layers.Contextual)
	}

	p.Context = map[string]string{ContextPriorTemplate: "ctx"}
	scores = eng.Score([]*template.Template{tpl}, "money matters", p)
	if scores[0].Layers.Contextual != 0.3 {
		t.Errorf("prior template: expected 0.3, got %f", scores[0].Layers.Contextual)
	}

	// Both hints present: max, not sum.
	p.Context = map[string]string{ContextDomain: "finance", ContextPriorTemplate: "ctx"}
	scores = eng.Score([]*template.Template{tpl}, "money matters", p)
	if scores[0].Layers.Contextual != 0.5 {
		t.Errorf("stacked hints: expected max 0.5, got %f", scores[0].Layers.Contextual)
	}
}

func TestReinforcementMultiplier(t *testing.T) {
	tpl := newTemplate("multi")
	tpl.Applicability.Keywords = []string{"budget"}
	tpl.Applicability.IntentPhrases = []string{"create a budget"}

	eng := NewEngine(nil)
	scores := eng.Score([]*template.Template{tpl}, "create a budget", DefaultParams())
	s := scores[0]
	active := s.Layers.ActiveCount(0.05)
	if active < 2 {
		t.Fatalf("expected at least two active layers, got %d", active)
	}
	want := 1.0 + 0.15*float64(active-1)
	if math.Abs(s.Reinforcement-want) > 1e-9 {
		t.Errorf("reinforcement: expected %f, got %f", want, s.Reinforcement)
	}
	if math.Abs(s.Total-s.PreBias) > 1e-9 {
		t.Errorf("without bias, total must equal pre-bias: %f vs %f", s.Total, s.PreBias)
	}
}

func TestBiasMultiplier(t *testing.T) {
	a := newTemplate("a")
	a.Applicability.Keywords = []string{"budget"}
	b := newTemplate("b")
	b.Applicability.Keywords = []string{"budget"}

	eng := NewEngine(nil)
	p := DefaultParams()
	p.Bias = map[string]float64{"b": 2.0}
	selected, _ := eng.Select([]*template.Template{a, b}, "budget talk", p)
	if selected == nil || selected.ID != "b" {
		t.Fatal("expected biased template to win")
	}
}

func TestConfidenceGateReturnsNoMatch(t *testing.T) {
	tpl := newTemplate("weak")
	tpl.Applicability.Keywords = []string{"budget"}

	eng := NewEngine(nil)
	p := DefaultParams()
	p.MinConfidence = 0.5
	selected, expl := eng.Select([]*template.Template{tpl}, "budget", p)
	if selected != nil {
		t.Fatalf("expected no match under confidence floor, got %s", selected.ID)
	}
	if expl.Confidence <= 0 || expl.Confidence >= 0.5 {
		t.Errorf("expected low positive confidence, got %f", expl.Confidence)
	}
}

func TestAmbiguityGateFlagsCloseScores(t *testing.T) {
	a := newTemplate("a")
	a.Applicability.Keywords = []string{"budget"}
	b := newTemplate("b")
	b.Applicability.Keywords = []string{"budget"}

	eng := NewEngine(nil)
	p := DefaultParams()
	p.AmbiguityMargin = 0.1
	selected, expl := eng.Select([]*template.Template{a, b}, "budget review", p)
	if selected == nil {
		t.Fatal("ambiguity is advisory; selection must still return the top candidate")
	}
	if !expl.Ambiguous {
		t.Error("identical scores within margin must flag ambiguous")
	}
}

func TestTieBreaksFirstRegistered(t *testing.T) {
	a := newTemplate("first")
	a.Applicability.Keywords = []string{"budget"}
	b := newTemplate("second")
	b.Applicability.Keywords = []string{"budget"}

	eng := NewEngine(nil)
	selected, _ := eng.Select([]*template.Template{a, b}, "budget check", DefaultParams())
	if selected == nil || selected.ID != "first" {
		t.Fatal("ties must break first-registered-wins")
	}
}

func TestCacheSignatureInvalidation(t *testing.T) {
	tpl := newTemplate("mutable")
	tpl.Applicability.Keywords = []string{"alpha"}

	eng := NewEngine(nil)
	p := DefaultParams()

	before := eng.Score([]*template.Template{tpl}, "alpha signal", p)
	if before[0].Layers.Surface <= 0 {
		t.Fatal("expected initial keyword hit")
	}

	tpl.Applicability.Keywords = []string{"omega"}
	stale := eng.Score([]*template.Template{tpl}, "alpha signal", p)
	if stale[0].Layers.Surface != 0 {
		t.Error("edited keywords must not reproduce stale results")
	}
	fresh := eng.Score([]*template.Template{tpl}, "omega signal", p)
	if fresh[0].Layers.Surface <= 0 {
		t.Error("rebuilt entry must index the new keyword")
	}
}

func TestSecondPassOnlyWithConfidenceFloor(t *testing.T) {
	// Description-only template: no keywords or phrases means the inverted
	// index never sees it.
	hidden := newTemplate("hidden")
	hidden.Description = "review recurring subscription charges monthly"
	decoy := newTemplate("decoy")
	decoy.Applicability.Keywords = []string{"unrelated"}

	templates := []*template.Template{decoy, hidden}
	eng := NewEngine(nil)

	// Default params: floor disabled, second pass never runs.
	p := DefaultParams()
	scores := eng.Score(templates, "recurring subscription charges", p)
	for _, s := range scores {
		if s.TemplateID == "hidden" && s.Total != 0 {
			t.Errorf("second pass must not run without a confidence floor, got %f", s.Total)
		}
	}

	// With a floor the decoy can't meet, the structural sweep promotes it.
	p.MinConfidence = 0.2
	scores = eng.Score(templates, "recurring subscription charges", p)
	found := false
	for _, s := range scores {
		if s.TemplateID == "hidden" && s.Layers.Structural > 0 {
			found = true
		}
	}
	if !found {
		t.Error("confidence floor should trigger the structural promotion pass")
	}
}

func TestPruningSkipsUnrelatedTemplates(t *testing.T) {
	related := newTemplate("related")
	related.Applicability.Keywords = []string{"budget"}
	unrelated := newTemplate("unrelated")
	unrelated.Applicability.Keywords = []string{"astronomy"}

	eng := NewEngine(nil)
	scores := eng.Score([]*template.Template{related, unrelated}, "budget planning", DefaultParams())
	if len(scores) != 2 {
		t.Fatalf("every template gets a score entry, got %d", len(scores))
	}
	if scores[0].TemplateID != "related" || scores[1].Total != 0 {
		t.Errorf("pruned template must score zero: %+v", scores)
	}
}

func TestMatchCascade(t *testing.T) {
	reg := template.NewRegistry()
	byTool := newTemplate("by_tool")
	byTool.Applicability.Tools = []string{"analyze_budget"}
	byScore := newTemplate("by_score")
	byScore.Applicability.Keywords = []string{"vacation"}
	for _, tpl := range []*template.Template{byTool, byScore} {
		if err := reg.Register(tpl); err != nil {
			t.Fatal(err)
		}
	}

	eng := NewEngine(nil)
	p := DefaultParams()

	got, expl := eng.Match(reg, "analyze_budget", "anything", "by_score", p)
	if got.ID != "by_score" || expl.Mode != ModeCallerID {
		t.Errorf("caller id must win the cascade: %s %s", got.ID, expl.Mode)
	}

	got, expl = eng.Match(reg, "analyze_budget", "vacation plans", "", p)
	if got.ID != "by_tool" || expl.Mode != ModeToolMatch {
		t.Errorf("tool match outranks scoring: %s %s", got.ID, expl.Mode)
	}

	got, expl = eng.Match(reg, "unknown_tool", "vacation plans", "", p)
	if got == nil || got.ID != "by_score" || expl.Mode != ModeScored {
		t.Errorf("expected scored fallback: %+v", expl)
	}

	got, expl = eng.Match(reg, "unknown_tool", "", "", p)
	if got != nil || expl.Mode != ModeNone {
		t.Errorf("empty input with no tool must yield none: %+v", expl)
	}

	// Unknown caller id falls through to the rest of the cascade.
	got, expl = eng.Match(reg, "unknown_tool", "vacation plans", "missing", p)
	if got == nil || got.ID != "by_score" || expl.Mode != ModeScored {
		t.Errorf("unknown caller id must fall through: %+v", expl)
	}
}

func TestEmptyInputsAreWellDefined(t *testing.T) {
	eng := NewEngine(nil)
	if scores := eng.Score(nil, "anything", DefaultParams()); len(scores) != 0 {
		t.Error("empty template set must yield empty scores")
	}
	tpl := newTemplate("x")
	if scores := eng.Score([]*template.Template{tpl}, "", DefaultParams()); len(scores) != 0 {
		t.Error("empty input must yield empty scores")
	}
}
