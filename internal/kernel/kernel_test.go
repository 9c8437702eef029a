package kernel

import (
	"math"
	"testing"
)

var quad = []string{"a", "b", "c", "d"}

func TestFrictionScenario(t *testing.T) {
	res, err := Detect(quad, []float64{0.9, 0.1, 0.8, 0.2}, DefaultOptions())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if res.Signal != SignalFriction {
		t.Errorf("signal: got %s", res.Signal)
	}
	if res.DominantLayer != "a" {
		t.Errorf("dominant: got %s", res.DominantLayer)
	}
	if len(res.TensionPairs) == 0 {
		t.Fatal("expected tension pairs for spread 0.8")
	}
	first := res.TensionPairs[0]
	if first.LayerA != "a" || first.LayerB != "b" {
		t.Errorf("pairs must come in enumeration order, got %s/%s", first.LayerA, first.LayerB)
	}
	if math.Abs(first.Agreement-0.2) > 1e-9 {
		t.Errorf("agreement(0.9, 0.1): expected 0.2, got %f", first.Agreement)
	}
}

func TestMScoreFormula(t *testing.T) {
	values := []float64{0.8, 0.4}
	res, err := Detect([]string{"x", "y"}, values, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	spatial := 0.5*0.8 + 0.5*0.4
	want := spatial / math.Sqrt(2)
	if math.Abs(res.MScore-want) > 1e-6 {
		t.Errorf("m score: expected %f, got %f", want, res.MScore)
	}
	if math.Abs(res.SpatialComponent-spatial) > 1e-6 {
		t.Errorf("spatial: expected %f, got %f", spatial, res.SpatialComponent)
	}
}

func TestLinearTimeScaling(t *testing.T) {
	values := []float64{0.6, 0.3, 0.9}
	names := []string{"x", "y", "z"}

	base := DefaultOptions()
	doubled := DefaultOptions()
	doubled.FTime = 2.0

	r1, err := Detect(names, values, base)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Detect(names, values, doubled)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r2.MScore-2*r1.MScore) > 1e-6 {
		t.Errorf("f_time=2 must double the score: %f vs %f", r2.MScore, r1.MScore)
	}
	if r2.SpatialComponent != r1.SpatialComponent {
		t.Error("spatial component must not scale with time")
	}
}

func TestAttributionSumsToHundred(t *testing.T) {
	res, err := Detect(quad, []float64{0.9, 0.1, 0.8, 0.2}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	sum := 0.0
	for _, pct := range res.LayerAttribution {
		sum += pct
	}
	if math.Abs(sum-100) > 0.5 {
		t.Errorf("attribution must sum to ~100, got %f", sum)
	}
}

func TestZeroSpatialDegenerates(t *testing.T) {
	res, err := Detect([]string{"x", "y"}, []float64{0, 0}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for name, pct := range res.LayerAttribution {
		if pct != 0 {
			t.Errorf("zero vector must yield zero attribution, %s=%f", name, pct)
		}
	}
	if res.MScore != 0 || res.SpatialComponent != 0 {
		t.Error("zero vector must score zero")
	}
	if res.Signal != SignalBaseline {
		t.Errorf("zero vector signal: got %s", res.Signal)
	}
	if res.Coherence != 1 {
		t.Errorf("identical values are perfectly coherent, got %f", res.Coherence)
	}
}

func TestTensionSymmetryAndSelfPairs(t *testing.T) {
	res, err := Detect([]string{"x", "y"}, []float64{0.9, 0.2}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	swapped, err := Detect([]string{"y", "x"}, []float64{0.2, 0.9}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.TensionPairs) != 1 || len(swapped.TensionPairs) != 1 {
		t.Fatal("expected exactly one pair each")
	}
	if res.TensionPairs[0].Agreement != swapped.TensionPairs[0].Agreement {
		t.Error("agreement must be symmetric")
	}
	for _, p := range res.TensionPairs {
		if p.LayerA == p.LayerB {
			t.Error("self-pairs must never be emitted")
		}
	}
}

func TestEmergenceModeIgnoresSpread(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeEmergence

	// Large spread, but everything above threshold: emergence mode sees a
	// window where friction mode would flag friction.
	res, err := Detect([]string{"x", "y"}, []float64{0.95, 0.45}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Signal != SignalEmergence {
		t.Errorf("emergence mode: got %s", res.Signal)
	}

	opts.Mode = ModeFriction
	res, err = Detect([]string{"x", "y"}, []float64{0.95, 0.45}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Signal != SignalFriction {
		t.Errorf("friction mode: got %s", res.Signal)
	}
}

func TestEmergenceWindowInFrictionMode(t *testing.T) {
	// Tight cluster above threshold: no spread, all strong.
	res, err := Detect([]string{"x", "y", "z"}, []float64{0.7, 0.8, 0.75}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Signal != SignalEmergence {
		t.Errorf("expected emergence window, got %s", res.Signal)
	}
}

func TestValidation(t *testing.T) {
	if _, err := Detect([]string{"only"}, []float64{0.5}, DefaultOptions()); err == nil {
		t.Error("single layer must fail")
	}
	if _, err := Detect([]string{"x", "y"}, []float64{0.5}, DefaultOptions()); err == nil {
		t.Error("length mismatch must fail")
	}
	opts := DefaultOptions()
	opts.Mode = "sideways"
	if _, err := Detect([]string{"x", "y"}, []float64{0.5, 0.5}, opts); err == nil {
		t.Error("unknown mode must fail")
	}
	opts = DefaultOptions()
	opts.Weights = []float64{1.0}
	if _, err := Detect([]string{"x", "y"}, []float64{0.5, 0.5}, opts); err == nil {
		t.Error("weight length mismatch must fail")
	}
}

func TestCustomWeightsShiftAttribution(t *testing.T) {
	opts := DefaultOptions()
	opts.Weights = []float64{0.9, 0.1}
	res, err := Detect([]string{"x", "y"}, []float64{0.5, 0.5}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.LayerAttribution["x"] <= res.LayerAttribution["y"] {
		t.Errorf("heavier weight must dominate attribution: %v", res.LayerAttribution)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-0.5) != 0 || Clamp(1.5) != 1 || Clamp(0.25) != 0.25 {
		t.Error("clamp must bound into [0, 1]")
	}
	got := ClampAll([]float64{-1, 0.5, 2})
	if got[0] != 0 || got[1] != 0.5 || got[2] != 1 {
		t.Errorf("clamp all: got %v", got)
	}
}
