// Package kernel implements the generic N-layer weighted detection kernel
// shared by the safety, policy-conflict, health, and argument analyses:
// M = sum(W_i * L_i) * f_time / sqrt(N), plus attribution, coherence,
// signal classification, and tension pairs.
package kernel

import (
	"fmt"
	"math"
)

// #region modes-and-signals

// Mode selects the signal classification rule.
type Mode string

const (
	// ModeFriction classifies on spread first, then on minimum strength.
	ModeFriction Mode = "friction"
	// ModeEmergence classifies on minimum strength only.
	ModeEmergence Mode = "emergence"
)

// Signal is the three-way qualitative classification.
type Signal string

const (
	SignalFriction  Signal = "friction_detected"
	SignalEmergence Signal = "emergence_window"
	SignalBaseline  Signal = "baseline"
)

// #endregion modes-and-signals

// #region options

// Options are the kernel's tunables. Zero-value fields are not usable;
// start from DefaultOptions.
type Options struct {
	Weights            []float64 // nil = equal weights 1/N
	Mode               Mode
	FTime              float64
	DetectionThreshold float64
	TensionThreshold   float64
	CoherenceDivisor   float64
}

// DefaultOptions returns friction mode with unit time scaling.
func DefaultOptions() Options {
	return Options{
		Mode:               ModeFriction,
		FTime:              1.0,
		DetectionThreshold: 0.4,
		TensionThreshold:   0.5,
		CoherenceDivisor:   0.5,
	}
}

// #endregion options

// #region result

// TensionPair flags two layers whose values disagree beyond the threshold.
type TensionPair struct {
	LayerA    string
	LayerB    string
	Agreement float64
}

// DetectionResult is the full kernel output. Immutable value.
type DetectionResult struct {
	MScore           float64
	SpatialComponent float64
	LayerAttribution map[string]float64 // percentage of spatial component
	Signal           Signal
	DominantLayer    string
	Coherence        float64
	TensionPairs     []TensionPair
}

// #endregion result

// #region detect

// Detect runs the kernel over named layers. Validation fails fast before
// any computation: at least 2 layers, matching name/value lengths, and a
// known mode.
func Detect(layerNames []string, layerValues []float64, opts Options) (DetectionResult, error) {
	n := len(layerNames)
	if n != len(layerValues) {
		return DetectionResult{}, fmt.Errorf("layer names and values must have the same length: %d vs %d", n, len(layerValues))
	}
	if n < 2 {
		return DetectionResult{}, fmt.Errorf("at least 2 layers required, got %d", n)
	}
	if opts.Mode != ModeFriction && opts.Mode != ModeEmergence {
		return DetectionResult{}, fmt.Errorf("unknown detection mode %q", opts.Mode)
	}

	weights := opts.Weights
	if weights == nil {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
	} else if len(weights) != n {
		return DetectionResult{}, fmt.Errorf("weights length %d does not match layer count %d", len(weights), n)
	}

	contributions := make([]float64, n)
	spatial := 0.0
	for i := range contributions {
		contributions[i] = weights[i] * layerValues[i]
		spatial += contributions[i]
	}
	mScore := spatial * opts.FTime / math.Sqrt(float64(n))

	// Attribution as a percentage of the spatial component. A zero spatial
	// sum degenerates to all-zero attribution instead of dividing by zero.
	attrTotal := spatial
	if attrTotal == 0 {
		attrTotal = 1.0
	}
	attribution := make(map[string]float64, n)
	for i, name := range layerNames {
		attribution[name] = round1(contributions[i] / attrTotal * 100)
	}

	// Coherence from the population standard deviation of the raw values.
	mean := 0.0
	for _, v := range layerValues {
		mean += v
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range layerValues {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	coherence := math.Max(0, 1-math.Sqrt(variance)/opts.CoherenceDivisor)

	minVal, maxVal := layerValues[0], layerValues[0]
	maxIdx := 0
	for i, v := range layerValues {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}

	var signal Signal
	switch {
	case opts.Mode == ModeFriction && maxVal-minVal > opts.DetectionThreshold:
		signal = SignalFriction
	case minVal > opts.DetectionThreshold:
		signal = SignalEmergence
	default:
		signal = SignalBaseline
	}

	var tension []TensionPair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			agreement := math.Max(0, 1-math.Abs(layerValues[i]-layerValues[j]))
			if agreement < opts.TensionThreshold {
				tension = append(tension, TensionPair{
					LayerA:    layerNames[i],
					LayerB:    layerNames[j],
					Agreement: round3(agreement),
				})
			}
		}
	}

	return DetectionResult{
		MScore:           round6(mScore),
		SpatialComponent: round6(spatial),
		LayerAttribution: attribution,
		Signal:           signal,
		DominantLayer:    layerNames[maxIdx],
		Coherence:        round6(coherence),
		TensionPairs:     tension,
	}, nil
}

// #endregion detect

// #region rounding

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// #endregion rounding

// #region clamp

// Clamp bounds a value into [0, 1]. Shared by every kernel call site that
// accepts caller-supplied layer values.
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ClampAll returns a clamped copy of values.
func ClampAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Clamp(v)
	}
	return out
}

// #endregion clamp
