package policy

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/scaffold-engine/internal/kernel"
)

// #region conflict-layers

// ConflictLayerNames is the fixed layer order for policy-conflict
// detection.
var ConflictLayerNames = []string{
	"creativity",
	"constraint_strictness",
	"safety_priority",
	"verbosity",
}

var conflictWeights = []float64{0.30, 0.25, 0.25, 0.20}

// LayerValues projects a policy onto the four conflict layers. Every value
// lands in [0, 1]; a neutral policy sits close enough to the middle that
// no friction is reported.
func LayerValues(p *RunPolicy) map[string]float64 {
	creativity := 0.5
	if p.Temperature != nil {
		// Temperature spans [0, 2]; halve it onto the unit range.
		creativity = *p.Temperature / 2
	}

	strictness := 0.4
	if p.OutputFormat != "" {
		strictness += 0.15
	}
	if strings.Contains(strings.ToLower(p.MaxLengthGuidance), "under") {
		strictness += 0.15
	}
	if p.Compact != nil && *p.Compact {
		strictness += 0.1
	}
	strictness += 0.05 * float64(len(p.ExtraMustInclude))

	safety := 0.7
	if p.SkipDisclaimers {
		safety -= 0.35
	}
	for _, action := range p.RemoveProhibitedActions {
		if action == "*" {
			safety -= 0.35
			break
		}
	}
	safety += 0.05 * float64(len(p.ExtraProhibitedActions))

	verbosity := 0.5
	guidance := strings.ToLower(p.MaxLengthGuidance)
	switch {
	case strings.Contains(guidance, "no length"):
		verbosity = 0.9
	case strings.Contains(guidance, "concise") || strings.Contains(guidance, "brief") || strings.Contains(guidance, "under"):
		verbosity = 0.2
	}

	return map[string]float64{
		"creativity":            kernel.Clamp(creativity),
		"constraint_strictness": kernel.Clamp(strictness),
		"safety_priority":       kernel.Clamp(safety),
		"verbosity":             kernel.Clamp(verbosity),
	}
}

// #endregion conflict-layers

// #region conflict-result

// ConflictResult wraps a kernel detection over the policy layers.
type ConflictResult struct {
	kernel.DetectionResult
	LayerValues map[string]float64
}

// HasConflict reports whether policy fields pull against each other.
func (r ConflictResult) HasConflict() bool {
	return r.Signal == kernel.SignalFriction
}

// Summary is a one-line human-readable digest.
func (r ConflictResult) Summary() string {
	return fmt.Sprintf("signal=%s m_score=%.4f coherence=%.4f dominant=%s tension_pairs=%d",
		r.Signal, r.MScore, r.Coherence, r.DominantLayer, len(r.TensionPairs))
}

// #endregion conflict-result

// #region detect

// DetectConflict runs friction detection over a policy's layer projection.
func DetectConflict(p *RunPolicy) (ConflictResult, error) {
	values := LayerValues(p)
	vector := make([]float64, len(ConflictLayerNames))
	for i, name := range ConflictLayerNames {
		vector[i] = values[name]
	}
	opts := kernel.DefaultOptions()
	opts.Weights = conflictWeights
	result, err := kernel.Detect(ConflictLayerNames, vector, opts)
	if err != nil {
		return ConflictResult{}, err
	}
	return ConflictResult{DetectionResult: result, LayerValues: values}, nil
}

// #endregion detect
