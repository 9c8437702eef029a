// Package policy implements run policies: named presets, per-run behavior
// overlays, a plain-English constraint parser, and conflict detection
// between policy fields.
package policy

import (
	"fmt"
	"sort"
)

// #region helpers

// Float returns a pointer to v, for optional scalar fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// #endregion helpers

// #region preset

// Preset is a named behavior profile mapping to concrete overrides.
// Nil scalar fields leave the corresponding policy field untouched.
type Preset struct {
	Name                    string
	Temperature             *float64
	MaxTokens               *int
	ToneVariant             string
	OutputFormat            string
	MaxLengthGuidance       string
	Compact                 *bool
	SelectionBias           map[string]float64
	SkipDisclaimers         bool
	ExtraMustInclude        []string
	ExtraNeverInclude       []string
	ExtraProhibitedActions  []string
	RemoveProhibitedActions []string
}

// Validate checks preset field ranges.
func (p *Preset) Validate() error {
	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
		return fmt.Errorf("preset %s: temperature must be between 0.0 and 2.0", p.Name)
	}
	if p.MaxTokens != nil && *p.MaxTokens <= 0 {
		return fmt.Errorf("preset %s: max tokens must be positive", p.Name)
	}
	return nil
}

// #endregion preset

// #region builtin-presets

// BuiltinPresets returns the standard preset set keyed by name.
func BuiltinPresets() map[string]*Preset {
	return map[string]*Preset{
		"creative": {
			Name:              "creative",
			Temperature:       Float(0.8),
			MaxLengthGuidance: "no length constraint",
		},
		"precise": {
			Name:              "precise",
			Temperature:       Float(0.1),
			OutputFormat:      "bullet_points",
			MaxLengthGuidance: "concise, under 300 words",
			Compact:           Bool(true),
		},
		"aggressive": {
			Name:                    "aggressive",
			Temperature:             Float(0.5),
			SkipDisclaimers:         true,
			MaxLengthGuidance:       "direct and brief",
			RemoveProhibitedActions: []string{"*"},
		},
		"balanced": {
			Name:        "balanced",
			Temperature: Float(0.3),
		},
	}
}

// #endregion builtin-presets

// #region preset-registry

// PresetRegistry holds built-in and user-defined presets.
type PresetRegistry struct {
	presets map[string]*Preset
}

// NewPresetRegistry creates a registry, optionally seeded with builtins.
func NewPresetRegistry(includeBuiltins bool) *PresetRegistry {
	r := &PresetRegistry{presets: make(map[string]*Preset)}
	if includeBuiltins {
		for name, p := range BuiltinPresets() {
			r.presets[name] = p
		}
	}
	return r
}

// Register adds or replaces a preset by name.
func (r *PresetRegistry) Register(p *Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.presets[p.Name] = p
	return nil
}

// Get returns a preset by name, or nil.
func (r *PresetRegistry) Get(name string) *Preset {
	return r.presets[name]
}

// Names lists registered preset names, sorted.
func (r *PresetRegistry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// #endregion preset-registry

// #region run-policy

// RunPolicy is the per-run behavior overlay. It never modifies template
// definitions on disk; it only biases selection and shapes rendering for
// one run.
type RunPolicy struct {
	Temperature             *float64
	MaxTokens               *int
	ToneVariant             string
	OutputFormat            string
	MaxLengthGuidance       string
	Compact                 *bool
	SelectionBias           map[string]float64
	SkipDisclaimers         bool
	ExtraMustInclude        []string
	ExtraNeverInclude       []string
	ExtraProhibitedActions  []string
	RemoveProhibitedActions []string
	Source                  string
}

// Validate checks policy field ranges.
func (p *RunPolicy) Validate() error {
	if p.Temperature != nil && (*p.Temperature < 0 || *p.Temperature > 2) {
		return fmt.Errorf("run policy: temperature must be between 0.0 and 2.0")
	}
	if p.MaxTokens != nil && *p.MaxTokens <= 0 {
		return fmt.Errorf("run policy: max tokens must be positive")
	}
	return nil
}

// #endregion run-policy
