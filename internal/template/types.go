// Package template defines reasoning-template records, the registry that
// indexes them, and the YAML loader/validator for on-disk definitions.
package template

// #region defaults

// DefaultFormat is the output format assumed when a template names none.
const DefaultFormat = "structured_narrative"

// #endregion defaults

// #region applicability

// Applicability defines when a template should be selected.
// Tools bind the template to direct tool invocations; keywords and intent
// phrases drive scored matching against free-text input.
type Applicability struct {
	Tools         []string `yaml:"tools"`
	Keywords      []string `yaml:"keywords"`
	IntentPhrases []string `yaml:"intent_phrases"`
}

// #endregion applicability

// #region framing

// Framing is the cognitive stance the downstream model adopts.
type Framing struct {
	Role         string            `yaml:"role"`
	Perspective  string            `yaml:"perspective"`
	Tone         string            `yaml:"tone"`
	ToneVariants map[string]string `yaml:"tone_variants"`
}

// #endregion framing

// #region output-calibration

// OutputCalibration controls the shape and content of generated output.
type OutputCalibration struct {
	Format            string   `yaml:"format"`
	FormatOptions     []string `yaml:"format_options"`
	MaxLengthGuidance string   `yaml:"max_length_guidance"`
	MustInclude       []string `yaml:"must_include"`
	NeverInclude      []string `yaml:"never_include"`
}

// #endregion output-calibration

// #region guardrails

// Guardrails are the safety boundaries attached to a template.
type Guardrails struct {
	Disclaimers        []string `yaml:"disclaimers"`
	EscalationTriggers []string `yaml:"escalation_triggers"`
	ProhibitedActions  []string `yaml:"prohibited_actions"`
}

// #endregion guardrails

// #region template

// Template is a complete reasoning template: a domain-specific reasoning
// pattern with its applicability triggers, framing, calibration, and
// guardrails. Read-only after registration.
type Template struct {
	ID                  string            `yaml:"id"`
	Version             string            `yaml:"version"`
	Domain              string            `yaml:"domain"`
	DisplayName         string            `yaml:"display_name"`
	Description         string            `yaml:"description"`
	Applicability       Applicability     `yaml:"applicability"`
	Framing             Framing           `yaml:"framing"`
	ReasoningSteps      []string          `yaml:"reasoning_steps"`
	KnowledgeActivation []string          `yaml:"knowledge_activation"`
	Output              OutputCalibration `yaml:"output"`
	Guardrails          Guardrails        `yaml:"guardrails"`
	Tags                []string          `yaml:"tags"`
}

// #endregion template
