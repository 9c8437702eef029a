package policy

import (
	"regexp"
	"strconv"
	"strings"
)

// #region parse-types

// ParsedConstraint is a single recognized clause.
type ParsedConstraint struct {
	Raw         string
	Field       string
	Value       string
	MatchedRule string
}

// ParseResult bundles the assembled policy with per-clause outcomes.
type ParseResult struct {
	Policy       *RunPolicy
	Parsed       []ParsedConstraint
	Unrecognized []string
}

// #endregion parse-types

// #region rules

type constraintRule struct {
	pattern     *regexp.Regexp
	description string
	apply       func(m []string, p *RunPolicy) string
}

// Ordered rule table: earlier rules shadow later ones within a clause.
var constraintRules = []constraintRule{
	{
		pattern:     regexp.MustCompile(`\bmore\s+creative\b`),
		description: "creative_temp",
		apply: func(m []string, p *RunPolicy) string {
			p.Temperature = Float(0.8)
			return "0.8"
		},
	},
	{
		pattern:     regexp.MustCompile(`\bmore\s+precise\b`),
		description: "precise_temp",
		apply: func(m []string, p *RunPolicy) string {
			p.Temperature = Float(0.1)
			return "0.1"
		},
	},
	{
		pattern:     regexp.MustCompile(`\bmore\s+aggressive\b`),
		description: "aggressive_temp",
		apply: func(m []string, p *RunPolicy) string {
			p.Temperature = Float(0.5)
			return "0.5"
		},
	},
	{
		pattern:     regexp.MustCompile(`\btemperature\s+(\d+\.?\d*)\b`),
		description: "explicit_temp",
		apply: func(m []string, p *RunPolicy) string {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				p.Temperature = Float(v)
			}
			return m[1]
		},
	},
	{
		pattern:     regexp.MustCompile(`\bbullet\s*points?\b`),
		description: "bullet_format",
		apply: func(m []string, p *RunPolicy) string {
			p.OutputFormat = "bullet_points"
			return "bullet_points"
		},
	},
	{
		pattern:     regexp.MustCompile(`\bstructured\s+narrative\b`),
		description: "narrative_format",
		apply: func(m []string, p *RunPolicy) string {
			p.OutputFormat = "structured_narrative"
			return "structured_narrative"
		},
	},
	{
		pattern:     regexp.MustCompile(`\bunder\s+(\d+)\s+words?\b`),
		description: "under_n_words",
		apply: func(m []string, p *RunPolicy) string {
			p.MaxLengthGuidance = "under " + m[1] + " words"
			return p.MaxLengthGuidance
		},
	},
	{
		pattern:     regexp.MustCompile(`\b(?:keep\s+it\s+brief|be\s+brief|be\s+concise)\b`),
		description: "brief",
		apply: func(m []string, p *RunPolicy) string {
			p.MaxLengthGuidance = "concise, under 200 words"
			return p.MaxLengthGuidance
		},
	},
	{
		pattern:     regexp.MustCompile(`\bno\s+length\s+(?:limit|constraint)\b`),
		description: "no_length_limit",
		apply: func(m []string, p *RunPolicy) string {
			p.MaxLengthGuidance = "no length constraint"
			return p.MaxLengthGuidance
		},
	},
	{
		pattern:     regexp.MustCompile(`\b(?:skip|no|drop)\s+disclaimers?\b`),
		description: "skip_disclaimers",
		apply: func(m []string, p *RunPolicy) string {
			p.SkipDisclaimers = true
			return "true"
		},
	},
	{
		pattern:     regexp.MustCompile(`\b(?:skip|no|drop)\s+prohibited\s+actions?\b`),
		description: "skip_prohibited",
		apply: func(m []string, p *RunPolicy) string {
			p.RemoveProhibitedActions = append(p.RemoveProhibitedActions, "*")
			return "*"
		},
	},
	{
		pattern:     regexp.MustCompile(`\bmust\s+include\s+(.+)`),
		description: "must_include",
		apply: func(m []string, p *RunPolicy) string {
			v := strings.TrimSpace(m[1])
			p.ExtraMustInclude = append(p.ExtraMustInclude, v)
			return v
		},
	},
	{
		pattern:     regexp.MustCompile(`\bnever\s+include\s+(.+)`),
		description: "never_include",
		apply: func(m []string, p *RunPolicy) string {
			v := strings.TrimSpace(m[1])
			p.ExtraNeverInclude = append(p.ExtraNeverInclude, v)
			return v
		},
	},
	{
		pattern:     regexp.MustCompile(`\b(?:compact\s+mode|use\s+compact)\b`),
		description: "compact_mode",
		apply: func(m []string, p *RunPolicy) string {
			p.Compact = Bool(true)
			return "true"
		},
	},
	{
		pattern:     regexp.MustCompile(`\btone[:\s]\s*(\w+)`),
		description: "tone_variant",
		apply: func(m []string, p *RunPolicy) string {
			p.ToneVariant = m[1]
			return m[1]
		},
	},
	{
		pattern:     regexp.MustCompile(`\bmax\s+(\d+)\s+tokens?\b`),
		description: "max_tokens",
		apply: func(m []string, p *RunPolicy) string {
			if v, err := strconv.Atoi(m[1]); err == nil {
				p.MaxTokens = Int(v)
			}
			return m[1]
		},
	},
}

var presetRefPattern = regexp.MustCompile(`\bpreset[:\s]\s*(\w+)`)

var clauseSplit = regexp.MustCompile(`[,;]\s*`)

// #endregion rules

// #region parse

// ParseConstraints turns plain-English run rules into RunPolicy overrides.
// Clauses split on commas/semicolons; the first matching rule per clause
// wins; unmatched clauses are reported, never silently dropped. A nil
// registry makes preset references unrecognized rather than an error.
func ParseConstraints(text string, registry *PresetRegistry) ParseResult {
	result := ParseResult{Policy: &RunPolicy{}}
	if strings.TrimSpace(text) == "" {
		return result
	}

	for _, clause := range clauseSplit.Split(strings.TrimSpace(text), -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		lower := strings.ToLower(clause)

		matched := false
		for _, rule := range constraintRules {
			m := rule.pattern.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			value := rule.apply(m, result.Policy)
			result.Parsed = append(result.Parsed, ParsedConstraint{
				Raw: clause, Field: rule.description, Value: value, MatchedRule: rule.description,
			})
			matched = true
			break
		}
		if matched {
			continue
		}

		// Preset references sit last in the rule order so explicit field
		// rules in the same clause win.
		if m := presetRefPattern.FindStringSubmatch(lower); m != nil {
			name := m[1]
			var preset *Preset
			if registry != nil {
				preset = registry.Get(name)
			}
			if preset == nil {
				result.Unrecognized = append(result.Unrecognized, clause)
				continue
			}
			presetPolicy := FromPreset(preset)
			presetPolicy.Source = ""
			result.Policy = result.Policy.Merge(presetPolicy)
			result.Parsed = append(result.Parsed, ParsedConstraint{
				Raw: clause, Field: "preset", Value: name, MatchedRule: "preset_ref",
			})
			continue
		}

		result.Unrecognized = append(result.Unrecognized, clause)
	}

	if len(result.Parsed) > 0 {
		rules := make([]string, 0, len(result.Parsed))
		for _, p := range result.Parsed {
			rules = append(rules, p.MatchedRule)
		}
		result.Policy.Source = "constraint:" + strings.Join(rules, "+")
	}
	return result
}

// #endregion parse
