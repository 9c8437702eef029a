package guardrail

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/scaffold-engine/internal/argument"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
	"github.com/danielpatrickdp/scaffold-engine/internal/textmatch"
)

// #region pattern-helpers

// compileIndicator builds a boundary-anchored matcher for a normalized
// phrase, with internal whitespace matching any run of whitespace.
func compileIndicator(normalized string) *regexp.Regexp {
	escaped := strings.ReplaceAll(regexp.QuoteMeta(normalized), " ", `\s+`)
	return regexp.MustCompile(`\b` + escaped + `\b`)
}

func normalizeContent(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}

// #endregion pattern-helpers

// #region escalation-trigger

// EscalationTriggerEvaluator soft-flags content covering enough of an
// escalation trigger's tokens. Trigger hits never hard-fail a check; they
// exist so the caller can escalate handling.
type EscalationTriggerEvaluator struct {
	ThresholdRatio float64
}

// NewEscalationTriggerEvaluator uses the standard 0.6 coverage threshold.
func NewEscalationTriggerEvaluator() *EscalationTriggerEvaluator {
	return &EscalationTriggerEvaluator{ThresholdRatio: 0.6}
}

func (e *EscalationTriggerEvaluator) Name() string { return "escalation_trigger" }

func (e *EscalationTriggerEvaluator) Evaluate(content string, tpl *template.Template) Evaluation {
	contentTokens := textmatch.Tokenize(content)
	var flags []string

	for _, trigger := range tpl.Guardrails.EscalationTriggers {
		triggerTokens := textmatch.Tokenize(trigger)
		if len(triggerTokens) == 0 {
			continue
		}
		matched := 0
		for tok := range triggerTokens {
			if _, ok := contentTokens[tok]; ok {
				matched++
			}
		}
		if float64(matched) >= float64(len(triggerTokens))*e.ThresholdRatio {
			flags = append(flags, "escalation_trigger_detected: "+trigger)
		}
	}

	return Evaluation{EvaluatorName: e.Name(), Flags: flags}
}

// #endregion escalation-trigger

// #region prohibited-pattern

type compiledIndicator struct {
	raw    string
	regex  *regexp.Regexp
	tokens map[string]struct{}
}

// ProhibitedPatternEvaluator hard-fails content matching any indicator
// phrase for a prohibited action. A token-subset prefilter skips the regex
// for phrases whose tokens aren't all present.
type ProhibitedPatternEvaluator struct {
	actions  []string
	compiled map[string][]compiledIndicator
}

// NewProhibitedPatternEvaluator compiles indicator phrases per action.
// Action iteration order follows the order given.
func NewProhibitedPatternEvaluator(indicators map[string][]string, actionOrder []string) *ProhibitedPatternEvaluator {
	ev := &ProhibitedPatternEvaluator{
		compiled: make(map[string][]compiledIndicator),
	}
	if actionOrder == nil {
		for action := range indicators {
			actionOrder = append(actionOrder, action)
		}
	}
	for _, action := range actionOrder {
		patterns, ok := indicators[action]
		if !ok {
			continue
		}
		var list []compiledIndicator
		for _, pattern := range patterns {
			normalized := textmatch.NormalizePhrase(pattern)
			if normalized == "" {
				continue
			}
			list = append(list, compiledIndicator{
				raw:    pattern,
				regex:  compileIndicator(normalized),
				tokens: textmatch.Tokenize(normalized),
			})
		}
		ev.actions = append(ev.actions, action)
		ev.compiled[action] = list
	}
	return ev
}

func (e *ProhibitedPatternEvaluator) Name() string { return "prohibited_pattern" }

func (e *ProhibitedPatternEvaluator) Evaluate(content string, tpl *template.Template) Evaluation {
	_ = tpl
	contentLower := normalizeContent(content)
	contentTokens := textmatch.Tokenize(contentLower)

	var flags, violations, phrases []string

	for _, action := range e.actions {
	patterns:
		for _, ind := range e.compiled[action] {
			for tok := range ind.tokens {
				if _, ok := contentTokens[tok]; !ok {
					continue patterns
				}
			}
			if ind.regex.MatchString(contentLower) {
				flags = append(flags, fmt.Sprintf("prohibited_pattern_detected: %s ('%s')", action, ind.raw))
				violations = append(violations, action)
				phrases = append(phrases, ind.raw)
			}
		}
	}

	return Evaluation{
		EvaluatorName:  e.Name(),
		Flags:          flags,
		HardViolations: violations,
		MatchedPhrases: phrases,
	}
}

// #endregion prohibited-pattern

// #region regex-policy

// RegexPolicyEvaluator hard-fails content matching any named policy
// pattern. Patterns are compiled case-insensitive against the raw content.
type RegexPolicyEvaluator struct {
	names    []string
	compiled map[string]*regexp.Regexp
}

// NewRegexPolicyEvaluator compiles the named policy patterns. Invalid
// patterns are rejected up front.
func NewRegexPolicyEvaluator(policyPatterns map[string]string, nameOrder []string) (*RegexPolicyEvaluator, error) {
	ev := &RegexPolicyEvaluator{compiled: make(map[string]*regexp.Regexp)}
	if nameOrder == nil {
		for name := range policyPatterns {
			nameOrder = append(nameOrder, name)
		}
	}
	for _, name := range nameOrder {
		pattern, ok := policyPatterns[name]
		if !ok {
			continue
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile policy pattern %q: %w", name, err)
		}
		ev.names = append(ev.names, name)
		ev.compiled[name] = re
	}
	return ev, nil
}

func (e *RegexPolicyEvaluator) Name() string { return "regex_policy" }

func (e *RegexPolicyEvaluator) Evaluate(content string, tpl *template.Template) Evaluation {
	_ = tpl
	var flags, violations []string
	for _, name := range e.names {
		if e.compiled[name].MatchString(content) {
			flags = append(flags, "regex_policy_violation: "+name)
			violations = append(violations, name)
		}
	}
	return Evaluation{EvaluatorName: e.Name(), Flags: flags, HardViolations: violations}
}

// #endregion regex-policy

// #region argument-structure

var layerScoreLine = regexp.MustCompile(`(?i)\b(premise_strength|inferential_link|structural_validity|scope_consistency)\s*:\s*([0-9]*\.?[0-9]+)`)

// ArgumentStructureEvaluator reads self-reported layer scores out of the
// content ("premise_strength: 0.8" lines), runs argument friction
// detection, and soft-flags any classified fallacy. Content without a full
// score set is skipped. Fallacies never hard-fail a check.
type ArgumentStructureEvaluator struct{}

func NewArgumentStructureEvaluator() *ArgumentStructureEvaluator {
	return &ArgumentStructureEvaluator{}
}

func (e *ArgumentStructureEvaluator) Name() string { return "argument_structure" }

func (e *ArgumentStructureEvaluator) Evaluate(content string, tpl *template.Template) Evaluation {
	_ = tpl
	found := make(map[string]float64)
	for _, m := range layerScoreLine.FindAllStringSubmatch(content, -1) {
		name := strings.ToLower(m[1])
		if _, seen := found[name]; seen {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		found[name] = v
	}
	if len(found) != len(argument.LayerNames) {
		return Evaluation{EvaluatorName: e.Name()}
	}

	values := make([]float64, len(argument.LayerNames))
	for i, name := range argument.LayerNames {
		values[i] = found[name]
	}

	result, fallacy, err := argument.Analyze(values)
	if err != nil {
		return Evaluation{EvaluatorName: e.Name()}
	}

	eval := Evaluation{
		EvaluatorName: e.Name(),
		Metadata: map[string]string{
			"signal":     string(result.Signal),
			"fallacy":    fallacy.Name,
			"confidence": strconv.FormatFloat(fallacy.Confidence, 'f', 3, 64),
		},
	}
	if !fallacy.IsValid {
		eval.Flags = append(eval.Flags, "argument_fallacy_detected: "+fallacy.Name)
	}
	return eval
}

// #endregion argument-structure
