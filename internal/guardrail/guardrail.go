package guardrail

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
	"github.com/danielpatrickdp/scaffold-engine/internal/textmatch"
)

// #region defaults

// DefaultEvaluators builds the standard evaluator set. Prohibited and
// regex-policy evaluators only join when configured with patterns.
func DefaultEvaluators(prohibitedIndicators map[string][]string, regexPolicies map[string]string) ([]Evaluator, error) {
	evaluators := []Evaluator{NewEscalationTriggerEvaluator()}
	if len(prohibitedIndicators) > 0 {
		evaluators = append(evaluators, NewProhibitedPatternEvaluator(prohibitedIndicators, nil))
	}
	if len(regexPolicies) > 0 {
		rp, err := NewRegexPolicyEvaluator(regexPolicies, nil)
		if err != nil {
			return nil, err
		}
		evaluators = append(evaluators, rp)
	}
	evaluators = append(evaluators, NewArgumentStructureEvaluator())
	return evaluators, nil
}

// #endregion defaults

// #region aggregation

// aggregate unions evaluator outputs. Union over flags/violations is
// commutative and associative, so evaluator ordering never changes the
// pass/fail outcome.
func aggregate(results []Evaluation) Check {
	check := Check{Passed: true}
	for _, r := range results {
		check.Flags = append(check.Flags, r.Flags...)
		check.HardViolations = append(check.HardViolations, r.HardViolations...)
		check.MatchedPhrases = append(check.MatchedPhrases, r.MatchedPhrases...)
		check.Findings = append(check.Findings, Finding{
			Evaluator:      r.EvaluatorName,
			Flags:          r.Flags,
			HardViolations: r.HardViolations,
			MatchedPhrases: r.MatchedPhrases,
			Metadata:       r.Metadata,
		})
	}
	check.Passed = len(check.HardViolations) == 0
	return check
}

// Run evaluates content against every evaluator synchronously.
func Run(content string, tpl *template.Template, evaluators []Evaluator) Check {
	results := make([]Evaluation, 0, len(evaluators))
	for _, ev := range evaluators {
		results = append(results, ev.Evaluate(content, tpl))
	}
	return aggregate(results)
}

// RunContext evaluates concurrently. Evaluators implementing
// ContextEvaluator get the context; the rest run their synchronous path.
// Results are collected positionally so aggregation input order is stable
// regardless of completion order.
func RunContext(ctx context.Context, content string, tpl *template.Template, evaluators []Evaluator) (Check, error) {
	results := make([]Evaluation, len(evaluators))

	g, ctx := errgroup.WithContext(ctx)
	for i, ev := range evaluators {
		g.Go(func() error {
			if cev, ok := ev.(ContextEvaluator); ok {
				r, err := cev.EvaluateContext(ctx, content, tpl)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			}
			results[i] = ev.Evaluate(content, tpl)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Check{}, err
	}
	return aggregate(results), nil
}

// #endregion aggregation

// #region sanitize

// DefaultRedactionMessage replaces redacted sentence windows.
const DefaultRedactionMessage = "[Removed: contains prohibited content]"

var flagPhrasePattern = regexp.MustCompile(`\('([^']+)'\)`)

// compileRedaction matches the sentence window around a phrase: up to 500
// non-terminator characters either side, plus the closing punctuation.
func compileRedaction(phrase string) *regexp.Regexp {
	if len(phrase) > 500 {
		phrase = phrase[:500]
	}
	escaped := strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`)
	return regexp.MustCompile(`(?i)[^.!?\n]{0,500}\b` + escaped + `\b[^.!?\n]{0,500}[.!?]?`)
}

// Sanitize redacts the sentence windows around matched phrases in content
// that failed its check. Passing content is returned untouched. A failing
// check with no recoverable phrases redacts everything rather than leak.
func Sanitize(content string, check Check, redactionMessage string) string {
	if check.Passed {
		return content
	}
	if redactionMessage == "" {
		redactionMessage = DefaultRedactionMessage
	}

	phrases := append([]string(nil), check.MatchedPhrases...)
	if len(phrases) == 0 {
		for _, flag := range check.Flags {
			if strings.HasPrefix(flag, "prohibited_pattern_detected:") {
				if m := flagPhrasePattern.FindStringSubmatch(flag); m != nil {
					phrases = append(phrases, m[1])
				}
			}
		}
	}
	if len(phrases) == 0 {
		if len(check.HardViolations) > 0 {
			return redactionMessage
		}
		return content
	}

	sanitized := content
	for _, phrase := range phrases {
		sanitized = compileRedaction(phrase).ReplaceAllString(sanitized, redactionMessage)
	}
	return sanitized
}

// #endregion sanitize

// #region disclaimers

// EnforceDisclaimers appends any template disclaimers missing from content
// as a footer. Returns the amended content and one note per appended
// disclaimer.
func EnforceDisclaimers(content string, tpl *template.Template) (string, []string) {
	var disclaimers []string
	for _, d := range tpl.Guardrails.Disclaimers {
		if trimmed := strings.TrimSpace(d); trimmed != "" {
			disclaimers = append(disclaimers, trimmed)
		}
	}
	if len(disclaimers) == 0 {
		return content, nil
	}

	contentNorm := textmatch.NormalizePhrase(content)
	var missing []string
	for _, d := range disclaimers {
		if !strings.Contains(contentNorm, textmatch.NormalizePhrase(d)) {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return content, nil
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n---\nDisclaimers:\n")
	notes := make([]string, 0, len(missing))
	for _, d := range missing {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteString("\n")
		notes = append(notes, "disclaimer_appended: "+d)
	}
	return strings.TrimRight(b.String(), "\n"), notes
}

// #endregion disclaimers
