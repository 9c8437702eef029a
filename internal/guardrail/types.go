// Package guardrail provides pluggable content evaluators, aggregation,
// sanitization, and disclaimer enforcement for generated responses.
package guardrail

import (
	"context"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region evaluation

// Evaluation is the raw output of a single evaluator run.
type Evaluation struct {
	EvaluatorName  string
	Flags          []string
	HardViolations []string
	MatchedPhrases []string
	Metadata       map[string]string
}

// Finding is one evaluator's contribution inside an aggregated check.
type Finding struct {
	Evaluator      string
	Flags          []string
	HardViolations []string
	MatchedPhrases []string
	Metadata       map[string]string
}

// Check is the aggregate over all evaluators. Passed iff no evaluator
// reported a hard violation; soft flags never fail a check.
type Check struct {
	Passed         bool
	Flags          []string
	HardViolations []string
	MatchedPhrases []string
	Findings       []Finding
}

// #endregion evaluation

// #region evaluator

// Evaluator inspects generated content against a template's guardrails.
// Evaluators must be independent: no evaluator may rely on another having
// run first, so aggregation order never matters.
type Evaluator interface {
	Name() string
	Evaluate(content string, tpl *template.Template) Evaluation
}

// ContextEvaluator is the optional cancellable variant. Evaluators that
// implement it are preferred by RunContext.
type ContextEvaluator interface {
	Evaluator
	EvaluateContext(ctx context.Context, content string, tpl *template.Template) (Evaluation, error)
}

// #endregion evaluator
