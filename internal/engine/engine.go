// Package engine is the orchestration facade: select a template for an
// input, render it, call the provider, run guardrails, and log events.
package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/scaffold-engine/internal/events"
	"github.com/danielpatrickdp/scaffold-engine/internal/guardrail"
	"github.com/danielpatrickdp/scaffold-engine/internal/kernel"
	"github.com/danielpatrickdp/scaffold-engine/internal/policy"
	"github.com/danielpatrickdp/scaffold-engine/internal/prompt"
	"github.com/danielpatrickdp/scaffold-engine/internal/provider"
	"github.com/danielpatrickdp/scaffold-engine/internal/selection"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region config

// Config wires the engine's collaborators. Registry and Provider are
// required; everything else has a usable default.
type Config struct {
	Registry   *template.Registry
	Provider   provider.Provider
	Evaluators []guardrail.Evaluator
	Events     *events.Store
	Logger     *zap.Logger

	// DefaultDomain picks a domain-default template when scoring finds
	// nothing: the first registered template in that domain.
	DefaultDomain string
}

// #endregion config

// #region engine

// Engine runs the full request pipeline. Not safe for concurrent use: the
// selection cache and prior-template continuity are unsynchronized by
// design, callers decide sharing policy.
type Engine struct {
	registry   *template.Registry
	selector   *selection.Engine
	evaluators []guardrail.Evaluator
	provider   provider.Provider
	events     *events.Store
	logger     *zap.Logger
	domain     string

	lastTemplateID string
}

// New builds an engine and warms the selection cache.
func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("engine: provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	evaluators := cfg.Evaluators
	if evaluators == nil {
		var err error
		evaluators, err = guardrail.DefaultEvaluators(nil, nil)
		if err != nil {
			return nil, err
		}
	}

	selector := selection.NewEngine(nil)
	selector.Cache().Prepare(cfg.Registry)

	return &Engine{
		registry:   cfg.Registry,
		selector:   selector,
		evaluators: evaluators,
		provider:   cfg.Provider,
		events:     cfg.Events,
		logger:     logger,
		domain:     cfg.DefaultDomain,
	}, nil
}

// SwapRegistry replaces the template set, typically after a watched
// reload. The selection cache is dropped so stale entries never serve
// the new definitions.
func (e *Engine) SwapRegistry(reg *template.Registry) {
	if reg == nil {
		return
	}
	e.registry = reg
	e.selector.Cache().InvalidateAll()
	e.selector.Cache().Prepare(reg)
	e.logger.Info("template registry swapped", zap.Int("count", reg.Len()))
}

// #endregion engine

// #region run-types

// RunRequest is one turn through the pipeline.
type RunRequest struct {
	Input            string
	ToolName         string
	CallerTemplateID string
	Policy           *policy.RunPolicy
	Params           *selection.Params
	RenderOptions    prompt.RenderOptions
	Model            string
}

// RunResult is the full pipeline outcome for one turn.
type RunResult struct {
	TemplateID  string
	Mode        selection.Mode
	Explanation selection.Explanation
	Prompt      prompt.Assembled
	RawContent  string
	Content     string
	Guardrails  guardrail.Check
	Safety      kernel.DetectionResult
	Notes       []string
}

// #endregion run-types

// #region select

// selectTemplate runs the cascade plus the domain-default fallback.
func (e *Engine) selectTemplate(req RunRequest, p selection.Params) (*template.Template, selection.Explanation) {
	tpl, expl := e.selector.Match(e.registry, req.ToolName, req.Input, req.CallerTemplateID, p)
	if tpl != nil {
		return tpl, expl
	}

	if e.domain != "" {
		for _, candidate := range e.registry.All() {
			if candidate.Domain == e.domain {
				expl.SelectedID = candidate.ID
				expl.Mode = selection.ModeDefault
				return candidate, expl
			}
		}
	}
	return nil, expl
}

// #endregion select

// #region run

// Run executes the pipeline for one input. A nil selection is an error:
// the caller either registers a default domain or handles selection
// upstream.
func (e *Engine) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	p := selection.DefaultParams()
	if req.Params != nil {
		p = *req.Params
	}
	if req.Policy != nil {
		if err := req.Policy.Validate(); err != nil {
			return RunResult{}, err
		}
		if len(req.Policy.SelectionBias) > 0 {
			p.Bias = req.Policy.SelectionBias
		}
	}
	if e.lastTemplateID != "" {
		if p.Context == nil {
			p.Context = map[string]string{}
		}
		if _, ok := p.Context[selection.ContextPriorTemplate]; !ok {
			p.Context[selection.ContextPriorTemplate] = e.lastTemplateID
		}
	}

	tpl, expl := e.selectTemplate(req, p)
	e.logSelection(expl)
	if tpl == nil {
		return RunResult{Explanation: expl, Mode: expl.Mode},
			fmt.Errorf("no template selected for input (mode %s)", expl.Mode)
	}

	renderOpts := req.RenderOptions
	renderOpts.Policy = req.Policy
	assembled, err := prompt.Render(tpl, req.Input, renderOpts)
	if err != nil {
		return RunResult{}, err
	}

	genReq := provider.Request{
		SystemMessage: assembled.SystemMessage,
		UserMessage:   assembled.UserMessage,
		Model:         req.Model,
	}
	for _, turn := range assembled.ChatHistory {
		genReq.History = append(genReq.History, provider.Turn{Role: turn.Role, Content: turn.Content})
	}
	if req.Policy != nil {
		genReq.Temperature = req.Policy.Temperature
		genReq.MaxTokens = req.Policy.MaxTokens
	}

	resp, err := e.provider.Generate(ctx, genReq)
	if err != nil {
		return RunResult{}, fmt.Errorf("generate: %w", err)
	}

	check, err := guardrail.RunContext(ctx, resp.Content, tpl, e.evaluators)
	if err != nil {
		return RunResult{}, fmt.Errorf("guardrails: %w", err)
	}

	content := guardrail.Sanitize(resp.Content, check, "")
	var notes []string
	if req.Policy == nil || !req.Policy.SkipDisclaimers {
		content, notes = guardrail.EnforceDisclaimers(content, tpl)
	}

	safetyLayers := guardrail.ContentSafetyLayers(resp.Content, tpl, check)
	safety, err := guardrail.DetectSafetyFriction(safetyLayers)
	if err != nil {
		return RunResult{}, fmt.Errorf("safety detection: %w", err)
	}
	e.logDetection("safety", safety)

	if safety.Signal == kernel.SignalFriction {
		e.logger.Warn("safety friction detected",
			zap.String("template_id", tpl.ID),
			zap.String("dominant_layer", safety.DominantLayer))
	}

	e.lastTemplateID = tpl.ID

	return RunResult{
		TemplateID:  tpl.ID,
		Mode:        expl.Mode,
		Explanation: expl,
		Prompt:      assembled,
		RawContent:  resp.Content,
		Content:     content,
		Guardrails:  check,
		Safety:      safety,
		Notes:       notes,
	}, nil
}

// #endregion run

// #region event-logging

func (e *Engine) logSelection(expl selection.Explanation) {
	if e.events == nil {
		return
	}
	scores, err := json.Marshal(expl.Scores)
	if err != nil {
		scores = nil
	}
	if _, err := e.events.LogSelection(events.SelectionEvent{
		TemplateID: expl.SelectedID,
		Mode:       string(expl.Mode),
		ToolName:   expl.ToolName,
		InputText:  expl.Input,
		Confidence: expl.Confidence,
		Ambiguous:  expl.Ambiguous,
		Scores:     scores,
	}); err != nil {
		e.logger.Warn("log selection event", zap.Error(err))
	}
}

func (e *Engine) logDetection(source string, result kernel.DetectionResult) {
	if e.events == nil {
		return
	}
	detail, err := json.Marshal(result)
	if err != nil {
		detail = nil
	}
	if _, err := e.events.LogDetection(events.DetectionEvent{
		Source:    source,
		Signal:    string(result.Signal),
		MScore:    result.MScore,
		Coherence: result.Coherence,
		Dominant:  result.DominantLayer,
		Detail:    detail,
	}); err != nil {
		e.logger.Warn("log detection event", zap.Error(err))
	}
}

// #endregion event-logging
