package selection

import (
	"sort"
	"strings"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
	"github.com/danielpatrickdp/scaffold-engine/internal/textmatch"
)

// #region engine

// Engine runs layered template selection over an injected matcher cache.
// It holds no registry; the candidate set is passed per call so the same
// engine can serve multiple registries or filtered views.
type Engine struct {
	cache *Cache
}

// NewEngine creates an engine around cache. A nil cache gets a fresh one.
func NewEngine(cache *Cache) *Engine {
	if cache == nil {
		cache = NewCache()
	}
	return &Engine{cache: cache}
}

// Cache exposes the engine's matcher cache for warmup and invalidation.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// #endregion engine

// #region score-one

// scoreOne scores a single template across all four layers.
func (e *Engine) scoreOne(tpl *template.Template, entry *cacheEntry, inputTokens map[string]struct{}, inputLower string, p Params) TemplateScore {
	surface, kwDetail := scoreSurface(entry, inputLower, p)
	intent, intentDetail := scoreIntent(entry, inputTokens, inputLower, p)
	structural := scoreStructural(entry, inputTokens, p)
	contextual := scoreContextual(tpl.Domain, tpl.ID, p)

	layers := LayerBreakdown{
		Surface:    surface,
		Intent:     intent,
		Structural: structural,
		Contextual: contextual,
	}

	weighted := p.Weights.Surface*surface +
		p.Weights.Intent*intent +
		p.Weights.Structural*structural +
		p.Weights.Contextual*contextual

	active := layers.ActiveCount(p.LayerActivation)
	reinforcement := 1.0
	if active > 1 {
		reinforcement = 1.0 + p.Reinforcement*float64(active-1)
	}
	preBias := weighted * reinforcement

	bias := 1.0
	if p.Bias != nil {
		if b, ok := p.Bias[tpl.ID]; ok {
			bias = b
		}
	}

	return TemplateScore{
		TemplateID:    tpl.ID,
		Total:         preBias * bias,
		Layers:        layers,
		Reinforcement: reinforcement,
		Bias:          bias,
		PreBias:       preBias,
		IntentDetail:  intentDetail,
		KeywordDetail: kwDetail,
	}
}

// #endregion score-one

// #region score-layered

// scoreLayered scores all templates and picks the best. Two passes: the
// token-indexed candidates first, then a structural-only sweep of the
// remainder, run only when a confidence floor is set and unmet. Ties break
// first-registered-wins via the stable sort.
func (e *Engine) scoreLayered(templates []*template.Template, input string, p Params) (*template.Template, []TemplateScore, float64, bool) {
	if len(templates) == 0 || input == "" {
		return nil, nil, 0, false
	}

	inputLower := strings.ToLower(input)
	inputTokens := textmatch.Tokenize(input)

	for _, tpl := range templates {
		e.cache.ensure(tpl)
	}

	candidateIDs := e.cache.candidates(inputTokens)
	scoreAll := len(inputTokens) == 0

	var scores []TemplateScore
	var deferred []*template.Template

	for _, tpl := range templates {
		_, isCandidate := candidateIDs[tpl.ID]
		if scoreAll || isCandidate {
			scores = append(scores, e.scoreOne(tpl, e.cache.ensure(tpl), inputTokens, inputLower, p))
		} else {
			deferred = append(deferred, tpl)
		}
	}

	bestSoFar := 0.0
	for _, s := range scores {
		if s.Total > bestSoFar {
			bestSoFar = s.Total
		}
	}

	if p.MinConfidence > 0 && bestSoFar < p.MinConfidence && len(deferred) > 0 {
		for _, tpl := range deferred {
			entry := e.cache.ensure(tpl)
			if scoreStructural(entry, inputTokens, p) > p.LayerActivation {
				scores = append(scores, e.scoreOne(tpl, entry, inputTokens, inputLower, p))
			} else {
				scores = append(scores, TemplateScore{TemplateID: tpl.ID})
			}
		}
	} else {
		for _, tpl := range deferred {
			scores = append(scores, TemplateScore{TemplateID: tpl.ID})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})

	if len(scores) == 0 || scores[0].Total <= 0 {
		return nil, scores, 0, false
	}

	best := scores[0]
	confidence := best.Total

	if p.MinConfidence > 0 && confidence < p.MinConfidence {
		return nil, scores, confidence, false
	}

	ambiguous := false
	if p.AmbiguityMargin > 0 && len(scores) > 1 && scores[1].Total > 0 {
		if confidence-scores[1].Total < p.AmbiguityMargin {
			ambiguous = true
		}
	}

	var selected *template.Template
	for _, tpl := range templates {
		if tpl.ID == best.TemplateID {
			selected = tpl
			break
		}
	}
	return selected, scores, confidence, ambiguous
}

// #endregion score-layered

// #region public-api

// Score returns the full per-template breakdown, sorted by total score
// descending with registration order breaking ties.
func (e *Engine) Score(templates []*template.Template, input string, p Params) []TemplateScore {
	_, scores, _, _ := e.scoreLayered(templates, input, p)
	return scores
}

// Select scores templates and returns the winner with its explanation.
// A nil template means nothing scored above zero or the confidence floor.
func (e *Engine) Select(templates []*template.Template, input string, p Params) (*template.Template, Explanation) {
	selected, scores, confidence, ambiguous := e.scoreLayered(templates, input, p)
	expl := Explanation{
		Mode:       ModeNone,
		Scores:     scores,
		Input:      input,
		Confidence: confidence,
		Ambiguous:  ambiguous,
	}
	if selected != nil {
		expl.SelectedID = selected.ID
		expl.Mode = ModeScored
	}
	return selected, expl
}

// Match runs the full priority cascade:
//
//  1. Explicit caller template ID
//  2. Tool name match (first registered wins)
//  3. Layered scoring
//  4. None (caller handles fallback)
func (e *Engine) Match(reg *template.Registry, toolName, input, callerTemplateID string, p Params) (*template.Template, Explanation) {
	if callerTemplateID != "" {
		if tpl := reg.Get(callerTemplateID); tpl != nil {
			return tpl, Explanation{
				SelectedID: tpl.ID,
				Mode:       ModeCallerID,
				ToolName:   toolName,
				Input:      input,
			}
		}
	}

	if matches := reg.FindByTool(toolName); len(matches) > 0 {
		return matches[0], Explanation{
			SelectedID: matches[0].ID,
			Mode:       ModeToolMatch,
			ToolName:   toolName,
			Input:      input,
		}
	}

	if input != "" {
		selected, expl := e.Select(reg.All(), input, p)
		expl.ToolName = toolName
		return selected, expl
	}

	return nil, Explanation{Mode: ModeNone, ToolName: toolName, Input: input}
}

// #endregion public-api
