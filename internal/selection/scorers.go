package selection

import (
	"math"
)

// #region saturate

// saturate applies diminishing returns: 1 - e^(-k*raw), mapping [0, inf)
// onto [0, 1).
func saturate(raw, k float64) float64 {
	if raw <= 0 {
		return 0
	}
	return 1 - math.Exp(-k*raw)
}

// #endregion saturate

// #region surface

// scoreSurface counts boundary-safe keyword hits and saturates the count.
func scoreSurface(e *cacheEntry, inputLower string, p Params) (float64, map[string]float64) {
	detail := make(map[string]float64)
	hits := 0
	for i, kw := range e.keywords {
		pat := e.keywordRegex[i]
		if pat != nil && pat.MatchString(inputLower) {
			detail[kw] = 1.0
			hits++
		}
	}
	return saturate(float64(hits), p.SurfaceSaturation), detail
}

// #endregion surface

// #region intent

// scoreIntent sums per-phrase token coverage, with an exact-phrase bonus,
// and saturates the sum. Phrases below the coverage floor contribute
// nothing at all.
func scoreIntent(e *cacheEntry, inputTokens map[string]struct{}, inputLower string, p Params) (float64, map[string]float64) {
	detail := make(map[string]float64)
	rawSum := 0.0

	for i, phrase := range e.intentPhrases {
		tokens := e.intentTokens[i]
		if len(tokens) == 0 {
			continue
		}

		matched := 0
		for tok := range tokens {
			if _, ok := inputTokens[tok]; ok {
				matched++
			}
		}
		coverage := float64(matched) / float64(len(tokens))
		if coverage < p.MinIntentCoverage {
			continue
		}

		contribution := coverage
		if pat := e.intentRegex[i]; pat != nil && pat.MatchString(inputLower) {
			contribution += p.ExactPhraseBonus
		}

		detail[phrase] = contribution
		rawSum += contribution
	}

	return saturate(rawSum, p.IntentSaturation), detail
}

// #endregion intent

// #region structural

// scoreStructural measures description token overlap. Unsaturated: overlap
// below the floor is zero, above it the ratio is used directly.
func scoreStructural(e *cacheEntry, inputTokens map[string]struct{}, p Params) float64 {
	if len(e.descTokens) == 0 {
		return 0
	}
	overlap := 0
	for tok := range e.descTokens {
		if _, ok := inputTokens[tok]; ok {
			overlap++
		}
	}
	if overlap < p.StructuralMinOverlap {
		return 0
	}
	return math.Min(float64(overlap)/float64(len(e.descTokens)), 1)
}

// #endregion structural

// #region contextual

// scoreContextual reads the caller-provided context map. Domain match and
// prior-template continuity do not stack; the stronger signal wins.
func scoreContextual(domain, templateID string, p Params) float64 {
	if len(p.Context) == 0 {
		return 0
	}
	score := 0.0
	if hint := p.Context[ContextDomain]; hint != "" && hint == domain {
		score = 0.5
	}
	if p.Context[ContextPriorTemplate] == templateID {
		score = math.Max(score, 0.3)
	}
	return math.Min(score, 1)
}

// #endregion contextual
