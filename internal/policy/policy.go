package policy

// #region from-preset

// FromPreset builds a RunPolicy carrying a preset's overrides.
func FromPreset(p *Preset) *RunPolicy {
	bias := make(map[string]float64, len(p.SelectionBias))
	for k, v := range p.SelectionBias {
		bias[k] = v
	}
	return &RunPolicy{
		Temperature:             p.Temperature,
		MaxTokens:               p.MaxTokens,
		ToneVariant:             p.ToneVariant,
		OutputFormat:            p.OutputFormat,
		MaxLengthGuidance:       p.MaxLengthGuidance,
		Compact:                 p.Compact,
		SelectionBias:           bias,
		SkipDisclaimers:         p.SkipDisclaimers,
		ExtraMustInclude:        append([]string(nil), p.ExtraMustInclude...),
		ExtraNeverInclude:       append([]string(nil), p.ExtraNeverInclude...),
		ExtraProhibitedActions:  append([]string(nil), p.ExtraProhibitedActions...),
		RemoveProhibitedActions: append([]string(nil), p.RemoveProhibitedActions...),
		Source:                  "preset:" + p.Name,
	}
}

// FromPresets merges multiple presets left to right: last writer wins for
// scalars, lists union.
func FromPresets(presets ...*Preset) *RunPolicy {
	if len(presets) == 0 {
		return &RunPolicy{}
	}
	policy := FromPreset(presets[0])
	for _, p := range presets[1:] {
		policy = policy.Merge(FromPreset(p))
	}
	return policy
}

// #endregion from-preset

// #region merge

func dedupeConcat(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, item := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Merge composes two policies. other wins for set scalars; lists
// concatenate with duplicates dropped; bias merges per-key with other
// winning; sources join with "+".
func (p *RunPolicy) Merge(other *RunPolicy) *RunPolicy {
	merged := &RunPolicy{
		Temperature:       p.Temperature,
		MaxTokens:         p.MaxTokens,
		ToneVariant:       p.ToneVariant,
		OutputFormat:      p.OutputFormat,
		MaxLengthGuidance: p.MaxLengthGuidance,
		Compact:           p.Compact,
		SkipDisclaimers:   p.SkipDisclaimers || other.SkipDisclaimers,
	}
	if other.Temperature != nil {
		merged.Temperature = other.Temperature
	}
	if other.MaxTokens != nil {
		merged.MaxTokens = other.MaxTokens
	}
	if other.ToneVariant != "" {
		merged.ToneVariant = other.ToneVariant
	}
	if other.OutputFormat != "" {
		merged.OutputFormat = other.OutputFormat
	}
	if other.MaxLengthGuidance != "" {
		merged.MaxLengthGuidance = other.MaxLengthGuidance
	}
	if other.Compact != nil {
		merged.Compact = other.Compact
	}

	merged.SelectionBias = make(map[string]float64, len(p.SelectionBias)+len(other.SelectionBias))
	for k, v := range p.SelectionBias {
		merged.SelectionBias[k] = v
	}
	for k, v := range other.SelectionBias {
		merged.SelectionBias[k] = v
	}

	merged.ExtraMustInclude = dedupeConcat(p.ExtraMustInclude, other.ExtraMustInclude)
	merged.ExtraNeverInclude = dedupeConcat(p.ExtraNeverInclude, other.ExtraNeverInclude)
	merged.ExtraProhibitedActions = dedupeConcat(p.ExtraProhibitedActions, other.ExtraProhibitedActions)
	merged.RemoveProhibitedActions = dedupeConcat(p.RemoveProhibitedActions, other.RemoveProhibitedActions)

	switch {
	case p.Source != "" && other.Source != "":
		merged.Source = p.Source + "+" + other.Source
	case p.Source != "":
		merged.Source = p.Source
	default:
		merged.Source = other.Source
	}

	return merged
}

// #endregion merge
