// Package prompt assembles reasoning templates into two-part provider
// prompts (system + user).
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/scaffold-engine/internal/policy"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region types

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assembled is a fully rendered prompt with its provenance metadata.
type Assembled struct {
	SystemMessage string
	UserMessage   string
	Metadata      map[string]string
	ChatHistory   []Message
}

// RenderOptions carry per-call overrides. A policy, when present,
// contributes tone/format/length overrides and extra required or
// prohibited elements.
type RenderOptions struct {
	ToneVariant        string
	OutputFormat       string
	DataContext        map[string]any
	CrossDomainContext map[string]any
	ChatHistory        []Message
	DataContextLabel   string
	Policy             *policy.RunPolicy
}

// #endregion types

// #region render

// Render assembles a template and user query into a prompt. Overrides
// outside the template's allowed sets fall back to the template's own
// values rather than failing.
func Render(tpl *template.Template, userQuery string, opts RenderOptions) (Assembled, error) {
	tone := opts.ToneVariant
	format := opts.OutputFormat
	lengthGuidance := tpl.Output.MaxLengthGuidance
	mustInclude := tpl.Output.MustInclude
	neverInclude := tpl.Output.NeverInclude
	skipDisclaimers := false

	if p := opts.Policy; p != nil {
		if tone == "" {
			tone = p.ToneVariant
		}
		if format == "" {
			format = p.OutputFormat
		}
		if p.MaxLengthGuidance != "" {
			lengthGuidance = p.MaxLengthGuidance
		}
		mustInclude = append(append([]string(nil), mustInclude...), p.ExtraMustInclude...)
		neverInclude = append(append([]string(nil), neverInclude...), p.ExtraNeverInclude...)
		skipDisclaimers = p.SkipDisclaimers
	}

	effectiveTone := tpl.Framing.Tone
	toneText := tpl.Framing.Tone
	if variant, ok := tpl.Framing.ToneVariants[tone]; ok && tone != "" {
		effectiveTone = tone
		toneText = variant
	}

	allowed := tpl.Output.FormatOptions
	if len(allowed) == 0 {
		allowed = []string{tpl.Output.Format}
	}
	effectiveFormat := tpl.Output.Format
	for _, f := range allowed {
		if f == format && format != "" {
			effectiveFormat = format
			break
		}
	}

	system := buildSystemMessage(tpl, toneText, effectiveFormat, lengthGuidance, mustInclude, neverInclude, skipDisclaimers)
	user, err := buildUserMessage(userQuery, opts)
	if err != nil {
		return Assembled{}, err
	}

	return Assembled{
		SystemMessage: system,
		UserMessage:   user,
		Metadata: map[string]string{
			"template_id":      tpl.ID,
			"template_version": tpl.Version,
			"tone":             effectiveTone,
			"output_format":    effectiveFormat,
		},
		ChatHistory: opts.ChatHistory,
	}, nil
}

// #endregion render

// #region system-message

func buildSystemMessage(tpl *template.Template, toneText, format, lengthGuidance string, mustInclude, neverInclude []string, skipDisclaimers bool) string {
	var parts []string

	if tpl.Framing.Role != "" {
		parts = append(parts, "## Your Role\n"+tpl.Framing.Role)
	}
	if tpl.Framing.Perspective != "" {
		parts = append(parts, "## Your Perspective\n"+tpl.Framing.Perspective)
	}
	if toneText != "" {
		parts = append(parts, "## Communication Tone\n"+toneText)
	}

	if len(tpl.ReasoningSteps) > 0 {
		var b strings.Builder
		b.WriteString("## Reasoning Steps\nFollow these steps in order:")
		for i, step := range tpl.ReasoningSteps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}
		parts = append(parts, b.String())
	}

	if len(tpl.KnowledgeActivation) > 0 {
		parts = append(parts, "## Domain Knowledge to Apply\n"+bulleted(tpl.KnowledgeActivation))
	}

	parts = append(parts, "## Output Format\nFormat: "+format)
	if lengthGuidance != "" {
		parts = append(parts, "Length guidance: "+lengthGuidance)
	}

	if len(mustInclude) > 0 {
		parts = append(parts, "## Required Elements\nYour response MUST include:\n"+bulleted(mustInclude))
	}
	if len(neverInclude) > 0 {
		parts = append(parts, "## Prohibited Elements\nYour response must NEVER include:\n"+bulleted(neverInclude))
	}

	if !skipDisclaimers && len(tpl.Guardrails.Disclaimers) > 0 {
		parts = append(parts, "## Required Disclaimers\nInclude these where appropriate:\n"+bulleted(tpl.Guardrails.Disclaimers))
	}
	if len(tpl.Guardrails.ProhibitedActions) > 0 {
		parts = append(parts, "## Prohibited Actions\nYou must NEVER:\n"+bulleted(tpl.Guardrails.ProhibitedActions))
	}
	if len(tpl.Guardrails.EscalationTriggers) > 0 {
		parts = append(parts, "## Escalation Triggers\nIf any of these conditions are detected, recommend the user seek professional help:\n"+bulleted(tpl.Guardrails.EscalationTriggers))
	}

	return strings.Join(parts, "\n\n")
}

func bulleted(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

// #endregion system-message

// #region user-message

func buildUserMessage(userQuery string, opts RenderOptions) (string, error) {
	parts := []string{"## User Request\n" + userQuery}

	label := opts.DataContextLabel
	if label == "" {
		label = "Data Context"
	}

	if len(opts.DataContext) > 0 {
		block, err := jsonBlock(opts.DataContext)
		if err != nil {
			return "", err
		}
		parts = append(parts, "## "+label+"\n"+block)
	}
	if len(opts.CrossDomainContext) > 0 {
		block, err := jsonBlock(opts.CrossDomainContext)
		if err != nil {
			return "", err
		}
		parts = append(parts, "## Context From Other Domains\n"+block)
	}

	return strings.Join(parts, "\n\n"), nil
}

func jsonBlock(data map[string]any) (string, error) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prompt context: %w", err)
	}
	return "```json\n" + string(encoded) + "\n```", nil
}

// #endregion user-message
