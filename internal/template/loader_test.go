package template

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
id: budget_analysis
version: "1.0"
domain: finance
display_name: Budget Analysis
description: Analyzes spending patterns and builds budget recommendations.
applicability:
  tools: [analyze_budget]
  keywords: [budget, spending]
  intent_phrases: ["create a budget", "track my spending"]
framing:
  role: financial analyst
  tone: direct
reasoning_steps:
  - Identify income and fixed costs.
  - Categorize discretionary spending.
guardrails:
  disclaimers: ["This is not financial advice."]
`

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "budget.yaml", sampleYAML)

	tpl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl.ID != "budget_analysis" {
		t.Errorf("id: got %q", tpl.ID)
	}
	if tpl.Domain != "finance" {
		t.Errorf("domain: got %q", tpl.Domain)
	}
	if len(tpl.Applicability.IntentPhrases) != 2 {
		t.Errorf("intent phrases: got %v", tpl.Applicability.IntentPhrases)
	}
	if tpl.Output.Format != DefaultFormat {
		t.Errorf("expected default format, got %q", tpl.Output.Format)
	}
	if len(tpl.Output.FormatOptions) != 1 || tpl.Output.FormatOptions[0] != DefaultFormat {
		t.Errorf("expected default format options, got %v", tpl.Output.FormatOptions)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "bad.yaml", "id: ''\nversion: '1.0'\ndomain: x\ndescription: y\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error for empty id")
	}
}

func TestLoadDirSortsByFilename(t *testing.T) {
	dir := t.TempDir()
	second := `
id: second
version: "1.0"
domain: general
description: second template
applicability:
  keywords: [other]
`
	writeTemplate(t, dir, "b_second.yaml", second)
	writeTemplate(t, dir, "a_first.yaml", sampleYAML)
	writeTemplate(t, dir, "notes.txt", "ignored")

	templates, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[0].ID != "budget_analysis" || templates[1].ID != "second" {
		t.Fatalf("unexpected order: %s, %s", templates[0].ID, templates[1].ID)
	}
}

func TestRegistryFromDir(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "budget.yaml", sampleYAML)

	reg, err := RegistryFromDir(dir)
	if err != nil {
		t.Fatalf("registry from dir: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 template, got %d", reg.Len())
	}
	if got := reg.FindByTool("analyze_budget"); len(got) != 1 {
		t.Fatal("expected tool index populated")
	}
}

func TestValidateChecks(t *testing.T) {
	tpl := makeTemplate("ok", "general")
	result := Validate(tpl)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Reason)
	}

	empty := &Template{}
	result = Validate(empty)
	if result.Passed {
		t.Fatal("expected failure for empty template")
	}
	if result.Reason == "" || result.Reason == "all checks passed" {
		t.Fatalf("expected failure reason, got %q", result.Reason)
	}
}
