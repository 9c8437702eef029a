package template

import "fmt"

// #region validation-types

// CheckResult is one named validation check with its outcome.
type CheckResult struct {
	Name   string
	Pass   bool
	Detail string
}

// ValidationResult bundles all checks for a single template.
type ValidationResult struct {
	Passed bool
	Checks []CheckResult
	Reason string // first failure, or "all checks passed"
}

// #endregion validation-types

// #region validate

// Validate runs structural checks on a template definition.
// Selection semantics tolerate sparse templates; validation only rejects
// definitions that cannot participate in selection at all.
func Validate(tpl *Template) ValidationResult {
	var checks []CheckResult
	var failReasons []string

	add := func(name string, pass bool, detail string) {
		checks = append(checks, CheckResult{Name: name, Pass: pass, Detail: detail})
		if !pass {
			failReasons = append(failReasons, detail)
		}
	}

	add("id_present", tpl.ID != "", "template id must not be empty")
	add("version_present", tpl.Version != "", "template version must not be empty")
	add("domain_present", tpl.Domain != "", "template domain must not be empty")
	add("description_present", tpl.Description != "", "template description must not be empty")

	hasTrigger := len(tpl.Applicability.Tools) > 0 ||
		len(tpl.Applicability.Keywords) > 0 ||
		len(tpl.Applicability.IntentPhrases) > 0
	add("has_trigger", hasTrigger, "template needs at least one tool, keyword, or intent phrase")

	formatOK := tpl.Output.Format == ""
	for _, opt := range tpl.Output.FormatOptions {
		if opt == tpl.Output.Format {
			formatOK = true
			break
		}
	}
	if len(tpl.Output.FormatOptions) == 0 {
		formatOK = true
	}
	add("format_in_options", formatOK,
		fmt.Sprintf("format %q not listed in format_options", tpl.Output.Format))

	passed := len(failReasons) == 0
	reason := "all checks passed"
	if !passed {
		reason = failReasons[0]
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("%d checks failed: %s", len(failReasons), failReasons[0])
		}
	}

	return ValidationResult{Passed: passed, Checks: checks, Reason: reason}
}

// #endregion validate
