// Package textmatch provides the tokenizer and boundary-safe phrase matcher
// shared by template selection and guardrail evaluation.
package textmatch

import (
	"regexp"
	"strings"
)

// #region tokenize

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

// Tokenize splits text into the set of lowercase alphanumeric-or-apostrophe
// runs. Everything else is a separator.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

// #endregion tokenize

// #region normalize

// NormalizePhrase lowercases a phrase and collapses internal whitespace.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// #endregion normalize

// #region phrase-matching

// CompilePhrase builds a case-normalized, word-boundary-anchored matcher for
// phrase. Returns nil for empty phrases; a nil matcher never matches.
func CompilePhrase(phrase string) *regexp.Regexp {
	lower := strings.ToLower(phrase)
	if strings.TrimSpace(lower) == "" {
		return nil
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(lower) + `\b`)
}

// PhraseMatches reports whether phrase occurs in loweredText at word
// boundaries. loweredText must already be lowercased.
func PhraseMatches(loweredText, phrase string) bool {
	pat := CompilePhrase(phrase)
	if pat == nil {
		return false
	}
	return pat.MatchString(loweredText)
}

// #endregion phrase-matching
