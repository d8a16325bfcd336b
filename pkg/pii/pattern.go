// Package pii implements the free-text PII detector the Situation Weaver
// (C9) runs over every newly-written dispatch body before it ships, per
// spec.md §4.6 verification step 2.
package pii

import "regexp"

// CompiledPattern holds a pre-compiled regex pattern with a human label and
// the placeholder Mask substitutes for a match.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns is the fixed sweep a dispatch body is checked against.
// Dispatches are short, editorial, and never expected to carry PII in the
// first place, so this targets the classes most likely to leak from a
// careless LLM paraphrase rather than attempting exhaustive coverage.
func builtinPatterns() []*CompiledPattern {
	return []*CompiledPattern{
		{
			Name:        "email",
			Regex:       regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
			Replacement: "[redacted-email]",
		},
		{
			Name:        "phone",
			Regex:       regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`),
			Replacement: "[redacted-phone]",
		},
		{
			Name:        "ssn",
			Regex:       regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Replacement: "[redacted-ssn]",
		},
	}
}
