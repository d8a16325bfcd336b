package weave

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fourthplaces/rootsignal/pkg/pii"
)

var (
	citationRE = regexp.MustCompile(`\[signal:([0-9a-fA-F-]+)\]`)
	sentenceRE = regexp.MustCompile(`[^.!?]+[.!?]?`)
	hasDigitRE = regexp.MustCompile(`\d`)
	midCapRE   = regexp.MustCompile(`\S+\s+[A-Z][a-z]`)
)

// verifyDispatch runs the three post-hoc checks from spec.md §4.6 against one
// dispatch body. knownSignalIDs is every signal id the citation tokens are
// allowed to resolve against. Failures never drop the dispatch; they set
// invalidCitation and/or append to reasons, per "flag, don't delete".
func verifyDispatch(body string, cited []string, knownSignalIDs map[string]bool, piiSvc *pii.Service) (invalidCitation bool, reasons []string) {
	for _, c := range cited {
		if !knownSignalIDs[c] {
			invalidCitation = true
			reasons = append(reasons, fmt.Sprintf("cited signal %s does not resolve", c))
		}
	}
	for _, m := range citationRE.FindAllStringSubmatch(body, -1) {
		if !knownSignalIDs[m[1]] {
			invalidCitation = true
			reasons = append(reasons, fmt.Sprintf("cited signal %s does not resolve", m[1]))
		}
	}

	if findings := piiSvc.Detect(body); len(findings) > 0 {
		reasons = append(reasons, fmt.Sprintf("dispatch body contains %d PII match(es)", len(findings)))
	}

	for _, s := range uncitedFactualClaims(body) {
		reasons = append(reasons, fmt.Sprintf("uncited factual claim: %q", s))
	}

	return invalidCitation, reasons
}

// uncitedFactualClaims returns every sentence with >=4 words that contains a
// digit or a mid-sentence capitalized word, and carries no [signal: token.
func uncitedFactualClaims(body string) []string {
	var out []string
	for _, raw := range sentenceRE.FindAllString(body, -1) {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if strings.Contains(s, "[signal:") {
			continue
		}
		words := strings.Fields(s)
		if len(words) < 4 {
			continue
		}
		if hasDigitRE.MatchString(s) || midCapRE.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}
