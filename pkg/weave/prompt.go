package weave

import (
	"fmt"
	"strings"
)

const systemPrompt = `You group community signals under Situations: a root cause, a place, and
the population it affects. For each signal, either assign it to one of its
candidate Situations, start a new Situation if none fits, or flag a split
or merge in field_changes when the evidence demands it.

Every factual claim in a dispatch body MUST end with a [signal:UUID]
citation pointing at one of the signal ids you were given. Surface
disagreement between signals rather than resolving it. Keep tone
invitational and factual; lead with response signals over tension signals
when both are present for the same situation.`

// buildPrompt renders the batch and each signal's retrieval candidates into
// the user message for the weave tool call.
func buildPrompt(batch []CandidateSignal, candidatesBySignal map[string][]SituationCandidate) string {
	var b strings.Builder
	b.WriteString("Signals in this batch:\n\n")
	for _, s := range batch {
		fmt.Fprintf(&b, "- signal_id=%s type=%s\n  title: %s\n  summary: %s\n", s.SignalID, s.SignalType, s.Title, s.Summary)
		cands := candidatesBySignal[s.SignalID]
		if len(cands) == 0 {
			b.WriteString("  candidate situations: none\n\n")
			continue
		}
		b.WriteString("  candidate situations:\n")
		for _, c := range cands {
			fmt.Fprintf(&b, "    - situation_id=%s arc=%s headline: %s\n", c.ID, c.Arc, c.Headline)
		}
		b.WriteString("\n")
	}
	return b.String()
}
