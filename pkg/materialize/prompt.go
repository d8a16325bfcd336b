package materialize

import (
	"fmt"
	"strings"
)

const synthesisSystemPrompt = `You write the headline, lede, and narrative for a community Story: a
cluster of signals around one recurring tension and the responses it has
drawn. Ground every claim in the signals you were given. Surface
disagreement between perspectives rather than flattening it into one voice.
Pick exactly one category from the fixed list you were given. action_guidance
is optional: only include it when there is a concrete, actionable next step.`

// storyForEnrich is the minimal view of a Story plus its signals Phase C
// needs to build a synthesis prompt.
type storyForEnrich struct {
	StoryID       string
	Headline      string
	Velocity      float64
	AgeDays       float64
	WasFading     bool
	Signals       []map[string]any
	TypeDiversity int
}

// editorialFlags derives the Phase C context hints from spec.md §4.7's three
// rules: resurgence, surface-both-perspectives, and do-not-flatten.
func editorialFlags(s storyForEnrich) []string {
	var flags []string
	if s.WasFading && s.Velocity > 0 {
		flags = append(flags, "resurgence: note the return of attention after a quiet period")
	}
	if hasBothTensionAndResponse(s.Signals) {
		flags = append(flags, "surface both perspectives: the tension and the response to it")
	}
	if s.TypeDiversity >= 3 {
		flags = append(flags, "multiple perspectives present: do not flatten them into one voice")
	}
	return flags
}

func buildSynthesisPrompt(s storyForEnrich) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Story headline: %s\nVelocity: %.2f\nAge (days): %.1f\n\n", s.Headline, s.Velocity, s.AgeDays)

	flags := editorialFlags(s)
	if len(flags) > 0 {
		b.WriteString("Editorial context:\n")
		for _, f := range flags {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	b.WriteString("Signals:\n")
	for _, sig := range s.Signals {
		fmt.Fprintf(&b, "- kind=%s title=%s\n  summary: %s\n", asString(sig["kind"]), asString(sig["title"]), asString(sig["summary"]))
	}
	return b.String()
}
