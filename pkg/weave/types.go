// Package weave implements the Situation Weaver (C9): it groups newly
// captured signals under Situations (root cause + place + affected
// population) and produces factual, citation-backed dispatches about them.
package weave

import (
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// Arc values a Situation candidate can carry. Only "cold" and "developing"
// change retrieval behavior; the rest pass through untouched.
const (
	ArcCold       = "cold"
	ArcDeveloping = "developing"
)

// CandidateSignal is one newly captured signal offered to the weaver for
// this batch, already embedded by the Vector Embedder.
type CandidateSignal struct {
	SignalID    string
	SignalType  string // gathering|aid|need|notice|tension
	Title       string
	Summary     string
	Embedding   []float32
	Sensitivity eventstore.Sensitivity

	// CauseHeat is the Tension's cause_heat graph property; zero for
	// non-tension signals. Feeds the wide-net retrieval rule.
	CauseHeat float64
}

// SituationCandidate is one non-archived Situation from the retrieval pool,
// as returned by graph.Reader.ActiveSituations.
type SituationCandidate struct {
	ID                 string
	Headline           string
	Arc                string
	NarrativeEmbedding []float32
	CausalEmbedding    []float32
}

// Result is everything one Weave call produces, ready for the caller to
// eventstore.NewEvent + Append in seq order.
type Result struct {
	Identified []eventstore.SituationIdentified
	Changed    []eventstore.SituationChanged
	Dispatches []eventstore.DispatchCreated
}
