// Package materialize implements the Story Materializer (C10): it finds
// Tension hubs with multiple independent respondents and turns them into
// Story nodes, then grows, enriches, and scores the energy of every
// non-archived Story on every run.
package materialize

import (
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// Result is everything one Run produces, ready for the caller to
// eventstore.NewEvent + Append in seq order.
type Result struct {
	Materialized []eventstore.StoryMaterialized
	Changed      []eventstore.StoryChanged
}

func (r *Result) merge(other Result) {
	r.Materialized = append(r.Materialized, other.Materialized...)
	r.Changed = append(r.Changed, other.Changed...)
}
