// Package scout implements the Scout Pipeline (C7): a scheduler that picks
// due sources by effective_weight and cadence, and a bounded-concurrency
// per-source pipeline that fetches, extracts, embeds, deduplicates, and
// records citations, producing the events every downstream subsystem
// replays. A Run never appends or projects its own events; the caller does,
// the same division of labor pkg/weave and pkg/materialize use, so a source
// processed early in a run never sees signals discovered later in the same
// run.
package scout

import (
	"time"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/promote"
)

// SourceCandidate is one Source node as the scheduler sees it.
type SourceCandidate struct {
	CanonicalKey   string
	URL            string
	CanonicalValue string
	SourceType     string
	Weight         float64
	QualityPenalty float64
	LastScraped    *time.Time
	Active         bool
}

// EffectiveWeight is the scheduler's priority key: weight x quality_penalty.
func (s SourceCandidate) EffectiveWeight() float64 {
	return s.Weight * s.QualityPenalty
}

// DiscoveredSignal pairs a decoded *Discovered payload with the event type
// and signal kind it belongs to, so a Result can carry all five signal
// shapes in one slice without losing the discriminator decode[T] needs.
type DiscoveredSignal struct {
	Kind      graph.SignalKind
	EventType eventstore.EventType
	Payload   any
}

// Result is everything one Run produced, ready for the caller to
// eventstore.NewEvent + Append in order and project.
type Result struct {
	Discovered      []DiscoveredSignal
	Citations       []eventstore.CitationRecorded
	Corroborated    []eventstore.ObservationCorroborated
	Freshness       []eventstore.FreshnessConfirmed
	Rejected        []eventstore.SignalRejected
	DroppedNoDate   []eventstore.SignalDroppedNoDate
	Deduplicated    []eventstore.SignalDeduplicated
	ScrapeRecords   []eventstore.SourceScrapeRecorded
	SourcesProposed []eventstore.SourceRegistered

	// SourcesRun counts how many sources this Run actually processed, for
	// the run summary log line; proposed feeds the Link Promoter once
	// all sources in the batch have been processed.
	SourcesRun int
	proposed   []promote.ProposedLink
}

func (r *Result) merge(other Result) {
	r.Discovered = append(r.Discovered, other.Discovered...)
	r.Citations = append(r.Citations, other.Citations...)
	r.Corroborated = append(r.Corroborated, other.Corroborated...)
	r.Freshness = append(r.Freshness, other.Freshness...)
	r.Rejected = append(r.Rejected, other.Rejected...)
	r.DroppedNoDate = append(r.DroppedNoDate, other.DroppedNoDate...)
	r.Deduplicated = append(r.Deduplicated, other.Deduplicated...)
	r.ScrapeRecords = append(r.ScrapeRecords, other.ScrapeRecords...)
	r.proposed = append(r.proposed, other.proposed...)
	r.SourcesRun += other.SourcesRun
}

// liveSignal is a same-type candidate the dedupe pass compares new
// extractions against: either already persisted (from the reader) or
// discovered earlier in this same run.
type liveSignal struct {
	SignalID  string
	SourceURL string
	Title     string
	Embedding []float32
}
