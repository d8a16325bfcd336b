package main

import (
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/scout"
	"github.com/fourthplaces/rootsignal/pkg/weave"
)

// candidateSignalsFromDiscovered converts one scout run's freshly discovered
// signals into the batch the Situation Weaver retrieves candidates for.
// cause_heat is left at zero for every kind: it is a derived graph property
// the materializer/projector maintain over a Tension's lifetime, not
// something a just-discovered signal carries yet, so a brand-new Tension
// simply does not qualify for the weave candidate threshold's wide-net rule
// on its first pass.
func candidateSignalsFromDiscovered(discovered []scout.DiscoveredSignal) []weave.CandidateSignal {
	out := make([]weave.CandidateSignal, 0, len(discovered))
	for _, d := range discovered {
		base, ok := signalBaseOf(d.Payload)
		if !ok {
			continue
		}
		out = append(out, weave.CandidateSignal{
			SignalID:    base.SignalID,
			SignalType:  string(d.Kind),
			Title:       base.Title,
			Summary:     base.Summary,
			Embedding:   base.Embedding,
			Sensitivity: base.Sensitivity,
		})
	}
	return out
}

func signalBaseOf(payload any) (eventstore.SignalBase, bool) {
	switch p := payload.(type) {
	case eventstore.GatheringDiscovered:
		return p.SignalBase, true
	case eventstore.AidDiscovered:
		return p.SignalBase, true
	case eventstore.NeedDiscovered:
		return p.SignalBase, true
	case eventstore.NoticeDiscovered:
		return p.SignalBase, true
	case eventstore.TensionDiscovered:
		return p.SignalBase, true
	default:
		return eventstore.SignalBase{}, false
	}
}

// situationCandidatesFromRows turns graph.Reader.ActiveSituations's already
// node-flattened rows into weave.SituationCandidate; the weaver needs typed
// floats and []float32, so the map can't be passed straight through.
func situationCandidatesFromRows(rows []map[string]any) []weave.SituationCandidate {
	out := make([]weave.SituationCandidate, 0, len(rows))
	for _, s := range rows {
		out = append(out, weave.SituationCandidate{
			ID:                 stringField(s, "id"),
			Headline:           stringField(s, "headline"),
			Arc:                stringField(s, "arc"),
			NarrativeEmbedding: embeddingField(s, "narrative_embedding"),
			CausalEmbedding:    embeddingField(s, "causal_embedding"),
		})
	}
	return out
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func embeddingField(m map[string]any, key string) []float32 {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, float32(n))
		case float32:
			out = append(out, n)
		}
	}
	return out
}
