package materialize

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// materializeHubs is Phase A: find Tension hubs with enough independent
// respondents and turn each into a new Story, or absorb it into an existing
// one if its respondent set overlaps heavily with one already materialized.
func (m *Materializer) materializeHubs(ctx context.Context) (Result, error) {
	var result Result

	hubs, err := m.reader.TensionHubCandidates(ctx)
	if err != nil {
		return result, fmt.Errorf("materialize: tension hub candidates: %w", err)
	}

	existing, err := m.reader.NonArchivedStories(ctx)
	if err != nil {
		return result, fmt.Errorf("materialize: non-archived stories: %w", err)
	}
	alreadyMaterialized := make(map[string]bool, len(existing))
	for _, s := range existing {
		if t := asString(s["central_tension_id"]); t != "" {
			alreadyMaterialized[t] = true
		}
	}

	for _, hub := range hubs {
		tensionID := asString(hub["id"])
		if tensionID == "" || alreadyMaterialized[tensionID] {
			continue
		}

		respondents, err := m.reader.TensionResponses(ctx, tensionID)
		if err != nil {
			return result, fmt.Errorf("materialize: tension responses for %s: %w", tensionID, err)
		}

		domains := make(map[string]bool, len(respondents))
		for _, r := range respondents {
			if d := domainOf(asString(r["source_url"])); d != "" {
				domains[d] = true
			}
		}
		if len(domains) < m.cfg.MinRespondents {
			continue
		}

		hubSignals := append([]map[string]any{hub}, respondents...)
		hubSignalIDs := signalIDs(hubSignals)

		absorbStoryID, err := m.bestAbsorptionCandidate(ctx, existing, hubSignalIDs)
		if err != nil {
			return result, err
		}

		entityCount, err := m.reader.DistinctActorCountForSignals(ctx, hubSignalIDs)
		if err != nil {
			return result, fmt.Errorf("materialize: entity count for %s: %w", tensionID, err)
		}
		typeDiv := typeDiversity(hubSignals)

		if absorbStoryID != "" {
			result.Changed = append(result.Changed, eventstore.StoryChanged{
				StoryID: absorbStoryID,
				Changes: []eventstore.Correction{
					{EntityID: absorbStoryID, Field: "synthesis_pending", NewValue: true},
				},
				AddedSignalIDs: hubSignalIDs,
				ChangedAt:      m.now(),
			})
			continue
		}

		status := storyStatus(typeDiv, entityCount, len(hubSignalIDs), m.cfg.EchoSignalCount)
		needsRefinement := len(domains) >= m.cfg.HubFlagThreshold

		result.Materialized = append(result.Materialized, eventstore.StoryMaterialized{
			StoryID:          uuid.NewString(),
			CentralTensionID: tensionID,
			Headline:         asString(hub["title"]),
			Centroid:         centroidOf(hubSignals),
			Sensitivity:      maxSensitivity(hubSignals),
			Status:           status,
			SignalIDs:        hubSignalIDs,
			TypeDiversity:    typeDiv,
			EntityCount:      entityCount,
			NeedsRefinement:  needsRefinement,
			MaterializedAt:   m.now(),
		})
	}

	return result, nil
}

// bestAbsorptionCandidate returns the id of the existing story whose
// CONTAINS signal set overlaps hubSignalIDs by at least
// AbsorptionOverlapFraction, or "" if none qualifies.
func (m *Materializer) bestAbsorptionCandidate(ctx context.Context, existing []map[string]any, hubSignalIDs []string) (string, error) {
	if len(hubSignalIDs) == 0 {
		return "", nil
	}
	hubSet := stringSet(hubSignalIDs)

	var bestID string
	var bestOverlap float64
	for _, s := range existing {
		storyID := asString(s["id"])
		_, signals, ok, err := m.reader.StoryWithSignals(ctx, storyID)
		if err != nil {
			return "", fmt.Errorf("materialize: story signals for %s: %w", storyID, err)
		}
		if !ok || len(signals) == 0 {
			continue
		}
		var shared int
		for _, sig := range signals {
			if hubSet[asString(sig["id"])] {
				shared++
			}
		}
		overlap := float64(shared) / float64(len(hubSignalIDs))
		if overlap >= m.cfg.AbsorptionOverlapFraction && overlap > bestOverlap {
			bestOverlap = overlap
			bestID = storyID
		}
	}
	return bestID, nil
}
