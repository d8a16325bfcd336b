package materialize

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// growStories is Phase B: for every non-archived Story whose central tension
// gained new respondents since materialization, add them and mark the story
// synthesis_pending. A story whose arc is fading and that gained new
// respondents also gets was_fading set, so Phase C's synthesis call can
// surface the resurgence rather than writing a flat continuation.
func (m *Materializer) growStories(ctx context.Context) (Result, error) {
	var result Result

	stories, err := m.reader.NonArchivedStories(ctx)
	if err != nil {
		return result, fmt.Errorf("materialize: non-archived stories: %w", err)
	}

	for _, s := range stories {
		storyID := asString(s["id"])
		tensionID := asString(s["central_tension_id"])
		if storyID == "" || tensionID == "" {
			continue
		}

		_, currentSignals, ok, err := m.reader.StoryWithSignals(ctx, storyID)
		if err != nil {
			return result, fmt.Errorf("materialize: story signals for %s: %w", storyID, err)
		}
		if !ok {
			continue
		}
		known := stringSet(signalIDs(currentSignals))

		respondents, err := m.reader.TensionResponses(ctx, tensionID)
		if err != nil {
			return result, fmt.Errorf("materialize: tension responses for %s: %w", tensionID, err)
		}

		var newSignalIDs []string
		for _, r := range respondents {
			id := asString(r["id"])
			if id != "" && !known[id] {
				newSignalIDs = append(newSignalIDs, id)
			}
		}
		if len(newSignalIDs) == 0 {
			continue
		}

		changes := []eventstore.Correction{
			{EntityID: storyID, Field: "synthesis_pending", NewValue: true},
		}
		// was_fading is a hint for Enrich: the next run's Enrich pass reads
		// it together with the velocity stored by the previous
		// Velocity/Energy pass (computed before these respondents were
		// added), and phaseC.go clears it with synthesis_pending on that
		// synthesis whether or not the resurgence check
		// (was_fading ∧ velocity > 0) fired.
		if asString(s["arc"]) == "fading" {
			changes = append(changes, eventstore.Correction{EntityID: storyID, Field: "was_fading", NewValue: true})
		}

		result.Changed = append(result.Changed, eventstore.StoryChanged{
			StoryID:        storyID,
			Changes:        changes,
			AddedSignalIDs: newSignalIDs,
			ChangedAt:      m.now(),
		})
	}

	return result, nil
}
