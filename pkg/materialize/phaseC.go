package materialize

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/llm"
)

// enrichStories is Phase C: call the Synthesizer for every Story with
// synthesis_pending set or a missing lede, and turn its output into a
// StoryChanged field patch.
func (m *Materializer) enrichStories(ctx context.Context) (Result, error) {
	var result Result

	stories, err := m.reader.NonArchivedStories(ctx)
	if err != nil {
		return result, fmt.Errorf("materialize: non-archived stories: %w", err)
	}

	for _, s := range stories {
		storyID := asString(s["id"])
		synthesisPending := asBool(s["synthesis_pending"])
		missingLede := asString(s["lede"]) == ""
		if storyID == "" || (!synthesisPending && !missingLede) {
			continue
		}

		_, signals, ok, err := m.reader.StoryWithSignals(ctx, storyID)
		if err != nil {
			return result, fmt.Errorf("materialize: story signals for %s: %w", storyID, err)
		}
		if !ok || len(signals) == 0 {
			continue
		}

		velocity, _ := asFloat(s["velocity"])
		view := storyForEnrich{
			StoryID:       storyID,
			Headline:      asString(s["headline"]),
			Velocity:      velocity,
			AgeDays:       ageDays(s["last_updated"], m.now()),
			WasFading:     asBool(s["was_fading"]),
			Signals:       signals,
			TypeDiversity: typeDiversity(signals),
		}

		raw, err := m.client.CallTool(ctx, llm.ToolRequest{
			System:      synthesisSystemPrompt,
			User:        buildSynthesisPrompt(view),
			ToolName:    "synthesize_story",
			Description: "Write the headline, lede, narrative, arc, category, and action guidance for a Story.",
			Schema:      synthesisSchema(),
			MaxTokens:   2048,
		})
		if err != nil {
			return result, fmt.Errorf("materialize: synthesis call for %s: %w", storyID, err)
		}

		var resp synthesisResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return result, fmt.Errorf("materialize: decode synthesis response for %s: %w", storyID, err)
		}

		changes := []eventstore.Correction{
			{EntityID: storyID, Field: "headline", NewValue: resp.Headline},
			{EntityID: storyID, Field: "lede", NewValue: resp.Lede},
			{EntityID: storyID, Field: "narrative", NewValue: resp.Narrative},
			{EntityID: storyID, Field: "arc", NewValue: resp.Arc},
			{EntityID: storyID, Field: "category", NewValue: resp.Category},
			{EntityID: storyID, Field: "synthesis_pending", NewValue: false},
			{EntityID: storyID, Field: "was_fading", NewValue: false},
		}
		if resp.ActionGuidance != "" {
			changes = append(changes, eventstore.Correction{EntityID: storyID, Field: "action_guidance", NewValue: resp.ActionGuidance})
		}

		result.Changed = append(result.Changed, eventstore.StoryChanged{
			StoryID:   storyID,
			Changes:   changes,
			ChangedAt: m.now(),
		})
	}

	return result, nil
}

func ageDays(lastUpdated any, now time.Time) float64 {
	t, ok := asTime(lastUpdated)
	if !ok {
		return 0
	}
	return now.Sub(t).Hours() / 24
}
