package materialize

import (
	"context"
	"fmt"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// energyWeights is the weighting the spec leaves unspecified beyond
// "weighted sum"; velocity gets the largest share since it is the clearest
// live signal of attention, and recency, source diversity and triangulation
// split the rest equally.
const (
	weightVelocity        = 0.4
	weightRecency         = 0.2
	weightSourceDiversity = 0.2
	weightTriangulation   = 0.2
)

// scoreStories is Phase D: recompute velocity/gap_velocity/energy for every
// non-archived Story, snapshot its counts, and archive ones that have gone
// stale with no growth.
func (m *Materializer) scoreStories(ctx context.Context) (Result, error) {
	var result Result

	stories, err := m.reader.NonArchivedStories(ctx)
	if err != nil {
		return result, fmt.Errorf("materialize: non-archived stories: %w", err)
	}

	for _, s := range stories {
		storyID := asString(s["id"])
		if storyID == "" {
			continue
		}

		_, signals, ok, err := m.reader.StoryWithSignals(ctx, storyID)
		if err != nil {
			return result, fmt.Errorf("materialize: story signals for %s: %w", storyID, err)
		}
		if !ok {
			continue
		}

		entityCount, err := m.reader.DistinctActorCountForSignals(ctx, signalIDs(signals))
		if err != nil {
			return result, fmt.Errorf("materialize: entity count for %s: %w", storyID, err)
		}
		entityCount7dAgo := asInt(s["entity_count_7d_ago"])
		velocity := float64(entityCount-entityCount7dAgo) / 7

		askCount, giveCount := askGiveCounts(signals)
		askCount7dAgo := asInt(s["ask_count_7d_ago"])
		giveCount7dAgo := asInt(s["give_count_7d_ago"])
		gapVelocity := float64((askCount-giveCount)-(askCount7dAgo-giveCount7dAgo)) / 7

		age := ageDays(s["last_updated"], m.now())
		recencyScore := recencyFromAge(age)
		sourceDiversity := minFloat(float64(sourceDomainCount(signals))/5, 1)
		typeDiv := typeDiversity(signals)
		triangulation := minFloat(float64(typeDiv)/5, 1)
		velocityNorm := normalizeVelocity(velocity)

		energy := weightVelocity*velocityNorm + weightRecency*recencyScore +
			weightSourceDiversity*sourceDiversity + weightTriangulation*triangulation

		changes := []eventstore.Correction{
			{EntityID: storyID, Field: "velocity", NewValue: velocity},
			{EntityID: storyID, Field: "gap_velocity", NewValue: gapVelocity},
			{EntityID: storyID, Field: "recency_score", NewValue: recencyScore},
			{EntityID: storyID, Field: "source_diversity", NewValue: sourceDiversity},
			{EntityID: storyID, Field: "triangulation", NewValue: triangulation},
			{EntityID: storyID, Field: "energy", NewValue: energy},
			{EntityID: storyID, Field: "signal_count", NewValue: len(signals)},
			{EntityID: storyID, Field: "type_diversity", NewValue: typeDiv},
			{EntityID: storyID, Field: "entity_count", NewValue: entityCount},
			{EntityID: storyID, Field: "ask_count", NewValue: askCount},
			{EntityID: storyID, Field: "give_count", NewValue: giveCount},
			{EntityID: storyID, Field: "last_updated", NewValue: m.now().Format(time.RFC3339Nano)},
		}

		if age >= float64(m.cfg.ArchiveAfterDays) && velocity <= 0 {
			changes = append(changes, eventstore.Correction{EntityID: storyID, Field: "archived", NewValue: true})
		} else {
			// Snapshot fields refresh on every scoring pass so the next
			// run's week-over-week deltas are against today's counts.
			changes = append(changes,
				eventstore.Correction{EntityID: storyID, Field: "entity_count_7d_ago", NewValue: entityCount},
				eventstore.Correction{EntityID: storyID, Field: "ask_count_7d_ago", NewValue: askCount},
				eventstore.Correction{EntityID: storyID, Field: "give_count_7d_ago", NewValue: giveCount},
				eventstore.Correction{EntityID: storyID, Field: "last_snapshot_at", NewValue: m.now().Format(time.RFC3339Nano)},
			)
		}

		result.Changed = append(result.Changed, eventstore.StoryChanged{
			StoryID:   storyID,
			Changes:   changes,
			ChangedAt: m.now(),
		})
	}

	return result, nil
}

// recencyFromAge maps age in days to a monotone-decreasing score in (0,1]:
// 1/(1+age/7), so 0.5 at 7 days and 1/3 at 14 days.
func recencyFromAge(ageDays float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	return 1 / (1 + ageDays/7)
}

// normalizeVelocity squashes velocity (unbounded entity-diversity delta per
// day) into [0,1] for the energy sum; 2 new distinct entities/day saturates.
func normalizeVelocity(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return minFloat(v/2, 1)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
