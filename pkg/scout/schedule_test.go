package scout

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

var testNow = time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

func TestCadenceHoursIsMonotone(t *testing.T) {
	assert.Equal(t, 6.0, cadenceHours(0.9))
	assert.Equal(t, 12.0, cadenceHours(0.6))
	assert.Equal(t, 24.0, cadenceHours(0.3))
	assert.Equal(t, 72.0, cadenceHours(0.05))
}

func TestIsDueNeverScraped(t *testing.T) {
	s := SourceCandidate{Weight: 1, QualityPenalty: 1}
	assert.True(t, isDue(s, testNow))
}

func TestIsDueRespectsCadenceWindow(t *testing.T) {
	scraped := testNow.Add(-1 * time.Hour)
	s := SourceCandidate{Weight: 1, QualityPenalty: 1, LastScraped: &scraped} // cadence 6h
	assert.False(t, isDue(s, testNow))

	longAgo := testNow.Add(-7 * time.Hour)
	s.LastScraped = &longAgo
	assert.True(t, isDue(s, testNow))
}

func TestSelectBatchFillsPrimaryBeforeExploration(t *testing.T) {
	cfg := &config.ScoutConfig{BatchSize: 4, ExplorationFraction: 0.25}
	longAgo := testNow.Add(-100 * time.Hour)
	sources := []SourceCandidate{
		{CanonicalKey: "due-1", Weight: 1, QualityPenalty: 1, Active: true, LastScraped: &longAgo},
		{CanonicalKey: "due-2", Weight: 0.9, QualityPenalty: 1, Active: true, LastScraped: &longAgo},
		{CanonicalKey: "not-due", Weight: 1, QualityPenalty: 1, Active: true, LastScraped: &testNow},
		{CanonicalKey: "tail-1", Weight: 0.05, QualityPenalty: 1, Active: true, LastScraped: &testNow},
		{CanonicalKey: "tail-2", Weight: 0.05, QualityPenalty: 1, Active: true, LastScraped: &testNow},
	}
	rng := rand.New(rand.NewPCG(1, 2))

	batch := selectBatch(sources, cfg, testNow, rng)
	assert.Len(t, batch, 4)

	keys := make(map[string]bool, len(batch))
	for _, s := range batch {
		keys[s.CanonicalKey] = true
	}
	assert.True(t, keys["due-1"])
	assert.True(t, keys["due-2"])
	assert.False(t, keys["not-due"], "not-due source should only fill explore slots, never primary")
}

func TestSelectBatchSkipsInactiveSources(t *testing.T) {
	cfg := &config.ScoutConfig{BatchSize: 2, ExplorationFraction: 0}
	longAgo := testNow.Add(-100 * time.Hour)
	sources := []SourceCandidate{
		{CanonicalKey: "active", Weight: 1, QualityPenalty: 1, Active: true, LastScraped: &longAgo},
		{CanonicalKey: "inactive", Weight: 1, QualityPenalty: 1, Active: false, LastScraped: &longAgo},
	}
	rng := rand.New(rand.NewPCG(1, 2))

	batch := selectBatch(sources, cfg, testNow, rng)
	assert.Len(t, batch, 1)
	assert.Equal(t, "active", batch[0].CanonicalKey)
}

func TestWeightedSampleNeverDuplicatesOrExceedsPool(t *testing.T) {
	pool := []SourceCandidate{
		{CanonicalKey: "a", Weight: 0.1, QualityPenalty: 1},
		{CanonicalKey: "b", Weight: 0.2, QualityPenalty: 1},
	}
	rng := rand.New(rand.NewPCG(5, 9))

	sample := weightedSample(pool, 5, rng)
	assert.Len(t, sample, 2)

	seen := make(map[string]bool)
	for _, s := range sample {
		assert.False(t, seen[s.CanonicalKey], "weightedSample must not repeat a source")
		seen[s.CanonicalKey] = true
	}
}
