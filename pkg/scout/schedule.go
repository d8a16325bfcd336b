package scout

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

// cadenceHours maps effective_weight to a scrape cadence: a monotone step
// function so heavily-weighted sources (high-signal, low quality penalty)
// get scraped far more often than the long tail. Neither the steps nor the
// bucket count are mandated; these match the "4-8 concurrent, ~10%
// exploration" scale spec.md describes for the rest of the scheduler.
func cadenceHours(effectiveWeight float64) float64 {
	switch {
	case effectiveWeight >= 0.8:
		return 6
	case effectiveWeight >= 0.5:
		return 12
	case effectiveWeight >= 0.2:
		return 24
	default:
		return 72
	}
}

// isDue reports whether s should be scheduled at now: never scraped, or its
// cadence window has elapsed.
func isDue(s SourceCandidate, now time.Time) bool {
	if s.LastScraped == nil {
		return true
	}
	due := s.LastScraped.Add(time.Duration(cadenceHours(s.EffectiveWeight())) * time.Hour)
	return !now.Before(due)
}

// overdueRatio is how many cadence windows have elapsed since a source was
// due; used only to rank an already-due batch, never the due-check itself.
func overdueRatio(s SourceCandidate, now time.Time) float64 {
	cadence := cadenceHours(s.EffectiveWeight())
	if s.LastScraped == nil {
		return 1e9 // never scraped sorts first
	}
	elapsed := now.Sub(*s.LastScraped).Hours()
	return elapsed / cadence
}

// selectBatch picks this run's sources: the highest-priority due sources
// fill (1-ExplorationFraction) of BatchSize, and a weighted-random sample of
// the long tail (low effective_weight, not already picked) fills the rest,
// per spec.md §4.3's "~10% exploration" rule. rng is a seam for
// deterministic tests.
func selectBatch(sources []SourceCandidate, cfg *config.ScoutConfig, now time.Time, rng *rand.Rand) []SourceCandidate {
	var due []SourceCandidate
	for _, s := range sources {
		if s.Active && isDue(s, now) {
			due = append(due, s)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return overdueRatio(due[i], now)*due[i].EffectiveWeight() > overdueRatio(due[j], now)*due[j].EffectiveWeight()
	})

	exploreCount := int(float64(cfg.BatchSize) * cfg.ExplorationFraction)
	primaryCount := cfg.BatchSize - exploreCount
	if primaryCount > len(due) {
		primaryCount = len(due)
	}

	batch := make([]SourceCandidate, 0, cfg.BatchSize)
	picked := make(map[string]bool, cfg.BatchSize)
	for _, s := range due[:primaryCount] {
		batch = append(batch, s)
		picked[s.CanonicalKey] = true
	}

	remaining := cfg.BatchSize - len(batch)
	if remaining <= 0 {
		return batch
	}

	var pool []SourceCandidate
	for _, s := range sources {
		if s.Active && !picked[s.CanonicalKey] {
			pool = append(pool, s)
		}
	}
	return append(batch, weightedSample(pool, remaining, rng)...)
}

// weightedSample draws up to n distinct sources from pool, weighted inversely
// by effective_weight so low-weight, long-tail sources are preferred for
// exploration.
func weightedSample(pool []SourceCandidate, n int, rng *rand.Rand) []SourceCandidate {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	remaining := append([]SourceCandidate(nil), pool...)
	out := make([]SourceCandidate, 0, n)
	for len(out) < n && len(remaining) > 0 {
		total := 0.0
		keys := make([]float64, len(remaining))
		for i, s := range remaining {
			keys[i] = 1.0 / (s.EffectiveWeight() + 0.05)
			total += keys[i]
		}
		target := rng.Float64() * total
		idx := 0
		cum := 0.0
		for i, k := range keys {
			cum += k
			if cum >= target {
				idx = i
				break
			}
		}
		out = append(out, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out
}
