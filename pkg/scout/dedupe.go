package scout

import (
	"sync"

	"github.com/fourthplaces/rootsignal/pkg/embed"
	"github.com/fourthplaces/rootsignal/pkg/graph"
)

// corpusEntry is one same-type signal the dedupe pass can match against,
// carrying just enough state to keep a running corroboration count across a
// run without re-reading the graph after every match.
type corpusEntry struct {
	liveSignal
	corroborationCount int
}

// corpus holds the cross-source dedupe candidate pool for every signal kind,
// seeded once per Run from the graph and grown as the run discovers new
// signals. Sources are processed concurrently, so every method locks.
type corpus struct {
	mu      sync.Mutex
	byKind  map[graph.SignalKind][]*corpusEntry
}

func newCorpus() *corpus {
	return &corpus{byKind: make(map[graph.SignalKind][]*corpusEntry)}
}

func (c *corpus) seed(kind graph.SignalKind, rows []map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]*corpusEntry, 0, len(rows))
	for _, row := range rows {
		ls := liveSignalFromRow(row)
		entries = append(entries, &corpusEntry{
			liveSignal:          ls,
			corroborationCount:  int(asFloat(row["corroboration_count"])),
		})
	}
	c.byKind[kind] = entries
}

// matchResult is the outcome of comparing a freshly extracted signal against
// the corpus: either it matches an existing entry (possibly from the same
// source, possibly from a different one) or it is genuinely new.
type matchResult struct {
	matched             bool
	entry               *corpusEntry
	newCorroborationCount int
}

// findOrAdd compares embedding against every same-kind corpus entry. Above
// threshold it registers a match (bumping the entry's corroboration count
// when the citing source is new) and returns it; otherwise it adds a fresh
// entry for newSignal so later sources in this run can match against it.
func (c *corpus) findOrAdd(kind graph.SignalKind, newSignal liveSignal, threshold float64) matchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var best *corpusEntry
	bestScore := 0.0
	for _, e := range c.byKind[kind] {
		score := embed.Cosine(newSignal.Embedding, e.Embedding)
		if score >= threshold && score > bestScore {
			best, bestScore = e, score
		}
	}

	if best != nil {
		if best.SourceURL != newSignal.SourceURL {
			best.corroborationCount++
		}
		return matchResult{matched: true, entry: best, newCorroborationCount: best.corroborationCount}
	}

	entry := &corpusEntry{liveSignal: newSignal}
	c.byKind[kind] = append(c.byKind[kind], entry)
	return matchResult{matched: false}
}
