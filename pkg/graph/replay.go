package graph

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// EventSource is the read side of the event log the replay loop needs; it is
// satisfied by *eventstore.Store.
type EventSource interface {
	ReadFrom(ctx context.Context, seqStart int64, limit int) ([]eventstore.StoredEvent, error)
}

const replayBatchSize = 500

// ReplayFrom iterates the log in batches from seqStart, applying each event,
// and returns the highest seq applied. Replay is idempotent: MERGE semantics
// mean re-applying an already-projected seq leaves the graph unchanged.
func (p *Projector) ReplayFrom(ctx context.Context, source EventSource, seqStart int64) (int64, error) {
	var lastApplied int64
	seq := seqStart
	for {
		batch, err := source.ReadFrom(ctx, seq, replayBatchSize)
		if err != nil {
			return lastApplied, fmt.Errorf("read batch from seq %d: %w", seq, err)
		}
		if len(batch) == 0 {
			return lastApplied, nil
		}
		for _, ev := range batch {
			if err := p.Apply(ctx, ev); err != nil {
				return lastApplied, fmt.Errorf("apply seq %d (%s): %w", ev.Seq, ev.Type, err)
			}
			lastApplied = ev.Seq
		}
		seq = batch[len(batch)-1].Seq + 1
	}
}

// Rebuild wipes the graph and replays the entire log from seq 1. Use after a
// schema change or to recover from a corrupted projection; the event log
// remains the only durable state, so this is always safe.
func (p *Projector) Rebuild(ctx context.Context, source EventSource) (int64, error) {
	if err := p.backend.Wipe(ctx); err != nil {
		return 0, fmt.Errorf("wipe graph: %w", err)
	}
	return p.ReplayFrom(ctx, source, 1)
}
