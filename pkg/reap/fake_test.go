package reap

import (
	"context"
	"fmt"
	"strings"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// fakeGraphBackend is a read/write stand-in for graph.Backend covering only
// the Cypher shapes SignalsByKind and the projector's entity_expired handler
// produce.
type fakeGraphBackend struct {
	signals map[string][]map[string]any // kind -> signals
	deleted []string
}

func newFakeGraphBackend() *fakeGraphBackend {
	return &fakeGraphBackend{signals: make(map[string][]map[string]any)}
}

func (f *fakeGraphBackend) Close(ctx context.Context) error { return nil }
func (f *fakeGraphBackend) Wipe(ctx context.Context) error   { return nil }

func (f *fakeGraphBackend) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if !strings.Contains(cypher, "MATCH (n:Signal {kind:") {
		return nil, fmt.Errorf("fakeGraphBackend: unsupported read: %s", cypher)
	}
	kind, _ := params["p0"].(string)
	rows := make([]map[string]any, 0, len(f.signals[kind]))
	for _, s := range f.signals[kind] {
		rows = append(rows, map[string]any{"n": s})
	}
	return rows, nil
}

func (f *fakeGraphBackend) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if !strings.Contains(cypher, "DETACH DELETE") {
		return nil, fmt.Errorf("fakeGraphBackend: unsupported write: %s", cypher)
	}
	if id, ok := params["p0"].(string); ok {
		f.deleted = append(f.deleted, id)
	}
	return nil, nil
}

// fakeStore records every appended event without touching Postgres.
type fakeStore struct {
	appended []eventstore.Event
	seq      int64
}

func (f *fakeStore) Append(ctx context.Context, ev eventstore.Event) (eventstore.StoredEvent, error) {
	f.seq++
	f.appended = append(f.appended, ev)
	return eventstore.StoredEvent{Seq: f.seq, Type: ev.Type, Payload: ev.Payload}, nil
}
