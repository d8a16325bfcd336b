package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// fakeBackend is a minimal graph.Backend good enough to drive the read
// handlers: it recognizes the handful of Cypher shapes pkg/graph.Reader
// issues and returns canned rows, the same substring-matching technique
// pkg/scout's fakeGraphBackend uses against pkg/graph.Reader's real
// queries.
type fakeBackend struct {
	signals   []map[string]any
	citations map[string][]map[string]any // signal id -> citations
	stories   []map[string]any
	actors    map[string]map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{citations: map[string][]map[string]any{}, actors: map[string]map[string]any{}}
}

func (f *fakeBackend) Close(ctx context.Context) error { return nil }
func (f *fakeBackend) Wipe(ctx context.Context) error   { return nil }

func (f *fakeBackend) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	switch {
	case strings.Contains(cypher, "MATCH (n:Signal {id:") && strings.Contains(cypher, "Citation"):
		id := fmt.Sprintf("%v", params["p0"])
		rows := make([]map[string]any, 0, len(f.citations[id]))
		for _, c := range f.citations[id] {
			rows = append(rows, map[string]any{"c": c})
		}
		return rows, nil
	case strings.Contains(cypher, "MATCH (n:Signal {id:"):
		id := fmt.Sprintf("%v", params["p0"])
		for _, s := range f.signals {
			if fmt.Sprintf("%v", s["id"]) == id {
				return []map[string]any{{"n": s}}, nil
			}
		}
		return nil, nil
	case strings.HasPrefix(cypher, "MATCH (n:Signal)"):
		rows := make([]map[string]any, 0, len(f.signals))
		for _, s := range f.signals {
			rows = append(rows, map[string]any{"n": s})
		}
		return rows, nil
	case strings.Contains(cypher, "MATCH (s:Story) WHERE s.archived = false"):
		rows := make([]map[string]any, 0, len(f.stories))
		for _, s := range f.stories {
			rows = append(rows, map[string]any{"s": s})
		}
		return rows, nil
	case strings.Contains(cypher, "MATCH (a:Actor {id:"):
		id := fmt.Sprintf("%v", params["p0"])
		if a, ok := f.actors[id]; ok {
			return []map[string]any{{"a": a}}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("fakeBackend: unsupported cypher shape: %s", cypher)
	}
}

func (f *fakeBackend) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return nil, nil
}

// fakeStore fakes the eventAppender interface without a live Postgres
// connection.
type fakeStore struct {
	appended []eventstore.Event
	nextSeq  int64
	pingErr  error
}

func (f *fakeStore) Append(ctx context.Context, ev eventstore.Event) (eventstore.StoredEvent, error) {
	f.nextSeq++
	f.appended = append(f.appended, ev)
	return eventstore.StoredEvent{Seq: f.nextSeq, Type: ev.Type, Payload: ev.Payload}, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }
