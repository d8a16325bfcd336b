package materialize

import (
	"context"
	"fmt"
	"strings"
)

// fakeGraphBackend is a read-only stand-in for graph.Backend good enough to
// exercise graph.Reader's fixed query shapes without a live Neo4j. It never
// needs RunWrite: the materializer only reads through graph.Reader and
// returns events for the caller to append and project elsewhere.
type fakeGraphBackend struct {
	tensions         []map[string]any
	stories          []map[string]any
	storySignals     map[string][]map[string]any // storyID -> CONTAINS signals
	tensionResponses map[string][]map[string]any // tensionID -> RESPONDS_TO signals
	actorSignals     map[string][]string         // actorID -> signal ids it ACTED_IN
}

func newFakeGraphBackend() *fakeGraphBackend {
	return &fakeGraphBackend{
		storySignals:     make(map[string][]map[string]any),
		tensionResponses: make(map[string][]map[string]any),
		actorSignals:     make(map[string][]string),
	}
}

func (f *fakeGraphBackend) Close(ctx context.Context) error { return nil }
func (f *fakeGraphBackend) Wipe(ctx context.Context) error   { return nil }

func (f *fakeGraphBackend) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return nil, fmt.Errorf("fakeGraphBackend: RunWrite not supported: %s", cypher)
}

func (f *fakeGraphBackend) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	switch {
	case strings.Contains(cypher, "RETURN count(DISTINCT a) AS c"):
		ids, _ := params["p0"].([]string)
		want := stringSet(ids)
		seen := make(map[string]bool)
		for actorID, sigs := range f.actorSignals {
			for _, sid := range sigs {
				if want[sid] {
					seen[actorID] = true
					break
				}
			}
		}
		return []map[string]any{{"c": int64(len(seen))}}, nil

	case strings.Contains(cypher, "-[:CONTAINS]->(n:Signal) RETURN n"):
		id, _ := params["p0"].(string)
		return wrap(f.storySignals[id], "n"), nil

	case strings.Contains(cypher, "MATCH (s:Story {id:"):
		id, _ := params["p0"].(string)
		for _, s := range f.stories {
			if asString(s["id"]) == id {
				return wrap([]map[string]any{s}, "s"), nil
			}
		}
		return nil, nil

	case strings.Contains(cypher, "RESPONDS_TO"):
		id, _ := params["p0"].(string)
		sigs := f.tensionResponses[id]
		rows := make([]map[string]any, 0, len(sigs))
		for _, s := range sigs {
			rows = append(rows, map[string]any{"n": s, "match_strength": nil, "explanation": nil})
		}
		return rows, nil

	case strings.Contains(cypher, "(t:Signal {kind:"):
		return wrap(f.tensions, "t"), nil

	case strings.Contains(cypher, "MATCH (s:Story) WHERE s.archived = false"):
		return wrap(f.stories, "s"), nil

	case strings.Contains(cypher, "MATCH (s:Situation) WHERE s.archived = false"):
		return nil, nil

	default:
		return nil, fmt.Errorf("fakeGraphBackend: unsupported cypher shape: %s", cypher)
	}
}

func wrap(rows []map[string]any, col string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{col: r})
	}
	return out
}
