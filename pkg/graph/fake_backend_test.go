package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeBackend is a minimal in-memory Backend good enough to exercise the
// projector's MERGE/SET/DETACH-DELETE statements without a real Neo4j. It
// understands exactly the statement shapes CypherBuilder emits; it is not a
// general Cypher engine.
type fakeBackend struct {
	mu    sync.Mutex
	nodes map[string]map[string]map[string]any // label -> key -> props
	edges map[string]bool                       // "label|from|to" existence set
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nodes: make(map[string]map[string]map[string]any),
		edges: make(map[string]bool),
	}
}

func (f *fakeBackend) Close(ctx context.Context) error { return nil }

func (f *fakeBackend) Wipe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes = make(map[string]map[string]map[string]any)
	f.edges = make(map[string]bool)
	return nil
}

func (f *fakeBackend) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return f.RunWrite(ctx, cypher, params)
}

// RunWrite does just enough string-shape matching to support the handful of
// statement templates cypher.go generates: MERGE node, MERGE edge, SET
// fields, DETACH DELETE, and simple MATCH...RETURN reads.
func (f *fakeBackend) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(cypher, "MERGE (n:") && strings.Contains(cypher, "SET"):
		return f.mergeNodeWithSet(cypher, params)
	case strings.HasPrefix(cypher, "MERGE (n:"):
		return f.mergeNodeBare(cypher, params)
	case strings.HasPrefix(cypher, "MATCH (a:") && strings.Contains(cypher, "MERGE (a)-[r:"):
		return f.mergeEdge(cypher, params)
	case strings.HasPrefix(cypher, "MATCH (n:") && strings.Contains(cypher, " SET "):
		return f.setFields(cypher, params)
	case strings.HasPrefix(cypher, "MATCH (n:") && strings.Contains(cypher, "DETACH DELETE n"):
		return f.detachDelete(cypher, params)
	case strings.HasPrefix(cypher, "MATCH (s:") && strings.Contains(cypher, fmt.Sprintf("[:%s]->(c:Citation)", EdgeSourcedFrom)) && strings.Contains(cypher, "DETACH DELETE c"):
		return f.detachOwnedCitations(cypher, params)
	case strings.HasPrefix(cypher, "MATCH ("):
		return f.simpleMatch(cypher, params)
	default:
		return nil, fmt.Errorf("fakeBackend: unsupported cypher shape: %s", cypher)
	}
}

func label(cypher, marker string) string {
	idx := strings.Index(cypher, marker)
	rest := cypher[idx+len(marker):]
	end := strings.IndexAny(rest, " {")
	return rest[:end]
}

func paramRef(token string) string { return strings.TrimPrefix(token, "$") }

func (f *fakeBackend) ensureLabel(lbl string) map[string]map[string]any {
	if f.nodes[lbl] == nil {
		f.nodes[lbl] = make(map[string]map[string]any)
	}
	return f.nodes[lbl]
}

func (f *fakeBackend) mergeNodeBare(cypher string, params map[string]any) ([]map[string]any, error) {
	lbl := label(cypher, "MERGE (n:")
	keyParamIdx := strings.Index(cypher, ": $")
	keyParam := paramRef(strings.Fields(cypher[keyParamIdx+2:])[0])
	keyVal := fmt.Sprintf("%v", params[keyParam])
	bucket := f.ensureLabel(lbl)
	if bucket[keyVal] == nil {
		bucket[keyVal] = map[string]any{}
	}
	return []map[string]any{{"n": bucket[keyVal]}}, nil
}

func (f *fakeBackend) mergeNodeWithSet(cypher string, params map[string]any) ([]map[string]any, error) {
	lbl := label(cypher, "MERGE (n:")
	keySeg := cypher[strings.Index(cypher, "{")+1 : strings.Index(cypher, "}")]
	parts := strings.SplitN(keySeg, ":", 2)
	keyParam := paramRef(strings.TrimSpace(parts[1]))
	keyVal := fmt.Sprintf("%v", params[keyParam])

	bucket := f.ensureLabel(lbl)
	if bucket[keyVal] == nil {
		bucket[keyVal] = map[string]any{}
	}
	applySetClause(cypher, params, bucket[keyVal])
	return []map[string]any{{"n": bucket[keyVal]}}, nil
}

func applySetClause(cypher string, params map[string]any, dst map[string]any) {
	setIdx := strings.Index(cypher, " SET ")
	retIdx := strings.Index(cypher, " RETURN")
	if setIdx < 0 {
		return
	}
	if retIdx < 0 {
		retIdx = len(cypher)
	}
	clause := cypher[setIdx+len(" SET ") : retIdx]
	for _, assign := range strings.Split(clause, ",") {
		assign = strings.TrimSpace(assign)
		eq := strings.Index(assign, "=")
		if eq < 0 {
			continue
		}
		lhs := strings.TrimSpace(assign[:eq])
		rhs := strings.TrimSpace(assign[eq+1:])
		dotIdx := strings.Index(lhs, ".")
		field := lhs[dotIdx+1:]
		dst[field] = params[paramRef(rhs)]
	}
}

func (f *fakeBackend) setFields(cypher string, params map[string]any) ([]map[string]any, error) {
	lbl := label(cypher, "MATCH (n:")
	keySeg := cypher[strings.Index(cypher, "{")+1 : strings.Index(cypher, "}")]
	parts := strings.SplitN(keySeg, ":", 2)
	keyParam := paramRef(strings.TrimSpace(parts[1]))
	keyVal := fmt.Sprintf("%v", params[keyParam])

	bucket := f.ensureLabel(lbl)
	if bucket[keyVal] == nil {
		return nil, fmt.Errorf("fakeBackend: no node %s{%s}", lbl, keyVal)
	}
	applySetClause(cypher, params, bucket[keyVal])
	return []map[string]any{{"n": bucket[keyVal]}}, nil
}

func (f *fakeBackend) detachDelete(cypher string, params map[string]any) ([]map[string]any, error) {
	lbl := label(cypher, "MATCH (n:")
	keySeg := cypher[strings.Index(cypher, "{")+1 : strings.Index(cypher, "}")]
	parts := strings.SplitN(keySeg, ":", 2)
	keyParam := paramRef(strings.TrimSpace(parts[1]))
	keyVal := fmt.Sprintf("%v", params[keyParam])
	delete(f.nodes[lbl], keyVal)
	return nil, nil
}

func (f *fakeBackend) detachOwnedCitations(cypher string, params map[string]any) ([]map[string]any, error) {
	// Best-effort: drop all Citation nodes referencing the signal id param.
	idParam := paramRef(strings.TrimSpace(strings.Split(cypher[strings.Index(cypher, "{id: ")+5:], "}")[0]))
	sigID := fmt.Sprintf("%v", params[idParam])
	for k, props := range f.nodes["Citation"] {
		if fmt.Sprintf("%v", props["signal_id"]) == sigID {
			delete(f.nodes["Citation"], k)
		}
	}
	return nil, nil
}

func (f *fakeBackend) mergeEdge(cypher string, params map[string]any) ([]map[string]any, error) {
	// MATCH (a:L1 {k1: $p0}), (b:L2 {k2: $p1}) MERGE (a)-[r:EDGE]->(b) ...
	fromLbl := label(cypher, "MATCH (a:")
	toLbl := label(cypher, "(b:")
	edgeLbl := label(cypher, "-[r:")
	edgeLbl, _, _ = strings.Cut(edgeLbl, "]")

	segs := strings.Split(cypher, "{")
	fromKeyVal := extractParamVal(segs[1], params)
	toKeyVal := extractParamVal(segs[2], params)

	edgeKey := fmt.Sprintf("%s|%s:%s|%s:%s", edgeLbl, fromLbl, fromKeyVal, toLbl, toKeyVal)
	f.edges[edgeKey] = true
	return []map[string]any{{"r": map[string]any{}}}, nil
}

func extractParamVal(seg string, params map[string]any) string {
	end := strings.Index(seg, "}")
	inner := seg[:end]
	parts := strings.SplitN(inner, ":", 2)
	paramTok := strings.TrimSpace(parts[1])
	paramTok = strings.Fields(paramTok)[0]
	return fmt.Sprintf("%v", params[paramRef(paramTok)])
}

func (f *fakeBackend) simpleMatch(cypher string, params map[string]any) ([]map[string]any, error) {
	// Supports "MATCH (n:Label {key: $p}) RETURN n" shaped reads used by the
	// reader's GetNodeDetail / citation lookups in tests.
	lbl := label(cypher, "MATCH (n:")
	if !strings.Contains(cypher, "{") {
		// MATCH (n) scans are not needed by current projector tests.
		return nil, nil
	}
	keySeg := cypher[strings.Index(cypher, "{")+1 : strings.Index(cypher, "}")]
	parts := strings.SplitN(keySeg, ":", 2)
	keyParam := paramRef(strings.TrimSpace(parts[1]))
	keyVal := fmt.Sprintf("%v", params[keyParam])
	if strings.Contains(cypher, "(c:Citation)") {
		// Citations of a signal: SOURCED_FROM is modelled by signal_id.
		var rows []map[string]any
		for _, props := range f.nodes["Citation"] {
			if fmt.Sprintf("%v", props["signal_id"]) == keyVal {
				rows = append(rows, map[string]any{"c": props})
			}
		}
		return rows, nil
	}
	node, ok := f.nodes[lbl][keyVal]
	if !ok {
		return nil, nil
	}
	return []map[string]any{{"n": node}}, nil
}

