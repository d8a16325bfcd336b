package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jBackend implements Backend against a real Neo4j (or Aura) instance
// using the modern ExecuteQuery API, which handles routing, retries, and
// bookmarks internally.
type Neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jBackend dials uri and verifies connectivity before returning.
func NewNeo4jBackend(ctx context.Context, uri, username, password, database string) (*Neo4jBackend, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	return &Neo4jBackend{driver: driver, database: database}, nil
}

func (n *Neo4jBackend) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, n.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(n.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	return recordsToMaps(result.Records), nil
}

func (n *Neo4jBackend) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, n.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(n.database),
		neo4j.ExecuteQueryWithWritersRouting())
	if err != nil {
		return nil, fmt.Errorf("run write: %w", err)
	}
	return recordsToMaps(result.Records), nil
}

func (n *Neo4jBackend) Wipe(ctx context.Context) error {
	_, err := n.RunWrite(ctx, "MATCH (n) DETACH DELETE n", nil)
	return err
}

func (n *Neo4jBackend) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

func recordsToMaps(records []*neo4j.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(rec.Keys))
		for _, k := range rec.Keys {
			v, _ := rec.Get(k)
			row[k] = unwrapEntity(v)
		}
		out = append(out, row)
	}
	return out
}

// unwrapEntity flattens neo4j.Node/neo4j.Relationship values to their
// property maps so callers never need to import the driver package just to
// read a field back out.
func unwrapEntity(v any) any {
	switch e := v.(type) {
	case neo4j.Node:
		return e.Props
	case neo4j.Relationship:
		return e.Props
	default:
		return v
	}
}
