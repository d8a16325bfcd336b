package graph

import "context"

// Backend is the minimal execution surface the projector and reader need.
// Keeping it this narrow (rather than exposing the Neo4j driver directly)
// means the projector's apply logic, and the reader's queries, are backend
// implementations away from swapping the property graph store.
type Backend interface {
	// Run executes a single Cypher statement with bound parameters and
	// returns its records as a slice of column-name-to-value maps.
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// RunWrite is like Run but routes to the cluster leader when the
	// backend is clustered; used for MERGE/SET/DETACH DELETE statements.
	RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// Wipe deletes every node and edge. Used only by rebuild().
	Wipe(ctx context.Context) error

	Close(ctx context.Context) error
}
