package graph

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isValidIdentifier restricts labels, keys, and property names to
// alphanumeric-plus-underscore so they can be safely interpolated into
// Cypher (values always go through parameters, never interpolation).
func isValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// CypherBuilder accumulates parameters for a single query so every value —
// never a label or key, those are validated identifiers — crosses into
// Cypher as a bound parameter.
type CypherBuilder struct {
	params  map[string]any
	counter int
}

func NewCypherBuilder() *CypherBuilder {
	return &CypherBuilder{params: make(map[string]any)}
}

// Param registers a value and returns its `$pN` placeholder.
func (b *CypherBuilder) Param(value any) string {
	name := fmt.Sprintf("p%d", b.counter)
	b.counter++
	b.params[name] = value
	return "$" + name
}

func (b *CypherBuilder) Params() map[string]any {
	return b.params
}

// MergeNode builds `MERGE (n:Label {key: $val}) SET n.prop = $val, ...`.
// Properties with a nil value are skipped (callers omit rather than null).
func (b *CypherBuilder) MergeNode(label, key string, keyValue any, props map[string]any) (string, error) {
	if !isValidIdentifier(label) {
		return "", fmt.Errorf("invalid node label %q", label)
	}
	if !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid node key %q", key)
	}
	keyParam := b.Param(keyValue)

	var sets []string
	for k, v := range props {
		if v == nil {
			continue
		}
		if !isValidIdentifier(k) {
			return "", fmt.Errorf("invalid property key %q", k)
		}
		sets = append(sets, fmt.Sprintf("n.%s = %s", k, b.Param(v)))
	}

	query := fmt.Sprintf("MERGE (n:%s {%s: %s})", label, key, keyParam)
	if len(sets) > 0 {
		query += " SET " + strings.Join(sets, ", ")
	}
	query += " RETURN n"
	return query, nil
}

// MergeEdge builds a MERGE across two already-matched nodes by their key
// properties, creating the edge with the given label and properties.
func (b *CypherBuilder) MergeEdge(
	fromLabel, fromKey string, fromValue any,
	toLabel, toKey string, toValue any,
	edgeLabel string, props map[string]any,
) (string, error) {
	for _, id := range []string{fromLabel, fromKey, toLabel, toKey, edgeLabel} {
		if !isValidIdentifier(id) {
			return "", fmt.Errorf("invalid identifier %q", id)
		}
	}
	fromParam := b.Param(fromValue)
	toParam := b.Param(toValue)

	var setClause string
	if len(props) > 0 {
		var sets []string
		for k, v := range props {
			if !isValidIdentifier(k) {
				return "", fmt.Errorf("invalid edge property key %q", k)
			}
			sets = append(sets, fmt.Sprintf("r.%s = %s", k, b.Param(v)))
		}
		setClause = " SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf(
		"MATCH (a:%s {%s: %s}), (b:%s {%s: %s}) MERGE (a)-[r:%s]->(b)%s RETURN r",
		fromLabel, fromKey, fromParam, toLabel, toKey, toParam, edgeLabel, setClause,
	), nil
}

// SetFields builds `MATCH (n:Label {key: $val}) SET n.f1 = $v1, ...` for an
// apply-correction-style patch. Field names are validated one by one so a
// single disallowed field rejects the whole correction rather than applying
// a partial SET.
func (b *CypherBuilder) SetFields(label, key string, keyValue any, fields map[string]any, allowed map[string]bool) (string, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid label/key")
	}
	keyParam := b.Param(keyValue)

	var sets []string
	for f, v := range fields {
		if !isValidIdentifier(f) {
			return "", fmt.Errorf("invalid field name %q", f)
		}
		if allowed != nil && !allowed[f] {
			return "", fmt.Errorf("field %q not in allow-list for %s", f, label)
		}
		sets = append(sets, fmt.Sprintf("n.%s = %s", f, b.Param(v)))
	}
	if len(sets) == 0 {
		return "", fmt.Errorf("no fields to set")
	}
	return fmt.Sprintf("MATCH (n:%s {%s: %s}) SET %s RETURN n", label, key, keyParam, strings.Join(sets, ", ")), nil
}

// DetachDelete builds `MATCH (n:Label {key: $val}) DETACH DELETE n`.
func (b *CypherBuilder) DetachDelete(label, key string, keyValue any) (string, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid label/key")
	}
	keyParam := b.Param(keyValue)
	return fmt.Sprintf("MATCH (n:%s {%s: %s}) DETACH DELETE n", label, key, keyParam), nil
}
