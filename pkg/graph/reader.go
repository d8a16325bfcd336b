package graph

import (
	"context"
	"fmt"
	"math"
)

// Reader serves every query in the external read API. It never writes.
type Reader struct {
	backend Backend
}

func NewReader(backend Backend) *Reader {
	return &Reader{backend: backend}
}

// earthRadiusKm is used for the haversine post-filter applied after a cheap
// bounding-box prefilter narrows the candidate set in Cypher.
const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// boundingBox returns a lat/lng rectangle guaranteed to contain every point
// within radiusKm of (centerLat, centerLng); used as a cheap Cypher prefilter
// before the exact haversine check.
func boundingBox(centerLat, centerLng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / 110.574
	lngDelta := radiusKm / (111.320 * math.Cos(centerLat*math.Pi/180))
	return centerLat - latDelta, centerLat + latDelta, centerLng - lngDelta, centerLng + lngDelta
}

// ListRecent returns the most recently extracted signals, optionally
// filtered to the given kinds.
func (r *Reader) ListRecent(ctx context.Context, limit int, kinds []string) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (n:%s) WHERE n.review_status <> 'rejected'", signalLabel)
	if len(kinds) > 0 {
		cypher += fmt.Sprintf(" AND n.kind IN %s", b.Param(kinds))
	}
	cypher += fmt.Sprintf(" RETURN n ORDER BY n.extracted_at DESC LIMIT %s", b.Param(limit))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "n"), nil
}

// GetNodeDetail returns a node by id plus its citations, if it is a signal.
func (r *Reader) GetNodeDetail(ctx context.Context, id string) (map[string]any, []map[string]any, bool, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (n:%s {id: %s}) RETURN n", signalLabel, b.Param(id))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, nil, false, err
	}
	if len(rows) == 0 {
		return nil, nil, false, nil
	}
	node := asMap(rows[0]["n"])

	cb := NewCypherBuilder()
	citeCypher := fmt.Sprintf(
		"MATCH (n:%s {id: %s})-[:%s]->(c:Citation) RETURN c",
		signalLabel, cb.Param(id), EdgeSourcedFrom,
	)
	citeRows, err := r.backend.Run(ctx, citeCypher, cb.Params())
	if err != nil {
		return nil, nil, false, err
	}
	return node, unwrapRows(citeRows, "c"), true, nil
}

// ListRecentForScope returns recent signals within radiusKm of the center,
// excluding the (0,0) sentinel "no location" value per the boundary
// invariant that such signals never appear in scope queries.
func (r *Reader) ListRecentForScope(ctx context.Context, centerLat, centerLng, radiusKm float64, limit int) ([]map[string]any, error) {
	minLat, maxLat, minLng, maxLng := boundingBox(centerLat, centerLng, radiusKm)

	b := NewCypherBuilder()
	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE n.review_status <> 'rejected'
		  AND NOT (n.lat = 0 AND n.lng = 0)
		  AND n.lat >= %s AND n.lat <= %s AND n.lng >= %s AND n.lng <= %s
		RETURN n
		ORDER BY n.extracted_at DESC
		LIMIT %s
	`, signalLabel,
		b.Param(minLat), b.Param(maxLat), b.Param(minLng), b.Param(maxLng), b.Param(limit*4))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, limit)
	for _, row := range rows {
		n := asMap(row["n"])
		lat, latOK := toFloat(n["lat"])
		lng, lngOK := toFloat(n["lng"])
		if !latOK || !lngOK {
			continue
		}
		if haversineKm(centerLat, centerLng, lat, lng) <= radiusKm {
			out = append(out, n)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// TopStoriesByEnergy returns non-archived stories ordered by energy descending.
func (r *Reader) TopStoriesByEnergy(ctx context.Context, limit int, status string) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := "MATCH (s:Story) WHERE s.archived = false"
	if status != "" {
		cypher += fmt.Sprintf(" AND s.status = %s", b.Param(status))
	}
	cypher += fmt.Sprintf(" RETURN s ORDER BY s.energy DESC LIMIT %s", b.Param(limit))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "s"), nil
}

// TopStoriesForScope filters stories to those whose centroid is within
// radiusKm, same bbox-then-haversine pattern as ListRecentForScope.
func (r *Reader) TopStoriesForScope(ctx context.Context, centerLat, centerLng, radiusKm float64, limit int) ([]map[string]any, error) {
	minLat, maxLat, minLng, maxLng := boundingBox(centerLat, centerLng, radiusKm)
	b := NewCypherBuilder()
	cypher := fmt.Sprintf(`
		MATCH (s:Story)
		WHERE s.archived = false
		  AND NOT (s.centroid_lat = 0 AND s.centroid_lng = 0)
		  AND s.centroid_lat >= %s AND s.centroid_lat <= %s
		  AND s.centroid_lng >= %s AND s.centroid_lng <= %s
		RETURN s
		ORDER BY s.energy DESC
		LIMIT %s
	`, b.Param(minLat), b.Param(maxLat), b.Param(minLng), b.Param(maxLng), b.Param(limit*4))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, limit)
	for _, row := range rows {
		s := asMap(row["s"])
		lat, latOK := toFloat(s["centroid_lat"])
		lng, lngOK := toFloat(s["centroid_lng"])
		if !latOK || !lngOK {
			continue
		}
		if haversineKm(centerLat, centerLng, lat, lng) <= radiusKm {
			out = append(out, s)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// StoryWithSignals returns a story and every signal it CONTAINS.
func (r *Reader) StoryWithSignals(ctx context.Context, id string) (map[string]any, []map[string]any, bool, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (s:Story {id: %s}) RETURN s", b.Param(id))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, nil, false, err
	}
	if len(rows) == 0 {
		return nil, nil, false, nil
	}

	cb := NewCypherBuilder()
	sigCypher := fmt.Sprintf("MATCH (s:Story {id: %s})-[:%s]->(n:%s) RETURN n", cb.Param(id), EdgeContains, signalLabel)
	sigRows, err := r.backend.Run(ctx, sigCypher, cb.Params())
	if err != nil {
		return nil, nil, false, err
	}
	return asMap(rows[0]["s"]), unwrapRows(sigRows, "n"), true, nil
}

// TensionResponses returns the signals RESPONDS_TO a tension, plus edge
// metadata (match_strength, explanation).
func (r *Reader) TensionResponses(ctx context.Context, tensionID string) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf(
		"MATCH (n:%s)-[r:%s]->(t:%s {id: %s}) RETURN n, r.match_strength AS match_strength, r.explanation AS explanation",
		signalLabel, EdgeRespondsTo, signalLabel, b.Param(tensionID),
	)
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		n := asMap(row["n"])
		n["match_strength"] = row["match_strength"]
		n["explanation"] = row["explanation"]
		out = append(out, n)
	}
	return out, nil
}

// ActiveSituations returns every non-archived Situation with its embeddings,
// the weaver's retrieval candidate pool.
func (r *Reader) ActiveSituations(ctx context.Context) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := "MATCH (s:Situation) WHERE s.archived = false RETURN s"
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "s"), nil
}

// TensionHubCandidates returns every Tension signal, the materializer's
// candidate pool for Phase A/B. Domain-diversity and respondent-overlap
// arithmetic is done in Go over TensionResponses, not here.
func (r *Reader) TensionHubCandidates(ctx context.Context) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (t:%s {kind: %s}) RETURN t", signalLabel, b.Param(string(SignalTension)))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "t"), nil
}

// SignalsByKind returns every signal of one kind, whatever its
// review_status (rejected signals included), unordered, for the reaper's age-based expiry sweep; the age arithmetic
// itself happens in Go, the same division of labor as TensionHubCandidates.
func (r *Reader) SignalsByKind(ctx context.Context, kind SignalKind) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (n:%s {kind: %s}) RETURN n", signalLabel, b.Param(string(kind)))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "n"), nil
}

// NonArchivedStories returns every non-archived Story, unordered, for the
// materializer's Grow/Enrich/Velocity-Energy sweeps (unlike
// TopStoriesByEnergy, which is read-API facing and always limited/ordered).
func (r *Reader) NonArchivedStories(ctx context.Context) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := "MATCH (s:Story) WHERE s.archived = false RETURN s"
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "s"), nil
}

// DistinctActorCountForSignals returns how many distinct Actors ACTED_IN any
// of signalIDs, the materializer's entity_count.
func (r *Reader) DistinctActorCountForSignals(ctx context.Context, signalIDs []string) (int, error) {
	if len(signalIDs) == 0 {
		return 0, nil
	}
	b := NewCypherBuilder()
	cypher := fmt.Sprintf(
		"MATCH (a:Actor)-[:%s]->(n:%s) WHERE n.id IN %s RETURN count(DISTINCT a) AS c",
		EdgeActedIn, signalLabel, b.Param(signalIDs),
	)
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, _ := toFloat(rows[0]["c"])
	return int(n), nil
}

// ActorDetail returns a single actor by id.
func (r *Reader) ActorDetail(ctx context.Context, id string) (map[string]any, bool, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (a:Actor {id: %s}) RETURN a", b.Param(id))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return asMap(rows[0]["a"]), true, nil
}

// ActorStories returns every story containing a signal the actor ACTED_IN.
func (r *Reader) ActorStories(ctx context.Context, actorID string) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf(
		"MATCH (a:Actor {id: %s})-[:%s]->(n:%s)<-[:%s]-(s:Story) RETURN DISTINCT s",
		b.Param(actorID), EdgeActedIn, signalLabel, EdgeContains,
	)
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "s"), nil
}

// ActorsActiveInArea returns actors with a location within radiusKm of the
// scope's center, most-recently-active first.
func (r *Reader) ActorsActiveInArea(ctx context.Context, centerLat, centerLng, radiusKm float64, limit int) ([]map[string]any, error) {
	minLat, maxLat, minLng, maxLng := boundingBox(centerLat, centerLng, radiusKm)
	b := NewCypherBuilder()
	cypher := fmt.Sprintf(`
		MATCH (a:Actor)
		WHERE a.lat IS NOT NULL AND a.lng IS NOT NULL
		  AND a.lat >= %s AND a.lat <= %s AND a.lng >= %s AND a.lng <= %s
		RETURN a
		ORDER BY a.last_active DESC
		LIMIT %s
	`, b.Param(minLat), b.Param(maxLat), b.Param(minLng), b.Param(maxLng), b.Param(limit*4))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, limit)
	for _, row := range rows {
		a := asMap(row["a"])
		lat, latOK := toFloat(a["lat"])
		lng, lngOK := toFloat(a["lng"])
		if !latOK || !lngOK {
			continue
		}
		if haversineKm(centerLat, centerLng, lat, lng) <= radiusKm {
			out = append(out, a)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// ActiveSources returns every active Source node, unordered, for the scout
// scheduler's due-check and exploration sampling.
func (r *Reader) ActiveSources(ctx context.Context) ([]map[string]any, error) {
	b := NewCypherBuilder()
	cypher := "MATCH (s:Source) WHERE s.active = true RETURN s"
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	return unwrapRows(rows, "s"), nil
}

// SignalIDsForSourceURL returns the ids of every signal cited from url, for
// the scout pipeline's hash short-circuit (step 2): a repeat fetch of
// unchanged content re-confirms freshness of everything already sourced from
// that URL instead of re-extracting.
func (r *Reader) SignalIDsForSourceURL(ctx context.Context, url string) ([]string, error) {
	b := NewCypherBuilder()
	cypher := fmt.Sprintf("MATCH (c:Citation {source_url: %s}) RETURN DISTINCT c.signal_id AS signal_id", b.Param(url))
	rows, err := r.backend.Run(ctx, cypher, b.Params())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := asStringVal(row["signal_id"]); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func asStringVal(v any) string {
	s, _ := v.(string)
	return s
}

func unwrapRows(rows []map[string]any, col string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, asMap(r[col]))
	}
	return out
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
