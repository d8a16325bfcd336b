package scout

import "time"

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

func asEmbedding(v any) []float32 {
	switch vs := v.(type) {
	case []float32:
		return vs
	case []float64:
		out := make([]float32, len(vs))
		for i, f := range vs {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(vs))
		for _, e := range vs {
			switch n := e.(type) {
			case float64:
				out = append(out, float32(n))
			case float32:
				out = append(out, n)
			}
		}
		return out
	default:
		return nil
	}
}

// sourceFromRow converts a graph.Reader.ActiveSources row into a
// SourceCandidate.
func sourceFromRow(row map[string]any) SourceCandidate {
	return SourceCandidate{
		CanonicalKey:   asString(row["canonical_key"]),
		URL:            asString(row["url"]),
		CanonicalValue: asString(row["canonical_value"]),
		SourceType:     asString(row["source_type"]),
		Weight:         asFloat(row["weight"]),
		QualityPenalty: asFloat(row["quality_penalty"]),
		LastScraped:    asTime(row["last_scraped"]),
		Active:         asBool(row["active"]),
	}
}

// liveSignalFromRow converts a graph.Reader.SignalsByKind row into a
// liveSignal for cross-source dedupe comparison.
func liveSignalFromRow(row map[string]any) liveSignal {
	return liveSignal{
		SignalID:  asString(row["id"]),
		SourceURL: asString(row["source_url"]),
		Title:     asString(row["title"]),
		Embedding: asEmbedding(row["embedding"]),
	}
}
