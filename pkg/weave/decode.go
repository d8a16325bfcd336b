package weave

// SituationCandidateFromRow converts one graph.Reader.ActiveSituations row
// into a SituationCandidate. Neo4j driver rows surface list properties as
// []interface{}; toFloat32 tolerates that along with []float64.
func SituationCandidateFromRow(row map[string]any) SituationCandidate {
	return SituationCandidate{
		ID:                 asString(row["id"]),
		Headline:           asString(row["headline"]),
		Arc:                asString(row["arc"]),
		NarrativeEmbedding: toFloat32(row["narrative_embedding"]),
		CausalEmbedding:    toFloat32(row["causal_embedding"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func toFloat32(v any) []float32 {
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
