package weave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSituationCandidateFromRowDecodesFloat64List(t *testing.T) {
	row := map[string]any{
		"id":                  "sit-1",
		"headline":            "Shelter closure",
		"arc":                 "emerging",
		"narrative_embedding": []float64{0.1, 0.2, 0.3},
		"causal_embedding":    []float64{0.4, 0.5, 0.6},
	}
	c := SituationCandidateFromRow(row)
	assert.Equal(t, "sit-1", c.ID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, c.NarrativeEmbedding)
}

func TestSituationCandidateFromRowDecodesAnyList(t *testing.T) {
	row := map[string]any{
		"id":                  "sit-2",
		"headline":            "Shelter closure",
		"arc":                 "cold",
		"narrative_embedding": []any{0.1, 0.2},
		"causal_embedding":    []any{0.3, 0.4},
	}
	c := SituationCandidateFromRow(row)
	assert.Equal(t, []float32{0.1, 0.2}, c.NarrativeEmbedding)
	assert.Equal(t, []float32{0.3, 0.4}, c.CausalEmbedding)
}
