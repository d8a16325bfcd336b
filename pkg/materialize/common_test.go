package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

func TestMaxSensitivityPicksStrictest(t *testing.T) {
	signals := []map[string]any{
		{"sensitivity": "general"},
		{"sensitivity": "sensitive"},
		{"sensitivity": "elevated"},
	}
	assert.Equal(t, eventstore.SensitivitySensitive, maxSensitivity(signals))
}

func TestTypeDiversityCountsDistinctKinds(t *testing.T) {
	signals := []map[string]any{
		{"kind": "tension"}, {"kind": "aid"}, {"kind": "aid"}, {"kind": "need"},
	}
	assert.Equal(t, 3, typeDiversity(signals))
}

func TestStoryStatusRules(t *testing.T) {
	assert.Equal(t, "confirmed", storyStatus(2, 2, 4, 5))
	assert.Equal(t, "echo", storyStatus(1, 0, 5, 5))
	assert.Equal(t, "emerging", storyStatus(1, 1, 2, 5))
}

func TestAskGiveCounts(t *testing.T) {
	signals := []map[string]any{
		{"kind": "tension"}, {"kind": "need"}, {"kind": "aid"}, {"kind": "gathering"}, {"kind": "notice"},
	}
	ask, give := askGiveCounts(signals)
	assert.Equal(t, 2, ask)
	assert.Equal(t, 2, give)
}

func TestSourceDomainCount(t *testing.T) {
	signals := []map[string]any{
		{"source_url": "https://a.example.com/x"},
		{"source_url": "https://a.example.com/y"},
		{"source_url": "https://b.example.com/z"},
		{"source_url": "not a url but no host either"},
	}
	assert.Equal(t, 2, sourceDomainCount(signals))
}

func TestCentroidOfMeansCoordinates(t *testing.T) {
	signals := []map[string]any{
		{"lat": 10.0, "lng": 20.0},
		{"lat": 20.0, "lng": 30.0},
		{"title": "no coords"},
	}
	c := centroidOf(signals)
	if assert.NotNil(t, c) {
		assert.Equal(t, 15.0, *c.Lat)
		assert.Equal(t, 25.0, *c.Lng)
	}
}

func TestCentroidOfNilWhenNoCoordinates(t *testing.T) {
	assert.Nil(t, centroidOf([]map[string]any{{"title": "x"}}))
}

func TestHasBothTensionAndResponse(t *testing.T) {
	assert.True(t, hasBothTensionAndResponse([]map[string]any{{"kind": "tension"}, {"kind": "aid"}}))
	assert.False(t, hasBothTensionAndResponse([]map[string]any{{"kind": "tension"}}))
	assert.False(t, hasBothTensionAndResponse([]map[string]any{{"kind": "aid"}, {"kind": "need"}}))
}
