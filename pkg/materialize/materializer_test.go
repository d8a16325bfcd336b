package materialize

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/llm"
)

// fixedNow anchors age-based calculations so tests don't drift with the
// real wall clock.
var fixedNow = time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

type fakeLLM struct {
	response synthesisResponse
	err      error
}

func (f *fakeLLM) CallTool(_ context.Context, _ llm.ToolRequest) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.Marshal(f.response)
}

func newTestMaterializer(backend *fakeGraphBackend, client llm.Client) *Materializer {
	m := New(graph.NewReader(backend), client, config.DefaultMaterializeConfig(), nil)
	m.now = func() time.Time { return fixedNow }
	return m
}

func TestMaterializeHubsCreatesNewStoryAboveThreshold(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.tensions = []map[string]any{
		{"id": "t1", "title": "Shelter capacity tension", "kind": "tension", "sensitivity": "general"},
	}
	backend.tensionResponses["t1"] = []map[string]any{
		{"id": "r1", "kind": "aid", "source_url": "https://a.example.com/x", "sensitivity": "general"},
		{"id": "r2", "kind": "need", "source_url": "https://b.example.com/y", "sensitivity": "elevated"},
	}

	m := newTestMaterializer(backend, nil)
	result, err := m.materializeHubs(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Materialized, 1)

	story := result.Materialized[0]
	assert.Equal(t, "t1", story.CentralTensionID)
	assert.Equal(t, "Shelter capacity tension", story.Headline)
	assert.Equal(t, "elevated", string(story.Sensitivity))
	assert.ElementsMatch(t, []string{"t1", "r1", "r2"}, story.SignalIDs)
	assert.Equal(t, "emerging", story.Status) // type_diversity 3 but entity_count 0, signal_count 3 < echo threshold
	assert.False(t, story.NeedsRefinement)
}

func TestMaterializeHubsSkipsBelowThreshold(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.tensions = []map[string]any{
		{"id": "t1", "title": "Lone tension", "kind": "tension", "sensitivity": "general"},
	}
	backend.tensionResponses["t1"] = []map[string]any{
		{"id": "r1", "kind": "aid", "source_url": "https://a.example.com/x", "sensitivity": "general"},
	}

	m := newTestMaterializer(backend, nil)
	result, err := m.materializeHubs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Materialized)
}

func TestMaterializeHubsAbsorbsOverlappingStory(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.tensions = []map[string]any{
		{"id": "t1", "title": "Shelter capacity tension", "kind": "tension", "sensitivity": "general"},
	}
	backend.tensionResponses["t1"] = []map[string]any{
		{"id": "r1", "kind": "aid", "source_url": "https://a.example.com/x"},
		{"id": "r2", "kind": "need", "source_url": "https://b.example.com/y"},
	}
	backend.stories = []map[string]any{
		{"id": "story-1", "central_tension_id": "other-tension"},
	}
	backend.storySignals["story-1"] = []map[string]any{{"id": "t1"}, {"id": "r1"}}

	m := newTestMaterializer(backend, nil)
	result, err := m.materializeHubs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Materialized)
	require.Len(t, result.Changed, 1)
	assert.Equal(t, "story-1", result.Changed[0].StoryID)
	assert.ElementsMatch(t, []string{"t1", "r1", "r2"}, result.Changed[0].AddedSignalIDs)
}

func TestMaterializeHubsSkipsAlreadyMaterializedTension(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.tensions = []map[string]any{
		{"id": "t1", "title": "Already a story", "kind": "tension"},
	}
	backend.tensionResponses["t1"] = []map[string]any{
		{"id": "r1", "source_url": "https://a.example.com"},
		{"id": "r2", "source_url": "https://b.example.com"},
	}
	backend.stories = []map[string]any{
		{"id": "story-1", "central_tension_id": "t1"},
	}

	m := newTestMaterializer(backend, nil)
	result, err := m.materializeHubs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Materialized)
	assert.Empty(t, result.Changed)
}

func TestGrowStoriesAddsNewRespondents(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.stories = []map[string]any{
		{"id": "story-1", "central_tension_id": "t1", "arc": "fading"},
	}
	backend.storySignals["story-1"] = []map[string]any{{"id": "r1"}}
	backend.tensionResponses["t1"] = []map[string]any{
		{"id": "r1"}, {"id": "r2"},
	}

	m := newTestMaterializer(backend, nil)
	result, err := m.growStories(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Changed, 1)
	assert.Equal(t, []string{"r2"}, result.Changed[0].AddedSignalIDs)

	var sawWasFading, sawSynthesisPending bool
	for _, c := range result.Changed[0].Changes {
		if c.Field == "was_fading" {
			sawWasFading = true
		}
		if c.Field == "synthesis_pending" {
			sawSynthesisPending = true
		}
	}
	assert.True(t, sawWasFading)
	assert.True(t, sawSynthesisPending)
}

func TestGrowStoriesNoOpWithoutNewRespondents(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.stories = []map[string]any{
		{"id": "story-1", "central_tension_id": "t1", "arc": "stable"},
	}
	backend.storySignals["story-1"] = []map[string]any{{"id": "r1"}}
	backend.tensionResponses["t1"] = []map[string]any{{"id": "r1"}}

	m := newTestMaterializer(backend, nil)
	result, err := m.growStories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Changed)
}

func TestEnrichStoriesCallsSynthesizerWhenPending(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.stories = []map[string]any{
		{"id": "story-1", "headline": "Old headline", "synthesis_pending": true, "velocity": 1.0, "was_fading": true},
	}
	backend.storySignals["story-1"] = []map[string]any{
		{"id": "s1", "kind": "tension", "title": "T", "summary": "s"},
		{"id": "s2", "kind": "aid", "title": "A", "summary": "s"},
	}

	fake := &fakeLLM{response: synthesisResponse{
		Headline: "New headline", Lede: "lede", Narrative: "narrative",
		Arc: "resurgent", Category: "housing", ActionGuidance: "donate beds",
	}}

	m := newTestMaterializer(backend, fake)
	result, err := m.enrichStories(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Changed, 1)

	changes := make(map[string]any)
	for _, c := range result.Changed[0].Changes {
		changes[c.Field] = c.NewValue
	}
	assert.Equal(t, "New headline", changes["headline"])
	assert.Equal(t, "resurgent", changes["arc"])
	assert.Equal(t, "housing", changes["category"])
	assert.Equal(t, "donate beds", changes["action_guidance"])
	assert.Equal(t, false, changes["synthesis_pending"])
	assert.Equal(t, false, changes["was_fading"])
}

func TestEnrichStoriesSkipsWhenNotPendingAndHasLede(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.stories = []map[string]any{
		{"id": "story-1", "lede": "already written", "synthesis_pending": false},
	}
	m := newTestMaterializer(backend, &fakeLLM{})
	result, err := m.enrichStories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Changed)
}

func TestScoreStoriesComputesVelocityAndEnergy(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.stories = []map[string]any{
		{"id": "story-1", "entity_count_7d_ago": 2, "ask_count_7d_ago": 1, "give_count_7d_ago": 1, "last_updated": "2026-07-20T00:00:00Z"},
	}
	backend.storySignals["story-1"] = []map[string]any{
		{"id": "s1", "kind": "need", "source_url": "https://a.example.com"},
		{"id": "s2", "kind": "aid", "source_url": "https://b.example.com"},
	}
	backend.actorSignals["actor-1"] = []string{"s1"}
	backend.actorSignals["actor-2"] = []string{"s2"}

	m := newTestMaterializer(backend, nil)
	result, err := m.scoreStories(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Changed, 1)

	changes := make(map[string]any)
	for _, c := range result.Changed[0].Changes {
		changes[c.Field] = c.NewValue
	}
	assert.Equal(t, 0.0, changes["velocity"]) // entity_count 2, 7d ago 2
	assert.Equal(t, 0.0, changes["gap_velocity"])
	assert.Equal(t, 2, changes["entity_count"])
	assert.Equal(t, 2, changes["signal_count"])
	assert.NotContains(t, changes, "archived")
}

func TestScoreStoriesArchivesStaleNonGrowingStory(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.stories = []map[string]any{
		{"id": "story-1", "entity_count_7d_ago": 5, "last_updated": "2026-01-01T00:00:00Z"},
	}
	backend.storySignals["story-1"] = []map[string]any{{"id": "s1", "kind": "need"}}

	m := newTestMaterializer(backend, nil)
	result, err := m.scoreStories(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Changed, 1)

	var archived bool
	for _, c := range result.Changed[0].Changes {
		if c.Field == "archived" {
			archived = true
		}
	}
	assert.True(t, archived)
}

func TestRunSequencesAllFourPhases(t *testing.T) {
	backend := newFakeGraphBackend()
	backend.tensions = []map[string]any{
		{"id": "t1", "title": "New tension", "kind": "tension"},
	}
	backend.tensionResponses["t1"] = []map[string]any{
		{"id": "r1", "source_url": "https://a.example.com"},
		{"id": "r2", "source_url": "https://b.example.com"},
	}

	m := newTestMaterializer(backend, &fakeLLM{})
	result, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Materialized, 1)
}
