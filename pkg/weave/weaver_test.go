package weave

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/pkg/llm"
	"github.com/fourthplaces/rootsignal/pkg/pii"
)

type fakeLLM struct {
	response WeavingResponse
	err      error
}

func (f *fakeLLM) CallTool(_ context.Context, _ llm.ToolRequest) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.Marshal(f.response)
}

type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func TestWeaveCreatesNewSituationWithMeanNarrativeEmbedding(t *testing.T) {
	fake := &fakeLLM{response: WeavingResponse{
		NewSituations: []NewSituation{
			{TempID: "tmp-1", Headline: "Shelter closure", Arc: "emerging", SignalIDs: []string{"s1", "s2"}},
		},
	}}

	w := New(fake, &fakeEmbedder{dim: 3}, pii.NewService(), nil)
	result, err := w.Weave(context.Background(), []CandidateSignal{
		{SignalID: "s1", Embedding: []float32{1, 0, 0}, Sensitivity: "general"},
		{SignalID: "s2", Embedding: []float32{0, 1, 0}, Sensitivity: "elevated"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Identified, 1)

	sit := result.Identified[0]
	assert.NotEmpty(t, sit.SituationID)
	assert.Equal(t, "Shelter closure", sit.Headline)
	assert.Equal(t, []float32{0.5, 0.5, 0}, sit.NarrativeEmbedding)
	// No root_cause_thesis: causal embedding falls back to narrative.
	assert.Equal(t, sit.NarrativeEmbedding, sit.CausalEmbedding)
	// Sensitivity is the strictest among assigned signals.
	assert.Equal(t, "elevated", string(sit.Sensitivity))
}

func TestWeaveEmbedsRootCauseThesisSeparately(t *testing.T) {
	fake := &fakeLLM{response: WeavingResponse{
		NewSituations: []NewSituation{
			{TempID: "tmp-1", Headline: "Shelter closure", Arc: "emerging", SignalIDs: []string{"s1"}, RootCauseThesis: "Funding lapsed at the county level."},
		},
	}}

	w := New(fake, &fakeEmbedder{dim: 3}, pii.NewService(), nil)
	result, err := w.Weave(context.Background(), []CandidateSignal{
		{SignalID: "s1", Embedding: []float32{1, 0, 0}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Identified, 1)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, result.Identified[0].CausalEmbedding)
}

func TestWeaveRemapsTempIDInDispatch(t *testing.T) {
	fake := &fakeLLM{response: WeavingResponse{
		NewSituations: []NewSituation{
			{TempID: "tmp-1", Headline: "Shelter closure", Arc: "emerging", SignalIDs: []string{"s1"}},
		},
		Dispatches: []Dispatch{
			{SituationID: "tmp-1", Body: "Residents report a shelter closing this week [signal:s1].", CitedSignalIDs: []string{"s1"}},
		},
	}}

	w := New(fake, &fakeEmbedder{dim: 3}, pii.NewService(), nil)
	result, err := w.Weave(context.Background(), []CandidateSignal{
		{SignalID: "s1", Embedding: []float32{1, 0, 0}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Dispatches, 1)
	require.Len(t, result.Identified, 1)
	assert.Equal(t, result.Identified[0].SituationID, result.Dispatches[0].SituationID)
	assert.False(t, result.Dispatches[0].InvalidCitation)
}

func TestWeaveFlagsDispatchWithUnresolvedCitation(t *testing.T) {
	fake := &fakeLLM{response: WeavingResponse{
		Dispatches: []Dispatch{
			{SituationID: "sit-existing", Body: "A claim appears here [signal:ghost].", CitedSignalIDs: []string{"ghost"}},
		},
	}}

	w := New(fake, &fakeEmbedder{dim: 3}, pii.NewService(), nil)
	result, err := w.Weave(context.Background(), []CandidateSignal{
		{SignalID: "s1", Embedding: []float32{1, 0, 0}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Dispatches, 1)
	assert.True(t, result.Dispatches[0].InvalidCitation)
	assert.NotEmpty(t, result.Dispatches[0].FlagReasons)
}

func TestWeaveAppliesChangedSituationFieldChanges(t *testing.T) {
	fake := &fakeLLM{response: WeavingResponse{
		ChangedSituations: []ChangedSituation{
			{SituationID: "sit-1", FieldChanges: map[string]any{"arc": "growing"}, AddedSignalIDs: []string{"s1"}},
		},
	}}

	w := New(fake, &fakeEmbedder{dim: 3}, pii.NewService(), nil)
	result, err := w.Weave(context.Background(), []CandidateSignal{
		{SignalID: "s1", Embedding: []float32{1, 0, 0}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Changed, 1)
	assert.Equal(t, "sit-1", result.Changed[0].SituationID)
	require.Len(t, result.Changed[0].Changes, 1)
	assert.Equal(t, "arc", result.Changed[0].Changes[0].Field)
	assert.Equal(t, "growing", result.Changed[0].Changes[0].NewValue)
	assert.Equal(t, []string{"s1"}, result.Changed[0].AddedSignalIDs)
}

func TestWeaveEmptyBatchReturnsEmptyResult(t *testing.T) {
	w := New(&fakeLLM{}, &fakeEmbedder{dim: 3}, pii.NewService(), nil)
	result, err := w.Weave(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Identified)
	assert.Empty(t, result.Dispatches)
}
