package extract

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/pkg/llm"
)

type fakeLLM struct {
	response Response
	err      error
}

func (f *fakeLLM) CallTool(_ context.Context, _ llm.ToolRequest) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.Marshal(f.response)
}

func truePtr() *bool  { v := true; return &v }
func falsePtr() *bool { v := false; return &v }

func TestExtractReturnsWellFormedSignals(t *testing.T) {
	fake := &fakeLLM{response: Response{Signals: []Signal{
		{
			SignalType:  TypeGathering,
			Title:       "Free Fridge Restock",
			Summary:     "Volunteers restocking the community fridge Saturday.",
			Sensitivity: "general",
			Confidence:  0.5,
			IsFirsthand: truePtr(),
		},
	}}}

	e := New(fake, nil)
	signals, err := e.Extract(context.Background(), "https://example.com/page", "page body")
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "Free Fridge Restock", signals[0].Title)
}

func TestExtractDropsJunkTitleRows(t *testing.T) {
	fake := &fakeLLM{response: Response{Signals: []Signal{
		{SignalType: TypeNotice, Title: "404 Page not found", Summary: "x", Sensitivity: "general"},
	}}}

	e := New(fake, nil)
	signals, err := e.Extract(context.Background(), "https://example.com/page", "page body")
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestExtractDropsNonFirsthandRows(t *testing.T) {
	fake := &fakeLLM{response: Response{Signals: []Signal{
		{SignalType: TypeNeed, Title: "Needs blankets", Summary: "x", Sensitivity: "general", IsFirsthand: falsePtr()},
	}}}

	e := New(fake, nil)
	signals, err := e.Extract(context.Background(), "https://example.com/page", "page body")
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestExtractDropsMalformedRows(t *testing.T) {
	fake := &fakeLLM{response: Response{Signals: []Signal{
		{SignalType: "not-a-real-type", Title: "x", Summary: "x", Sensitivity: "general"},
		{SignalType: TypeAid, Title: "Meal handout", Summary: "Hot meals tonight.", Sensitivity: "general"},
	}}}

	e := New(fake, nil)
	signals, err := e.Extract(context.Background(), "https://example.com/page", "page body")
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "Meal handout", signals[0].Title)
}

func TestExtractPropagatesLLMError(t *testing.T) {
	fake := &fakeLLM{err: assert.AnError}
	e := New(fake, nil)
	_, err := e.Extract(context.Background(), "https://example.com/page", "page body")
	require.Error(t, err)
}
