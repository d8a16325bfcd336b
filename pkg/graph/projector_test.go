package graph

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/stretchr/testify/require"
)

func mustEvent(t *testing.T, seq int64, typ eventstore.EventType, payload any) eventstore.StoredEvent {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return eventstore.StoredEvent{Seq: seq, Ts: time.Now().UTC(), Type: typ, Payload: raw}
}

// TestCorroborationCountTracksDistinctSourceURLs exercises scenario S2: three
// independent URLs producing the "same" signal should leave exactly one
// signal with corroboration_count == 2 (quantified invariant #1).
func TestCorroborationCountTracksDistinctSourceURLs(t *testing.T) {
	backend := newFakeBackend()
	p := NewProjector(backend, nil)
	ctx := context.Background()

	discovered := mustEvent(t, 1, eventstore.EventTensionDiscovered, eventstore.TensionDiscovered{
		SignalBase: eventstore.SignalBase{
			SignalID:  "sig-1",
			Title:     "Community Garden Cleanup",
			SourceURL: "https://a.example/post",
		},
		WhatWouldHelp: "volunteers",
	})
	require.NoError(t, p.Apply(ctx, discovered))

	corroborated1 := mustEvent(t, 2, eventstore.EventObservationCorroborated, eventstore.ObservationCorroborated{
		SignalID: "sig-1", NewCorroborationCount: 1,
	})
	require.NoError(t, p.Apply(ctx, corroborated1))

	corroborated2 := mustEvent(t, 3, eventstore.EventObservationCorroborated, eventstore.ObservationCorroborated{
		SignalID: "sig-1", NewCorroborationCount: 2,
	})
	require.NoError(t, p.Apply(ctx, corroborated2))

	reader := NewReader(backend)
	node, citations, found, err := reader.GetNodeDetail(ctx, "sig-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, citations) // no citation_recorded events sent in this test
	require.Equal(t, int64(2), asInt(node["corroboration_count"]))
}

// TestReplayIsIdempotent exercises quantified invariant #3/#4: projecting
// the same event twice (as replay naturally does when resuming from a seq
// already applied) must not change the resulting state.
func TestReplayIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	p := NewProjector(backend, nil)
	ctx := context.Background()

	ev := mustEvent(t, 1, eventstore.EventNeedDiscovered, eventstore.NeedDiscovered{
		SignalBase: eventstore.SignalBase{SignalID: "sig-2", Title: "Need blankets", SourceURL: "https://b.example"},
		Urgency:    "high",
	})

	require.NoError(t, p.Apply(ctx, ev))
	reader := NewReader(backend)
	first, _, _, err := reader.GetNodeDetail(ctx, "sig-2")
	require.NoError(t, err)

	require.NoError(t, p.Apply(ctx, ev)) // re-apply the same seq
	second, _, _, err := reader.GetNodeDetail(ctx, "sig-2")
	require.NoError(t, err)

	require.Equal(t, first["title"], second["title"])
	require.Equal(t, first["urgency"], second["urgency"])
}

// TestCitationMergeIsIdempotentPerSignalSourcePair covers invariant #2: at
// most one Citation node per (signal_id, source_url), matching scenario S3
// where the same URL is scraped repeatedly.
func TestCitationMergeIsIdempotentPerSignalSourcePair(t *testing.T) {
	backend := newFakeBackend()
	p := NewProjector(backend, nil)
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, mustEvent(t, 1, eventstore.EventAidDiscovered, eventstore.AidDiscovered{
		SignalBase: eventstore.SignalBase{SignalID: "sig-3", Title: "Free meals", SourceURL: "https://c.example"},
	})))

	for i := 0; i < 6; i++ {
		require.NoError(t, p.Apply(ctx, mustEvent(t, int64(2+i), eventstore.EventCitationRecorded, eventstore.CitationRecorded{
			CitationID:  "cite-1",
			SignalID:    "sig-3",
			SourceURL:   "https://c.example",
			RetrievedAt: time.Now().UTC(),
			ContentHash: "deadbeef",
			ChannelType: eventstore.ChannelCommunity,
		})))
	}

	require.Len(t, backend.nodes["Citation"], 1)
}

// TestUnknownEventTypeIsANoOp covers the forward-compatibility requirement:
// an unrecognized event type must not error, and must not mutate the graph.
func TestUnknownEventTypeIsANoOp(t *testing.T) {
	backend := newFakeBackend()
	p := NewProjector(backend, nil)
	ctx := context.Background()

	ev := eventstore.StoredEvent{Seq: 1, Ts: time.Now().UTC(), Type: "some_future_event", Payload: []byte(`{}`)}
	require.NoError(t, p.Apply(ctx, ev))
	require.Empty(t, backend.nodes)
}

// TestLifecycleRemovalDetachesOwnedCitations covers the "expire/purge
// DETACH DELETEs the signal and its owned citations" apply policy.
func TestLifecycleRemovalDetachesOwnedCitations(t *testing.T) {
	backend := newFakeBackend()
	p := NewProjector(backend, nil)
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, mustEvent(t, 1, eventstore.EventNoticeDiscovered, eventstore.NoticeDiscovered{
		SignalBase: eventstore.SignalBase{SignalID: "sig-4", Title: "Road closure", SourceURL: "https://d.example"},
	})))
	require.NoError(t, p.Apply(ctx, mustEvent(t, 2, eventstore.EventCitationRecorded, eventstore.CitationRecorded{
		CitationID: "cite-2", SignalID: "sig-4", SourceURL: "https://d.example", RetrievedAt: time.Now().UTC(),
	})))
	require.Len(t, backend.nodes["Citation"], 1)

	require.NoError(t, p.Apply(ctx, mustEvent(t, 3, eventstore.EventEntityExpired, eventstore.EntityExpired{
		EntityID: "sig-4", EntityKind: "signal", Reason: "notice_older_than_60d",
	})))

	require.Empty(t, backend.nodes["Citation"])
	require.NotContains(t, backend.nodes[signalLabel], "sig-4")
}

// TestSubmissionReceivedCreatesSubmissionNodeLinkedToSource covers the
// Submission interface: a submitted URL gets its own node plus a
// SUBMITTED_FOR edge to the Source, regardless of which of the two paired
// events (submission_received, source_registered) lands first.
func TestSubmissionReceivedCreatesSubmissionNodeLinkedToSource(t *testing.T) {
	backend := newFakeBackend()
	p := NewProjector(backend, nil)
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx, mustEvent(t, 1, eventstore.EventSubmissionReceived, eventstore.SubmissionReceived{
		SubmissionID:       "sub-1",
		URL:                "https://e.example/notice",
		Reason:             "neighbor flagged this",
		SourceCanonicalKey: "riverside:web_page:e.example/notice",
	})))

	require.Len(t, backend.nodes["Submission"], 1)
	submission := backend.nodes["Submission"]["sub-1"]
	require.Equal(t, "https://e.example/notice", submission["url"])
	require.Equal(t, "neighbor flagged this", submission["reason"])

	require.NoError(t, p.Apply(ctx, mustEvent(t, 2, eventstore.EventSourceRegistered, eventstore.SourceRegistered{
		CanonicalKey: "riverside:web_page:e.example/notice",
		URL:          "https://e.example/notice",
		SourceType:   "web_page",
		DiscoveryMethod: eventstore.DiscoveryHumanSubmission,
		Weight:       0.5,
	})))

	require.Len(t, backend.nodes["Source"], 1)
	require.True(t, backend.edges["SUBMITTED_FOR|Submission:sub-1|Source:riverside:web_page:e.example/notice"])
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
