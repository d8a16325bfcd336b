// Package eventstore provides the append-only event log that is RootSignal's
// single source of truth. Every other subsystem either appends to it or
// replays it; nothing else is durable.
package eventstore

import (
	"encoding/json"
	"time"
)

// EventType is a stable snake_case wire tag. Changing an existing tag is a
// wire break; see the layer lists below for the full catalog.
type EventType string

// World layer: observable facts about the community being watched.
const (
	EventGatheringDiscovered       EventType = "gathering_discovered"
	EventAidDiscovered             EventType = "aid_discovered"
	EventNeedDiscovered            EventType = "need_discovered"
	EventNoticeDiscovered          EventType = "notice_discovered"
	EventTensionDiscovered         EventType = "tension_discovered"
	EventCitationRecorded          EventType = "citation_recorded"
	EventObservationCorroborated   EventType = "observation_corroborated"
	EventFreshnessConfirmed        EventType = "freshness_confirmed"
	EventEntityExpired             EventType = "entity_expired"
	EventEntityPurged              EventType = "entity_purged"
	EventSituationIdentified       EventType = "situation_identified"
	EventSituationChanged          EventType = "situation_changed"
	EventDispatchCreated           EventType = "dispatch_created"
	EventStoryMaterialized         EventType = "story_materialized"
	EventStoryChanged              EventType = "story_changed"
	EventActorIdentified           EventType = "actor_identified"
	EventActorLinkedToEntity       EventType = "actor_linked_to_entity"
	EventActorLocationIdentified   EventType = "actor_location_identified"
	EventPinCreated                EventType = "pin_created"
	EventSubmissionReceived        EventType = "submission_received"
)

// System layer: decisions RootSignal itself made while processing world facts.
const (
	EventSensitivityClassified    EventType = "sensitivity_classified"
	EventImpliedQueriesExtracted  EventType = "implied_queries_extracted"
	EventConfidenceScored         EventType = "confidence_scored"
	EventReviewVerdictReached     EventType = "review_verdict_reached"
	EventSignalLinkedToSource     EventType = "signal_linked_to_source"
	EventSourceRegistered         EventType = "source_registered"
	EventSourceChanged            EventType = "source_changed"
	EventSourceDeactivated        EventType = "source_deactivated"
	EventSourceScrapeRecorded     EventType = "source_scrape_recorded"
	EventLintCorrectionApplied    EventType = "lint_correction_applied"
	EventLintRejectionIssued      EventType = "lint_rejection_issued"
	EventDemandAggregated         EventType = "demand_aggregated"
	EventTagsAggregated           EventType = "tags_aggregated"
	EventTagSuppressed            EventType = "tag_suppressed"
	EventTagsMerged               EventType = "tags_merged"
	EventSignalRejected           EventType = "signal_rejected"
	EventSignalDeduplicated       EventType = "signal_deduplicated"
	EventSignalDroppedNoDate      EventType = "signal_dropped_no_date"
)

// Telemetry layer: observability only, never projected onto the graph.
const (
	EventURLScraped             EventType = "url_scraped"
	EventFeedScraped            EventType = "feed_scraped"
	EventSocialScraped          EventType = "social_scraped"
	EventSearchPerformed        EventType = "search_performed"
	EventLLMExtractionCompleted EventType = "llm_extraction_completed"
	EventBudgetCheckpoint       EventType = "budget_checkpoint"
	EventBootstrapCompleted     EventType = "bootstrap_completed"
)

// telemetryTypes never reach the projector's apply switch with anything but
// a no-op; kept here so callers (e.g. replay tooling) can skip them cheaply.
var telemetryTypes = map[EventType]bool{
	EventURLScraped:             true,
	EventFeedScraped:            true,
	EventSocialScraped:          true,
	EventSearchPerformed:        true,
	EventLLMExtractionCompleted: true,
	EventBudgetCheckpoint:       true,
	EventBootstrapCompleted:     true,
}

// IsTelemetry reports whether events of this type are explicit graph no-ops.
func (t EventType) IsTelemetry() bool {
	return telemetryTypes[t]
}

// Event is the payload a caller wants appended. The store assigns Seq and Ts.
type Event struct {
	Type    EventType       `json:"event_type"`
	Payload json.RawMessage `json:"payload"`
	RunID   *string         `json:"run_id,omitempty"`
	Actor   *string         `json:"actor,omitempty"`
}

// StoredEvent is an Event after durable assignment of seq and ts.
type StoredEvent struct {
	Seq     int64           `json:"seq"`
	Ts      time.Time       `json:"ts"`
	Type    EventType       `json:"event_type"`
	Payload json.RawMessage `json:"payload"`
	RunID   *string         `json:"run_id,omitempty"`
	Actor   *string         `json:"actor,omitempty"`
}

// NewEvent marshals payload and returns an Event ready for Append.
func NewEvent(eventType EventType, payload any, runID, actor string) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Type: eventType, Payload: raw}
	if runID != "" {
		ev.RunID = &runID
	}
	if actor != "" {
		ev.Actor = &actor
	}
	return ev, nil
}

// Decode unmarshals the stored payload into dst.
func (e StoredEvent) Decode(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}
