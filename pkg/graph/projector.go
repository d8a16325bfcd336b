package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// signalLabel is the shared Neo4j label for every signal kind; Kind lives as
// a property rather than five separate labels, since most queries (location,
// confidence, corroboration) cut across kinds.
const signalLabel = "Signal"

// allowedCorrectionFields restricts *_correction SETs per entity kind. Kept
// as an explicit allow-list (never "any field the caller names") so an event
// payload can never smuggle an arbitrary property write.
var allowedCorrectionFields = map[SignalKind]map[string]bool{
	SignalGathering: {"title": true, "summary": true, "confidence": true, "sensitivity": true, "organizer": true, "action_url": true},
	SignalAid:       {"title": true, "summary": true, "confidence": true, "sensitivity": true, "availability": true, "is_ongoing": true},
	SignalNeed:      {"title": true, "summary": true, "confidence": true, "sensitivity": true, "urgency": true, "what_needed": true},
	SignalNotice:    {"title": true, "summary": true, "confidence": true, "sensitivity": true, "category": true, "source_authority": true},
	SignalTension:   {"title": true, "summary": true, "confidence": true, "sensitivity": true, "severity": true, "goal": true, "what_would_help": true},
}

var allowedSourceFields = map[string]bool{
	"weight": true, "url": true, "source_role": true, "quality_penalty": true, "cadence_hours": true, "active": true,
}

var allowedSituationFields = map[string]bool{
	"headline": true, "lede": true, "arc": true, "temperature": true, "clarity": true, "sensitivity": true, "structured_state": true,
}

var allowedStoryFields = map[string]bool{
	"headline": true, "summary": true, "lede": true, "narrative": true, "arc": true, "category": true, "action_guidance": true,
	"status": true, "energy": true, "velocity": true, "gap_score": true, "gap_velocity": true, "recency_score": true,
	"source_diversity": true, "triangulation": true, "signal_count": true, "type_diversity": true, "entity_count": true,
	"ask_count": true, "give_count": true, "entity_count_7d_ago": true, "ask_count_7d_ago": true, "give_count_7d_ago": true,
	"last_updated": true, "last_snapshot_at": true, "needs_refinement": true, "was_fading": true, "synthesis_pending": true,
	"archived": true, "centroid_lat": true, "centroid_lng": true,
}

// Projector is the sole writer of the graph. Apply is a pure function of a
// StoredEvent plus whatever idempotency state it reads from the graph itself
// (e.g. "what is the current corroboration_count"); it never consults a wall
// clock or generates IDs — every id and timestamp comes from the event.
type Projector struct {
	backend Backend
	logger  *slog.Logger
}

func NewProjector(backend Backend, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{backend: backend, logger: logger}
}

// Apply projects a single event. Telemetry events and informational system
// events are explicit no-ops; unknown event types are logged and ignored so
// the projector stays forward-compatible with event types it predates.
func (p *Projector) Apply(ctx context.Context, ev eventstore.StoredEvent) error {
	if ev.Type.IsTelemetry() {
		return nil
	}

	switch ev.Type {
	case eventstore.EventGatheringDiscovered:
		return p.applyDiscovered(ctx, ev, SignalGathering)
	case eventstore.EventAidDiscovered:
		return p.applyDiscovered(ctx, ev, SignalAid)
	case eventstore.EventNeedDiscovered:
		return p.applyDiscovered(ctx, ev, SignalNeed)
	case eventstore.EventNoticeDiscovered:
		return p.applyDiscovered(ctx, ev, SignalNotice)
	case eventstore.EventTensionDiscovered:
		return p.applyDiscovered(ctx, ev, SignalTension)

	case eventstore.EventObservationCorroborated:
		return p.applyCorroborated(ctx, ev)
	case eventstore.EventFreshnessConfirmed:
		return p.applyFreshnessConfirmed(ctx, ev)
	case eventstore.EventCitationRecorded:
		return p.applyCitation(ctx, ev)

	case eventstore.EventSourceRegistered:
		return p.applySourceRegistered(ctx, ev)
	case eventstore.EventSourceChanged:
		return p.applySourceChanged(ctx, ev)
	case eventstore.EventSourceDeactivated:
		return p.applySourceDeactivated(ctx, ev)
	case eventstore.EventSourceScrapeRecorded:
		return p.applySourceScrapeRecorded(ctx, ev)

	case eventstore.EventEntityExpired, eventstore.EventEntityPurged:
		return p.applyLifecycleRemoval(ctx, ev)

	case eventstore.EventSituationIdentified:
		return p.applySituationIdentified(ctx, ev)
	case eventstore.EventSituationChanged:
		return p.applySituationChanged(ctx, ev)
	case eventstore.EventDispatchCreated:
		return p.applyDispatchCreated(ctx, ev)
	case eventstore.EventStoryMaterialized:
		return p.applyStoryMaterialized(ctx, ev)
	case eventstore.EventStoryChanged:
		return p.applyStoryChanged(ctx, ev)

	case eventstore.EventActorIdentified:
		return p.applyActorIdentified(ctx, ev)
	case eventstore.EventActorLinkedToEntity:
		return p.applyActorLinked(ctx, ev)
	case eventstore.EventActorLocationIdentified:
		return p.applyActorLocation(ctx, ev)

	case eventstore.EventSubmissionReceived:
		return p.applySubmissionReceived(ctx, ev)

	case eventstore.EventSignalRejected, eventstore.EventSignalDeduplicated, eventstore.EventSignalDroppedNoDate,
		eventstore.EventSensitivityClassified, eventstore.EventImpliedQueriesExtracted, eventstore.EventConfidenceScored,
		eventstore.EventReviewVerdictReached, eventstore.EventSignalLinkedToSource, eventstore.EventLintCorrectionApplied,
		eventstore.EventLintRejectionIssued, eventstore.EventDemandAggregated, eventstore.EventTagsAggregated,
		eventstore.EventTagSuppressed, eventstore.EventTagsMerged, eventstore.EventPinCreated:
		// Informational/advisory events: no graph mutation. This includes
		// review_verdict_reached and confidence_scored, which leave the
		// signal node's review_status and confidence unchanged.
		return nil

	default:
		p.logger.Warn("projector: unknown event type, skipping", "event_type", ev.Type, "seq", ev.Seq)
		return nil
	}
}

func decode[T any](ev eventstore.StoredEvent) (T, error) {
	var v T
	err := json.Unmarshal(ev.Payload, &v)
	return v, err
}

func (p *Projector) applyDiscovered(ctx context.Context, ev eventstore.StoredEvent, kind SignalKind) error {
	var base eventstore.SignalBase
	props := map[string]any{
		"kind":           string(kind),
		"review_status":  string(ReviewStaged),
		"corroboration_count": 0,
		"extracted_at":   ev.Ts.Format(timeLayout),
	}

	switch kind {
	case SignalGathering:
		v, err := decode[eventstore.GatheringDiscovered](ev)
		if err != nil {
			return err
		}
		base = v.SignalBase
		props["organizer"] = v.Organizer
		props["action_url"] = v.ActionURL
		if v.Schedule != nil {
			if v.Schedule.StartsAt != nil {
				props["starts_at"] = v.Schedule.StartsAt.Format(timeLayout)
			}
			if v.Schedule.EndsAt != nil {
				props["ends_at"] = v.Schedule.EndsAt.Format(timeLayout)
			}
			props["all_day"] = v.Schedule.AllDay
			props["rrule"] = v.Schedule.RRule
			props["is_recurring"] = v.Schedule.IsRecurring
		}
	case SignalAid:
		v, err := decode[eventstore.AidDiscovered](ev)
		if err != nil {
			return err
		}
		base = v.SignalBase
		props["availability"] = v.Availability
		props["is_ongoing"] = v.IsOngoing
	case SignalNeed:
		v, err := decode[eventstore.NeedDiscovered](ev)
		if err != nil {
			return err
		}
		base = v.SignalBase
		props["urgency"] = v.Urgency
		props["what_needed"] = v.WhatNeeded
	case SignalNotice:
		v, err := decode[eventstore.NoticeDiscovered](ev)
		if err != nil {
			return err
		}
		base = v.SignalBase
		props["category"] = v.Category
		props["source_authority"] = v.SourceAuthority
	case SignalTension:
		v, err := decode[eventstore.TensionDiscovered](ev)
		if err != nil {
			return err
		}
		base = v.SignalBase
		props["severity"] = v.Severity
		props["goal"] = v.Goal
		props["what_would_help"] = v.WhatWouldHelp
	}

	props["title"] = base.Title
	props["summary"] = base.Summary
	props["sensitivity"] = string(base.Sensitivity)
	props["source_url"] = base.SourceURL
	props["implied_queries"] = base.ImpliedQueries
	props["tags"] = base.Tags
	if len(base.Embedding) > 0 {
		props["embedding"] = base.Embedding
	}
	if base.Location != nil {
		if base.Location.Lat != nil {
			props["lat"] = *base.Location.Lat
		}
		if base.Location.Lng != nil {
			props["lng"] = *base.Location.Lng
		}
		props["geo_precision"] = string(base.Location.Precision)
	}
	if base.ContentDate != nil {
		props["content_date"] = base.ContentDate.Format(timeLayout)
	}

	b := NewCypherBuilder()
	cypher, err := b.MergeNode(signalLabel, "id", base.SignalID, props)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

func (p *Projector) applyCorroborated(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.ObservationCorroborated](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.SetFields(signalLabel, "id", payload.SignalID, map[string]any{
		"corroboration_count":    payload.NewCorroborationCount,
		"last_confirmed_active": ev.Ts.Format(timeLayout),
	}, nil)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applyFreshnessConfirmed(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.FreshnessConfirmed](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.SetFields(signalLabel, "id", payload.SignalID, map[string]any{
		"last_confirmed_active": payload.ConfirmedAt.Format(timeLayout),
	}, nil)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applyCitation(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.CitationRecorded](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	// Citation identity is (signal_id, source_url); MERGE on a composite
	// key by using a deterministic synthetic key rather than two MERGE
	// predicates, which Cypher's MERGE does not support directly.
	compositeKey := payload.SignalID + "|" + payload.SourceURL
	mergeCypher, err := b.MergeNode("Citation", "composite_key", compositeKey, map[string]any{
		"id":           payload.CitationID,
		"signal_id":    payload.SignalID,
		"source_url":   payload.SourceURL,
		"retrieved_at": payload.RetrievedAt.Format(timeLayout),
		"content_hash": payload.ContentHash,
		"snippet":      payload.Snippet,
		"channel_type": string(payload.ChannelType),
	})
	if err != nil {
		return err
	}
	if _, err := p.backend.RunWrite(ctx, mergeCypher, b.Params()); err != nil {
		return err
	}

	edgeBuilder := NewCypherBuilder()
	edgeCypher, err := edgeBuilder.MergeEdge(
		signalLabel, "id", payload.SignalID,
		"Citation", "composite_key", compositeKey,
		string(EdgeSourcedFrom), nil,
	)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, edgeCypher, edgeBuilder.Params())
	return err
}

// applySubmissionReceived creates the Submission node and links it to the
// Source its canonical_key resolves to. The Source end of the edge is
// MERGEd by canonical_key, so the link holds even when the paired
// source_registered event (discovery_method=human_submission) is applied
// later: applySourceRegistered's MERGE on the same key then fills in that
// node's properties, which makes the pairing ordering-independent.
func (p *Projector) applySubmissionReceived(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SubmissionReceived](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	mergeCypher, err := b.MergeNode("Submission", "id", payload.SubmissionID, map[string]any{
		"url":                  payload.URL,
		"reason":               payload.Reason,
		"source_canonical_key": payload.SourceCanonicalKey,
		"received_at":          ev.Ts.Format(timeLayout),
	})
	if err != nil {
		return err
	}
	if _, err := p.backend.RunWrite(ctx, mergeCypher, b.Params()); err != nil {
		return err
	}

	edgeBuilder := NewCypherBuilder()
	edgeCypher := fmt.Sprintf(
		"MATCH (a:Submission {id: %s}) MERGE (b:Source {canonical_key: %s}) MERGE (a)-[r:%s]->(b) RETURN r",
		edgeBuilder.Param(payload.SubmissionID), edgeBuilder.Param(payload.SourceCanonicalKey), EdgeSubmittedFor,
	)
	_, err = p.backend.RunWrite(ctx, edgeCypher, edgeBuilder.Params())
	return err
}

func (p *Projector) applySourceRegistered(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SourceRegistered](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.MergeNode("Source", "canonical_key", payload.CanonicalKey, map[string]any{
		"url":              payload.URL,
		"canonical_value":  payload.CanonicalValue,
		"source_type":      payload.SourceType,
		"discovery_method": string(payload.DiscoveryMethod),
		"weight":           payload.Weight,
		"quality_penalty":  1.0,
		"scrape_count":     0,
		"consecutive_empty_runs": 0,
		"signals_produced": 0,
		"active":           true,
	})
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applySourceChanged(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SourceChanged](ev)
	if err != nil {
		return err
	}
	for _, c := range payload.Changes {
		b := NewCypherBuilder()
		cypher, err := b.SetFields("Source", "canonical_key", payload.CanonicalKey,
			map[string]any{c.Field: c.NewValue}, allowedSourceFields)
		if err != nil {
			p.logger.Warn("projector: rejected source correction", "field", c.Field, "error", err)
			continue
		}
		if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) applySourceDeactivated(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SourceDeactivated](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.SetFields("Source", "canonical_key", payload.CanonicalKey, map[string]any{"active": false}, nil)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applySourceScrapeRecorded(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SourceScrapeRecorded](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.SetFields("Source", "canonical_key", payload.CanonicalKey, map[string]any{
		"signals_produced":       payload.SignalsProduced,
		"scrape_count":           payload.ScrapeCount,
		"consecutive_empty_runs": payload.ConsecutiveEmptyRuns,
		"last_scraped":           payload.ScrapedAt.Format(timeLayout),
	}, nil)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

// applyLifecycleRemoval handles both entity_expired and entity_purged: the
// projector DETACH DELETEs the node and, for a signal, its owned citations
// (citations are owned by exactly one signal, so they are matched through
// SOURCED_FROM and deleted in their own statement before the signal).
func (p *Projector) applyLifecycleRemoval(ctx context.Context, ev eventstore.StoredEvent) error {
	var entityID, kind string
	if ev.Type == eventstore.EventEntityExpired {
		payload, err := decode[eventstore.EntityExpired](ev)
		if err != nil {
			return err
		}
		entityID, kind = payload.EntityID, payload.EntityKind
	} else {
		payload, err := decode[eventstore.EntityPurged](ev)
		if err != nil {
			return err
		}
		entityID, kind = payload.EntityID, payload.EntityKind
	}

	label := signalLabel
	key := "id"
	switch kind {
	case "story":
		label = "Story"
	case "situation":
		label = "Situation"
	}

	if label == signalLabel {
		// Detach-delete owned citations first, then the signal itself.
		cb := NewCypherBuilder()
		citationCypher := fmt.Sprintf(
			"MATCH (s:%s {id: %s})-[:%s]->(c:Citation) DETACH DELETE c",
			signalLabel, cb.Param(entityID), EdgeSourcedFrom,
		)
		if _, err := p.backend.RunWrite(ctx, citationCypher, cb.Params()); err != nil {
			return err
		}
	}

	b := NewCypherBuilder()
	cypher, err := b.DetachDelete(label, key, entityID)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applySituationIdentified(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SituationIdentified](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.MergeNode("Situation", "id", payload.SituationID, map[string]any{
		"headline":            payload.Headline,
		"lede":                payload.Lede,
		"arc":                 payload.Arc,
		"sensitivity":         string(payload.Sensitivity),
		"structured_state":    payload.StructuredState,
		"signal_count":        len(payload.SignalIDs),
		"narrative_embedding": toFloat64Slice(payload.NarrativeEmbedding),
		"causal_embedding":    toFloat64Slice(payload.CausalEmbedding),
	})
	if err != nil {
		return err
	}
	if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
		return err
	}
	return p.linkSignalsToSituation(ctx, payload.SituationID, payload.SignalIDs)
}

func (p *Projector) applySituationChanged(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.SituationChanged](ev)
	if err != nil {
		return err
	}
	for _, c := range payload.Changes {
		b := NewCypherBuilder()
		cypher, err := b.SetFields("Situation", "id", payload.SituationID, map[string]any{c.Field: c.NewValue}, allowedSituationFields)
		if err != nil {
			p.logger.Warn("projector: rejected situation correction", "field", c.Field, "error", err)
			continue
		}
		if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
			return err
		}
	}
	if len(payload.AddedSignalIDs) > 0 {
		if err := p.linkSignalsToSituation(ctx, payload.SituationID, payload.AddedSignalIDs); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) linkSignalsToSituation(ctx context.Context, situationID string, signalIDs []string) error {
	for _, sid := range signalIDs {
		b := NewCypherBuilder()
		cypher, err := b.MergeEdge(signalLabel, "id", sid, "Situation", "id", situationID, string(EdgePartOf), nil)
		if err != nil {
			return err
		}
		if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) applyDispatchCreated(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.DispatchCreated](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.MergeNode("Dispatch", "id", payload.DispatchID, map[string]any{
		"situation_id":     payload.SituationID,
		"body":             payload.Body,
		"invalid_citation": payload.InvalidCitation,
		"flag_reasons":     payload.FlagReasons,
		"created_at":       payload.CreatedAt.Format(timeLayout),
	})
	if err != nil {
		return err
	}
	if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
		return err
	}
	for _, sid := range payload.CitedSignalIDs {
		eb := NewCypherBuilder()
		edgeCypher, err := eb.MergeEdge("Dispatch", "id", payload.DispatchID, signalLabel, "id", sid, string(EdgeCites), nil)
		if err != nil {
			return err
		}
		if _, err := p.backend.RunWrite(ctx, edgeCypher, eb.Params()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) applyStoryMaterialized(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.StoryMaterialized](ev)
	if err != nil {
		return err
	}
	props := map[string]any{
		"headline":           payload.Headline,
		"central_tension_id": payload.CentralTensionID,
		"sensitivity":        string(payload.Sensitivity),
		"status":            payload.Status,
		"signal_count":      len(payload.SignalIDs),
		"type_diversity":    payload.TypeDiversity,
		"entity_count":      payload.EntityCount,
		"needs_refinement":  payload.NeedsRefinement,
		"synthesis_pending": true,
	}
	if payload.Centroid != nil {
		if payload.Centroid.Lat != nil {
			props["centroid_lat"] = *payload.Centroid.Lat
		}
		if payload.Centroid.Lng != nil {
			props["centroid_lng"] = *payload.Centroid.Lng
		}
	}
	b := NewCypherBuilder()
	cypher, err := b.MergeNode("Story", "id", payload.StoryID, props)
	if err != nil {
		return err
	}
	if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
		return err
	}
	return p.linkSignalsToStory(ctx, payload.StoryID, payload.SignalIDs)
}

func (p *Projector) applyStoryChanged(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.StoryChanged](ev)
	if err != nil {
		return err
	}
	for _, c := range payload.Changes {
		b := NewCypherBuilder()
		cypher, err := b.SetFields("Story", "id", payload.StoryID, map[string]any{c.Field: c.NewValue}, allowedStoryFields)
		if err != nil {
			p.logger.Warn("projector: rejected story correction", "field", c.Field, "error", err)
			continue
		}
		if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
			return err
		}
	}
	if len(payload.AddedSignalIDs) > 0 {
		if err := p.linkSignalsToStory(ctx, payload.StoryID, payload.AddedSignalIDs); err != nil {
			return err
		}
	}
	return nil
}

// linkSignalsToStory wires Story-[:CONTAINS]->Signal, matching
// graph.Reader.StoryWithSignals's traversal direction.
func (p *Projector) linkSignalsToStory(ctx context.Context, storyID string, signalIDs []string) error {
	for _, sid := range signalIDs {
		b := NewCypherBuilder()
		cypher, err := b.MergeEdge("Story", "id", storyID, signalLabel, "id", sid, string(EdgeContains), nil)
		if err != nil {
			return err
		}
		if _, err := p.backend.RunWrite(ctx, cypher, b.Params()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) applyActorIdentified(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.ActorIdentified](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.MergeNode("Actor", "id", payload.ActorID, map[string]any{
		"name":        payload.Name,
		"actor_type":  payload.ActorType,
		"domains":     payload.Domains,
		"social_urls": payload.SocialURLs,
		"description": payload.Description,
		"bio":         payload.Bio,
	})
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applyActorLinked(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.ActorLinkedToEntity](ev)
	if err != nil {
		return err
	}
	b := NewCypherBuilder()
	cypher, err := b.MergeEdge("Actor", "id", payload.ActorID, signalLabel, "id", payload.EntityID,
		string(EdgeActedIn), map[string]any{"role": payload.Role})
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func (p *Projector) applyActorLocation(ctx context.Context, ev eventstore.StoredEvent) error {
	payload, err := decode[eventstore.ActorLocationIdentified](ev)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if payload.Location.Lat != nil {
		fields["lat"] = *payload.Location.Lat
	}
	if payload.Location.Lng != nil {
		fields["lng"] = *payload.Location.Lng
	}
	if len(fields) == 0 {
		return nil
	}
	b := NewCypherBuilder()
	cypher, err := b.SetFields("Actor", "id", payload.ActorID, fields, nil)
	if err != nil {
		return err
	}
	_, err = p.backend.RunWrite(ctx, cypher, b.Params())
	return err
}

func toFloat64Slice(f []float32) []float64 {
	if f == nil {
		return nil
	}
	out := make([]float64, len(f))
	for i, v := range f {
		out[i] = float64(v)
	}
	return out
}
