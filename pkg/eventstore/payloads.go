package eventstore

import "time"

// GeoPrecision describes how precisely a location was pinned.
type GeoPrecision string

const (
	GeoPrecisionExact        GeoPrecision = "exact"
	GeoPrecisionNeighborhood GeoPrecision = "neighborhood"
	GeoPrecisionApproximate  GeoPrecision = "approximate"
)

// Sensitivity classifies how carefully a signal should be handled.
type Sensitivity string

const (
	SensitivityGeneral   Sensitivity = "general"
	SensitivityElevated  Sensitivity = "elevated"
	SensitivitySensitive Sensitivity = "sensitive"
)

// ChannelType is the evidence channel a citation came through.
type ChannelType string

const (
	ChannelPress        ChannelType = "press"
	ChannelSocial       ChannelType = "social"
	ChannelDirectAction ChannelType = "direct_action"
	ChannelCommunity    ChannelType = "community_media"
)

// DiscoveryMethod records how a Source entered the system.
type DiscoveryMethod string

const (
	DiscoverySignalReference DiscoveryMethod = "signal_reference"
	DiscoveryHumanSubmission DiscoveryMethod = "human_submission"
	DiscoveryBootstrap       DiscoveryMethod = "bootstrap"
)

// SourceRole classifies what a Source tends to produce.
type SourceRole string

const (
	SourceRoleTension SourceRole = "tension"
	SourceRoleResponse SourceRole = "response"
	SourceRoleMixed    SourceRole = "mixed"
)

// Location is a reusable position payload shared by every signal type.
type Location struct {
	Lat       *float64     `json:"lat,omitempty"`
	Lng       *float64     `json:"lng,omitempty"`
	Precision GeoPrecision `json:"precision,omitempty"`
	Name      string       `json:"name,omitempty"`
}

// Schedule is a reusable timing payload for gatherings.
type Schedule struct {
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	AllDay     bool       `json:"all_day,omitempty"`
	RRule      string     `json:"rrule,omitempty"`
	IsRecurring bool      `json:"is_recurring,omitempty"`
}

// ResourceRef is a signal's stance on a named resource.
type ResourceRef struct {
	Slug       string  `json:"slug"`
	Role       string  `json:"role"` // requires | prefers | offers
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

// SignalBase carries the fields common to every discovery event, mirroring
// the common "meta" every Node shape shares.
type SignalBase struct {
	SignalID         string        `json:"signal_id"`
	Title            string        `json:"title"`
	Summary          string        `json:"summary"`
	Sensitivity      Sensitivity   `json:"sensitivity"`
	Location         *Location     `json:"location,omitempty"`
	SourceURL        string        `json:"source_url"`
	ExtractedAt      time.Time     `json:"extracted_at"`
	ContentDate      *time.Time    `json:"content_date,omitempty"`
	ImpliedQueries   []string      `json:"implied_queries,omitempty"`
	MentionedActors  []string      `json:"mentioned_actors,omitempty"`
	AuthorActor      string        `json:"author_actor,omitempty"`
	Resources        []ResourceRef `json:"resources,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	Embedding        []float32     `json:"embedding,omitempty"`
}

// GatheringDiscovered is the payload of EventGatheringDiscovered.
type GatheringDiscovered struct {
	SignalBase
	Schedule  *Schedule `json:"schedule,omitempty"`
	Organizer string    `json:"organizer,omitempty"`
	ActionURL string    `json:"action_url,omitempty"`
}

// AidDiscovered is the payload of EventAidDiscovered.
type AidDiscovered struct {
	SignalBase
	Availability string `json:"availability,omitempty"`
	IsOngoing    bool   `json:"is_ongoing,omitempty"`
}

// NeedDiscovered is the payload of EventNeedDiscovered.
type NeedDiscovered struct {
	SignalBase
	Urgency     string `json:"urgency,omitempty"` // low|medium|high|critical
	WhatNeeded  string `json:"what_needed,omitempty"`
}

// NoticeDiscovered is the payload of EventNoticeDiscovered.
type NoticeDiscovered struct {
	SignalBase
	Category        string     `json:"category,omitempty"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	SourceAuthority string     `json:"source_authority,omitempty"`
}

// TensionDiscovered is the payload of EventTensionDiscovered.
type TensionDiscovered struct {
	SignalBase
	Severity       string `json:"severity,omitempty"` // low|medium|high|critical
	Goal           string `json:"goal,omitempty"`
	WhatWouldHelp  string `json:"what_would_help"`
}

// CitationRecorded is the payload of EventCitationRecorded.
type CitationRecorded struct {
	CitationID  string      `json:"citation_id"`
	SignalID    string      `json:"signal_id"`
	SourceURL   string      `json:"source_url"`
	RetrievedAt time.Time   `json:"retrieved_at"`
	ContentHash string      `json:"content_hash"`
	Snippet     string      `json:"snippet,omitempty"`
	ChannelType ChannelType `json:"channel_type"`
}

// ObservationCorroborated is the payload of EventObservationCorroborated.
type ObservationCorroborated struct {
	SignalID               string    `json:"signal_id"`
	NewCorroborationCount  int       `json:"new_corroboration_count"`
	ConfirmedAt            time.Time `json:"confirmed_at"`
}

// FreshnessConfirmed is the payload of EventFreshnessConfirmed.
type FreshnessConfirmed struct {
	SignalID    string    `json:"signal_id"`
	SourceURL   string    `json:"source_url"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// EntityExpired is the payload of EventEntityExpired.
type EntityExpired struct {
	EntityID   string `json:"entity_id"`
	EntityKind string `json:"entity_kind"` // signal|story|situation
	Reason     string `json:"reason"`
}

// EntityPurged is the payload of EventEntityPurged.
type EntityPurged struct {
	EntityID   string `json:"entity_id"`
	EntityKind string `json:"entity_kind"`
}

// Correction is a typed per-field mutation. Field is restricted to an
// allow-list of alphanumeric-plus-underscore names the projector validates
// before applying a SET; see pkg/graph's per-entity allow-lists.
type Correction struct {
	EntityID string `json:"entity_id"`
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// SignalRejected is the payload of EventSignalRejected.
type SignalRejected struct {
	SourceURL string `json:"source_url"`
	Title     string `json:"title,omitempty"`
	Reason    string `json:"reason"`
}

// SignalDroppedNoDate is the payload of EventSignalDroppedNoDate.
type SignalDroppedNoDate struct {
	SourceURL string `json:"source_url"`
	Title     string `json:"title"`
}

// SignalDeduplicated is the payload of EventSignalDeduplicated.
type SignalDeduplicated struct {
	SourceURL       string  `json:"source_url"`
	Title           string  `json:"title"`
	MatchedSignalID string  `json:"matched_signal_id"`
	Similarity      float64 `json:"similarity"`
}

// SituationIdentified is the payload of EventSituationIdentified.
type SituationIdentified struct {
	SituationID       string    `json:"situation_id"`
	Headline          string    `json:"headline"`
	Lede              string    `json:"lede,omitempty"`
	Arc               string    `json:"arc"`
	Sensitivity       Sensitivity `json:"sensitivity"`
	StructuredState   string    `json:"structured_state,omitempty"`
	SignalIDs         []string  `json:"signal_ids"`
	NarrativeEmbedding []float32 `json:"narrative_embedding,omitempty"`
	CausalEmbedding    []float32 `json:"causal_embedding,omitempty"`
	IdentifiedAt      time.Time `json:"identified_at"`
}

// SituationChanged is the payload of EventSituationChanged.
type SituationChanged struct {
	SituationID string       `json:"situation_id"`
	Changes     []Correction `json:"changes"`
	AddedSignalIDs []string  `json:"added_signal_ids,omitempty"`
	ChangedAt   time.Time   `json:"changed_at"`
}

// DispatchCreated is the payload of EventDispatchCreated.
type DispatchCreated struct {
	DispatchID      string   `json:"dispatch_id"`
	SituationID     string   `json:"situation_id"`
	Body            string   `json:"body"`
	CitedSignalIDs  []string `json:"cited_signal_ids"`
	InvalidCitation bool     `json:"invalid_citation,omitempty"`
	FlagReasons     []string `json:"flag_reasons,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// StoryMaterialized is the payload of EventStoryMaterialized, emitted when
// the materializer either creates a new Story from a tension hub or absorbs
// a hub into an existing one (AbsorbsStoryID set).
type StoryMaterialized struct {
	StoryID          string      `json:"story_id"`
	CentralTensionID string      `json:"central_tension_id"`
	Headline         string      `json:"headline"`
	Centroid         *Location   `json:"centroid,omitempty"`
	Sensitivity      Sensitivity `json:"sensitivity"`
	Status           string      `json:"status"` // emerging|echo|confirmed
	SignalIDs        []string    `json:"signal_ids"`
	TypeDiversity    int         `json:"type_diversity"`
	EntityCount      int         `json:"entity_count"`
	NeedsRefinement  bool        `json:"needs_refinement,omitempty"`
	AbsorbsStoryID   string      `json:"absorbs_story_id,omitempty"`
	MaterializedAt   time.Time   `json:"materialized_at"`
}

// StoryChanged is the payload of EventStoryChanged: a generic field patch
// plus optional newly-added signals, covering Grow, Enrich, Velocity/Energy,
// and archival, the same way SituationChanged covers every Situation patch.
type StoryChanged struct {
	StoryID        string       `json:"story_id"`
	Changes        []Correction `json:"changes"`
	AddedSignalIDs []string     `json:"added_signal_ids,omitempty"`
	ChangedAt      time.Time    `json:"changed_at"`
}

// ActorIdentified is the payload of EventActorIdentified.
type ActorIdentified struct {
	ActorID     string   `json:"actor_id"`
	Name        string   `json:"name"`
	ActorType   string   `json:"actor_type"`
	Domains     []string `json:"domains,omitempty"`
	SocialURLs  []string `json:"social_urls,omitempty"`
	Description string   `json:"description,omitempty"`
	Bio         string   `json:"bio,omitempty"`
}

// ActorLinkedToEntity is the payload of EventActorLinkedToEntity.
type ActorLinkedToEntity struct {
	ActorID  string `json:"actor_id"`
	EntityID string `json:"entity_id"`
	Role     string `json:"role"`
}

// ActorLocationIdentified is the payload of EventActorLocationIdentified.
type ActorLocationIdentified struct {
	ActorID  string    `json:"actor_id"`
	Location Location  `json:"location"`
}

// PinCreated is the payload of EventPinCreated.
type PinCreated struct {
	PinID    string `json:"pin_id"`
	EntityID string `json:"entity_id"`
	Note     string `json:"note,omitempty"`
}

// SubmissionReceived is the payload of EventSubmissionReceived.
type SubmissionReceived struct {
	SubmissionID    string `json:"submission_id"`
	URL             string `json:"url"`
	Reason          string `json:"reason,omitempty"`
	SourceCanonicalKey string `json:"source_canonical_key"`
}

// SourceRegistered is the payload of EventSourceRegistered.
type SourceRegistered struct {
	CanonicalKey    string          `json:"canonical_key"`
	URL             string          `json:"url,omitempty"`
	CanonicalValue  string          `json:"canonical_value"`
	SourceType      string          `json:"source_type"`
	DiscoveryMethod DiscoveryMethod `json:"discovery_method"`
	Weight          float64         `json:"weight"`
	ReferringSignalID string        `json:"referring_signal_id,omitempty"`
}

// SourceChanged is the payload of EventSourceChanged.
type SourceChanged struct {
	CanonicalKey string       `json:"canonical_key"`
	Changes      []Correction `json:"changes"`
}

// SourceDeactivated is the payload of EventSourceDeactivated.
type SourceDeactivated struct {
	CanonicalKey string `json:"canonical_key"`
	Reason       string `json:"reason"`
}

// SourceScrapeRecorded is the payload of EventSourceScrapeRecorded.
type SourceScrapeRecorded struct {
	CanonicalKey           string    `json:"canonical_key"`
	SignalsProduced        int       `json:"signals_produced"`
	ScrapeCount            int       `json:"scrape_count"`
	ConsecutiveEmptyRuns   int       `json:"consecutive_empty_runs"`
	ScrapedAt              time.Time `json:"scraped_at"`
	RunID                  string    `json:"run_id,omitempty"`
}

// DemandAggregated is the payload of EventDemandAggregated.
type DemandAggregated struct {
	StoryID   string  `json:"story_id"`
	AskCount  int     `json:"ask_count"`
	GiveCount int     `json:"give_count"`
	GapScore  float64 `json:"gap_score"`
}

// TagsAggregated, TagSuppressed, TagsMerged are the tag-maintenance events.
type TagsAggregated struct {
	EntityID string   `json:"entity_id"`
	Tags     []TagFact `json:"tags"`
}

type TagFact struct {
	Slug   string  `json:"slug"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type TagSuppressed struct {
	Slug   string `json:"slug"`
	Reason string `json:"reason"`
}

type TagsMerged struct {
	FromSlug string `json:"from_slug"`
	IntoSlug string `json:"into_slug"`
}
