// Package graph implements the materialized property graph: the projector
// that is its sole writer, and the reader that serves every query in the
// external read API. The graph is never a source of truth — it is rebuilt
// from the event log by replay.
package graph

import (
	"time"

	"github.com/fourthplaces/rootsignal/pkg/eventstore"
)

// NodeType is the explicit discriminator carried on every node, both in its
// JSON wire form and in Go code paths that need to dispatch on shape. Go has
// no sum types, so the tagged-union discipline here is the discriminator
// field, never a type switch over reflection.
type NodeType string

const (
	NodeTypeSignal    NodeType = "signal"
	NodeTypeCitation  NodeType = "citation"
	NodeTypeSource    NodeType = "source"
	NodeTypeActor     NodeType = "actor"
	NodeTypeSituation NodeType = "situation"
	NodeTypeStory      NodeType = "story"
	NodeTypeTag        NodeType = "tag"
	NodeTypeSubmission NodeType = "submission"
)

// SignalKind is the sub-type of a Signal node (the five signal shapes share
// the Signal node label but differ in their type-specific fields).
type SignalKind string

const (
	SignalGathering SignalKind = "gathering"
	SignalAid       SignalKind = "aid"
	SignalNeed      SignalKind = "need"
	SignalNotice    SignalKind = "notice"
	SignalTension   SignalKind = "tension"
)

// ReviewStatus gates a signal's visibility to downstream materialization.
type ReviewStatus string

const (
	ReviewStaged   ReviewStatus = "staged"
	ReviewLive     ReviewStatus = "live"
	ReviewRejected ReviewStatus = "rejected"
)

// Node is implemented by every concrete node shape. NodeType() and NodeID()
// give the reader and API layer a uniform handle regardless of concrete type.
type Node interface {
	NodeType() NodeType
	NodeID() string
}

// Signal is the Gathering/Aid/Need/Notice/Tension node shape. Type-specific
// fields beyond the common ones are carried in the corresponding *Fields
// struct rather than separate node types, since the label and most fields
// (location, confidence, corroboration) are shared.
type Signal struct {
	ID                  string
	Kind                SignalKind
	Title               string
	Summary             string
	Sensitivity         eventstore.Sensitivity
	Confidence          float64
	CorroborationCount  int
	AboutLocation       *eventstore.Location
	FromLocation        *eventstore.Location
	SourceURL           string
	ExtractedAt         time.Time
	LastConfirmedActive time.Time
	ContentDate         *time.Time
	ImpliedQueries      []string
	ReviewStatus        ReviewStatus
	Embedding           []float32
	Tags                []string

	// Type-specific, set depending on Kind. Only the field(s) relevant to
	// Kind are populated.
	Gathering *GatheringFields
	Aid       *AidFields
	Need      *NeedFields
	Notice    *NoticeFields
	Tension   *TensionFields
}

func (s *Signal) NodeType() NodeType { return NodeTypeSignal }
func (s *Signal) NodeID() string     { return s.ID }

type GatheringFields struct {
	Schedule    *eventstore.Schedule
	Organizer   string
	ActionURL   string
}

type AidFields struct {
	Availability string
	IsOngoing    bool
}

type NeedFields struct {
	Urgency    string
	WhatNeeded string
}

type NoticeFields struct {
	Category        string
	EffectiveDate   *time.Time
	SourceAuthority string
}

type TensionFields struct {
	Severity      string
	Goal          string
	WhatWouldHelp string
	CauseHeat     float64
}

// Citation is owned by exactly one Signal; MERGE-idempotent on
// (signal_id, source_url).
type Citation struct {
	ID          string
	SignalID    string
	SourceURL   string
	RetrievedAt time.Time
	ContentHash string
	Snippet     string
	ChannelType eventstore.ChannelType
}

func (c *Citation) NodeType() NodeType { return NodeTypeCitation }
func (c *Citation) NodeID() string     { return c.ID }

// Source is keyed by CanonicalKey ("region:type:value"), not a UUID, so
// MERGE works without a prior read.
type Source struct {
	CanonicalKey         string
	URL                  string
	CanonicalValue       string
	SourceType           string
	DiscoveryMethod      eventstore.DiscoveryMethod
	Weight               float64
	QualityPenalty       float64
	CadenceHours         *float64
	LastScraped          *time.Time
	LastProducedSignal   *time.Time
	ScrapeCount          int
	ConsecutiveEmptyRuns int
	SignalsProduced      int
	SourceRole           eventstore.SourceRole
	Active               bool
}

func (s *Source) NodeType() NodeType { return NodeTypeSource }
func (s *Source) NodeID() string     { return s.CanonicalKey }

// EffectiveWeight is weight x quality_penalty, the scheduler's priority key.
func (s *Source) EffectiveWeight() float64 {
	return s.Weight * s.QualityPenalty
}

// Actor is keyed by a stable entity_id.
type Actor struct {
	ID          string
	Name        string
	ActorType   string
	Domains     []string
	SocialURLs  []string
	Description string
	Bio         string
	SignalCount int
	LastActive  *time.Time
	Location    *eventstore.Location
}

func (a *Actor) NodeType() NodeType { return NodeTypeActor }
func (a *Actor) NodeID() string     { return a.ID }

// Situation groups signals under a root-cause-plus-place narrative.
type Situation struct {
	ID                 string
	Headline            string
	Lede                string
	Arc                 string
	Temperature         float64
	Clarity             float64
	Centroid            *eventstore.Location
	StructuredState     string // opaque JSON, carried through unmodified
	SignalCount         int
	TensionCount        int
	Sensitivity         eventstore.Sensitivity
	NarrativeEmbedding  []float32
	CausalEmbedding     []float32
	Archived            bool
}

func (s *Situation) NodeType() NodeType { return NodeTypeSituation }
func (s *Situation) NodeID() string     { return s.ID }

// StoryStatus classifies a Story's current maturity.
type StoryStatus string

const (
	StoryEmerging  StoryStatus = "emerging"
	StoryEcho      StoryStatus = "echo"
	StoryConfirmed StoryStatus = "confirmed"
)

// Story is materialized from tension hubs, not written directly by the
// extractor; see pkg/materialize.
type Story struct {
	ID               string
	CentralTensionID string
	Headline         string
	Summary          string
	Lede             string
	Narrative        string
	Arc              string
	Category         string
	ActionGuidance   string
	Energy           float64
	Velocity         float64
	GapScore         float64
	GapVelocity      float64
	RecencyScore     float64
	SourceDiversity  float64
	Triangulation    float64
	Centroid         *eventstore.Location
	SignalCount      int
	TypeDiversity    int
	EntityCount      int
	AskCount         int
	GiveCount        int
	EntityCount7dAgo int
	AskCount7dAgo    int
	GiveCount7dAgo   int
	SourceDomains    []string
	Status           StoryStatus
	SynthesisPending bool
	NeedsRefinement  bool
	WasFading        bool
	LastUpdated      time.Time
	LastSnapshotAt   time.Time
	Archived         bool
}

func (s *Story) NodeType() NodeType { return NodeTypeStory }
func (s *Story) NodeID() string     { return s.ID }

// Tag is keyed globally by slug; weight lives on the TAGGED edge, not here.
type Tag struct {
	Slug string
	Name string
}

func (t *Tag) NodeType() NodeType { return NodeTypeTag }
func (t *Tag) NodeID() string     { return t.Slug }

// Submission is a user-proposed URL, kept as its own node (rather than
// folded into Source) so the submitter's URL/reason survive independently
// of whatever canonical Source the Link Promoter's canonicalize() resolves
// it to.
type Submission struct {
	ID                 string
	URL                string
	Reason             string
	SourceCanonicalKey string
	ReceivedAt         time.Time
}

func (s *Submission) NodeType() NodeType { return NodeTypeSubmission }
func (s *Submission) NodeID() string     { return s.ID }

// Edge labels, kept as typed constants so callers never hand-type a string
// that could drift from the schema.
type EdgeLabel string

const (
	EdgeSourcedFrom EdgeLabel = "SOURCED_FROM"
	EdgePartOf      EdgeLabel = "PART_OF"
	EdgeContains    EdgeLabel = "CONTAINS"
	EdgeRespondsTo  EdgeLabel = "RESPONDS_TO"
	EdgeDrawnTo     EdgeLabel = "DRAWN_TO"
	EdgeActedIn     EdgeLabel = "ACTED_IN"
	EdgeHasSource   EdgeLabel = "HAS_SOURCE"
	EdgeProducedBy  EdgeLabel = "PRODUCED_BY"
	EdgeCites       EdgeLabel = "CITES"
	EdgeTagged      EdgeLabel = "TAGGED"
	EdgeRequires    EdgeLabel = "REQUIRES"
	EdgePrefers     EdgeLabel = "PREFERS"
	EdgeOffers      EdgeLabel = "OFFERS"
	EdgeSimilarTo   EdgeLabel = "SIMILAR_TO"
	EdgeSubmittedFor EdgeLabel = "SUBMITTED_FOR"
	EdgeEvolvedFrom EdgeLabel = "EVOLVED_FROM"
)
