// Package extract implements the Signal Extractor (C6): one LLM call per
// scraped page that turns markdown into zero or more typed signal proposals,
// per spec.md §4.5's ExtractionResponse contract.
package extract

import "time"

// SignalType is the discriminator the extractor's schema names signal_type.
type SignalType string

const (
	TypeGathering SignalType = "gathering"
	TypeAid       SignalType = "aid"
	TypeNeed      SignalType = "need"
	TypeNotice    SignalType = "notice"
	TypeTension   SignalType = "tension"
)

// Resource is one entry of a signal's resources list.
type Resource struct {
	Slug       string  `json:"slug" validate:"required"`
	Role       string  `json:"role" validate:"required,oneof=requires prefers offers"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	Context    string  `json:"context,omitempty"`
}

// Signal is one row of an ExtractionResponse, the abridged schema in
// spec.md §4.5. Fields only meaningful for some signal_type values are left
// zero-valued on the rest; the extractor never enforces per-type field
// presence beyond what validate tags below require of every row.
type Signal struct {
	SignalType  SignalType `json:"signal_type" validate:"required,oneof=gathering aid need notice tension"`
	Title       string     `json:"title" validate:"required"`
	Summary     string     `json:"summary" validate:"required"`
	Sensitivity string     `json:"sensitivity" validate:"required,oneof=general elevated sensitive"`
	Confidence  float64    `json:"confidence" validate:"gte=0,lte=1"`

	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	GeoPrecision string  `json:"geo_precision,omitempty" validate:"omitempty,oneof=exact neighborhood approximate"`
	LocationName string  `json:"location_name,omitempty"`

	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	ActionURL   string `json:"action_url,omitempty"`
	Organizer   string `json:"organizer,omitempty"`
	IsRecurring bool   `json:"is_recurring,omitempty"`

	Availability string `json:"availability,omitempty"`
	IsOngoing    bool   `json:"is_ongoing,omitempty"`

	Urgency string `json:"urgency,omitempty" validate:"omitempty,oneof=low medium high critical"`

	WhatNeeded string `json:"what_needed,omitempty"`
	Goal       string `json:"goal,omitempty"`

	Severity string `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`

	Category        string     `json:"category,omitempty"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	SourceAuthority string     `json:"source_authority,omitempty"`

	ContentDate *time.Time `json:"content_date,omitempty"`

	MentionedActors []string   `json:"mentioned_actors,omitempty"`
	AuthorActor     string     `json:"author_actor,omitempty"`
	WhatWouldHelp   string     `json:"what_would_help,omitempty"`
	ImpliedQueries  []string   `json:"implied_queries,omitempty" validate:"omitempty,max=3"`
	Resources       []Resource `json:"resources,omitempty" validate:"omitempty,dive"`
	Tags            []string   `json:"tags,omitempty"`

	// IsFirsthand gates emission: the extractor drops every row where this
	// is explicitly false. Schema-optional, so a nil pointer means the
	// model left it unset; treated as true (no evidence of otherwise).
	IsFirsthand *bool `json:"is_firsthand,omitempty"`
}

// isJunk matches spec.md §4.5's junk-title heuristic for pages that failed
// to load or render rather than genuinely having nothing to report.
func (s Signal) isJunk() bool {
	for _, phrase := range junkTitlePhrases {
		if containsFold(s.Title, phrase) {
			return true
		}
	}
	return false
}

var junkTitlePhrases = []string{
	"unable to extract",
	"page not found",
	"error loading",
}

// droppedFirsthand reports whether is_firsthand was explicitly set false.
func (s Signal) droppedFirsthand() bool {
	return s.IsFirsthand != nil && !*s.IsFirsthand
}

// Response is the full tool-call payload: zero or more Signal rows. An
// empty list is a valid, common result (most pages have nothing to report).
type Response struct {
	Signals []Signal `json:"signals"`
}
