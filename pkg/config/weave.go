package config

// WeaveConfig tunes the Situation Weaver (C9) retrieval thresholds, per
// spec.md §4.6.
type WeaveConfig struct {
	// CandidateThreshold is the minimum cos(signal_emb, situation_emb)
	// needed to consider a Situation a weave candidate.
	CandidateThreshold float64 `yaml:"candidate_threshold" validate:"gt=0,lte=1"`

	// ColdArcNarrativeThreshold / ColdArcCausalThreshold tighten the match
	// when the top candidate's arc is "cold".
	ColdArcNarrativeThreshold float64 `yaml:"cold_arc_narrative_threshold" validate:"gt=0,lte=1"`
	ColdArcCausalThreshold    float64 `yaml:"cold_arc_causal_threshold" validate:"gt=0,lte=1"`

	// WideNetCauseHeatMin / WideNetThreshold implement the "wide net" rule:
	// if no candidate passes but cause_heat is high enough, loosen the bar
	// for "developing" arc candidates.
	WideNetCauseHeatMin float64 `yaml:"wide_net_cause_heat_min" validate:"gte=0,lte=1"`
	WideNetThreshold    float64 `yaml:"wide_net_threshold" validate:"gt=0,lte=1"`

	// BatchSize is how many new signals are sent to the LLM weave call together.
	BatchSize int `yaml:"batch_size" validate:"min=1"`
}

// DefaultWeaveConfig returns the built-in thresholds from spec.md §4.6
// ("0.60", "tighter thresholds (0.75/0.80)", "cause_heat ≥ 0.5 ... 0.45", "~5").
func DefaultWeaveConfig() *WeaveConfig {
	return &WeaveConfig{
		CandidateThreshold:        0.60,
		ColdArcNarrativeThreshold: 0.75,
		ColdArcCausalThreshold:    0.80,
		WideNetCauseHeatMin:       0.50,
		WideNetThreshold:          0.45,
		BatchSize:                 5,
	}
}

// MaterializeConfig tunes the Story Materializer (C10), per spec.md §4.7.
type MaterializeConfig struct {
	// MinRespondents is how many distinct-domain respondents a Tension
	// needs to become (or grow) a Story hub.
	MinRespondents int `yaml:"min_respondents" validate:"min=1"`

	// AbsorptionOverlapFraction is the minimum respondent-id overlap with
	// an existing Story's signal set for a hub to be absorbed rather than
	// create a new Story.
	AbsorptionOverlapFraction float64 `yaml:"absorption_overlap_fraction" validate:"gt=0,lte=1"`

	// HubFlagThreshold flags a hub needs_refinement once it has this many
	// respondents.
	HubFlagThreshold int `yaml:"hub_flag_threshold" validate:"min=1"`

	// EchoSignalCount is the signal_count threshold for the "echo" status
	// rule (signal_count ≥ N ∧ type_diversity = 1).
	EchoSignalCount int `yaml:"echo_signal_count" validate:"min=1"`

	// ArchiveAfterDays archives a non-archived Story once
	// now - last_updated exceeds this and velocity ≤ 0.
	ArchiveAfterDays int `yaml:"archive_after_days" validate:"min=1"`
}

// DefaultMaterializeConfig returns the built-in thresholds from spec.md §4.7
// ("≥2 distinct-domain", "overlaps ≥50%", "≥30 respondents", "signal_count ≥ 5", "30 days").
func DefaultMaterializeConfig() *MaterializeConfig {
	return &MaterializeConfig{
		MinRespondents:            2,
		AbsorptionOverlapFraction: 0.50,
		HubFlagThreshold:          30,
		EchoSignalCount:           5,
		ArchiveAfterDays:          30,
	}
}
