package config

import "time"

// ScoutConfig tunes the Scout Pipeline (C7) scheduler and per-source
// processing, per spec.md §4.3 and §5.
type ScoutConfig struct {
	// SourceConcurrency bounds fan-out across sources within one run.
	SourceConcurrency int `yaml:"source_concurrency" validate:"min=1,max=32"`

	// ExplorationFraction is the share of a scheduling batch filled from
	// low-weight, long-unscraped sources by weighted random ("exploration").
	ExplorationFraction float64 `yaml:"exploration_fraction" validate:"gte=0,lte=1"`

	// BatchSize is how many due sources a single run schedules.
	BatchSize int `yaml:"batch_size" validate:"min=1"`

	// CorroborationThreshold is the minimum cosine similarity for
	// cross-source dedupe to treat a new extraction as corroborating an
	// existing signal rather than creating a new one.
	CorroborationThreshold float64 `yaml:"corroboration_threshold" validate:"gt=0,lte=1"`

	// ContentDateMaxAgeDays drops a discovered signal with no parseable
	// content_date older than this heuristic age.
	ContentDateMaxAgeDays int `yaml:"content_date_max_age_days" validate:"min=1"`

	// PoliteFetchInterval is the minimum spacing between fetches to the
	// same host, enforced by a per-host token bucket.
	PoliteFetchInterval time.Duration `yaml:"polite_fetch_interval" validate:"min=0"`

	// CircuitBreakerFailureThreshold trips a host's breaker after this many
	// consecutive fetch failures.
	CircuitBreakerFailureThreshold uint32 `yaml:"circuit_breaker_failure_threshold" validate:"min=1"`

	// LLMBudgetRequestsPerRun caps LLM calls (extraction + weave) per run;
	// on exhaustion downstream LLM-gated phases degrade per spec.md §5.
	LLMBudgetRequestsPerRun int `yaml:"llm_budget_requests_per_run" validate:"min=1"`
}

// DefaultScoutConfig returns the built-in scheduling defaults from
// spec.md §4.3/§5 ("4-8 recommended", "~10%", "0.85 default").
func DefaultScoutConfig() *ScoutConfig {
	return &ScoutConfig{
		SourceConcurrency:              6,
		ExplorationFraction:            0.10,
		BatchSize:                      25,
		CorroborationThreshold:         0.85,
		ContentDateMaxAgeDays:          365,
		PoliteFetchInterval:            2 * time.Second,
		CircuitBreakerFailureThreshold: 5,
		LLMBudgetRequestsPerRun:        200,
	}
}

// LinkPromoterConfig tunes the Link Promoter (C8), per spec.md §4.4.
type LinkPromoterConfig struct {
	MaxPerReferringSource int             `yaml:"max_per_referring_source" validate:"min=1"`
	MaxPerRun             int             `yaml:"max_per_run" validate:"min=1"`
	BlockedSources        []BlockedSource `yaml:"blocked_sources"`
}

// DefaultLinkPromoterConfig returns the spec.md §4.4 caps ("e.g. ≤10", "e.g. ≤50").
func DefaultLinkPromoterConfig() *LinkPromoterConfig {
	return &LinkPromoterConfig{MaxPerReferringSource: 10, MaxPerRun: 50}
}
