package config

import "time"

// ReapConfig controls the Reaper's (C11) per-signal-type expiry policy, per
// spec.md §4.8.
type ReapConfig struct {
	// GatheringGraceHours is how long after a Gathering's starts_at (or
	// ends_at, if present) it is still considered current.
	GatheringGraceHours int `yaml:"gathering_grace_hours" validate:"min=0"`

	// NeedMaxAgeDays expires Needs older than this many days.
	NeedMaxAgeDays int `yaml:"need_max_age_days" validate:"min=1"`

	// NoticeMaxAgeDays expires Notices older than this many days.
	NoticeMaxAgeDays int `yaml:"notice_max_age_days" validate:"min=1"`

	// FreshnessMaxDays expires Aid/Tension signals whose
	// last_confirmed_active is older than this many days.
	FreshnessMaxDays int `yaml:"freshness_max_days" validate:"min=1"`

	// SweepInterval is how often the reaper ticks.
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"min=1m"`
}

// DefaultReapConfig returns the built-in reaper policy from spec.md §4.8.
func DefaultReapConfig() *ReapConfig {
	return &ReapConfig{
		GatheringGraceHours: 6,
		NeedMaxAgeDays:      30,
		NoticeMaxAgeDays:    60,
		FreshnessMaxDays:    90,
		SweepInterval:       1 * time.Hour,
	}
}
