package reap

import (
	"time"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/graph"
)

// expired reports whether signal s of kind should be reaped at now, per the
// per-kind policy in cfg.
func expired(kind graph.SignalKind, s map[string]any, cfg *config.ReapConfig, now time.Time) bool {
	switch kind {
	case graph.SignalGathering:
		return gatheringExpired(s, cfg, now)
	case graph.SignalNeed:
		return ageExceeds(s, "extracted_at", cfg.NeedMaxAgeDays, now)
	case graph.SignalNotice:
		return ageExceeds(s, "extracted_at", cfg.NoticeMaxAgeDays, now)
	case graph.SignalAid, graph.SignalTension:
		return freshnessExceeds(s, cfg.FreshnessMaxDays, now)
	default:
		return false
	}
}

// gatheringExpired uses ends_at if present, else starts_at, plus a grace
// window: a gathering is still current until that long after it ends (or,
// when no end is recorded, after it starts).
func gatheringExpired(s map[string]any, cfg *config.ReapConfig, now time.Time) bool {
	reference, ok := asTime(s["ends_at"])
	if !ok {
		reference, ok = asTime(s["starts_at"])
	}
	if !ok {
		return false
	}
	grace := time.Duration(cfg.GatheringGraceHours) * time.Hour
	return now.Sub(reference) > grace
}

func ageExceeds(s map[string]any, field string, maxDays int, now time.Time) bool {
	t, ok := asTime(s[field])
	if !ok {
		return false
	}
	return now.Sub(t) > time.Duration(maxDays)*24*time.Hour
}

// freshnessExceeds checks last_confirmed_active, falling back to
// extracted_at for signals never corroborated since extraction.
func freshnessExceeds(s map[string]any, maxDays int, now time.Time) bool {
	t, ok := asTime(s["last_confirmed_active"])
	if !ok {
		t, ok = asTime(s["extracted_at"])
	}
	if !ok {
		return false
	}
	return now.Sub(t) > time.Duration(maxDays)*24*time.Hour
}
