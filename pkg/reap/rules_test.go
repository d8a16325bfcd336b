package reap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/graph"
)

var testNow = time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

func TestGatheringExpiredPastGraceWindow(t *testing.T) {
	cfg := &config.ReapConfig{GatheringGraceHours: 6}
	s := map[string]any{"starts_at": "2026-07-29T12:00:00Z"}
	assert.True(t, expired(graph.SignalGathering, s, cfg, testNow))
}

func TestGatheringNotYetExpiredWithinGrace(t *testing.T) {
	cfg := &config.ReapConfig{GatheringGraceHours: 6}
	s := map[string]any{"starts_at": "2026-07-29T20:00:00Z"}
	assert.False(t, expired(graph.SignalGathering, s, cfg, testNow))
}

func TestGatheringPrefersEndsAtOverStartsAt(t *testing.T) {
	cfg := &config.ReapConfig{GatheringGraceHours: 6}
	s := map[string]any{
		"starts_at": "2026-07-20T00:00:00Z",
		"ends_at":   "2026-07-29T20:00:00Z",
	}
	assert.False(t, expired(graph.SignalGathering, s, cfg, testNow))
}

func TestNeedExpiredPastMaxAge(t *testing.T) {
	cfg := &config.ReapConfig{NeedMaxAgeDays: 30}
	s := map[string]any{"extracted_at": "2026-06-01T00:00:00Z"}
	assert.True(t, expired(graph.SignalNeed, s, cfg, testNow))
}

func TestNeedNotExpiredWithinMaxAge(t *testing.T) {
	cfg := &config.ReapConfig{NeedMaxAgeDays: 30}
	s := map[string]any{"extracted_at": "2026-07-20T00:00:00Z"}
	assert.False(t, expired(graph.SignalNeed, s, cfg, testNow))
}

func TestNoticeExpiredPastMaxAge(t *testing.T) {
	cfg := &config.ReapConfig{NoticeMaxAgeDays: 60}
	s := map[string]any{"extracted_at": "2026-01-01T00:00:00Z"}
	assert.True(t, expired(graph.SignalNotice, s, cfg, testNow))
}

func TestAidUsesLastConfirmedActive(t *testing.T) {
	cfg := &config.ReapConfig{FreshnessMaxDays: 90}
	s := map[string]any{
		"extracted_at":           "2026-01-01T00:00:00Z",
		"last_confirmed_active": "2026-07-29T00:00:00Z",
	}
	assert.False(t, expired(graph.SignalAid, s, cfg, testNow))
}

func TestTensionFallsBackToExtractedAtWithoutConfirmation(t *testing.T) {
	cfg := &config.ReapConfig{FreshnessMaxDays: 90}
	s := map[string]any{"extracted_at": "2026-01-01T00:00:00Z"}
	assert.True(t, expired(graph.SignalTension, s, cfg, testNow))
}

func TestMissingTimestampNeverExpires(t *testing.T) {
	cfg := config.DefaultReapConfig()
	assert.False(t, expired(graph.SignalNeed, map[string]any{}, cfg, testNow))
}
