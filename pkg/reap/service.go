// Package reap implements the Reaper: a ticker loop that sweeps every
// signal kind for its own expiry policy and emits entity_expired events for
// whatever has gone stale, generalized from the teacher's session-and-event
// retention sweep to RootSignal's per-signal-kind retention policy.
package reap

import (
	"context"
	"log/slog"
	"time"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/metrics"
)

// sweptKinds is the fixed sweep order; stable across runs so log output
// reads the same way every tick.
var sweptKinds = []graph.SignalKind{
	graph.SignalGathering,
	graph.SignalNeed,
	graph.SignalNotice,
	graph.SignalAid,
	graph.SignalTension,
}

// appender is the narrow slice of *eventstore.Store the reaper needs;
// narrowed to an interface so tests can exercise the sweep loop without a
// live Postgres, the same technique graph.EventSource uses for replay.
type appender interface {
	Append(ctx context.Context, ev eventstore.Event) (eventstore.StoredEvent, error)
}

// Service periodically sweeps every signal kind for expiry and appends an
// entity_expired event for each stale signal, which the projector then
// detach-deletes from the graph on apply. All sweeps are idempotent and
// safe to run from multiple pods: a signal already removed by another pod's
// sweep simply does not show up in the next SignalsByKind read.
type Service struct {
	reader    *graph.Reader
	projector *graph.Projector
	store     appender
	config    *config.ReapConfig
	logger    *slog.Logger
	now       func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new reaper service.
func NewService(reader *graph.Reader, projector *graph.Projector, store *eventstore.Store, cfg *config.ReapConfig, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = config.DefaultReapConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reader:    reader,
		projector: projector,
		store:     store,
		config:    cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the background reap loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	s.logger.Info("reaper started",
		"gathering_grace_hours", s.config.GatheringGraceHours,
		"need_max_age_days", s.config.NeedMaxAgeDays,
		"notice_max_age_days", s.config.NoticeMaxAgeDays,
		"freshness_max_days", s.config.FreshnessMaxDays,
		"interval", s.config.SweepInterval)
}

// Stop signals the reap loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.logger.Info("reaper stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(ctx context.Context) {
	total := 0
	for _, kind := range sweptKinds {
		n, err := s.sweepKind(ctx, kind)
		if err != nil {
			s.logger.Error("reap: sweep failed", "kind", kind, "error", err)
			continue
		}
		total += n
	}
	if total > 0 {
		metrics.ReapEntitiesExpiredTotal.Add(float64(total))
		s.logger.Info("reap: swept expired signals", "count", total)
	}
}

func (s *Service) sweepKind(ctx context.Context, kind graph.SignalKind) (int, error) {
	signals, err := s.reader.SignalsByKind(ctx, kind)
	if err != nil {
		return 0, err
	}

	now := s.now()
	count := 0
	for _, sig := range signals {
		if !expired(kind, sig, s.config, now) {
			continue
		}
		if err := s.expire(ctx, asString(sig["id"]), string(kind)); err != nil {
			s.logger.Error("reap: expire failed", "signal_id", sig["id"], "kind", kind, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func (s *Service) expire(ctx context.Context, entityID, kind string) error {
	payload := eventstore.EntityExpired{
		EntityID:   entityID,
		EntityKind: "signal",
		Reason:     "retention_policy: " + kind,
	}
	ev, err := eventstore.NewEvent(eventstore.EventEntityExpired, payload, "", "reaper")
	if err != nil {
		return err
	}
	stored, err := s.store.Append(ctx, ev)
	if err != nil {
		return err
	}
	return s.projector.Apply(ctx, stored)
}
