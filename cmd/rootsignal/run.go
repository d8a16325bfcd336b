package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/metrics"
	"github.com/fourthplaces/rootsignal/pkg/notify"
	"github.com/fourthplaces/rootsignal/pkg/promote"
	"github.com/fourthplaces/rootsignal/pkg/scout"
)

var (
	scoutInterval       time.Duration
	weaveInterval       time.Duration
	materializeInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the RootSignal daemon",
	RunE:  runDaemon,
}

func init() {
	runCmd.Flags().DurationVar(&scoutInterval, "scout-interval", 5*time.Minute, "how often the Scout Pipeline runs, per scope")
	runCmd.Flags().DurationVar(&weaveInterval, "weave-interval", 2*time.Minute, "how often the Situation Weaver runs")
	runCmd.Flags().DurationVar(&materializeInterval, "materialize-interval", 10*time.Minute, "how often the Story Materializer runs")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, v.GetString("config-dir"))
	if err != nil {
		return err
	}

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close(context.Background())

	if err := bootstrapSources(ctx, d); err != nil {
		slog.Error("bootstrap sources failed", "error", err)
	}

	d.reaper.Start(ctx)
	defer d.reaper.Stop()

	go runAPI(d)
	go scoutLoop(ctx, d)
	go weaveLoop(ctx, d)
	go materializeLoop(ctx, d)

	slog.Info("rootsignal daemon started",
		"scout_interval", scoutInterval, "weave_interval", weaveInterval, "materialize_interval", materializeInterval,
		"api_addr", cfg.API.ListenAddr)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.api.Shutdown(shutdownCtx)
}

func runAPI(d *deps) {
	if err := d.api.Start(d.cfg.API.ListenAddr); err != nil {
		slog.Error("api server stopped", "error", err)
	}
}

// bootstrapSources registers every operator-seeded Source once per
// configured Scope (config.SourceSeed carries no region of its own, so a
// seed is treated as relevant to every scope the operator is observing).
// MERGE semantics in applySourceRegistered make repeat bootstraps on
// restart idempotent.
func bootstrapSources(ctx context.Context, d *deps) error {
	if len(d.cfg.Sources) == 0 {
		return nil
	}
	links := make([]promote.ProposedLink, 0, len(d.cfg.Sources))
	for _, seed := range d.cfg.Sources {
		links = append(links, promote.ProposedLink{URL: seed.URL})
	}
	for _, scope := range d.cfg.Scopes {
		registered := d.promoter.Promote(scope.Name, links, eventstore.DiscoveryBootstrap)
		for _, src := range registered {
			ev, err := eventstore.NewEvent(eventstore.EventSourceRegistered, src, "", "bootstrap")
			if err != nil {
				return err
			}
			stored, err := d.store.Append(ctx, ev)
			if err != nil {
				return err
			}
			if err := d.proj.Apply(ctx, stored); err != nil {
				return err
			}
		}
	}
	return nil
}

func scoutLoop(ctx context.Context, d *deps) {
	ticker := time.NewTicker(scoutInterval)
	defer ticker.Stop()
	for {
		for _, scope := range d.cfg.Scopes {
			runScoutOnce(ctx, d, scope.Name)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runScoutOnce(ctx context.Context, d *deps, region string) {
	start := time.Now()
	result, err := d.scout.Run(ctx, region)
	metrics.ScoutRunDuration.WithLabelValues(region).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScoutRunsTotal.WithLabelValues(region, "error").Inc()
		slog.Error("scout run failed", "region", region, "error", err)
		return
	}
	metrics.ScoutRunsTotal.WithLabelValues(region, "ok").Inc()
	metrics.ScoutSourcesProcessed.WithLabelValues(region).Set(float64(result.SourcesRun))
	metrics.ScoutSignalsDiscoveredTotal.WithLabelValues(region).Add(float64(len(result.Discovered)))

	if err := appendAndProjectScoutResult(ctx, d, result); err != nil {
		slog.Error("scout result append/project failed", "region", region, "error", err)
	}
}

func appendAndProjectScoutResult(ctx context.Context, d *deps, result scout.Result) error {
	appendEvent := func(eventType eventstore.EventType, payload any) error {
		ev, err := eventstore.NewEvent(eventType, payload, "", "scout")
		if err != nil {
			return err
		}
		return appendAndProject(ctx, d, ev)
	}

	for _, sig := range result.Discovered {
		if err := appendEvent(sig.EventType, sig.Payload); err != nil {
			return err
		}
	}
	d.pushPending(candidateSignalsFromDiscovered(result.Discovered))

	for _, c := range result.Citations {
		if err := appendEvent(eventstore.EventCitationRecorded, c); err != nil {
			return err
		}
	}
	for _, c := range result.Corroborated {
		if err := appendEvent(eventstore.EventObservationCorroborated, c); err != nil {
			return err
		}
	}
	for _, f := range result.Freshness {
		if err := appendEvent(eventstore.EventFreshnessConfirmed, f); err != nil {
			return err
		}
	}
	for _, r := range result.Rejected {
		if err := appendEvent(eventstore.EventSignalRejected, r); err != nil {
			return err
		}
	}
	for _, dropped := range result.DroppedNoDate {
		if err := appendEvent(eventstore.EventSignalDroppedNoDate, dropped); err != nil {
			return err
		}
	}
	for _, dd := range result.Deduplicated {
		if err := appendEvent(eventstore.EventSignalDeduplicated, dd); err != nil {
			return err
		}
	}
	for _, sr := range result.ScrapeRecords {
		if err := appendEvent(eventstore.EventSourceScrapeRecorded, sr); err != nil {
			return err
		}
	}
	for _, src := range result.SourcesProposed {
		if err := appendEvent(eventstore.EventSourceRegistered, src); err != nil {
			return err
		}
	}
	return nil
}

func weaveLoop(ctx context.Context, d *deps) {
	ticker := time.NewTicker(weaveInterval)
	defer ticker.Stop()
	for {
		runWeaveOnce(ctx, d)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runWeaveOnce hands the Situation Weaver every signal discovered since the
// last weave tick (queued by appendAndProjectScoutResult across every scope's
// scout runs), plus every active Situation as the retrieval pool.
func runWeaveOnce(ctx context.Context, d *deps) {
	candidates := d.drainPending()
	if len(candidates) == 0 {
		return
	}

	situationRows, err := d.reader.ActiveSituations(ctx)
	if err != nil {
		metrics.WeaveRunsTotal.WithLabelValues("error").Inc()
		slog.Error("weave: list active situations failed", "error", err)
		return
	}
	situations := situationCandidatesFromRows(situationRows)
	headlines := make(map[string]string, len(situations))
	for _, s := range situations {
		headlines[s.ID] = s.Headline
	}

	result, err := d.weaver.Weave(ctx, candidates, situations)
	if err != nil {
		metrics.WeaveRunsTotal.WithLabelValues("error").Inc()
		slog.Error("weave run failed", "error", err)
		return
	}
	metrics.WeaveRunsTotal.WithLabelValues("ok").Inc()

	for _, identified := range result.Identified {
		headlines[identified.SituationID] = identified.Headline
		if err := appendAndProject(ctx, d, mustEventOrLog(eventstore.EventSituationIdentified, identified)); err != nil {
			slog.Error("append situation_identified failed", "error", err)
		}
	}
	for _, changed := range result.Changed {
		if err := appendAndProject(ctx, d, mustEventOrLog(eventstore.EventSituationChanged, changed)); err != nil {
			slog.Error("append situation_changed failed", "error", err)
		}
	}
	for _, dispatch := range result.Dispatches {
		if err := appendAndProject(ctx, d, mustEventOrLog(eventstore.EventDispatchCreated, dispatch)); err != nil {
			slog.Error("append dispatch_created failed", "error", err)
			continue
		}
	}
	notifyDispatches(ctx, d.notifier, d.dashboardURL, result.Dispatches, headlines)
}

func mustEventOrLog(eventType eventstore.EventType, payload any) eventstore.Event {
	ev, err := eventstore.NewEvent(eventType, payload, "", "weaver")
	if err != nil {
		slog.Error("encode event failed", "type", eventType, "error", err)
		return eventstore.Event{Type: eventType}
	}
	return ev
}

func materializeLoop(ctx context.Context, d *deps) {
	ticker := time.NewTicker(materializeInterval)
	defer ticker.Stop()
	for {
		runMaterializeOnce(ctx, d)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runMaterializeOnce(ctx context.Context, d *deps) {
	start := time.Now()
	result, err := d.materialize.Run(ctx)
	if err != nil {
		metrics.MaterializePhaseDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		slog.Error("materialize run failed", "error", err)
		return
	}
	metrics.MaterializePhaseDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	for _, m := range result.Materialized {
		ev, err := eventstore.NewEvent(eventstore.EventStoryMaterialized, m, "", "materializer")
		if err != nil {
			slog.Error("encode story_materialized failed", "error", err)
			continue
		}
		if err := appendAndProject(ctx, d, ev); err != nil {
			slog.Error("append story_materialized failed", "error", err)
		}
	}
	for _, c := range result.Changed {
		ev, err := eventstore.NewEvent(eventstore.EventStoryChanged, c, "", "materializer")
		if err != nil {
			slog.Error("encode story_changed failed", "error", err)
			continue
		}
		if err := appendAndProject(ctx, d, ev); err != nil {
			slog.Error("append story_changed failed", "error", err)
		}
	}
}

func appendAndProject(ctx context.Context, d *deps, ev eventstore.Event) error {
	stored, err := d.store.Append(ctx, ev)
	if err != nil {
		return err
	}
	return d.proj.Apply(ctx, stored)
}

func notifyDispatches(ctx context.Context, notifier *notify.Service, dashboardURL string, dispatches []eventstore.DispatchCreated, headlines map[string]string) {
	for _, dispatch := range dispatches {
		notifier.NotifyDispatch(ctx, notify.DispatchInput{
			DispatchID:        dispatch.DispatchID,
			SituationID:       dispatch.SituationID,
			SituationHeadline: headlines[dispatch.SituationID],
			Body:              dispatch.Body,
			CitedSignalIDs:    dispatch.CitedSignalIDs,
			InvalidCitation:   dispatch.InvalidCitation,
			FlagReasons:       dispatch.FlagReasons,
			DashboardURL:      dashboardURL,
		})
		metrics.WeaveDispatchesTotal.Inc()
	}
}
