package scout

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/embed"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/extract"
	"github.com/fourthplaces/rootsignal/pkg/fetch"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/promote"
)

var sweptKinds = []graph.SignalKind{
	graph.SignalGathering, graph.SignalAid, graph.SignalNeed, graph.SignalNotice, graph.SignalTension,
}

// sourceFetcher is the narrow slice of *fetch.Fetcher processSource needs;
// narrowed to an interface so tests can drive the pipeline without live
// HTTP, the same technique pkg/reap's appender uses for the event store.
type sourceFetcher interface {
	Fetch(ctx context.Context, sourceType, value string) (*fetch.ScrapedPage, error)
	FetchSocial(ctx context.Context, platform, value string) ([]fetch.SocialPost, error)
}

// signalExtractor is the narrow slice of *extract.Extractor processSource
// needs.
type signalExtractor interface {
	Extract(ctx context.Context, sourceURL, markdown string) ([]extract.Signal, error)
}

// budgetCounter is a simple per-run LLM call cap, shared across concurrently
// processed sources.
type budgetCounter struct {
	remaining int64
}

func newBudget(n int) *budgetCounter { return &budgetCounter{remaining: int64(n)} }

// take decrements the budget and reports whether a call may proceed.
func (b *budgetCounter) take() bool {
	return atomic.AddInt64(&b.remaining, -1) >= 0
}

// runContext is the state one Run shares across every source it processes
// concurrently: the dependencies the pipeline steps need, the cross-source
// dedupe corpus, and the LLM budget. Kept separate from Runner so a Run's
// mutable per-run state (corpus, budget) never leaks between runs.
type runContext struct {
	cfg       *config.ScoutConfig
	fetcher   sourceFetcher
	extractor signalExtractor
	embedder  embed.Embedder
	reader    *graph.Reader
	corpus    *corpus
	budget    *budgetCounter
	cancelled *atomic.Bool
	now       func() time.Time
}

// Runner drives the Scout Pipeline (C7): schedule due sources, process each
// through fetch->extract->embed->dedupe->citation, and hand the resulting
// outbound links to the Link Promoter (C8). Like pkg/weave and
// pkg/materialize, Run only returns events; the caller appends and projects
// them.
type Runner struct {
	cfg       *config.ScoutConfig
	linkCfg   *config.LinkPromoterConfig
	reader    *graph.Reader
	fetcher   sourceFetcher
	extractor signalExtractor
	embedder  embed.Embedder
	promoter  *promote.Promoter
	logger    *slog.Logger
	now       func() time.Time
	cancelled atomic.Bool
}

// New builds a Runner from its dependencies. cfg/linkCfg fall back to
// defaults when nil.
func New(
	reader *graph.Reader,
	fetcher *fetch.Fetcher,
	extractor *extract.Extractor,
	embedder embed.Embedder,
	cfg *config.ScoutConfig,
	linkCfg *config.LinkPromoterConfig,
	logger *slog.Logger,
) *Runner {
	if cfg == nil {
		cfg = config.DefaultScoutConfig()
	}
	if linkCfg == nil {
		linkCfg = config.DefaultLinkPromoterConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg: cfg, linkCfg: linkCfg, reader: reader, fetcher: fetcher, extractor: extractor,
		embedder: embedder, promoter: promote.New(linkCfg), logger: logger.With("component", "scout-runner"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Cancel signals every in-flight Run to stop starting new sources once their
// current fetch completes. It does not abort work already in progress.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

// Run schedules a batch of due sources for region and processes them with
// bounded fan-out across sources (sequential within each source), returning
// every event the batch produced.
func (r *Runner) Run(ctx context.Context, region string) (Result, error) {
	rows, err := r.reader.ActiveSources(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scout: list active sources: %w", err)
	}
	candidates := make([]SourceCandidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, sourceFromRow(row))
	}

	now := r.now()
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0xa17c5))
	batch := selectBatch(candidates, r.cfg, now, rng)
	if len(batch) == 0 {
		r.logger.Info("scout: no due sources this run", "region", region)
		return Result{}, nil
	}

	run := &runContext{
		cfg: r.cfg, fetcher: r.fetcher, extractor: r.extractor, embedder: r.embedder,
		reader: r.reader, corpus: newCorpus(), budget: newBudget(r.cfg.LLMBudgetRequestsPerRun),
		cancelled: &r.cancelled, now: r.now,
	}
	for _, kind := range sweptKinds {
		rows, err := r.reader.SignalsByKind(ctx, kind)
		if err != nil {
			return Result{}, fmt.Errorf("scout: seed corpus for %s: %w", kind, err)
		}
		run.corpus.seed(kind, rows)
	}

	var (
		mu      sync.Mutex
		total   Result
		wg      sync.WaitGroup
		sem     = semaphore.NewWeighted(int64(r.cfg.SourceConcurrency))
	)

	for _, src := range batch {
		if r.cancelled.Load() {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(src SourceCandidate) {
			defer wg.Done()
			defer sem.Release(1)
			res := run.processSource(ctx, src)
			mu.Lock()
			total.merge(res)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	if len(total.proposed) > 0 {
		total.SourcesProposed = r.promoter.Promote(region, total.proposed, eventstore.DiscoverySignalReference)
	}
	r.logger.Info("scout: run complete", "region", region, "sources_run", total.SourcesRun,
		"discovered", len(total.Discovered), "proposed_sources", len(total.SourcesProposed))
	return total, nil
}
