package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/fourthplaces/rootsignal/pkg/api"
	"github.com/fourthplaces/rootsignal/pkg/config"
	"github.com/fourthplaces/rootsignal/pkg/embed"
	"github.com/fourthplaces/rootsignal/pkg/eventstore"
	"github.com/fourthplaces/rootsignal/pkg/extract"
	"github.com/fourthplaces/rootsignal/pkg/fetch"
	"github.com/fourthplaces/rootsignal/pkg/graph"
	"github.com/fourthplaces/rootsignal/pkg/llm"
	"github.com/fourthplaces/rootsignal/pkg/materialize"
	"github.com/fourthplaces/rootsignal/pkg/notify"
	"github.com/fourthplaces/rootsignal/pkg/pii"
	"github.com/fourthplaces/rootsignal/pkg/promote"
	"github.com/fourthplaces/rootsignal/pkg/reap"
	"github.com/fourthplaces/rootsignal/pkg/scout"
	"github.com/fourthplaces/rootsignal/pkg/weave"
)

// deps holds every wired component the daemon's orchestration loop drives.
type deps struct {
	cfg *config.Config

	store   *eventstore.Store
	backend *graph.Neo4jBackend
	reader  *graph.Reader
	proj    *graph.Projector

	scout       *scout.Runner
	weaver      *weave.Weaver
	materialize *materialize.Materializer
	reaper      *reap.Service
	notifier     *notify.Service
	dashboardURL string
	promoter     *promote.Promoter
	api          *api.Server

	redis *redis.Client

	pendingMu      sync.Mutex
	pendingSignals []weave.CandidateSignal
}

// pushPending queues signals a scout run just discovered for the next weave
// tick to pick up. Weave operates on batches of newly captured signals, not
// the whole graph, so the daemon hands it exactly what changed since the
// last drain instead of re-deriving "new" from stored state.
func (d *deps) pushPending(candidates []weave.CandidateSignal) {
	if len(candidates) == 0 {
		return
	}
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	d.pendingSignals = append(d.pendingSignals, candidates...)
}

// drainPending returns every signal queued since the last drain and empties
// the queue.
func (d *deps) drainPending() []weave.CandidateSignal {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	out := d.pendingSignals
	d.pendingSignals = nil
	return out
}

// eventstoreConfigFromEnv builds eventstore.Config from DB_* environment
// variables, the teacher's own naming convention for Postgres connection
// settings, bound through viper so ROOTSIGNAL_-prefixed overrides also work.
func eventstoreConfigFromEnv(v *viper.Viper) eventstore.Config {
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "rootsignal")
	v.SetDefault("db_name", "rootsignal")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_min_conns", 2)

	for _, key := range []string{"db_host", "db_port", "db_user", "db_password", "db_name", "db_sslmode", "db_max_conns", "db_min_conns"} {
		_ = v.BindEnv(key)
	}

	return eventstore.Config{
		Host:            v.GetString("db_host"),
		Port:            v.GetInt("db_port"),
		User:            v.GetString("db_user"),
		Password:        v.GetString("db_password"),
		Database:        v.GetString("db_name"),
		SSLMode:         v.GetString("db_sslmode"),
		MaxConns:        int32(v.GetInt("db_max_conns")),
		MinConns:        int32(v.GetInt("db_min_conns")),
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 15 * time.Minute,
	}
}

func redisAddrFromEnv(v *viper.Viper) string {
	v.SetDefault("redis_addr", "localhost:6379")
	_ = v.BindEnv("redis_addr")
	return v.GetString("redis_addr")
}

// buildDeps opens every external connection and constructs every component
// the daemon needs. Callers are responsible for closing store/backend/redis
// on shutdown.
func buildDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	store, err := eventstore.Open(ctx, eventstoreConfigFromEnv(v), nil)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}

	neo4jPassword := os.Getenv(cfg.Graph.PasswordEnv)
	backend, err := graph.NewNeo4jBackend(ctx, cfg.Graph.URI, cfg.Graph.Username, neo4jPassword, cfg.Graph.Database)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}

	reader := graph.NewReader(backend)
	proj := graph.NewProjector(backend, nil)

	rdb := redis.NewClient(&redis.Options{Addr: redisAddrFromEnv(v)})
	seenTTL := cfg.Scout.PoliteFetchInterval
	if seenTTL <= 0 {
		seenTTL = time.Hour
	}
	seen := fetch.NewRedisSeenStore(rdb, 24*time.Hour+seenTTL)
	fetcher := fetch.New(cfg.Scout, seen)

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	embedder, err := embed.NewEmbedder(cfg.Embed)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}
	extractor := extract.New(llmClient, nil)
	piiSvc := pii.NewService()

	promoter := promote.New(cfg.LinkPromote)
	scoutRunner := scout.New(reader, fetcher, extractor, embedder, cfg.Scout, cfg.LinkPromote, nil)
	weaver := weave.New(llmClient, embedder, piiSvc, nil)
	materializer := materialize.New(reader, llmClient, cfg.Materialize, nil)
	reaper := reap.NewService(reader, proj, store, cfg.Reap, nil)

	dashboardURL := dashboardURLFromEnv()
	var notifier *notify.Service
	if cfg.Notify != nil {
		token := os.Getenv(cfg.Notify.TokenEnv)
		notifier = notify.NewService(cfg.Notify, token, dashboardURL)
	}

	server := api.NewServer(cfg, store, reader, proj, promoter)

	metricsFromConfig(cfg)

	return &deps{
		cfg: cfg, store: store, backend: backend, reader: reader, proj: proj,
		scout: scoutRunner, weaver: weaver, materialize: materializer, reaper: reaper,
		notifier: notifier, dashboardURL: dashboardURL, promoter: promoter, api: server, redis: rdb,
	}, nil
}

func (d *deps) close(ctx context.Context) {
	d.store.Close()
	_ = d.backend.Close(ctx)
	_ = d.redis.Close()
}

func dashboardURLFromEnv() string {
	return os.Getenv("ROOTSIGNAL_DASHBOARD_URL")
}
