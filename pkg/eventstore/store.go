package eventstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations
var migrationsFS embed.FS

// DurabilityError wraps a failure to durably persist an event after retries
// are exhausted. Per the error taxonomy, callers treat this as fatal for the
// run that produced it: the event log must stay authoritative, so an append
// either succeeds or is surfaced loudly, never silently dropped.
type DurabilityError struct {
	Err error
}

func (e *DurabilityError) Error() string { return fmt.Sprintf("event durability failure: %v", e.Err) }
func (e *DurabilityError) Unwrap() error  { return e.Err }

// Store is the append-only event log. All writes serialize through Postgres'
// own row locking on the seq sequence; Append never updates or deletes.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Config holds Postgres connection settings for the event store.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

func (c Config) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Open connects to Postgres, applies embedded migrations, and returns a Store.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	return openPool(ctx, poolCfg, cfg.dsn(), logger)
}

// OpenWithDSN is the same as Open but takes a ready-made Postgres connection
// string, e.g. one already carrying a search_path for an isolated test
// schema. Pool sizing uses pgx defaults.
func OpenWithDSN(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	return openPool(ctx, poolCfg, dsn, logger)
}

func openPool(ctx context.Context, poolCfg *pgxpool.Config, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// NewFromPool wraps an already-open pool, skipping connection setup. Used by
// tests that manage the pool lifecycle themselves.
func NewFromPool(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pgxpool for callers that need raw access, e.g.
// other repositories sharing the same connection pool, or tests.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping reports whether the event log's Postgres connection is reachable,
// the health check's narrow dependency on the pool.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func runMigrations(dsn string) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	defer sourceDriver.Close()

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// unusedPostgresImportGuard keeps the postgres driver import registered for
// golang-migrate's database/postgres scheme even though NewWithSourceInstance
// above resolves it via DSN rather than a *sql.DB handle.
var _ = postgres.Config{}

// Append durably persists ev and returns it with an assigned seq and ts.
// Retries with exponential backoff on transient failures; gives up and
// returns a *DurabilityError after the backoff policy is exhausted.
func (s *Store) Append(ctx context.Context, ev Event) (StoredEvent, error) {
	var stored StoredEvent

	operation := func() error {
		row := s.pool.QueryRow(ctx, `
			INSERT INTO events (event_type, payload, run_id, actor)
			VALUES ($1, $2, $3, $4)
			RETURNING seq, ts, event_type, payload, run_id, actor
		`, string(ev.Type), ev.Payload, ev.RunID, ev.Actor)

		return row.Scan(&stored.Seq, &stored.Ts, &stored.Type, &stored.Payload, &stored.RunID, &stored.Actor)
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	bo = backoff.WithContext(bo, ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return StoredEvent{}, &DurabilityError{Err: err}
	}
	return stored, nil
}

// ReadFrom returns events with seq >= seqStart, in increasing seq order, up
// to limit rows.
func (s *Store) ReadFrom(ctx context.Context, seqStart int64, limit int) ([]StoredEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, ts, event_type, payload, run_id, actor
		FROM events
		WHERE seq >= $1
		ORDER BY seq ASC
		LIMIT $2
	`, seqStart, limit)
	if err != nil {
		return nil, fmt.Errorf("read_from: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.Seq, &e.Ts, &e.Type, &e.Payload, &e.RunID, &e.Actor); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Tail polls for events after afterSeq, sleeping pollInterval between empty
// reads, and delivers batches on the returned channel until ctx is done.
// Implemented as a read_from loop per the contract's "may be implemented as"
// clause, rather than a LISTEN/NOTIFY push channel — RootSignal's readers are
// poll-tolerant by design (no realtime push requirement).
func (s *Store) Tail(ctx context.Context, afterSeq int64, pollInterval time.Duration, batchSize int) <-chan StoredEvent {
	out := make(chan StoredEvent)
	go func() {
		defer close(out)
		seq := afterSeq + 1
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			batch, err := s.ReadFrom(ctx, seq, batchSize)
			if err != nil {
				s.logger.Error("tail read failed", "error", err)
			}
			for _, ev := range batch {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
				seq = ev.Seq + 1
			}
			if len(batch) == 0 {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}
	}()
	return out
}

// MaxSeq returns the highest seq currently in the log, or 0 if empty.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var max *int64
	err := s.pool.QueryRow(ctx, `SELECT MAX(seq) FROM events`).Scan(&max)
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

var _ = pgx.ErrNoRows // keep pgx imported for callers referencing sentinel errors via this package
