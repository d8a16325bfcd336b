package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenStore tracks which (content_hash, sanitized_url) pairs the pipeline has
// already extracted from, implementing spec.md §4.3 step 2's short-circuit:
// a repeat of the same page content is fetched for freshness/outbound-link
// purposes but skips re-extraction.
type SeenStore interface {
	// MarkAndCheck records the pair and reports whether it was already seen.
	MarkAndCheck(ctx context.Context, contentHash, url string) (alreadySeen bool, err error)
}

// redisSeenStore is backed by Redis SETNX, so the dedupe state survives
// process restarts and is shared across scout workers.
type redisSeenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSeenStore builds a SeenStore from an already-dialed Redis client.
// ttl bounds how long a (hash, url) pair suppresses re-extraction; spec.md
// does not mandate a value, so the caller picks one (cmd/rootsignal passes
// 24h plus the scout's polite-fetch interval, or plus 1h when that is unset).
func NewRedisSeenStore(rdb *redis.Client, ttl time.Duration) SeenStore {
	return &redisSeenStore{rdb: rdb, ttl: ttl}
}

func (s *redisSeenStore) MarkAndCheck(ctx context.Context, contentHash, url string) (bool, error) {
	key := fmt.Sprintf("rootsignal:fetch:seen:%s:%s", contentHash, url)
	set, err := s.rdb.SetNX(ctx, key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("fetch: seen-store check: %w", err)
	}
	return !set, nil
}
