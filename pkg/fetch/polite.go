package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// politeGate enforces per-host fetch etiquette: a token-bucket rate limiter
// so RootSignal never hammers a source faster than config.ScoutConfig's
// PoliteFetchInterval, plus a circuit breaker that stops calling a host once
// it has failed CircuitBreakerFailureThreshold times in a row.
type politeGate struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	breakers  map[string]*gobreaker.CircuitBreaker
	interval  time.Duration
	threshold uint32
}

// newPoliteGate builds a politeGate. interval is the minimum spacing between
// requests to the same host; threshold is the number of consecutive failures
// that trips a host's breaker open.
func newPoliteGate(interval time.Duration, threshold uint32) *politeGate {
	return &politeGate{
		limiters:  make(map[string]*rate.Limiter),
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		interval:  interval,
		threshold: threshold,
	}
}

// do runs fn after waiting for the target host's rate limiter and through
// its circuit breaker, so a single dying host cannot stall or exhaust the
// budget of an entire scout run.
func (g *politeGate) do(ctx context.Context, target string, fn func() (any, error)) (any, error) {
	host, err := hostOf(target)
	if err != nil {
		return nil, err
	}

	limiter := g.limiterFor(host)
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch: rate limit wait for %s: %w", host, err)
	}

	breaker := g.breakerFor(host)
	return breaker.Execute(fn)
}

func (g *politeGate) limiterFor(host string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(g.interval), 1)
	g.limiters[host] = l
	return l
}

func (g *politeGate) breakerFor(host string) *gobreaker.CircuitBreaker {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.breakers[host]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= g.threshold
		},
	})
	g.breakers[host] = b
	return b
}

func hostOf(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("fetch: parse url %q: %w", target, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("fetch: url %q has no host", target)
	}
	return u.Host, nil
}
