package rates

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is how long a fetched rate is served without refetching.
	DefaultTTL = 60 * time.Second
	// DefaultFetchTimeout bounds a single provider request.
	DefaultFetchTimeout = 8 * time.Second
)

// Cache memoizes provider rates per currency for a fixed TTL.
//
// Concurrent misses for the same currency share one provider call. Misses for
// different currencies fetch independently even though a single response
// would cover both.
type Cache struct {
	provider Provider
	shared   SharedStore
	ttl      time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]Entry
	flight  singleflight.Group
}

// Option customizes a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithSharedStore adds a second tier consulted before the provider.
func WithSharedStore(s SharedStore) Option {
	return func(c *Cache) { c.shared = s }
}

// WithLogger sets the logger used for shared-tier warnings and fetch logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache builds an empty cache in front of provider.
func NewCache(provider Provider, opts ...Option) *Cache {
	c := &Cache{
		provider: provider,
		ttl:      DefaultTTL,
		timeout:  DefaultFetchTimeout,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries:  make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rate returns the USD->currency rate, refreshing it when missing or stale.
func (c *Cache) Rate(ctx context.Context, currency string) (float64, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == baseCurrency {
		return 1, nil
	}

	if rate, ok := c.cached(ctx, code); ok {
		return rate, nil
	}

	// The shared fetch outlives any single caller: it is bounded only by the
	// fetch timeout, and each caller stops waiting when its own ctx ends.
	ch := c.flight.DoChan(code, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if rate, ok := c.cached(fetchCtx, code); ok {
			return rate, nil
		}
		return c.refresh(fetchCtx, code)
	})
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %w", ErrRateUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(float64), nil
	}
}

func (c *Cache) cached(ctx context.Context, code string) (float64, bool) {
	c.mu.RLock()
	entry, ok := c.entries[code]
	c.mu.RUnlock()
	if ok && c.fresh(entry) {
		return entry.Rate, true
	}

	if c.shared == nil {
		return 0, false
	}
	entry, ok, err := c.shared.Get(ctx, code)
	if err != nil {
		c.logger.Warn("shared rate lookup failed", "currency", code, "error", err)
		return 0, false
	}
	if !ok || !c.fresh(entry) {
		return 0, false
	}
	c.store(entry)
	return entry.Rate, true
}

func (c *Cache) fresh(e Entry) bool {
	return c.now().Sub(e.FetchedAt) < c.ttl
}

func (c *Cache) store(e Entry) {
	c.mu.Lock()
	c.entries[e.Currency] = e
	c.mu.Unlock()
}

func (c *Cache) refresh(ctx context.Context, code string) (float64, error) {
	fetchedAt := c.now()

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	all, err := c.provider.Latest(fetchCtx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRateUnavailable, err)
	}
	rate, ok := all[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s missing from provider response", ErrRateUnavailable, code)
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: provider returned invalid rate %v for %s", ErrRateUnavailable, rate, code)
	}

	entry := Entry{Currency: code, Rate: rate, FetchedAt: fetchedAt}
	c.store(entry)
	if c.shared != nil {
		if err := c.shared.Put(ctx, entry); err != nil {
			c.logger.Warn("shared rate store failed", "currency", code, "error", err)
		}
	}
	c.logger.Debug("rate refreshed", "currency", code, "rate", rate)
	return rate, nil
}

// Status describes a cached entry at the time Snapshot was taken.
type Status struct {
	Entry
	Age   time.Duration `json:"age"`
	Stale bool          `json:"stale"`
}

// Snapshot lists the in-process entries ordered by currency.
func (c *Cache) Snapshot() []Status {
	now := c.now()
	c.mu.RLock()
	out := make([]Status, 0, len(c.entries))
	for _, e := range c.entries {
		age := now.Sub(e.FetchedAt)
		out = append(out, Status{Entry: e, Age: age, Stale: age >= c.ttl})
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
