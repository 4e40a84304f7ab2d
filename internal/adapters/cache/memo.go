package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/metrics"
	"route-weather-service/internal/ports"
)

// Memo memoizes per-coordinate lookups in a bounded LRU with a TTL,
// optionally backed by a shared Store. Concurrent misses for the same
// coordinate share a single load. Memo is safe for concurrent use.
type Memo[V any] struct {
	name      string
	lru       *expirable.LRU[domain.Coordinate, V]
	group     singleflight.Group
	store     ports.Store
	sharedTTL time.Duration
	logger    *slog.Logger
}

type MemoOptions struct {
	Size int
	TTL  time.Duration
	// Store is an optional shared tier; values are JSON encoded.
	Store     ports.Store
	SharedTTL time.Duration
	Logger    *slog.Logger
}

// LoadFunc computes a value on a miss. Returning cacheable=false hands the
// value to the caller without storing it.
type LoadFunc[V any] func(ctx context.Context) (value V, cacheable bool)

func NewMemo[V any](name string, opts MemoOptions) *Memo[V] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Memo[V]{
		name:      name,
		lru:       expirable.NewLRU[domain.Coordinate, V](opts.Size, nil, opts.TTL),
		store:     opts.Store,
		sharedTTL: opts.SharedTTL,
		logger:    logger,
	}
}

type loaded[V any] struct {
	value     V
	cacheable bool
}

// Get returns the cached value for c, loading it on a miss.
// A caller that joined another caller's load and received a value that was
// not cached (e.g. the loader's context was cancelled) loads again with its
// own context.
func (m *Memo[V]) Get(ctx context.Context, c domain.Coordinate, load LoadFunc[V]) V {
	if v, ok := m.lru.Get(c); ok {
		metrics.CacheLookups.WithLabelValues(m.name, "hit").Inc()
		return v
	}

	led := false
	res, _, _ := m.group.Do(c.Key(), func() (any, error) {
		led = true

		// Another caller may have filled the entry while this one waited.
		if v, ok := m.lru.Get(c); ok {
			metrics.CacheLookups.WithLabelValues(m.name, "hit").Inc()
			return loaded[V]{value: v, cacheable: true}, nil
		}

		if v, ok := m.getShared(ctx, c); ok {
			metrics.CacheLookups.WithLabelValues(m.name, "shared_hit").Inc()
			m.add(c, v)
			return loaded[V]{value: v, cacheable: true}, nil
		}

		metrics.CacheLookups.WithLabelValues(m.name, "miss").Inc()
		return m.fill(ctx, c, load), nil
	})

	r := res.(loaded[V])
	if !r.cacheable && !led && ctx.Err() == nil {
		metrics.CacheLookups.WithLabelValues(m.name, "reload").Inc()
		r = m.fill(ctx, c, load)
	}

	return r.value
}

func (m *Memo[V]) fill(ctx context.Context, c domain.Coordinate, load LoadFunc[V]) loaded[V] {
	v, cacheable := load(ctx)
	if cacheable {
		m.add(c, v)
		m.putShared(ctx, c, v)
	}
	return loaded[V]{value: v, cacheable: cacheable}
}

func (m *Memo[V]) add(c domain.Coordinate, v V) {
	m.lru.Add(c, v)
	metrics.CacheEntries.WithLabelValues(m.name).Set(float64(m.lru.Len()))
}

func (m *Memo[V]) sharedKey(c domain.Coordinate) string {
	return m.name + ":" + c.Key()
}

func (m *Memo[V]) getShared(ctx context.Context, c domain.Coordinate) (V, bool) {
	var zero V
	if m.store == nil {
		return zero, false
	}

	b, found, err := m.store.Get(ctx, m.sharedKey(c))
	if err != nil {
		m.logger.WarnContext(ctx, "shared cache read failed", "cache", m.name, "key", c.Key(), "error", err)
		return zero, false
	}
	if !found {
		return zero, false
	}

	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		m.logger.WarnContext(ctx, "shared cache entry undecodable", "cache", m.name, "key", c.Key(), "error", err)
		return zero, false
	}
	return v, true
}

func (m *Memo[V]) putShared(ctx context.Context, c domain.Coordinate, v V) {
	if m.store == nil {
		return
	}

	b, err := json.Marshal(v)
	if err != nil {
		m.logger.WarnContext(ctx, "shared cache encode failed", "cache", m.name, "error", err)
		return
	}
	if err := m.store.Set(ctx, m.sharedKey(c), b, m.sharedTTL); err != nil {
		m.logger.WarnContext(ctx, "shared cache write failed", "cache", m.name, "key", c.Key(), "error", err)
	}
}
