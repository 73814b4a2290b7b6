// Package cache provides a per-key, time-expiring, size-bounded cache for
// list and page results fetched from a rate-limited upstream API.
//
// Each key holds either a list snapshot or a single page, never both.
// Entries older than the TTL are treated as absent until the next store or
// eviction removes them. When the capacity is exceeded the least recently
// used key is evicted. Concurrent misses for the same key are collapsed
// into one fetch ("single-flight"): every waiter receives the one result,
// success or failure, and failures are never stored.
package cache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrShapeConflict is returned when a key populated with a list payload is
// read as a page, or vice versa. A shape mix under one key always means two
// different queries collided on the same key.
var ErrShapeConflict = errors.New("cache: list and page payloads mixed under one key")

// Defaults applied by config when no explicit values are given.
const (
	DefaultCapacity = 100
	DefaultTTL      = 5 * time.Minute
)

// FetchList produces the list payload for a key on a cache miss.
type FetchList[T any] func(ctx context.Context) ([]T, error)

// FetchPage produces the page payload for a key on a cache miss.
type FetchPage[T any] func(ctx context.Context) (Page[T], error)

// Options configures a Cache.
type Options struct {
	// Capacity is the maximum number of distinct keys retained. Zero
	// applies DefaultCapacity; negative values are invalid.
	Capacity int

	// TTL is the age after which an entry is treated as absent. Zero
	// disables caching entirely: every lookup is a miss.
	TTL time.Duration

	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

type payloadKind uint8

const (
	kindList payloadKind = iota
	kindPage
)

// entry is the tagged payload union stored per key. Exactly one of items
// and page is meaningful, selected by kind.
type entry[T any] struct {
	key       string
	kind      payloadKind
	items     []T
	page      Page[T]
	timestamp time.Time
}

// Cache memoizes list and page fetches under opaque string keys. Callers
// are responsible for making keys unique per distinct query (parent id,
// collection, filters, page size).
type Cache[T any] struct {
	capacity int
	ttl      time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front = most recently used, values are *entry[T]

	group singleflight.Group
}

// New creates a Cache with the given options.
func New[T any](opts Options) (*Cache[T], error) {
	if opts.Capacity < 0 {
		return nil, errors.New("cache: capacity must be positive")
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TTL < 0 {
		return nil, errors.New("cache: ttl must be non-negative")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Cache[T]{
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		logger:   opts.Logger,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}, nil
}

// GetList returns the cached list for key, fetching it at most once across
// concurrent callers when no fresh entry exists. Fetch errors propagate to
// every waiter and leave the key unpopulated.
func (c *Cache[T]) GetList(ctx context.Context, key string, fetch FetchList[T]) ([]T, error) {
	ent, ok, err := c.lookup(key, kindList)
	if err != nil {
		return nil, err
	}
	if ok {
		return ent.items, nil
	}

	ent, err = c.flight(ctx, key, kindList, func(fctx context.Context) (*entry[T], error) {
		items, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		return &entry[T]{key: key, kind: kindList, items: items, timestamp: time.Now()}, nil
	})
	if err != nil {
		return nil, err
	}
	if ent.kind != kindList {
		return nil, ErrShapeConflict
	}
	return ent.items, nil
}

// GetPage is GetList for a page payload (items plus continuation cursor).
// Only first pages belong here: callers must not bake cursors into the key
// or the fetch, and must bypass the cache for cursor-bearing requests.
func (c *Cache[T]) GetPage(ctx context.Context, key string, fetch FetchPage[T]) (Page[T], error) {
	ent, ok, err := c.lookup(key, kindPage)
	if err != nil {
		return Page[T]{}, err
	}
	if ok {
		return ent.page, nil
	}

	ent, err = c.flight(ctx, key, kindPage, func(fctx context.Context) (*entry[T], error) {
		page, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		return &entry[T]{key: key, kind: kindPage, page: page, timestamp: time.Now()}, nil
	})
	if err != nil {
		return Page[T]{}, err
	}
	if ent.kind != kindPage {
		return Page[T]{}, ErrShapeConflict
	}
	return ent.page, nil
}

// Invalidate removes any entry for key. Invalidating an absent key is a
// no-op.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return
	}
	c.lru.Remove(el)
	delete(c.entries, key)
	invalidationsTotal.Inc()
	c.logger.Debug("cache-invalidate", zap.String("key", key))
}

// Len returns the number of keys physically held, expired entries included.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.logger.Debug("cache-cleared")
}

// lookup returns the fresh entry for key and refreshes its recency. An
// expired entry is treated as absent; it stays in place until the next
// store or eviction. A fresh entry of the other payload shape is a caller
// error.
func (c *Cache[T]) lookup(key string, kind payloadKind) (*entry[T], bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		missesTotal.Inc()
		c.logger.Debug("cache-miss", zap.String("key", key))
		return nil, false, nil
	}
	ent := el.Value.(*entry[T])
	if c.ttl == 0 || time.Since(ent.timestamp) > c.ttl {
		missesTotal.Inc()
		c.logger.Debug("cache-expired", zap.String("key", key))
		return nil, false, nil
	}
	if ent.kind != kind {
		return nil, false, ErrShapeConflict
	}
	c.lru.MoveToFront(el)
	hitsTotal.Inc()
	c.logger.Debug("cache-hit", zap.String("key", key))
	return ent, true, nil
}

// flight collapses concurrent misses for key into one fetch. The fetch is
// detached from the triggering caller's cancellation: a waiter whose ctx is
// done returns its ctx error while the fetch completes and populates the
// entry for the remaining waiters.
func (c *Cache[T]) flight(ctx context.Context, key string, kind payloadKind, fill func(context.Context) (*entry[T], error)) (*entry[T], error) {
	fctx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		// A caller that raced a just-completed flight joins the cached
		// result instead of refetching.
		if ent, ok, err := c.lookup(key, kind); err != nil {
			return nil, err
		} else if ok {
			return ent, nil
		}
		ent, err := fill(fctx)
		if err != nil {
			return nil, err
		}
		c.store(ent)
		return ent, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			collapsedTotal.Inc()
		}
		return res.Val.(*entry[T]), nil
	}
}

// store inserts or replaces the entry for ent.key, evicting the least
// recently used key first when a new key would exceed capacity.
func (c *Cache[T]) store(ent *entry[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[ent.key]; ok {
		el.Value = ent
		c.lru.MoveToFront(el)
		return
	}
	if c.lru.Len() >= c.capacity {
		c.evictOldest()
	}
	c.entries[ent.key] = c.lru.PushFront(ent)
	c.logger.Debug("cache-store", zap.String("key", ent.key))
}

func (c *Cache[T]) evictOldest() {
	el := c.lru.Back()
	if el == nil {
		return
	}
	ent := el.Value.(*entry[T])
	c.lru.Remove(el)
	delete(c.entries, ent.key)
	evictionsTotal.Inc()
	c.logger.Debug("cache-evict", zap.String("key", ent.key))
}
