package comcat

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-strec-etl/internal/domain"
	"github.com/couchcryptid/quake-strec-etl/internal/observability"
)

// CachedLookup wraps a MechanismLookup with an in-memory LRU cache whose
// entries expire after a TTL.
type CachedLookup struct {
	inner   domain.MechanismLookup
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLookup creates a cache decorator around a lookup.
func NewCachedLookup(inner domain.MechanismLookup, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedLookup {
	return &CachedLookup{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedLookup) LookupMechanism(ctx context.Context, eventID string) (*domain.MechanismSolution, error) {
	if sol, ok := c.cache.get(eventID); ok {
		c.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return sol, nil
	}
	c.metrics.CatalogCache.WithLabelValues("miss").Inc()

	sol, err := c.inner.LookupMechanism(ctx, eventID)
	if err != nil {
		return nil, err
	}
	// Only cache found solutions; a tensor may be published after the origin.
	if sol != nil {
		c.cache.put(eventID, sol)
	}
	return sol, nil
}

// lruCache is a thread-safe LRU cache with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type entry struct {
	key     string
	value   *domain.MechanismSolution
	expires time.Time
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (*domain.MechanismSolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

func (c *lruCache) put(key string, value *domain.MechanismSolution) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value, e.expires = value, expires
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value, expires: expires})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
