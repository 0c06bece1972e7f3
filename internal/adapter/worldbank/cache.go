package worldbank

import (
	"context"
	"sync"

	"github.com/bielim/country-risk-etl/internal/domain"
)

// CachedProvider wraps a GDPProvider with an in-memory LRU cache. GDP figures
// change yearly at most; within one service run a country is fetched once.
type CachedProvider struct {
	inner domain.GDPProvider
	cache *lruCache
}

// NewCachedProvider creates a cache decorator around a GDP provider.
func NewCachedProvider(inner domain.GDPProvider, maxEntries int) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedProvider) CurrentGDP(ctx context.Context, country string) (float64, error) {
	key := domain.NormalizeCountry(country)
	if gdp, ok := c.cache.get(key); ok {
		return gdp, nil
	}
	gdp, err := c.inner.CurrentGDP(ctx, country)
	if err != nil {
		return 0, err
	}
	// Only cache positive values so transient empty responses can be retried.
	if gdp > 0 {
		c.cache.put(key, gdp)
	}
	return gdp, nil
}

// lruCache is a simple thread-safe LRU cache for GDP values.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value float64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
