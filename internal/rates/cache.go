package rates

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RateMap holds one day's quotes for a target currency: source code → units
// of source per one unit of target. Once published a map is read-only.
type RateMap map[string]decimal.Decimal

type cacheKey struct {
	target string
	day    string
}

type cacheEntry struct {
	rates   RateMap
	expires time.Time
}

// Cache is the process-wide store of daily rate maps. A (target, day) slot
// is either present with a complete map or absent; days are replaced
// atomically and expire after the configured TTL.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *Cache) Get(target string, day time.Time) (RateMap, bool) {
	key := cacheKey{target: target, day: dayKey(day)}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.rates, true
}

func (c *Cache) Put(target string, day time.Time, rates RateMap) {
	key := cacheKey{target: target, day: dayKey(day)}
	c.mu.Lock()
	c.entries[key] = cacheEntry{rates: rates, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}

func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}
