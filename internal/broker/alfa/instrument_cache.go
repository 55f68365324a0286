package alfa

import (
	"sync"
	"time"

	"ml-trading-bot/internal/types"
)

// instrumentCache keeps resolved instruments keyed by ticker. Entries carry a
// deadline: identifiers can be renamed or delisted, so an expired entry forces
// a fresh lookup instead of serving a stale FIGI forever.
type instrumentCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	inst    types.Instrument
	expires time.Time
}

func newInstrumentCache(ttl time.Duration) *instrumentCache {
	return &instrumentCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *instrumentCache) get(ticker string) (types.Instrument, bool) {
	c.mu.RLock()
	e, ok := c.entries[ticker]
	c.mu.RUnlock()
	if !ok {
		return types.Instrument{}, false
	}
	if time.Now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, ticker)
		c.mu.Unlock()
		return types.Instrument{}, false
	}
	return e.inst, true
}

func (c *instrumentCache) set(ticker string, inst types.Instrument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticker] = cacheEntry{inst: inst, expires: time.Now().Add(c.ttl)}
}

func (c *instrumentCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
