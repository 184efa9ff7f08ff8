package holdings

import (
	"sync"
	"time"

	"github.com/fundlab/overlap/internal/domain"
)

type cacheEntry struct {
	fund      domain.FundHoldings
	expiresAt time.Time
}

// fundCache is an in-process TTL cache keyed by fund symbol, sitting in
// front of the repository to spare hot lookups a round trip.
type fundCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newFundCache(ttl time.Duration) *fundCache {
	return &fundCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *fundCache) get(symbol string) (domain.FundHoldings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[symbol]
	if !ok || time.Now().After(entry.expiresAt) {
		return domain.FundHoldings{}, false
	}
	return entry.fund, true
}

func (c *fundCache) set(symbol string, fund domain.FundHoldings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[symbol] = cacheEntry{
		fund:      fund,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *fundCache) invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, symbol)
}
