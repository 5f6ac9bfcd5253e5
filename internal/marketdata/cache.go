package marketdata

import (
	"strings"
	"sync"
	"time"

	"coinlens/internal/domain"
)

type cacheKey struct {
	source domain.Source
	symbol string // lowercase
}

type cacheEntry struct {
	coin    domain.CanonicalCoin
	expires time.Time
}

// cache is a TTL cache of canonical records keyed by (source, symbol). Each
// source carries its own TTL.
type cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     map[domain.Source]time.Duration
	now     func() time.Time
}

func newCache(primaryTTL, secondaryTTL time.Duration) *cache {
	return &cache{
		entries: make(map[cacheKey]cacheEntry),
		ttl: map[domain.Source]time.Duration{
			domain.SourcePrimary:   primaryTTL,
			domain.SourceSecondary: secondaryTTL,
		},
		now: time.Now,
	}
}

func (c *cache) get(source domain.Source, symbol string) (domain.CanonicalCoin, bool) {
	key := cacheKey{source: source, symbol: strings.ToLower(symbol)}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return domain.CanonicalCoin{}, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return domain.CanonicalCoin{}, false
	}
	return e.coin, true
}

func (c *cache) put(coin domain.CanonicalCoin) {
	key := cacheKey{source: coin.Source, symbol: strings.ToLower(coin.Symbol)}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{coin: coin, expires: c.now().Add(c.ttl[coin.Source])}
}
