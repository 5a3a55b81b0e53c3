package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Cache is a TTL keyed byte cache used to short-circuit read-heavy endpoints.
// It is best-effort: correctness of the gateway never depends on a hit, and a
// TTL of zero or below turns every lookup into a miss.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	hits       uint64
	misses     uint64
	logger     zerolog.Logger
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Stats struct {
	Keys   int    `json:"keys"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

func New(defaultTTL time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			delete(c.entries, key)
		}
		c.misses++
		c.logger.Debug().Str("key", key).Msg("cache miss")
		return nil, false
	}

	c.hits++
	c.logger.Debug().Str("key", key).Msg("cache hit")
	return e.value, true
}

// Set stores value under key for ttl, or the default TTL when ttl is zero.
// A non-positive effective TTL disables caching for the entry.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// InvalidatePrefix drops every entry whose key starts with prefix. Write-path
// service methods call this after mutating the backing collections.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	c.logger.Debug().Str("prefix", prefix).Int("removed", removed).Msg("cache invalidated")
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	keys := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			keys++
		}
	}
	return Stats{Keys: keys, Hits: c.hits, Misses: c.misses}
}
