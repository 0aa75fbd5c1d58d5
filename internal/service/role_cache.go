package service

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
)

// DefaultRoleCacheTTL is how long a resolved snapshot is reused.
const DefaultRoleCacheTTL = 5 * time.Minute

// RoleCache memoizes UserRoleInfo per principal. An entry is fresh while
// now - LastFetched < TTL; stale entries are treated as absent on read and
// are never swept in the background.
// Every invalidation bumps a generation so a fetch that started earlier can
// not write its snapshot back (see SetIfCurrent).
// Concurrency: methods are safe for concurrent use.
type RoleCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]domainauth.UserRoleInfo
	gens    map[string]uint64
	epoch   uint64 // bumped by InvalidateAll
	now     func() time.Time // injectable clock for tests
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// RoleCacheConfig groups constructor options.
type RoleCacheConfig struct {
	TTL time.Duration
	Now func() time.Time
}

// NewRoleCache creates an empty cache. Zero values fall back to DefaultRoleCacheTTL and time.Now.
func NewRoleCache(cfg RoleCacheConfig) *RoleCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultRoleCacheTTL
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &RoleCache{
		ttl:     ttl,
		entries: make(map[string]domainauth.UserRoleInfo),
		gens:    make(map[string]uint64),
		now:     nowFn,
	}
}

// Get returns the snapshot for principalID if present and fresh.
func (c *RoleCache) Get(principalID string) (domainauth.UserRoleInfo, bool) {
	c.mu.RLock()
	info, ok := c.entries[principalID]
	c.mu.RUnlock()

	if !ok || c.now().Sub(info.LastFetched) >= c.ttl {
		c.misses.Add(1)
		return domainauth.UserRoleInfo{}, false
	}
	c.hits.Add(1)
	return info, true
}

// Set stores info for principalID, replacing any earlier entry.
func (c *RoleCache) Set(principalID string, info domainauth.UserRoleInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[principalID] = info
}

// Generation identifies the invalidation state of one principal's entry.
type Generation struct {
	epoch, key uint64
}

// flightKey names the lookup for principalID at this generation, so lookups
// started after an invalidation never join one started before it.
func (g Generation) flightKey(principalID string) string {
	return strconv.FormatUint(g.epoch, 10) + "." + strconv.FormatUint(g.key, 10) + ":" + principalID
}

// Generation returns the current generation for principalID. Capture it
// before reading the role sources and hand it to SetIfCurrent.
func (c *RoleCache) Generation(principalID string) Generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Generation{epoch: c.epoch, key: c.gens[principalID]}
}

// SetIfCurrent stores info only when no invalidation of principalID happened
// since gen was captured. It reports whether the entry was written.
func (c *RoleCache) SetIfCurrent(principalID string, info domainauth.UserRoleInfo, gen Generation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != (Generation{epoch: c.epoch, key: c.gens[principalID]}) {
		return false
	}
	c.entries[principalID] = info
	return true
}

// Invalidate removes one entry and retires snapshots still being fetched for it.
func (c *RoleCache) Invalidate(principalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, principalID)
	c.gens[principalID]++
}

// InvalidateAll clears the cache and retires every in-flight snapshot.
func (c *RoleCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	clear(c.gens)
	c.epoch++
}

// Len returns the number of stored entries, stale ones included.
func (c *RoleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RoleCacheStats are simple counters for observability.
type RoleCacheStats struct {
	Hits, Misses uint64
	Size         int
	TTL          time.Duration
}

// Stats returns a snapshot of counters and size.
func (c *RoleCache) Stats() RoleCacheStats {
	return RoleCacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.Len(),
		TTL:    c.ttl,
	}
}
