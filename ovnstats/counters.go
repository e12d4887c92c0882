// Package ovnstats holds the named telemetry counters used by
// lflowcache and conjids. Counter names are part of the external
// contract (spec §6) and must stay stable for test assertions.
package ovnstats

import "sync"

// Counters is a mutex-protected bag of named, monotonically increasing
// counters, modeled after fuse.LatencyMap's stats map: a handful of
// named integers with Add/Snapshot/Reset, nothing fancier.
type Counters struct {
	mu     sync.Mutex
	values map[string]uint64
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

// Inc increments the named counter by 1, creating it if necessary.
func (c *Counters) Inc(name string) {
	c.Add(name, 1)
}

// Add increments the named counter by delta.
func (c *Counters) Add(name string, delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] += delta
}

// Get returns the current value of a counter (0 if never touched).
func (c *Counters) Get(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Snapshot returns a copy of all counters, keyed by their names.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Reset zeroes every counter.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.values {
		c.values[k] = 0
	}
}

// LFC telemetry counter names, verbatim from spec §6.
const (
	LflowCacheFlush       = "lflow_cache_flush"
	LflowCacheAdd         = "lflow_cache_add"
	LflowCacheHit         = "lflow_cache_hit"
	LflowCacheMiss        = "lflow_cache_miss"
	LflowCacheDelete      = "lflow_cache_delete"
	LflowCacheFull        = "lflow_cache_full"
	LflowCacheMemFull     = "lflow_cache_mem_full"
	LflowCacheAddConjID   = "lflow_cache_add_conj_id"
	LflowCacheAddExpr     = "lflow_cache_add_expr"
	LflowCacheAddMatches  = "lflow_cache_add_matches"
	LflowCacheFreeConjID  = "lflow_cache_free_conj_id"
	LflowCacheFreeExpr    = "lflow_cache_free_expr"
	LflowCacheFreeMatches = "lflow_cache_free_matches"

	LflowConjConflict = "lflow_conj_conflict"
)
