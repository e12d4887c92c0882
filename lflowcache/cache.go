// Package lflowcache implements the logical-flow artifact cache (LFC): a
// bounded, capacity- and memory-limited associative store that
// memoizes the result of compiling a logical flow into one of three
// progressive artifact kinds.
package lflowcache

import (
	"github.com/ovsrobot/ovn-sub001/ovnlog"
	"github.com/ovsrobot/ovn-sub001/ovnstats"
	"github.com/ovsrobot/ovn-sub001/ovnuuid"
)

var log = ovnlog.For("lflowcache")

// entryOverhead is the fixed per-entry byte cost charged in addition to
// a payload's self-reported size, approximating bookkeeping (map slot,
// key, tag) overhead.
const entryOverhead = 64

// Payload is implemented by the owned artifact of an Expr or Matches
// entry (a compiled match expression or an expanded match set,
// respectively). The logical-flow expression compiler that produces
// these types is an external collaborator (spec §1); this package only
// needs to know how large one is.
type Payload interface {
	Size() uint32
}

// Kind tags which of the three variants a Value holds.
type Kind int

const (
	KindConjID Kind = iota
	KindExpr
	KindMatches
)

// Value is the tagged cache entry value described in spec §3: exactly
// one of ConjId, Expr, or Matches. The zero Value is not meaningful;
// always obtain one through the cache's add_* admission calls.
type Value struct {
	kind      Kind
	conjIDOfs uint32
	expr      Payload
	matches   Payload
}

// Kind reports which variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// ConjIDOffset returns the cached allocation offset. Valid for all
// three variants (spec §3: ConjId carries it alone; Expr carries it
// alongside the compiled expression; Matches alone does not carry one,
// and ConjIDOffset returns 0 for it).
func (v Value) ConjIDOffset() uint32 { return v.conjIDOfs }

// Expr returns the owned compiled expression, or nil unless Kind() ==
// KindExpr.
func (v Value) Expr() Payload { return v.expr }

// Matches returns the owned expanded match set, or nil unless Kind() ==
// KindMatches.
func (v Value) Matches() Payload { return v.matches }

func (v Value) size() uint32 {
	total := uint32(entryOverhead)
	switch v.kind {
	case KindExpr:
		total += v.expr.Size()
	case KindMatches:
		total += v.matches.Size()
	}
	return total
}

type entry struct {
	value Value
	bytes uint32
}

// Cache is the bounded LFC described in spec §3/§4.2.
type Cache struct {
	enabled  bool
	capacity uint32
	maxBytes uint64

	entries    map[ovnuuid.UUID]entry
	totalBytes uint64

	stats *ovnstats.Counters
}

// Create produces an enabled cache with zero capacity and zero byte
// budget; callers must Configure before it will admit anything (spec
// §4.2: create()).
func Create() *Cache {
	return &Cache{
		enabled: true,
		entries: make(map[ovnuuid.UUID]entry),
		stats:   ovnstats.NewCounters(),
	}
}

// Stats returns the cache's telemetry counters.
func (c *Cache) Stats() *ovnstats.Counters {
	return c.stats
}

// IsEnabled reports the master enable switch (spec §4.2: is_enabled()).
func (c *Cache) IsEnabled() bool {
	return c.enabled
}

// Configure sets the cache's limits (spec §4.2: configure()). maxKiB is
// normalized to bytes (max_bytes = max_kib * 1024). If the transition
// disables the cache, or if either new limit is below current usage,
// the cache is flushed first, then the new limits are applied —
// enforcing cache invariant (d) in spec §3.
func (c *Cache) Configure(enabled bool, capacity uint32, maxKiB uint64) {
	maxBytes := maxKiB * 1024

	needsFlush := (!enabled && c.enabled) ||
		uint64(capacity) < uint64(len(c.entries)) ||
		maxBytes < c.totalBytes

	if needsFlush {
		c.flushLocked()
	}

	c.enabled = enabled
	c.capacity = capacity
	c.maxBytes = maxBytes
}

// MemoryUsage reports observable counters for the surrounding telemetry
// system: entry count and total bytes in KiB (rounded down).
func (c *Cache) MemoryUsage() (entries uint32, kib uint64) {
	return uint32(len(c.entries)), c.totalBytes / 1024
}

// admit is the shared admission path for the three add_* calls. It
// returns false (rejecting the admission, payload ownership remaining
// with the caller) when the cache is disabled, the key is already
// present (spec §9: duplicate admission is rejected, not overwritten —
// see DESIGN.md), or either limit would be exceeded.
func (c *Cache) admit(id ovnuuid.UUID, v Value, kindCounter string) bool {
	if !c.enabled {
		return false
	}
	if _, exists := c.entries[id]; exists {
		log.WithField("uuid", id.String()).Warn("rejecting duplicate admission for existing cache entry")
		return false
	}

	sz := v.size()
	if uint64(len(c.entries))+1 > uint64(c.capacity) {
		c.stats.Inc(ovnstats.LflowCacheFull)
		return false
	}
	if c.totalBytes+uint64(sz) > c.maxBytes {
		c.stats.Inc(ovnstats.LflowCacheMemFull)
		return false
	}

	c.entries[id] = entry{value: v, bytes: sz}
	c.totalBytes += uint64(sz)
	c.stats.Inc(ovnstats.LflowCacheAdd)
	c.stats.Inc(kindCounter)
	return true
}

// AddConjID admits a ConjId-only entry (spec §4.2: add_conj_id()).
func (c *Cache) AddConjID(id ovnuuid.UUID, offset uint32) bool {
	v := Value{kind: KindConjID, conjIDOfs: offset}
	return c.admit(id, v, ovnstats.LflowCacheAddConjID)
}

// AddExpr admits an Expr entry; expr becomes cache-owned on success
// (spec §4.2: add_expr()). On rejection ownership remains with the
// caller, who must dispose of expr themselves.
func (c *Cache) AddExpr(id ovnuuid.UUID, offset uint32, expr Payload) bool {
	v := Value{kind: KindExpr, conjIDOfs: offset, expr: expr}
	return c.admit(id, v, ovnstats.LflowCacheAddExpr)
}

// AddMatches admits a Matches entry; matches becomes cache-owned on
// success (spec §4.2: add_matches()).
func (c *Cache) AddMatches(id ovnuuid.UUID, matches Payload) bool {
	v := Value{kind: KindMatches, matches: matches}
	return c.admit(id, v, ovnstats.LflowCacheAddMatches)
}

// Get looks up id, returning (zero Value, false) when disabled or
// absent (spec §4.2: get()).
func (c *Cache) Get(id ovnuuid.UUID) (Value, bool) {
	if !c.enabled {
		return Value{}, false
	}
	e, ok := c.entries[id]
	if !ok {
		c.stats.Inc(ovnstats.LflowCacheMiss)
		return Value{}, false
	}
	c.stats.Inc(ovnstats.LflowCacheHit)
	return e.value, true
}

// Invalidate deletes id's entry if present, releasing its payload (spec
// §4.2: invalidate()). A no-op if id is absent.
func (c *Cache) Invalidate(id ovnuuid.UUID) {
	e, ok := c.entries[id]
	if !ok {
		return
	}
	delete(c.entries, id)
	c.totalBytes -= uint64(e.bytes)
	c.stats.Inc(ovnstats.LflowCacheDelete)

	switch e.value.kind {
	case KindConjID:
		c.stats.Inc(ovnstats.LflowCacheFreeConjID)
	case KindExpr:
		c.stats.Inc(ovnstats.LflowCacheFreeExpr)
	case KindMatches:
		c.stats.Inc(ovnstats.LflowCacheFreeMatches)
	}
}

// Flush deletes all entries and shrinks the table (spec §4.2: flush()).
func (c *Cache) Flush() {
	c.flushLocked()
}

func (c *Cache) flushLocked() {
	for id, e := range c.entries {
		switch e.value.kind {
		case KindConjID:
			c.stats.Inc(ovnstats.LflowCacheFreeConjID)
		case KindExpr:
			c.stats.Inc(ovnstats.LflowCacheFreeExpr)
		case KindMatches:
			c.stats.Inc(ovnstats.LflowCacheFreeMatches)
		}
		delete(c.entries, id)
	}
	c.entries = make(map[ovnuuid.UUID]entry)
	c.totalBytes = 0
	c.stats.Inc(ovnstats.LflowCacheFlush)
}
