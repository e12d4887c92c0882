// Package conjids implements the conjunction-ID allocator (CIA): a
// contiguous-range integer allocator over the 32-bit non-zero keyspace
// [1, 2^32-1], keyed by logical-flow UUID.
package conjids

import (
	"github.com/ovsrobot/ovn-sub001/ovnlog"
	"github.com/ovsrobot/ovn-sub001/ovnstats"
	"github.com/ovsrobot/ovn-sub001/ovnuuid"
)

var log = ovnlog.For("conjids")

// maxID is the top of the allocatable range: the 32-bit keyspace minus
// the reserved value 0. A var, not a const, solely so allocator_test.go
// can shrink the keyspace to exercise the exhaustion/wrap-around path
// without looping over four billion entries.
var maxID uint32 = 1<<32 - 1

// probeWarnThreshold is the number of probe-forward steps past which an
// allocation is logged at debug level; a handful of steps is normal
// under contention, a long scan is worth surfacing.
const probeWarnThreshold = 8

// owner records the contiguous range held by one UUID.
type owner struct {
	start uint32
	n     uint32
}

// Allocator is the CIA allocation node described in spec §3/§4.1. It is
// not safe for concurrent use without external synchronization — the
// surrounding engine is single-threaded cooperative (spec §5).
type Allocator struct {
	// allocations is the set of currently occupied IDs. Using a map
	// rather than a bitmap trades memory for simplicity; realistic
	// deployments hold far fewer than 2^32 entries (spec §4.1
	// rationale).
	allocations map[uint32]struct{}
	owners      map[ovnuuid.UUID]owner

	stats *ovnstats.Counters
}

// New returns an empty allocator.
func New() *Allocator {
	return &Allocator{
		allocations: make(map[uint32]struct{}),
		owners:      make(map[ovnuuid.UUID]owner),
		stats:       ovnstats.NewCounters(),
	}
}

// Stats returns the allocator's telemetry counters (currently just
// lflow_conj_conflict, incremented on every probe collision).
func (a *Allocator) Stats() *ovnstats.Counters {
	return a.stats
}

// rangeFree checks whether the range [start, start+n) is entirely
// unoccupied.
func (a *Allocator) rangeFree(start, n uint32) bool {
	for i := uint32(0); i < n; i++ {
		if _, occupied := a.allocations[start+i]; occupied {
			return false
		}
	}
	return true
}

func (a *Allocator) occupy(start, n uint32) {
	for i := uint32(0); i < n; i++ {
		a.allocations[start+i] = struct{}{}
	}
}

func (a *Allocator) vacate(start, n uint32) {
	for i := uint32(0); i < n; i++ {
		delete(a.allocations, start+i)
	}
}

// Alloc allocates n contiguous IDs for uuid and returns the first ID, or
// 0 if n == 0 or the keyspace is exhausted. The preferred start is
// uuid.Part(0); 0 is never included in an allocated range. See spec
// §4.1 for the full probe-forward scan algorithm and the wrap-around
// "initial" latch design note (spec §9).
func (a *Allocator) Alloc(id ovnuuid.UUID, n uint32) uint32 {
	if n == 0 || n > maxID {
		return 0
	}

	start := id.Part(0)
	if start == 0 {
		start = 1
	}
	if start > maxID-n+1 {
		// [start, start+n) would run off the top of the keyspace;
		// wrap to the beginning before probing, same as a conflict
		// found at the tail end (spec §4.1: the probe never lets a
		// range straddle the keyspace boundary, which would otherwise
		// occupy ID 0 via uint32 wraparound).
		start = 1
	}

	initial := false
	wrapped := false
	probeStart := start
	probes := 0
	for {
		if a.rangeFree(start, n) {
			if probes > probeWarnThreshold {
				log.WithField("uuid", id.String()).WithField("probes", probes).
					Debug("conjunction-id allocation required an extended probe scan")
			}
			a.occupy(start, n)
			a.owners[id] = owner{start: start, n: n}
			return start
		}

		probes++
		a.stats.Inc(ovnstats.LflowConjConflict)

		// Find the first conflicting offset within [start, start+n)
		// and resume the probe just past it.
		k := uint32(0)
		for ; k < n; k++ {
			if _, occupied := a.allocations[start+k]; occupied {
				break
			}
		}
		next := start + k + 1
		if next == 0 || next > maxID-n+1 {
			next = 1
			wrapped = true
		}
		start = next

		if !initial {
			initial = true
		} else if wrapped && start >= probeStart {
			// Wrapped back to (or past) where we started: exhausted.
			return 0
		}
	}
}

// AllocSpecified attempts to allocate exactly [start, start+n) for
// uuid, succeeding only if every ID in the range is currently free. It
// never advances on conflict. n == 0 and start == 0 are both rejected
// (spec §9 resolves the open question on start == 0 explicitly).
func (a *Allocator) AllocSpecified(id ovnuuid.UUID, start, n uint32) bool {
	if n == 0 || start == 0 {
		return false
	}
	if start > maxID-n+1 {
		// Range would wrap past the top of the keyspace.
		return false
	}
	if !a.rangeFree(start, n) {
		return false
	}
	a.occupy(start, n)
	a.owners[id] = owner{start: start, n: n}
	return true
}

// Free releases the range owned by uuid. A no-op if uuid is not present
// (tolerant of double-free after Clear, per spec §4.1).
func (a *Allocator) Free(id ovnuuid.UUID) {
	o, ok := a.owners[id]
	if !ok {
		return
	}
	a.vacate(o.start, o.n)
	delete(a.owners, id)
}

// Clear releases every range; equivalent to destroy+init.
func (a *Allocator) Clear() {
	a.allocations = make(map[uint32]struct{})
	a.owners = make(map[ovnuuid.UUID]owner)
}

// Len returns the number of currently occupied IDs, for invariant
// checks (spec §8, property 3: |allocations| == sum(owners[u].n)).
func (a *Allocator) Len() int {
	return len(a.allocations)
}

// checkInvariant recomputes sum(owners[u].n) and compares against
// len(allocations); used by tests, not on any hot path.
func (a *Allocator) checkInvariant() bool {
	var sum uint32
	for _, o := range a.owners {
		sum += o.n
	}
	return uint64(sum) == uint64(len(a.allocations))
}
