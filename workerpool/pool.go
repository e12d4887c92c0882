// Package workerpool implements the optional background worker pool
// described in spec §5: a fixed-size set of workers, each processing a
// disjoint hash-bucket range of a caller-supplied table. It is not used
// by lflowcache or conjids themselves (both are single-threaded
// cooperative, per spec §5) — it exists for other subsystems that share
// the LFC's hashmap-bucket layout.
//
// Per the design note in spec §9 ("prefer channel-based work
// distribution and barrier-based completion"), this reimplements the
// original POSIX-semaphore fire/done handoff with
// golang.org/x/sync/semaphore for the per-worker handoff and
// golang.org/x/sync/errgroup for join and cancellation propagation,
// rather than hand-rolled primitives.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ovsrobot/ovn-sub001/ovnlog"
)

var log = ovnlog.For("workerpool")

// Bucket is one disjoint range of a caller-supplied hash table that a
// single worker will process and then hand its partial result to
// Merge.
type Bucket struct {
	Start, End int
}

// Work is the unit processed by one worker for one bucket, returning a
// partial result for Merge.
type Work func(ctx context.Context, b Bucket) (any, error)

// Merge combines one worker's partial result into the caller's
// destination. Merge calls for different workers never overlap in
// time — the spec's "merge callbacks must not race on the destination"
// constraint is enforced by only invoking Merge from the main
// goroutine, after that worker's work completes.
type Merge func(partial any)

// Pool runs a fixed number of workers, fanning a bucket list out across
// them and fanning results back in one at a time.
type Pool struct {
	size int
	sem  *semaphore.Weighted
}

// New returns a pool with size workers in flight at once. A size of 0
// or less is treated as 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{size: size, sem: semaphore.NewWeighted(int64(size))}
}

// Run fans work out across p.size workers over buckets, merging each
// worker's result via merge as it completes. Run blocks until every
// bucket has been processed or the context is canceled or a worker
// returns an error, whichever happens first — the spec's
// "workers_must_exit" flag is modeled here as ctx cancellation, and
// "pthread_join before destroying the pool" is modeled as the
// errgroup.Wait join.
func (p *Pool) Run(ctx context.Context, buckets []Bucket, work Work, merge Merge) error {
	results := make(chan any, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range buckets {
		b := b
		if err := p.sem.Acquire(gctx, 1); err != nil {
			// gctx is also canceled when a worker fails; report that
			// worker's error rather than the cancellation it caused.
			if werr := g.Wait(); werr != nil {
				return werr
			}
			return err
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			partial, err := work(gctx, b)
			if err != nil {
				return err
			}
			select {
			case results <- partial:
			case <-gctx.Done():
				return gctx.Err()
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	remaining := len(buckets)
	for remaining > 0 {
		select {
		case partial := <-results:
			merge(partial)
			remaining--
		case err := <-done:
			// All workers finished (possibly with an error) before we
			// drained every result; drain what's buffered, then return.
			for len(results) > 0 {
				merge(<-results)
				remaining--
			}
			return err
		}
	}
	return <-done
}
