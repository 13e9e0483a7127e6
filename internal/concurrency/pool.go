// Package concurrency provides a pool abstraction used to bound fan-out
// concurrency for Supervisor's per-turn team dispatch (≤3, spec.md §5).
// TeamExecutor's tool dispatch does not use it; it bounds its tools with
// errgroup.SetLimit instead. Adapted from the teacher's pkg/sync.Pool: a single interface
// with constructors over three different third-party pool libraries, so
// call sites can swap backends without changing their Submit calls.
package concurrency

import (
	"github.com/gammazero/workerpool"
	"github.com/panjf2000/ants/v2"
	conc "github.com/sourcegraph/conc/pool"

	"github.com/gobokuku82/holmesnyangz-sub001/pkg/safe"
)

// Pool is the common interface every goroutine-pool backend implements.
type Pool interface {
	// Submit runs f concurrently, subject to the pool's bound.
	Submit(f func()) error
}

type poolAdapter func(f func()) error

func (p poolAdapter) Submit(f func()) error { return p(f) }

// OfGoroutines launches one unbounded, panic-safe goroutine per Submit.
// Used as the default when no explicit pool is configured.
func OfGoroutines() Pool {
	return poolAdapter(func(f func()) error {
		safe.Go(f)
		return nil
	})
}

// OfAnts adapts a panjf2000/ants pool. Used by the Supervisor's team-level
// fan-out in the example process (cmd/agentd).
func OfAnts(pool *ants.Pool) Pool {
	return poolAdapter(func(f func()) error {
		return pool.Submit(f)
	})
}

// OfWorkerpool adapts a gammazero/workerpool pool. Exercised by tests as an
// alternative backend for the same Pool interface.
func OfWorkerpool(pool *workerpool.WorkerPool) Pool {
	return poolAdapter(func(f func()) error {
		pool.Submit(f)
		return nil
	})
}

// OfConc adapts a sourcegraph/conc pool. Exercised by tests exercising an
// alternative backend for the same Pool interface.
func OfConc(pool *conc.Pool) Pool {
	return poolAdapter(func(f func()) error {
		pool.Go(f)
		return nil
	})
}
