package flowgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/gobokuku82/holmesnyangz-sub001/internal/concurrency"
)

// Parallel runs a fixed set of named branch nodes concurrently on the same
// input and aggregates their outputs. Unlike the teacher's generic
// flow.Parallel (which segments one input into many), this variant runs
// one node per named branch with a shared input — the shape Supervisor
// needs to fan out to multiple teams at once. Concurrency is bounded by a
// concurrency.Pool rather than launching one goroutine per branch
// unconditionally, so a plan with many teams never exceeds the configured
// cap (spec.md §5, N_TEAMS_PARALLEL = 3).
type Parallel struct {
	name             string
	branches         map[string]Node
	pool             concurrency.Pool
	continueOnError  bool
	aggregator       func(ctx context.Context, outputs map[string]any, errs map[string]error) (any, error)
}

// ParallelConfig configures a Parallel node.
type ParallelConfig struct {
	Name            string
	Branches        map[string]Node
	Pool            concurrency.Pool // if nil, concurrency.OfGoroutines() is used
	ContinueOnError bool             // if true, a branch error doesn't cancel siblings
	Aggregator      func(ctx context.Context, outputs map[string]any, errs map[string]error) (any, error)
}

// NewParallel builds a Parallel node from cfg.
func NewParallel(cfg ParallelConfig) (*Parallel, error) {
	if len(cfg.Branches) == 0 {
		return nil, errors.New("flowgraph: parallel " + cfg.Name + " requires at least one branch")
	}
	if cfg.Aggregator == nil {
		return nil, errors.New("flowgraph: parallel " + cfg.Name + " requires an aggregator")
	}
	pool := cfg.Pool
	if pool == nil {
		pool = concurrency.OfGoroutines()
	}
	return &Parallel{
		name:            cfg.Name,
		branches:        cfg.Branches,
		pool:            pool,
		continueOnError: cfg.ContinueOnError,
		aggregator:      cfg.Aggregator,
	}, nil
}

func (p *Parallel) Name() string { return p.name }

type parallelResult struct {
	route  string
	output any
	err    error
}

func (p *Parallel) Run(ctx context.Context, input any) (any, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan parallelResult, len(p.branches))
	for route, node := range p.branches {
		route, node := route, node
		err := p.pool.Submit(func() {
			out, err := node.Run(ctx, input)
			results <- parallelResult{route: route, output: out, err: err}
		})
		if err != nil {
			results <- parallelResult{route: route, err: fmt.Errorf("flowgraph: submit branch %q: %w", route, err)}
		}
	}

	outputs := make(map[string]any, len(p.branches))
	errs := make(map[string]error)
	for range p.branches {
		r := <-results
		if r.err != nil {
			errs[r.route] = r.err
			if !p.continueOnError {
				return nil, fmt.Errorf("flowgraph: branch %q failed: %w", r.route, r.err)
			}
			continue
		}
		outputs[r.route] = r.output
	}

	return p.aggregator(ctx, outputs, errs)
}
