// Package flowgraph is a small, generic node/pipeline composition engine
// adapted from the teacher's flow package. It backs two concrete uses in
// this repo: TeamExecutor's internal PLAN→EXECUTE→PROCESS→DECIDE cycle
// (built as a Sequence of named nodes with a Branch at the end for DECIDE's
// conditional LLM call), and Supervisor's "execute" step, which builds a
// Parallel node per dependency level when ExecutionMode is parallel or
// mixed.
//
// Unlike the teacher's flow package, every node here carries a Name used
// for progress-event labeling and structured logging, since every node
// transition in this engine is observable (spec.md §4.7 progress
// streaming).
package flowgraph

import (
	"context"
	"errors"
)

// Node is one named processing unit in a pipeline.
type Node interface {
	Name() string
	Run(ctx context.Context, input any) (any, error)
}

// Processor is the function signature a node wraps.
type Processor func(ctx context.Context, input any) (any, error)

// namedProcessor adapts a bare Processor into a Node.
type namedProcessor struct {
	name string
	fn   Processor
}

func (n *namedProcessor) Name() string { return n.name }
func (n *namedProcessor) Run(ctx context.Context, input any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.fn(ctx, input)
}

// NewNode wraps a Processor as a named Node.
func NewNode(name string, fn Processor) Node {
	return &namedProcessor{name: name, fn: fn}
}

// Sequence chains nodes so each node's output feeds the next node's input.
// It is itself a Node, so sequences compose.
type Sequence struct {
	name  string
	nodes []Node
}

// NewSequence builds a Sequence of the given nodes, run in order.
func NewSequence(name string, nodes ...Node) *Sequence {
	return &Sequence{name: name, nodes: nodes}
}

func (s *Sequence) Name() string { return s.name }

func (s *Sequence) Run(ctx context.Context, input any) (any, error) {
	if len(s.nodes) == 0 {
		return nil, errors.New("flowgraph: sequence " + s.name + " has no nodes")
	}
	current := input
	for _, node := range s.nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := node.Run(ctx, current)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}
