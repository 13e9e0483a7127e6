package flowgraph

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"context"
)

// Branch runs a main node, then uses a resolver to pick one of several
// named successor nodes based on the main node's input/output. TeamExecutor
// uses this to implement DECIDE: the main node is the rule-based decision,
// and the "defer_to_llm" branch is only taken when the tool mix is
// ambiguous (spec.md §4.5 DECIDE).
type Branch struct {
	name     string
	node     Node
	resolver func(ctx context.Context, input, output any) (string, error)
	branches map[string]Node
}

// NewBranch builds a Branch. resolver and branches may both be left empty,
// in which case Run simply returns the main node's output unchanged.
func NewBranch(name string, node Node, resolver func(context.Context, any, any) (string, error), branches map[string]Node) (*Branch, error) {
	if node == nil {
		return nil, errors.New("flowgraph: branch " + name + " requires a main node")
	}
	return &Branch{name: name, node: node, resolver: resolver, branches: branches}, nil
}

func (b *Branch) Name() string { return b.name }

func (b *Branch) Run(ctx context.Context, input any) (any, error) {
	output, err := b.node.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(b.branches) == 0 || b.resolver == nil {
		return output, nil
	}
	route, err := b.resolver(ctx, input, output)
	if err != nil {
		return nil, err
	}
	branch, ok := b.branches[route]
	if !ok {
		available := slices.Collect(maps.Keys(b.branches))
		return nil, fmt.Errorf("flowgraph: branch %q not found in %q: available routes %v", route, b.name, available)
	}
	return branch.Run(ctx, output)
}
