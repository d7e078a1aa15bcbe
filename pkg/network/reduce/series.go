package reduce

import (
	"fmt"
	"slices"

	"github.com/matzehuels/rsolver/pkg/network"
)

// Chain is a maximal run of resistors joined through internal nodes of
// degree two, ordered from First to Last.
//
// A closed chain (First == Last) is a loop hanging off a single node, or a
// ring with no boundary at all. It carries no current and is dropped
// without replacement.
type Chain struct {
	Resistors []network.Resistor
	First     network.Node
	Last      network.Node
}

// Empty reports whether the chain has no resistors.
func (c Chain) Empty() bool { return len(c.Resistors) == 0 }

// Closed reports whether both ends of a non-empty chain are the same node.
func (c Chain) Closed() bool { return !c.Empty() && c.First == c.Last }

// Total returns the summed resistance of the chain.
func (c Chain) Total() float64 {
	var sum float64
	for _, r := range c.Resistors {
		sum += r.R
	}
	return sum
}

// FindSeries returns the maximal series chain through start. The chain is
// empty when start is a terminal or does not have exactly two resistors.
func FindSeries(net *network.Network, start network.Node) (Chain, error) {
	if net.IsTerminal(start) || net.Usage(start) != 2 {
		return Chain{First: start, Last: start}, nil
	}
	chain := slices.Clone(net.Incident(start))

	// Forward from start along the second resistor.
	last := start
	for {
		node, err := chain[len(chain)-1].Other(last)
		if err != nil {
			return Chain{}, fmt.Errorf("find series from %d: %w", start, err)
		}
		if boundary(net, node) {
			last = node
			break
		}
		next, err := otherResistor(net, node, chain[len(chain)-1])
		if err != nil {
			return Chain{}, fmt.Errorf("find series from %d: %w", start, err)
		}
		far, err := next.Other(node)
		if err != nil {
			return Chain{}, fmt.Errorf("find series from %d: %w", start, err)
		}
		if far == start {
			// Walked all the way round: next is chain[0].
			return Chain{Resistors: chain, First: start, Last: start}, nil
		}
		chain = append(chain, next)
		last = node
	}

	// Backward from start along the first resistor.
	first := start
	for {
		node, err := chain[0].Other(first)
		if err != nil {
			return Chain{}, fmt.Errorf("find series from %d: %w", start, err)
		}
		if boundary(net, node) {
			first = node
			break
		}
		prev, err := otherResistor(net, node, chain[0])
		if err != nil {
			return Chain{}, fmt.Errorf("find series from %d: %w", start, err)
		}
		chain = slices.Insert(chain, 0, prev)
		first = node
	}
	return Chain{Resistors: chain, First: first, Last: last}, nil
}

// boundary reports whether a series walk must stop at node.
func boundary(net *network.Network, node network.Node) bool {
	return net.IsTerminal(node) || net.Usage(node) != 2
}

// otherResistor returns the resistor at the degree-two node that is not
// from.
func otherResistor(net *network.Network, node network.Node, from network.Resistor) (network.Resistor, error) {
	inc := net.Incident(node)
	switch {
	case len(inc) != 2:
		return network.Resistor{}, fmt.Errorf("node %d has %d resistors, want 2: %w", node, len(inc), network.ErrNotInAdjacency)
	case inc[0].Equal(from):
		return inc[1], nil
	case inc[1].Equal(from):
		return inc[0], nil
	}
	return network.Resistor{}, fmt.Errorf("%s at node %d: %w", from, node, network.ErrNotInAdjacency)
}

// JoinSeries removes the chain and, unless it is closed, adds a single
// resistor of the summed value between its ends. An empty chain is a no-op
// and returns a zero Step.
func JoinSeries(net *network.Network, chain Chain) (Step, error) {
	if chain.Empty() {
		return Step{}, nil
	}
	for _, r := range chain.Resistors {
		if err := net.Remove(r); err != nil {
			return Step{}, fmt.Errorf("join series: %w", err)
		}
	}
	step := Step{Rule: RuleSeries, Removed: chain.Resistors}
	if !chain.Closed() {
		step.Added = []network.Resistor{net.Add(network.NewResistor(chain.Total(), chain.First, chain.Last))}
	}
	return step, nil
}

// SolveSeries joins every series chain once, visiting nodes in adjacency
// order. It reports whether anything was joined.
func SolveSeries(net *network.Network) (bool, error) {
	return solveSeries(net, nil)
}

func solveSeries(net *network.Network, out emitter) (bool, error) {
	found := false
	for _, n := range net.Nodes() {
		if !net.HasNode(n) {
			continue
		}
		chain, err := FindSeries(net, n)
		if err != nil {
			return found, err
		}
		if chain.Empty() {
			continue
		}
		step, err := JoinSeries(net, chain)
		if err != nil {
			return found, err
		}
		out.emit(step)
		found = true
	}
	return found, nil
}
