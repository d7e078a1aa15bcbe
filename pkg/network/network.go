package network

import (
	"errors"
	"fmt"
	"slices"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

var (
	// ErrNotEndpoint is returned by [Resistor.Other] when the given node is
	// not an endpoint of the resistor. It indicates a broken graph walk.
	ErrNotEndpoint = errors.New("node is not an endpoint of resistor")

	// ErrNotInAdjacency is returned by [Network.Remove] when the resistor is
	// missing from one of its endpoints' adjacency lists. Given the network
	// invariants this only happens when removing a resistor that was never
	// added, or removing it twice.
	ErrNotInAdjacency = errors.New("resistor not in adjacency list")

	// ErrSelfLoop is returned by [Network.Validate] for a resistor whose two
	// endpoints are the same node.
	ErrSelfLoop = errors.New("resistor connects a node to itself")

	// ErrInvalidResistance is returned by [Network.Validate] for a resistance
	// that is zero, negative, infinite or NaN.
	ErrInvalidResistance = errors.New("resistance must be positive and finite")

	// ErrCorruptAdjacency is returned by [Network.Validate] when the edge set
	// and the adjacency lists disagree.
	ErrCorruptAdjacency = errors.New("adjacency does not match edge set")
)

// Network is a resistor multigraph with a designated terminal set.
//
// The zero value is not usable - use [New].
type Network struct {
	adj       *linkedhashmap.Map // Node -> []Resistor, in insertion order
	edges     []Resistor
	terminals map[Node]struct{}
	next      Node // smallest identifier greater than any seen so far
	seen      bool
}

// New returns an empty network.
func New() *Network {
	return &Network{
		adj:       linkedhashmap.New(),
		terminals: make(map[Node]struct{}),
	}
}

// Add inserts r into the edge set and into both endpoints' adjacency lists,
// and returns r. Resistance values are not checked here; see [Network.Validate].
func (n *Network) Add(r Resistor) Resistor {
	n.attach(r.A, r)
	n.attach(r.B, r)
	n.edges = append(n.edges, r)
	n.observe(r.A)
	n.observe(r.B)
	return r
}

func (n *Network) attach(node Node, r Resistor) {
	n.adj.Put(node, append(n.Incident(node), r))
}

// Remove deletes one copy of r from the edge set and from both endpoints'
// adjacency lists. A node whose list becomes empty is dropped from the
// adjacency. Remove leaves the network untouched and returns
// [ErrNotInAdjacency] if r is not fully present.
func (n *Network) Remove(r Resistor) error {
	ia := slices.IndexFunc(n.Incident(r.A), r.Equal)
	ib := slices.IndexFunc(n.Incident(r.B), r.Equal)
	ie := slices.IndexFunc(n.edges, r.Equal)
	if ia < 0 || ib < 0 || ie < 0 {
		return fmt.Errorf("remove %s: %w", r, ErrNotInAdjacency)
	}
	n.detach(r.A, ia)
	n.detach(r.B, slices.IndexFunc(n.Incident(r.B), r.Equal))
	n.edges = slices.Delete(n.edges, ie, ie+1)
	return nil
}

func (n *Network) detach(node Node, i int) {
	list := slices.Delete(slices.Clone(n.Incident(node)), i, i+1)
	if len(list) == 0 {
		n.adj.Remove(node)
		return
	}
	n.adj.Put(node, list)
}

// AddTerminal marks node as a terminal. It is a no-op if it already is one.
func (n *Network) AddTerminal(node Node) {
	n.terminals[node] = struct{}{}
	n.observe(node)
}

// RemoveTerminal unmarks node. It is a no-op if node is not a terminal.
func (n *Network) RemoveTerminal(node Node) {
	delete(n.terminals, node)
}

// IsTerminal reports whether node is a terminal.
func (n *Network) IsTerminal(node Node) bool {
	_, ok := n.terminals[node]
	return ok
}

// Terminals returns the terminal set in ascending order.
func (n *Network) Terminals() []Node {
	out := make([]Node, 0, len(n.terminals))
	for t := range n.terminals {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// FindParallel returns every resistor whose endpoint set is exactly
// {n1, n2}, in n1's adjacency order. It returns nil if there is none.
func (n *Network) FindParallel(n1, n2 Node) []Resistor {
	var out []Resistor
	for _, r := range n.Incident(n1) {
		if r.Connects(n1, n2) {
			out = append(out, r)
		}
	}
	return out
}

// Usage returns the number of resistors touching node, plus one if node is
// a terminal. The extra count keeps terminals out of series chains.
func (n *Network) Usage(node Node) int {
	u := len(n.Incident(node))
	if n.IsTerminal(node) {
		u++
	}
	return u
}

// Incident returns the resistors attached to node in attachment order, or
// nil if the node has none. The returned slice must not be modified.
func (n *Network) Incident(node Node) []Resistor {
	v, ok := n.adj.Get(node)
	if !ok {
		return nil
	}
	return v.([]Resistor)
}

// Degree returns the number of resistors attached to node.
func (n *Network) Degree(node Node) int { return len(n.Incident(node)) }

// HasNode reports whether at least one resistor touches node.
func (n *Network) HasNode(node Node) bool {
	_, ok := n.adj.Get(node)
	return ok
}

// Has reports whether at least one copy of r is an edge.
func (n *Network) Has(r Resistor) bool {
	return slices.ContainsFunc(n.edges, r.Equal)
}

// Nodes returns every node with at least one resistor, in adjacency
// insertion order.
func (n *Network) Nodes() []Node {
	keys := n.adj.Keys()
	out := make([]Node, len(keys))
	for i, k := range keys {
		out[i] = k.(Node)
	}
	return out
}

// Resistors returns a copy of the edge set in insertion order.
func (n *Network) Resistors() []Resistor { return slices.Clone(n.edges) }

// NodeCount returns the number of connected nodes.
func (n *Network) NodeCount() int { return n.adj.Size() }

// ResistorCount returns the number of edges, counting duplicates.
func (n *Network) ResistorCount() int { return len(n.edges) }

// FreeNode allocates an identifier that has never been used as an endpoint
// or terminal in this network. Each call returns a new identifier.
func (n *Network) FreeNode() Node {
	id := n.next
	n.observe(id)
	return id
}

func (n *Network) observe(node Node) {
	if !n.seen || node >= n.next {
		n.next = node + 1
		n.seen = true
	}
}

// Clone returns a deep copy of the network, including node order and the
// identifier allocator state.
func (n *Network) Clone() *Network {
	c := New()
	it := n.adj.Iterator()
	for it.Next() {
		c.adj.Put(it.Key(), slices.Clone(it.Value().([]Resistor)))
	}
	c.edges = slices.Clone(n.edges)
	for t := range n.terminals {
		c.terminals[t] = struct{}{}
	}
	c.next, c.seen = n.next, n.seen
	return c
}

// Validate checks resistance values, rejects self loops and verifies that
// the adjacency lists agree with the edge set.
func (n *Network) Validate() error {
	counts := make(map[Key]int, len(n.edges))
	for _, r := range n.edges {
		if r.SelfLoop() {
			return fmt.Errorf("%s: %w", r, ErrSelfLoop)
		}
		if !r.Valid() {
			return fmt.Errorf("%s: %w", r, ErrInvalidResistance)
		}
		counts[r.Key()] += 2
	}

	it := n.adj.Iterator()
	for it.Next() {
		node := it.Key().(Node)
		list := it.Value().([]Resistor)
		if len(list) == 0 {
			return fmt.Errorf("node %d has an empty list: %w", node, ErrCorruptAdjacency)
		}
		for _, r := range list {
			if !r.Touches(node) {
				return fmt.Errorf("node %d lists %s: %w", node, r, ErrCorruptAdjacency)
			}
			counts[r.Key()]--
		}
	}
	for k, c := range counts {
		if c != 0 {
			return fmt.Errorf("%gΩ(%d-%d) off by %d: %w", k.R, k.Lo, k.Hi, c, ErrCorruptAdjacency)
		}
	}
	return nil
}

// String summarises the network size, e.g. "network(4 nodes, 5 resistors, 2 terminals)".
func (n *Network) String() string {
	return fmt.Sprintf("network(%d nodes, %d resistors, %d terminals)",
		n.NodeCount(), n.ResistorCount(), len(n.terminals))
}
