// Package network provides the mutable resistor multigraph that the
// reduction engine rewrites in place.
//
// # Overview
//
// A [Network] is an undirected multigraph whose edges are [Resistor] values
// and whose vertices are [Node] identifiers. A designated subset of nodes,
// the terminals, is externally observable: reduction rules may bypass or
// merge around a terminal but never eliminate it.
//
// The package only stores and queries the graph. The rewriting rules
// (series, parallel, Wye→Delta, Delta→Wye) and the solve loop live in the
// [reduce] subpackage.
//
// # Basic Usage
//
// Add each resistor once, mark the terminals, then hand the network to
// [reduce.Solve]:
//
//	net := network.New()
//	net.Add(network.NewResistor(3, 0, 1))
//	net.Add(network.NewResistor(5, 1, 2))
//	net.AddTerminal(0)
//	net.AddTerminal(2)
//
//	if _, err := reduce.Solve(net); err != nil {
//	    return err
//	}
//	eq := net.FindParallel(0, 2) // [8Ω(0-2)]
//
// # Resistor Identity
//
// Resistors are immutable values. Two resistors are equal when they carry
// the same resistance between the same unordered pair of nodes, so
// NewResistor(3, 0, 1) equals NewResistor(3, 1, 0). [Resistor.Key] returns
// the canonical comparable form used wherever a resistor must be hashed.
// Identical resistors may be added more than once; each copy is a separate
// edge.
//
// # Ordering
//
// Iteration order is insertion order everywhere: [Network.Nodes] lists
// nodes in the order their adjacency entry was created, [Network.Incident]
// lists resistors in the order they were attached, and [Network.Resistors]
// lists edges in the order they were added. A node whose last resistor is
// removed disappears from the adjacency; if it is reconnected later it is
// appended at the end. Series chain direction and the choice of Wye depend
// on this order, which makes every reduction reproducible.
//
// # Invariants
//
// Every exported mutator preserves the following:
//
//   - A resistor is an edge iff it appears once per copy in each of its two
//     endpoints' adjacency lists.
//   - A node has an adjacency entry iff at least one resistor touches it.
//   - Terminals are only added or removed by the caller.
//   - Resistances stay strictly positive and finite.
//
// [Network.Validate] checks all four and is run by the solver before it
// starts rewriting.
//
// # Concurrency
//
// Network instances are not safe for concurrent use. A network is owned by
// exactly one solve at a time.
//
// [reduce]: github.com/matzehuels/rsolver/pkg/network/reduce
// [reduce.Solve]: github.com/matzehuels/rsolver/pkg/network/reduce.Solve
package network
