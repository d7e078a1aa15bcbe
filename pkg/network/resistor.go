package network

import (
	"fmt"
	"math"
	"strconv"
)

// Node identifies a junction in the network. Identifiers are chosen by the
// caller, except for the star centres created by Delta→Wye conversion,
// which come from [Network.FreeNode].
type Node int

// String returns the decimal form of the identifier.
func (n Node) String() string { return strconv.Itoa(int(n)) }

// Resistor is an undirected weighted edge between two nodes.
//
// The zero value is not meaningful: R must be positive and finite, and A
// and B must differ, before the resistor is solved. Resistors are values;
// "changing" one means removing it and adding a replacement.
type Resistor struct {
	R float64 // Resistance in ohms
	A Node    // First endpoint
	B Node    // Second endpoint
}

// Key is the canonical, comparable identity of a resistor: its resistance
// and its endpoints in ascending order.
type Key struct {
	R      float64
	Lo, Hi Node
}

// NewResistor returns a resistor of r ohms between a and b.
func NewResistor(r float64, a, b Node) Resistor {
	return Resistor{R: r, A: a, B: b}
}

// Key returns the endpoint-order-independent identity of r.
func (r Resistor) Key() Key {
	lo, hi := r.A, r.B
	if hi < lo {
		lo, hi = hi, lo
	}
	return Key{R: r.R, Lo: lo, Hi: hi}
}

// Equal reports whether r and o carry the same resistance between the
// same unordered pair of nodes.
func (r Resistor) Equal(o Resistor) bool { return r.Key() == o.Key() }

// Touches reports whether n is one of r's endpoints.
func (r Resistor) Touches(n Node) bool { return r.A == n || r.B == n }

// Connects reports whether r's endpoint set is exactly {a, b}.
func (r Resistor) Connects(a, b Node) bool {
	return (r.A == a && r.B == b) || (r.A == b && r.B == a)
}

// Other returns the endpoint of r that is not n. It returns
// [ErrNotEndpoint] when n is neither endpoint, which means the caller
// walked the graph inconsistently.
func (r Resistor) Other(n Node) (Node, error) {
	switch n {
	case r.A:
		return r.B, nil
	case r.B:
		return r.A, nil
	}
	return 0, fmt.Errorf("%w: node %d, resistor %s", ErrNotEndpoint, n, r)
}

// Conductance returns 1/R.
func (r Resistor) Conductance() float64 { return 1 / r.R }

// SelfLoop reports whether both endpoints are the same node.
func (r Resistor) SelfLoop() bool { return r.A == r.B }

// Valid reports whether the resistance is strictly positive and finite.
func (r Resistor) Valid() bool {
	return r.R > 0 && !math.IsInf(r.R, 0) && !math.IsNaN(r.R)
}

// String formats r as "3Ω(0-1)".
func (r Resistor) String() string {
	return fmt.Sprintf("%sΩ(%d-%d)", strconv.FormatFloat(r.R, 'g', 6, 64), r.A, r.B)
}
