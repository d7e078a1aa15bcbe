package reduce

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/matzehuels/rsolver/pkg/network"
)

var (
	// ErrNoWye is returned by [FindWye] when no internal node has exactly
	// three resistors. [Solve] treats it as "try something else".
	ErrNoWye = errors.New("no wye found")

	// ErrNoDelta is returned by [FindDelta] when the network has no
	// triangle.
	ErrNoDelta = errors.New("no delta found")

	// ErrMalformedWye is returned by [ConvertWyeToDelta] when the three
	// resistors do not form a star around a single internal node with three
	// distinct outer nodes.
	ErrMalformedWye = errors.New("resistors do not form a wye")

	// ErrMalformedDelta is returned by [ConvertDeltaToWye] when the three
	// resistors do not form a triangle over three distinct nodes.
	ErrMalformedDelta = errors.New("resistors do not form a delta")
)

// WyeToDelta returns the triangle equivalent to a star with arms r1, r2
// and r3. Each result is opposite the arm with the same position: d1
// connects the outer ends of arms 2 and 3, and so on.
func WyeToDelta(r1, r2, r3 float64) (d1, d2, d3 float64) {
	rp := r1*r2 + r2*r3 + r3*r1
	return rp / r1, rp / r2, rp / r3
}

// DeltaToWye returns the star equivalent to a triangle with sides ra, rb
// and rc. Each result is the arm to the corner opposite the side with the
// same position.
func DeltaToWye(ra, rb, rc float64) (ya, yb, yc float64) {
	rs := ra + rb + rc
	return rb * rc / rs, rc * ra / rs, ra * rb / rs
}

// FindWye returns the three resistors of the first non-terminal node, in
// adjacency order, that has exactly three of them.
func FindWye(net *network.Network) ([3]network.Resistor, error) {
	for _, n := range net.Nodes() {
		if net.IsTerminal(n) {
			continue
		}
		if inc := net.Incident(n); len(inc) == 3 {
			return [3]network.Resistor{inc[0], inc[1], inc[2]}, nil
		}
	}
	return [3]network.Resistor{}, ErrNoWye
}

// ConvertWyeToDelta replaces the star r1, r2, r3 by its equivalent
// triangle and eliminates the centre node. The centre must be internal and
// have no other resistors.
func ConvertWyeToDelta(net *network.Network, r1, r2, r3 network.Resistor) (Step, error) {
	centre, ok := wyeCentre(r1, r2, r3)
	if !ok {
		return Step{}, fmt.Errorf("%s %s %s: %w", r1, r2, r3, ErrMalformedWye)
	}
	if net.IsTerminal(centre) || net.Degree(centre) != 3 {
		return Step{}, fmt.Errorf("centre %d has %d resistors: %w", centre, net.Degree(centre), ErrMalformedWye)
	}
	n1, _ := r1.Other(centre)
	n2, _ := r2.Other(centre)
	n3, _ := r3.Other(centre)
	if n1 == n2 || n2 == n3 || n3 == n1 {
		return Step{}, fmt.Errorf("outer nodes %d %d %d: %w", n1, n2, n3, ErrMalformedWye)
	}

	removed := []network.Resistor{r1, r2, r3}
	for _, r := range removed {
		if !net.Has(r) {
			return Step{}, fmt.Errorf("wye to delta: %s: %w", r, network.ErrNotInAdjacency)
		}
	}
	for _, r := range removed {
		if err := net.Remove(r); err != nil {
			return Step{}, fmt.Errorf("wye to delta: %w", err)
		}
	}
	d1, d2, d3 := WyeToDelta(r1.R, r2.R, r3.R)
	added := []network.Resistor{
		net.Add(network.NewResistor(d1, n2, n3)),
		net.Add(network.NewResistor(d2, n3, n1)),
		net.Add(network.NewResistor(d3, n1, n2)),
	}
	return Step{Rule: RuleWyeDelta, Removed: removed, Added: added}, nil
}

// wyeCentre returns the single node shared by all three resistors.
func wyeCentre(r1, r2, r3 network.Resistor) (network.Node, bool) {
	var centre network.Node
	if r1.SelfLoop() || r2.SelfLoop() || r3.SelfLoop() {
		return centre, false
	}
	count := 0
	for _, n := range []network.Node{r1.A, r1.B} {
		if r2.Touches(n) && r3.Touches(n) {
			centre = n
			count++
		}
	}
	return centre, count == 1
}

// FindDelta returns the sides of a triangle. For each base edge in the
// order chosen by picker, it intersects the neighbours of the two ends
// and, if the intersection is not empty, lets picker choose the third
// corner. A nil picker means [FirstMatch].
func FindDelta(net *network.Network, picker Picker) ([3]network.Resistor, error) {
	if picker == nil {
		picker = FirstMatch{}
	}
	for _, base := range picker.Order(net.Resistors()) {
		left := neighbours(net, base.A, base)
		right := neighbours(net, base.B, base)

		var common []network.Node
		for _, v := range left.Values() {
			if right.Contains(v) {
				common = append(common, v.(network.Node))
			}
		}
		if len(common) == 0 {
			continue
		}
		apex := picker.Pick(common)
		ra, okA := connecting(net, apex, base.A)
		rb, okB := connecting(net, apex, base.B)
		if !okA || !okB {
			return [3]network.Resistor{}, fmt.Errorf("apex %d of %s: %w", apex, base, network.ErrNotInAdjacency)
		}
		return [3]network.Resistor{base, ra, rb}, nil
	}
	return [3]network.Resistor{}, ErrNoDelta
}

// neighbours returns the nodes reachable from n over resistors other than
// base, excluding base's own endpoints, in adjacency order.
func neighbours(net *network.Network, n network.Node, base network.Resistor) *linkedhashset.Set {
	set := linkedhashset.New()
	for _, r := range net.Incident(n) {
		if r.Equal(base) {
			continue
		}
		for _, m := range []network.Node{r.A, r.B} {
			if !base.Touches(m) {
				set.Add(m)
			}
		}
	}
	return set
}

// connecting returns the first resistor in a's adjacency that ends at b.
func connecting(net *network.Network, a, b network.Node) (network.Resistor, bool) {
	for _, r := range net.Incident(a) {
		if r.Connects(a, b) {
			return r, true
		}
	}
	return network.Resistor{}, false
}

// ConvertDeltaToWye replaces the triangle ra, rb, rc by its equivalent star
// around a node from [network.Network.FreeNode]. Each arm goes to the corner
// opposite the side it is computed from.
func ConvertDeltaToWye(net *network.Network, ra, rb, rc network.Resistor) (Step, error) {
	corners, ok := deltaCorners(ra, rb, rc)
	if !ok {
		return Step{}, fmt.Errorf("%s %s %s: %w", ra, rb, rc, ErrMalformedDelta)
	}
	removed := []network.Resistor{ra, rb, rc}
	for _, r := range removed {
		if !net.Has(r) {
			return Step{}, fmt.Errorf("delta to wye: %s: %w", r, network.ErrNotInAdjacency)
		}
	}
	for _, r := range removed {
		if err := net.Remove(r); err != nil {
			return Step{}, fmt.Errorf("delta to wye: %w", err)
		}
	}

	centre := net.FreeNode()
	ya, yb, yc := DeltaToWye(ra.R, rb.R, rc.R)
	added := []network.Resistor{
		net.Add(network.NewResistor(ya, centre, opposite(corners, ra))),
		net.Add(network.NewResistor(yb, centre, opposite(corners, rb))),
		net.Add(network.NewResistor(yc, centre, opposite(corners, rc))),
	}
	return Step{Rule: RuleDeltaWye, Removed: removed, Added: added}, nil
}

// deltaCorners returns the three corners of a triangle, in order of first
// appearance, if the resistors connect three distinct pairs of three
// distinct nodes.
func deltaCorners(ra, rb, rc network.Resistor) ([3]network.Node, bool) {
	var corners [3]network.Node
	count := 0
	for _, r := range []network.Resistor{ra, rb, rc} {
		if r.SelfLoop() {
			return corners, false
		}
		for _, n := range []network.Node{r.A, r.B} {
			seen := false
			for _, c := range corners[:count] {
				seen = seen || c == n
			}
			if seen {
				continue
			}
			if count == 3 {
				return corners, false
			}
			corners[count] = n
			count++
		}
	}
	if count != 3 {
		return corners, false
	}
	if ra.Connects(rb.A, rb.B) || rb.Connects(rc.A, rc.B) || rc.Connects(ra.A, ra.B) {
		return corners, false
	}
	return corners, true
}

// opposite returns the corner r does not touch.
func opposite(corners [3]network.Node, r network.Resistor) network.Node {
	for _, c := range corners {
		if !r.Touches(c) {
			return c
		}
	}
	return corners[0]
}
