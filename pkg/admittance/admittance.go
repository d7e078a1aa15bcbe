// Package admittance reads terminal admittance matrices out of resistor
// networks.
//
// [FromNetwork] reads the matrix from a network that has already been
// reduced to its terminals. [Kron] computes the same matrix directly from
// an unreduced network by star-mesh elimination, which always succeeds and
// serves as the reference when checking a reduction.
package admittance

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/rsolver/pkg/network"
)

// ErrUnreduced is returned by [FromNetwork] when a pair of terminals is
// still joined by more than one resistor.
var ErrUnreduced = errors.New("terminal pair has more than one resistor")

// Matrix is the admittance matrix between an ordered list of terminals.
//
// Off-diagonal entries are -1/R for the equivalent resistance R between two
// terminals, or 0 when they are not connected. Each diagonal entry is the
// negated sum of the rest of its row.
type Matrix struct {
	Terminals []network.Node
	Y         [][]float64
}

func newMatrix(terminals []network.Node) Matrix {
	y := make([][]float64, len(terminals))
	for i := range y {
		y[i] = make([]float64, len(terminals))
	}
	return Matrix{Terminals: slices.Clone(terminals), Y: y}
}

func (m Matrix) fillDiagonal() {
	for i, row := range m.Y {
		var sum float64
		for j, v := range row {
			if i != j {
				sum += v
			}
		}
		row[i] = -sum
	}
}

// FromNetwork builds the matrix of a reduced network. Terminals missing from
// the network are treated as disconnected.
func FromNetwork(net *network.Network, terminals []network.Node) (Matrix, error) {
	m := newMatrix(terminals)
	for i, a := range terminals {
		for j, b := range terminals {
			if i == j {
				continue
			}
			rs := net.FindParallel(a, b)
			switch len(rs) {
			case 0:
			case 1:
				m.Y[i][j] = -rs[0].Conductance()
			default:
				return Matrix{}, fmt.Errorf("terminals %d and %d: %d resistors: %w", a, b, len(rs), ErrUnreduced)
			}
		}
	}
	m.fillDiagonal()
	return m, nil
}

// Kron eliminates every node of net that is not in terminals, one at a time
// in adjacency order, folding each into a conductance mesh between its
// neighbours. net is not modified.
func Kron(net *network.Network, terminals []network.Node) Matrix {
	g := make(map[network.Node]map[network.Node]float64)
	link := func(a, b network.Node, c float64) {
		if g[a] == nil {
			g[a] = make(map[network.Node]float64)
		}
		g[a][b] += c
	}
	for _, r := range net.Resistors() {
		if r.SelfLoop() {
			continue
		}
		link(r.A, r.B, r.Conductance())
		link(r.B, r.A, r.Conductance())
	}

	keep := make(map[network.Node]bool, len(terminals))
	for _, t := range terminals {
		keep[t] = true
	}
	for _, k := range net.Nodes() {
		if keep[k] {
			continue
		}
		eliminate(g, k)
	}

	m := newMatrix(terminals)
	for i, a := range terminals {
		for j, b := range terminals {
			if i != j {
				m.Y[i][j] = -g[a][b]
			}
		}
	}
	m.fillDiagonal()
	return m
}

// eliminate removes node k from the conductance table g, adding
// g[k][i]·g[k][j]/Σg[k] between every pair of its neighbours.
func eliminate(g map[network.Node]map[network.Node]float64, k network.Node) {
	nbrs := make([]network.Node, 0, len(g[k]))
	var total float64
	for n, c := range g[k] {
		if n != k && c > 0 {
			nbrs = append(nbrs, n)
			total += c
		}
	}
	slices.Sort(nbrs)
	for x, i := range nbrs {
		for _, j := range nbrs[x+1:] {
			add := g[k][i] * g[k][j] / total
			g[i][j] += add
			g[j][i] += add
		}
	}
	for _, n := range nbrs {
		delete(g[n], k)
	}
	delete(g, k)
}

// Resistance returns the equivalent resistance between terminals i and j
// (by index), or +Inf when they are not connected.
func (m Matrix) Resistance(i, j int) float64 {
	if m.Y[i][j] == 0 {
		return math.Inf(1)
	}
	return -1 / m.Y[i][j]
}

// Index returns the position of terminal t, or -1.
func (m Matrix) Index(t network.Node) int {
	return slices.Index(m.Terminals, t)
}

// Equal reports whether both matrices cover the same terminals in the same
// order and every entry differs by at most tol, relative to the larger
// magnitude when that exceeds one.
func (m Matrix) Equal(o Matrix, tol float64) bool {
	if !slices.Equal(m.Terminals, o.Terminals) || len(m.Y) != len(o.Y) {
		return false
	}
	for i := range m.Y {
		for j := range m.Y[i] {
			a, b := m.Y[i][j], o.Y[i][j]
			scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
			if math.Abs(a-b) > tol*scale {
				return false
			}
		}
	}
	return true
}

// String formats the matrix one row per line.
func (m Matrix) String() string {
	var b strings.Builder
	for i, row := range m.Y {
		fmt.Fprintf(&b, "%d:", m.Terminals[i])
		for _, v := range row {
			fmt.Fprintf(&b, " %9.4g", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
