package reduce

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/rsolver/pkg/network"
)

// Picker decides which triangle [FindDelta] returns when several exist.
//
// Order receives the edge set in insertion order and returns the order in
// which edges are tried as the triangle's base. Pick receives the non-empty
// list of nodes adjacent to both ends of the base and returns one of them.
// Implementations must not modify their arguments.
type Picker interface {
	Order(candidates []network.Resistor) []network.Resistor
	Pick(nodes []network.Node) network.Node
}

// FirstMatch tries edges in insertion order and picks the first common
// neighbour. It is the default and makes [Solve] fully deterministic.
type FirstMatch struct{}

// Order returns candidates unchanged.
func (FirstMatch) Order(candidates []network.Resistor) []network.Resistor { return candidates }

// Pick returns nodes[0].
func (FirstMatch) Pick(nodes []network.Node) network.Node { return nodes[0] }

// RandomPicker shuffles the base edges and picks a uniformly random common
// neighbour. Two pickers built from the same seed make the same choices.
//
// A RandomPicker is not safe for concurrent use.
type RandomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker returns a picker seeded with seed.
func NewRandomPicker(seed uint64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Order returns a shuffled copy of candidates.
func (p *RandomPicker) Order(candidates []network.Resistor) []network.Resistor {
	out := slices.Clone(candidates)
	p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Pick returns a random element of nodes.
func (p *RandomPicker) Pick(nodes []network.Node) network.Node {
	return nodes[p.rng.IntN(len(nodes))]
}
