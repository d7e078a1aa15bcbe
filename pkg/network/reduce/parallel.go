package reduce

import (
	"fmt"

	"github.com/matzehuels/rsolver/pkg/network"
)

// JoinParallel replaces branches, which must all connect the same two
// nodes, with one resistor of resistance 1/Σ(1/rᵢ). Fewer than two
// branches is a no-op and returns a zero Step.
func JoinParallel(net *network.Network, branches []network.Resistor) (Step, error) {
	if len(branches) < 2 {
		return Step{}, nil
	}
	var conductance float64
	for _, b := range branches {
		conductance += b.Conductance()
		if err := net.Remove(b); err != nil {
			return Step{}, fmt.Errorf("join parallel: %w", err)
		}
	}
	last := branches[len(branches)-1]
	merged := net.Add(network.NewResistor(1/conductance, last.A, last.B))
	return Step{Rule: RuleParallel, Removed: branches, Added: []network.Resistor{merged}}, nil
}

// SolveParallel merges every group of parallel resistors once. It reports
// whether anything was merged.
func SolveParallel(net *network.Network) (bool, error) {
	return solveParallel(net, nil)
}

func solveParallel(net *network.Network, out emitter) (bool, error) {
	found := false
	for _, r := range net.Resistors() {
		if !net.Has(r) {
			continue
		}
		branches := net.FindParallel(r.A, r.B)
		if len(branches) < 2 {
			continue
		}
		step, err := JoinParallel(net, branches)
		if err != nil {
			return found, err
		}
		out.emit(step)
		found = true
	}
	return found, nil
}
