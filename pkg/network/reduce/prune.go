package reduce

import (
	"fmt"

	"github.com/matzehuels/rsolver/pkg/network"
)

// PruneDangling removes every resistor whose non-terminal endpoint has no
// other resistor, visiting nodes in adjacency order. A node left dangling
// by a removal is picked up on the next call. It reports whether anything
// was removed.
func PruneDangling(net *network.Network) (bool, error) {
	return pruneDangling(net, nil)
}

func pruneDangling(net *network.Network, out emitter) (bool, error) {
	found := false
	for _, n := range net.Nodes() {
		if net.IsTerminal(n) || net.Degree(n) != 1 {
			continue
		}
		r := net.Incident(n)[0]
		if err := net.Remove(r); err != nil {
			return found, fmt.Errorf("prune %d: %w", n, err)
		}
		out.emit(Step{Rule: RulePrune, Removed: []network.Resistor{r}})
		found = true
	}
	return found, nil
}
