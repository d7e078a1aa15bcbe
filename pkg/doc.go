// Package pkg provides the core libraries of rsolver, a resistor network
// reducer.
//
// # Overview
//
// rsolver collapses a network of resistors into the equivalent resistance
// between every pair of terminal nodes. It repeatedly prunes dangling
// resistors, merges parallel and series resistors, and falls back to
// wye-delta and delta-wye transformations when neither applies.
//
// The typical data flow:
//
//	TOML / YAML / JSON netlist
//	         ↓
//	    [netlist] (decode + validate)
//	         ↓
//	    [network] (multigraph of resistors)
//	         ↓
//	    [network/reduce] (rewrite until one resistor per terminal pair)
//	         ↓
//	    [admittance] (terminal admittance matrix, reference check)
//	         ↓
//	    table, JSON, netlist or Graphviz drawing
//
// # Quick Start
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
//	m, _ := admittance.FromNetwork(net, net.Terminals())
//	fmt.Println(m.Resistance(0, 1)) // 8
//
// # Main Packages
//
// [network] - Resistors, nodes and the adjacency-indexed network they form.
//
// [network/reduce] - The reduction rules and the [reduce.Solve] driver,
// with pluggable triangle pickers and step observers.
//
// [admittance] - Admittance matrices of reduced networks and an exact
// reference reduction by node elimination.
//
// [netlist] - Netlist files in TOML, YAML and JSON.
//
// [pipeline] - Load, solve and render with caching, used by both the CLI
// and the HTTP API.
//
// [cache] - File, Redis and no-op result caches.
//
// [render] and [render/dot] - Graphviz drawings of networks.
//
// [metrics] and [observability] - Prometheus instrumentation behind
// optional hooks.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test -run Property ./... # Randomised network properties
//
// [network]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/network
// [network/reduce]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/network/reduce
// [reduce.Solve]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/network/reduce#Solve
// [admittance]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/admittance
// [netlist]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/netlist
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/render
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/render/dot
// [metrics]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/rsolver/pkg/observability
package pkg
