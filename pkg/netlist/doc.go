// Package netlist reads and writes resistor networks as TOML, YAML or JSON
// files.
//
// # Format
//
// A netlist names its terminals and lists its resistors. The same shape is
// used in all three formats:
//
//	name = "bridge"
//	terminals = [0, 3]
//
//	[[resistors]]
//	r = 1.0
//	a = 0
//	b = 1
//
//	[[resistors]]
//	r = 1.0
//	a = 1
//	b = 3
//
// or, in YAML:
//
//	name: bridge
//	terminals: [0, 3]
//	resistors:
//	  - {r: 1.0, a: 0, b: 1}
//	  - {r: 1.0, a: 1, b: 3}
//
// Nodes are integers. Terminals that no resistor touches are allowed and end
// up disconnected from everything.
//
// # Validation
//
// [Netlist.Validate] requires at least one resistor, a positive finite
// resistance on each and two distinct endpoints. Terminals must be unique.
// Failures wrap [ErrInvalid].
//
// # Reading and Writing
//
// Use [Load] to read a file, picking the format from its extension, or
// [Decode] for any io.Reader. [Netlist.Network] builds the network to solve
// and [FromNetwork] turns a solved one back into a netlist for [Encode] or
// [Save].
package netlist
