// Package reduce rewrites a resistor network in place until only its
// terminals remain.
//
// # Overview
//
// Every rule here replaces a small piece of the graph with an electrically
// equivalent one. Applied to a fixed point they leave, for every pair of
// terminals, at most one resistor whose value is the equivalent resistance
// between them.
//
// # Rules
//
// [SolveParallel] merges resistors that share both endpoints into a single
// resistor with the summed conductance:
//
//	2Ω(0-1) ∥ 2Ω(0-1)  →  1Ω(0-1)
//
// [SolveSeries] merges maximal chains through internal nodes of degree two
// into a single resistor with the summed resistance:
//
//	3Ω(0-1) + 5Ω(1-2)  →  8Ω(0-2)     (node 1 internal)
//
// [ConvertWyeToDelta] eliminates an internal node with exactly three
// resistors, replacing the star by a triangle between its outer nodes.
// [ConvertDeltaToWye] does the reverse: it replaces a triangle with a star
// around a fresh node. Delta→Wye is only used when nothing else applies;
// it lowers the degree of the triangle's corners so that the other rules
// can make progress again.
//
// [PruneDangling] removes resistors hanging off an internal node with no
// other connection. They carry no current.
//
// # Solving
//
// [Solve] drives the rules:
//
//  1. Prune, merge parallels and merge series until none of them applies.
//  2. If an internal node of degree three exists, convert that Wye to a
//     Delta and start over.
//  3. If every remaining node is a terminal, stop.
//  4. Otherwise convert a triangle to a Wye and start over.
//
// Which triangle step 4 picks is delegated to a [Picker]. [FirstMatch]
// takes the first candidate in edge insertion order and is the default;
// [NewRandomPicker] shuffles with a seeded generator. The equivalent
// resistances do not depend on the choice, only the path taken to them.
//
// # Termination
//
// Not every network can be reduced this way. A node of degree four or more
// whose neighbourhood never exposes a usable Wye, such as a star between
// four terminals, makes steps 2 and 4 undo each other indefinitely. Solve
// bounds the number of rounds (see [DefaultMaxIterations] and
// [WithMaxIterations]) and reports [ErrNotReducible] instead of spinning.
//
// # Tracing
//
// Pass an [Observer] with [WithObserver] to receive a [Step] after every
// rewrite. [Trace] records them for later inspection.
package reduce
