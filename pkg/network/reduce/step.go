package reduce

import (
	"fmt"
	"strings"

	"github.com/matzehuels/rsolver/pkg/network"
)

// Rule identifies the rewrite that produced a [Step].
type Rule int

const (
	// RulePrune removes a dangling resistor.
	RulePrune Rule = iota
	// RuleParallel merges resistors sharing both endpoints.
	RuleParallel
	// RuleSeries merges a chain through degree-two internal nodes.
	RuleSeries
	// RuleWyeDelta replaces a three-resistor star by a triangle.
	RuleWyeDelta
	// RuleDeltaWye replaces a triangle by a star around a new node.
	RuleDeltaWye
)

var ruleNames = [...]string{
	RulePrune:    "prune",
	RuleParallel: "parallel",
	RuleSeries:   "series",
	RuleWyeDelta: "wye-delta",
	RuleDeltaWye: "delta-wye",
}

// String returns the lower-case rule name, e.g. "wye-delta".
func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return fmt.Sprintf("rule(%d)", int(r))
	}
	return ruleNames[r]
}

// Step describes one rewrite: the resistors it took out of the network and
// the ones it put in. Added is empty for pruning and for closed loops
// dropped by the series rule.
type Step struct {
	Rule    Rule
	Removed []network.Resistor
	Added   []network.Resistor
}

// String formats the step as "series: 3Ω(0-1) 5Ω(1-2) -> 8Ω(0-2)".
func (s Step) String() string {
	return fmt.Sprintf("%s: %s -> %s", s.Rule, joinResistors(s.Removed), joinResistors(s.Added))
}

func joinResistors(rs []network.Resistor) string {
	if len(rs) == 0 {
		return "∅"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}

// Observer receives every rewrite performed by [Solve].
type Observer interface {
	OnStep(Step)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(Step)

// OnStep calls f(s).
func (f ObserverFunc) OnStep(s Step) { f(s) }

// Trace is an [Observer] that records steps in order.
type Trace []Step

// OnStep appends s.
func (t *Trace) OnStep(s Step) { *t = append(*t, s) }

// Count returns how many recorded steps used rule.
func (t Trace) Count(rule Rule) int {
	n := 0
	for _, s := range t {
		if s.Rule == rule {
			n++
		}
	}
	return n
}

// emitter forwards steps to an optional observer.
type emitter func(Step)

func (e emitter) emit(s Step) {
	if e != nil {
		e(s)
	}
}
