package reduce

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/rsolver/pkg/network"
)

// ErrNotReducible is returned by [Solve] when the rules cannot bring the
// network down to its terminals: either no rule applies while internal
// nodes remain, or the iteration limit was reached.
var ErrNotReducible = errors.New("network is not reducible")

// Stats summarises a [Solve] run.
type Stats struct {
	Iterations int `json:"iterations"`
	Prune      int `json:"prune"`
	Parallel   int `json:"parallel"`
	Series     int `json:"series"`
	WyeDelta   int `json:"wye_delta"`
	DeltaWye   int `json:"delta_wye"`
}

// Count returns how many times rule was applied.
func (s Stats) Count(rule Rule) int {
	switch rule {
	case RulePrune:
		return s.Prune
	case RuleParallel:
		return s.Parallel
	case RuleSeries:
		return s.Series
	case RuleWyeDelta:
		return s.WyeDelta
	case RuleDeltaWye:
		return s.DeltaWye
	}
	return 0
}

// Steps returns the total number of rewrites.
func (s Stats) Steps() int {
	return s.Prune + s.Parallel + s.Series + s.WyeDelta + s.DeltaWye
}

func (s *Stats) record(rule Rule) {
	switch rule {
	case RulePrune:
		s.Prune++
	case RuleParallel:
		s.Parallel++
	case RuleSeries:
		s.Series++
	case RuleWyeDelta:
		s.WyeDelta++
	case RuleDeltaWye:
		s.DeltaWye++
	}
}

// Option configures [Solve].
type Option func(*config)

type config struct {
	ctx      context.Context
	picker   Picker
	maxIter  int
	observer Observer
}

// WithPicker sets the triangle selection strategy. The default is
// [FirstMatch].
func WithPicker(p Picker) Option {
	return func(c *config) {
		if p != nil {
			c.picker = p
		}
	}
}

// WithMaxIterations caps the number of rounds. Zero or a negative value
// selects [DefaultMaxIterations].
func WithMaxIterations(n int) Option {
	return func(c *config) { c.maxIter = n }
}

// WithObserver registers o to receive every rewrite.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithContext makes Solve stop between rounds once ctx is done. The
// returned error wraps ctx.Err().
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// DefaultMaxIterations returns the round limit used when none is set. It
// grows with the network so that large planar meshes, which need many
// Delta→Wye detours, still finish.
func DefaultMaxIterations(net *network.Network) int {
	return 64*(net.ResistorCount()+net.NodeCount()) + 64
}

// Solve reduces net in place until every remaining node is a terminal.
// Afterwards [network.Network.FindParallel] returns at most one resistor
// for any pair of terminals, holding their equivalent resistance; no
// resistor means the pair is not connected.
//
// The network is validated first. On [ErrNotReducible] the network is left
// in whatever intermediate state the last round produced.
func Solve(net *network.Network, opts ...Option) (Stats, error) {
	cfg := config{ctx: context.Background(), picker: FirstMatch{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := net.Validate(); err != nil {
		return Stats{}, fmt.Errorf("solve: %w", err)
	}
	if cfg.maxIter <= 0 {
		cfg.maxIter = DefaultMaxIterations(net)
	}

	var stats Stats
	diverged := false
	out := emitter(func(s Step) {
		stats.record(s.Rule)
		for _, r := range s.Added {
			if !r.Valid() {
				diverged = true
			}
		}
		if cfg.observer != nil {
			cfg.observer.OnStep(s)
		}
	})

	for {
		if err := cfg.ctx.Err(); err != nil {
			return stats, fmt.Errorf("solve: stopped after %d iterations: %w", stats.Iterations, err)
		}
		if diverged {
			return stats, fmt.Errorf("%w: resistance diverged after %d iterations", ErrNotReducible, stats.Iterations)
		}
		if stats.Iterations >= cfg.maxIter {
			return stats, fmt.Errorf("%w: gave up after %d iterations", ErrNotReducible, stats.Iterations)
		}
		stats.Iterations++

		if err := simplify(net, out); err != nil {
			return stats, err
		}
		if diverged {
			continue
		}

		wye, err := FindWye(net)
		if err == nil {
			step, err := ConvertWyeToDelta(net, wye[0], wye[1], wye[2])
			if err != nil {
				return stats, err
			}
			out.emit(step)
			continue
		}

		if onlyTerminals(net) {
			return stats, nil
		}

		delta, err := FindDelta(net, cfg.picker)
		if errors.Is(err, ErrNoDelta) {
			return stats, fmt.Errorf("%w: %d internal nodes left: %w", ErrNotReducible, internalCount(net), err)
		}
		if err != nil {
			return stats, err
		}
		step, err := ConvertDeltaToWye(net, delta[0], delta[1], delta[2])
		if err != nil {
			return stats, err
		}
		out.emit(step)
	}
}

// simplify prunes, merges parallels and joins series until none of them
// changes the network.
func simplify(net *network.Network, out emitter) error {
	for {
		pruned, err := pruneDangling(net, out)
		if err != nil {
			return err
		}
		merged, err := solveParallel(net, out)
		if err != nil {
			return err
		}
		joined, err := solveSeries(net, out)
		if err != nil {
			return err
		}
		if !pruned && !merged && !joined {
			return nil
		}
	}
}

func onlyTerminals(net *network.Network) bool {
	return internalCount(net) == 0
}

func internalCount(net *network.Network) int {
	n := 0
	for _, node := range net.Nodes() {
		if !net.IsTerminal(node) {
			n++
		}
	}
	return n
}
