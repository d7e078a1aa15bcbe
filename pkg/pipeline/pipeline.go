// Package pipeline provides the load → solve → render pipeline for rsolver.
//
// This package implements the steps shared by the CLI and the HTTP API so
// that both cache, log and report failures the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode and validate a netlist from a file or a request body
//  2. Solve: Reduce the network and read off terminal-pair resistances
//  3. Render: Draw the original or the solved network with Graphviz
//
// Each stage can be run independently or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, "bridge.toml", pipeline.Options{Verify: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Pairs {
//	    fmt.Println(p.A, p.B, p.R)
//	}
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rsolver/pkg/cache"
	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/network"
	"github.com/matzehuels/rsolver/pkg/network/reduce"
	"github.com/matzehuels/rsolver/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed seeds the random picker when none is given.
	DefaultSeed = uint64(42)

	// DefaultFormat is the default render output format.
	DefaultFormat = render.FormatSVG

	// VerifyTolerance is the relative tolerance used when checking a
	// reduction against the star-mesh reference.
	VerifyTolerance = 1e-9
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	Random        bool   `json:"random,omitempty"`         // Pick triangles at random instead of first match
	Seed          uint64 `json:"seed,omitempty"`           // Seed for the random picker
	MaxIterations int    `json:"max_iterations,omitempty"` // Zero selects reduce.DefaultMaxIterations
	Verify        bool   `json:"verify,omitempty"`         // Cross-check against the admittance reference
	Refresh       bool   `json:"refresh,omitempty"`        // Ignore cached results

	// Render options
	Format render.Format `json:"format,omitempty"`
	Solved bool          `json:"solved,omitempty"` // Render the reduced network

	// Runtime options (not serialized)
	Logger   *log.Logger     `json:"-"`
	Observer reduce.Observer `json:"-"` // Receives every rewrite; bypasses cached results

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, got %d", o.MaxIterations)
	}
	if o.Random && o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if _, err := render.ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SolveKeyOpts returns cache key options for a solve.
func (o *Options) SolveKeyOpts() cache.SolveKeyOpts {
	opts := cache.SolveKeyOpts{MaxIterations: o.MaxIterations}
	if o.Random {
		opts.Random = true
		opts.Seed = o.Seed
	}
	return opts
}

// RenderKeyOpts returns cache key options for a render.
func (o *Options) RenderKeyOpts() cache.RenderKeyOpts {
	opts := cache.RenderKeyOpts{Format: string(o.Format), Solved: o.Solved}
	if o.Solved {
		solve := o.SolveKeyOpts()
		opts.Solve = &solve
	}
	return opts
}

func (o *Options) solveOptions() []reduce.Option {
	opts := []reduce.Option{reduce.WithMaxIterations(o.MaxIterations)}
	if o.Random {
		opts = append(opts, reduce.WithPicker(reduce.NewRandomPicker(o.Seed)))
	}
	if o.Observer != nil {
		opts = append(opts, reduce.WithObserver(o.Observer))
	}
	return opts
}

// =============================================================================
// Results
// =============================================================================

// Pair is the equivalent resistance between two terminals. R is +Inf when
// the terminals are not connected; it is encoded as null in JSON.
type Pair struct {
	A network.Node `json:"a"`
	B network.Node `json:"b"`
	R float64      `json:"r"`
}

// Open reports whether the terminals are disconnected.
func (p Pair) Open() bool { return math.IsInf(p.R, 1) }

type pairJSON struct {
	A network.Node `json:"a"`
	B network.Node `json:"b"`
	R *float64     `json:"r"`
}

// MarshalJSON encodes open pairs with a null resistance.
func (p Pair) MarshalJSON() ([]byte, error) {
	w := pairJSON{A: p.A, B: p.B}
	if !p.Open() {
		w.R = &p.R
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a null resistance as an open pair.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var w pairJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.A, p.B, p.R = w.A, w.B, math.Inf(1)
	if w.R != nil {
		p.R = *w.R
	}
	return nil
}

// Result contains the outputs of a solve.
type Result struct {
	// Name is the netlist name.
	Name string `json:"name"`

	// Hash is the content hash of the input netlist.
	Hash string `json:"hash"`

	// Terminals lists the terminals in ascending order.
	Terminals []network.Node `json:"terminals"`

	// Pairs holds one entry per unordered terminal pair.
	Pairs []Pair `json:"pairs"`

	// Stats counts the rewrites the reduction performed.
	Stats reduce.Stats `json:"stats"`

	// Solved is the reduced network as a netlist.
	Solved *netlist.Netlist `json:"solved"`

	// Verified is true when the result was checked against the reference.
	Verified bool `json:"verified,omitempty"`

	// Cached is true when the result came from the cache.
	Cached bool `json:"-"`

	// Duration is the wall time of the solve, or of the cache lookup.
	Duration time.Duration `json:"-"`
}

// Resistance returns the equivalent resistance between terminals a and b,
// and false if either is not a terminal of the result.
func (r *Result) Resistance(a, b network.Node) (float64, bool) {
	if a == b {
		return 0, slices.Contains(r.Terminals, a)
	}
	for _, p := range r.Pairs {
		if (p.A == a && p.B == b) || (p.A == b && p.B == a) {
			return p.R, true
		}
	}
	return 0, false
}
