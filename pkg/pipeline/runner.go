package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rsolver/pkg/admittance"
	"github.com/matzehuels/rsolver/pkg/cache"
	rerrors "github.com/matzehuels/rsolver/pkg/errors"
	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/network"
	"github.com/matzehuels/rsolver/pkg/network/reduce"
	"github.com/matzehuels/rsolver/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the netlist at path and solves it.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	nl, err := r.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return r.Solve(ctx, nl, opts)
}

// Load reads and validates a netlist file. The format follows the
// extension.
func (r *Runner) Load(ctx context.Context, path string) (*netlist.Netlist, error) {
	start := time.Now()
	format, _ := netlist.FormatFromPath(path)
	nl, err := netlist.Load(path)
	r.reportLoad(ctx, path, format, nl, time.Since(start), err)
	if err != nil {
		return nil, classify(err, rerrors.ErrCodeInvalidNetlist)
	}
	r.Logger.Debug("loaded netlist", "name", nl.Name, "resistors", len(nl.Resistors), "terminals", len(nl.Terminals))
	return nl, nil
}

// Decode reads and validates a netlist from rd, naming it name when the
// document carries no name of its own.
func (r *Runner) Decode(ctx context.Context, rd io.Reader, format netlist.Format, name string) (*netlist.Netlist, error) {
	start := time.Now()
	nl, err := netlist.Decode(rd, format)
	if err == nil && nl.Name == "" {
		nl.Name = name
	}
	r.reportLoad(ctx, name, format, nl, time.Since(start), err)
	if err != nil {
		return nil, classify(err, rerrors.ErrCodeInvalidNetlist)
	}
	return nl, nil
}

func (r *Runner) reportLoad(ctx context.Context, name string, format netlist.Format, nl *netlist.Netlist, d time.Duration, err error) {
	resistors := 0
	if nl != nil {
		name = nl.Name
		resistors = len(nl.Resistors)
	}
	observability.Solve().OnLoad(ctx, name, string(format), resistors, d, err)
}

// Solve reduces the network described by nl and reports the equivalent
// resistance of every terminal pair. Results are cached by netlist content
// and solver options unless opts.Refresh is set or an observer is attached.
func (r *Runner) Solve(ctx context.Context, nl *netlist.Netlist, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, classify(fmt.Errorf("invalid options: %w", err), rerrors.ErrCodeInvalidInput)
	}

	start := time.Now()
	hash, err := cache.HashJSON(nl)
	if err != nil {
		return nil, classify(err, rerrors.ErrCodeInternal)
	}
	key := r.Keyer.SolveKey(hash, opts.SolveKeyOpts())

	if !opts.Refresh && opts.Observer == nil {
		if res, ok := r.cachedResult(ctx, key); ok && (res.Verified || !opts.Verify) {
			res.Cached = true
			res.Duration = time.Since(start)
			opts.Logger.Debug("solve cache hit", "name", nl.Name, "key", key)
			return res, nil
		}
	}

	res, _, err := r.solve(ctx, nl, hash, opts)
	if err != nil {
		return nil, classify(err, rerrors.ErrCodeInternal)
	}
	opts.Logger.Info("solved network",
		"name", res.Name,
		"terminals", len(res.Terminals),
		"iterations", res.Stats.Iterations,
		"steps", res.Stats.Steps(),
		"duration", res.Duration)

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSolve); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "solve", len(data))
		}
	}
	return res, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "solve")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, "solve")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "solve")
	return &res, true
}

// solve runs the reduction without touching the cache and also returns the
// reduced network.
func (r *Runner) solve(ctx context.Context, nl *netlist.Netlist, hash string, opts Options) (*Result, *network.Network, error) {
	net, err := nl.Network()
	if err != nil {
		return nil, nil, err
	}
	var original *network.Network
	if opts.Verify {
		original = net.Clone()
	}

	hooks := observability.Solve()
	hooks.OnSolveStart(ctx, nl.Name, net.ResistorCount())
	start := time.Now()
	stats, err := reduce.Solve(net, append(opts.solveOptions(), reduce.WithContext(ctx))...)
	elapsed := time.Since(start)
	hooks.OnSolveComplete(ctx, nl.Name, stats.Iterations, stats.Steps(), elapsed, err)
	if err != nil {
		opts.Logger.Debug("solve failed", "name", nl.Name, "iterations", stats.Iterations, "err", err)
		return nil, nil, fmt.Errorf("solve %s: %w", nl.Name, err)
	}

	terminals := net.Terminals()
	m, err := admittance.FromNetwork(net, terminals)
	if err != nil {
		return nil, nil, fmt.Errorf("read result: %w", err)
	}

	res := &Result{
		Name:      nl.Name,
		Hash:      hash,
		Terminals: terminals,
		Stats:     stats,
		Solved:    netlist.FromNetwork(nl.Name, net),
		Duration:  elapsed,
	}
	for i := range terminals {
		for j := i + 1; j < len(terminals); j++ {
			res.Pairs = append(res.Pairs, Pair{A: terminals[i], B: terminals[j], R: m.Resistance(i, j)})
		}
	}

	if opts.Verify {
		ref := admittance.Kron(original, terminals)
		if !m.Equal(ref, VerifyTolerance) {
			return nil, nil, fmt.Errorf("%w: reduced\n%s\nreference\n%s", ErrVerify, m, ref)
		}
		res.Verified = true
		opts.Logger.Debug("verified against star-mesh reference", "name", nl.Name)
	}
	return res, net, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
