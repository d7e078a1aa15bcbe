package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/rsolver/pkg/cache"
	rerrors "github.com/matzehuels/rsolver/pkg/errors"
	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/network"
	"github.com/matzehuels/rsolver/pkg/observability"
	"github.com/matzehuels/rsolver/pkg/render"
	"github.com/matzehuels/rsolver/pkg/render/dot"
)

// Render draws nl in opts.Format. With opts.Solved the reduced network is
// drawn instead, solving it first (through the cache) if necessary.
func (r *Runner) Render(ctx context.Context, nl *netlist.Netlist, opts Options) ([]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, classify(fmt.Errorf("invalid options: %w", err), rerrors.ErrCodeInvalidInput)
	}

	hash, err := cache.HashJSON(nl)
	if err != nil {
		return nil, classify(err, rerrors.ErrCodeInternal)
	}
	key := r.Keyer.RenderKey(hash, opts.RenderKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "render")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	net, title, err := r.renderTarget(ctx, nl, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := RenderNetwork(ctx, net, title, opts.Format)
	observability.Solve().OnRenderComplete(ctx, string(opts.Format), time.Since(start), err)
	if err != nil {
		return nil, classify(err, rerrors.ErrCodeInternal)
	}
	opts.Logger.Info("rendered network", "name", nl.Name, "format", opts.Format, "bytes", len(data), "duration", time.Since(start))

	if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, nil
}

func (r *Runner) renderTarget(ctx context.Context, nl *netlist.Netlist, opts Options) (*network.Network, string, error) {
	if !opts.Solved {
		net, err := nl.Network()
		if err != nil {
			return nil, "", classify(err, rerrors.ErrCodeInvalidNetlist)
		}
		return net, nl.Name, nil
	}

	res, err := r.Solve(ctx, nl, opts)
	if err != nil {
		return nil, "", err
	}
	return reducedNetwork(res.Solved), nl.Name + " (solved)", nil
}

// reducedNetwork rebuilds a solved network. It skips validation because a
// fully disconnected result has no resistors left.
func reducedNetwork(nl *netlist.Netlist) *network.Network {
	net := network.New()
	for _, r := range nl.Resistors {
		net.Add(network.NewResistor(r.R, network.Node(r.A), network.Node(r.B)))
	}
	for _, t := range nl.Terminals {
		net.AddTerminal(network.Node(t))
	}
	return net
}

// RenderNetwork draws net in format f without caching.
func RenderNetwork(ctx context.Context, net *network.Network, title string, f render.Format) ([]byte, error) {
	src := dot.ToDOT(net, dot.Options{Title: title})
	switch f {
	case render.FormatDOT:
		return []byte(src), nil
	case render.FormatSVG:
		return dot.RenderSVG(ctx, src)
	case render.FormatPNG:
		return dot.RenderPNG(ctx, src)
	}
	return nil, fmt.Errorf("%w: %q", render.ErrUnknownFormat, f)
}
