// Package observability lets the pipeline and the HTTP server report events
// without depending on a metrics backend.
//
// Three hook interfaces cover solves, cache lookups and HTTP requests. Each
// starts out as a no-op; a binary that wants metrics registers an
// implementation once at startup:
//
//	reg := metrics.NewRegistry()
//	observability.SetSolveHooks(reg)
//	observability.SetCacheHooks(reg)
//	observability.SetHTTPHooks(reg)
//
// Emitters fetch the current hooks at the call site:
//
//	observability.Solve().OnSolveStart(ctx, name, resistors)
//
// The reduction packages never call hooks. They stay free of global state
// and report each rewrite through reduce.Observer instead.
package observability

import (
	"context"
	"sync"
	"time"
)

// SolveHooks receives events from the load, solve and render pipeline.
type SolveHooks interface {
	// OnLoad fires after a netlist was read and validated, or failed to be.
	OnLoad(ctx context.Context, name, format string, resistors int, duration time.Duration, err error)

	// OnSolveStart and OnSolveComplete bracket one run of the reducer.
	OnSolveStart(ctx context.Context, name string, resistors int)
	OnSolveComplete(ctx context.Context, name string, iterations, steps int, duration time.Duration, err error)

	// OnRenderComplete fires after a drawing was produced.
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// CacheHooks receives result cache events. keyType is "solve" or "render".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API. route is the matched route
// pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopSolveHooks ignores every event.
type NoopSolveHooks struct{}

func (NoopSolveHooks) OnLoad(context.Context, string, string, int, time.Duration, error) {}
func (NoopSolveHooks) OnSolveStart(context.Context, string, int)                          {}
func (NoopSolveHooks) OnSolveComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopSolveHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

type registry struct {
	solve SolveHooks
	cache CacheHooks
	http  HTTPHooks
}

var (
	mu    sync.RWMutex
	hooks = defaults()
)

func defaults() registry {
	return registry{solve: NoopSolveHooks{}, cache: NoopCacheHooks{}, http: NoopHTTPHooks{}}
}

// set applies fn to the registry under the write lock.
func set(fn func(*registry)) {
	mu.Lock()
	defer mu.Unlock()
	fn(&hooks)
}

func get() registry {
	mu.RLock()
	defer mu.RUnlock()
	return hooks
}

// SetSolveHooks registers h. A nil h is ignored.
func SetSolveHooks(h SolveHooks) {
	if h != nil {
		set(func(r *registry) { r.solve = h })
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		set(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		set(func(r *registry) { r.http = h })
	}
}

// Solve returns the registered solve hooks.
func Solve() SolveHooks { return get().solve }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return get().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return get().http }

// Reset restores the no-op hooks. Tests that register hooks call it in
// cleanup.
func Reset() {
	set(func(r *registry) { *r = defaults() })
}
