package observability

import (
	"context"
	"testing"
	"time"
)

type recordingSolveHooks struct {
	NoopSolveHooks
	started []string
}

func (r *recordingSolveHooks) OnSolveStart(_ context.Context, name string, _ int) {
	r.started = append(r.started, name)
}

type countingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (c *countingCacheHooks) OnCacheHit(context.Context, string) { c.hits++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	if _, ok := Solve().(NoopSolveHooks); !ok {
		t.Errorf("Solve() = %T, want NoopSolveHooks", Solve())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}

	Solve().OnLoad(ctx, "bridge", "toml", 5, time.Millisecond, nil)
	Solve().OnSolveComplete(ctx, "bridge", 2, 6, time.Millisecond, nil)
	Solve().OnRenderComplete(ctx, "svg", time.Second, nil)
	Cache().OnCacheSet(ctx, "solve", 1024)
	HTTP().OnResponse(ctx, "POST", "/v1/solve", 200, time.Second)
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	solve := &recordingSolveHooks{}
	cache := &countingCacheHooks{}
	SetSolveHooks(solve)
	SetCacheHooks(cache)

	Solve().OnSolveStart(ctx, "bridge", 5)
	Solve().OnSolveStart(ctx, "ladder", 9)
	Cache().OnCacheHit(ctx, "solve")
	Cache().OnCacheMiss(ctx, "render")

	if len(solve.started) != 2 || solve.started[1] != "ladder" {
		t.Errorf("started = %v, want [bridge ladder]", solve.started)
	}
	if cache.hits != 1 {
		t.Errorf("hits = %d, want 1", cache.hits)
	}

	Reset()
	if Solve() == SolveHooks(solve) {
		t.Error("Reset() kept the registered solve hooks")
	}
}

func TestSetNilIsIgnored(t *testing.T) {
	t.Cleanup(Reset)

	solve := &recordingSolveHooks{}
	SetSolveHooks(solve)
	SetSolveHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if Solve() != SolveHooks(solve) {
		t.Error("SetSolveHooks(nil) replaced the registered hooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("SetHTTPHooks(nil) replaced the no-op hooks")
	}
}
