package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// runCacheContract exercises the behaviour every persistent backend shares.
func runCacheContract(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v, want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v, want v1 hit", data, hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("Get(k) after overwrite = %q, want v2", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get(k) after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	runCacheContract(t, c)
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want miss", hit, err)
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v, want nil miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	type doc struct{ A, B int }
	j1, err := HashJSON(doc{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if j2, _ := HashJSON(doc{1, 3}); j1 == j2 {
		t.Error("HashJSON should distinguish different values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	s1 := k.SolveKey("h", SolveKeyOpts{})
	s2 := k.SolveKey("h", SolveKeyOpts{Random: true, Seed: 3})
	if s1 == s2 {
		t.Error("Different SolveKeyOpts should produce different keys")
	}
	if s1 != k.SolveKey("h", SolveKeyOpts{}) {
		t.Error("SolveKey should be deterministic")
	}
	if s1[:6] != "solve:" {
		t.Errorf("SolveKey prefix: %s", s1)
	}

	r1 := k.RenderKey("h", RenderKeyOpts{Format: "svg"})
	r2 := k.RenderKey("h", RenderKeyOpts{Format: "png"})
	r3 := k.RenderKey("h", RenderKeyOpts{Format: "svg", Solved: true})
	if r1 == r2 || r1 == r3 {
		t.Error("Different RenderKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "api:")
	plain := NewDefaultKeyer()

	if got, want := scoped.SolveKey("h", SolveKeyOpts{}), "api:"+plain.SolveKey("h", SolveKeyOpts{}); got != want {
		t.Errorf("SolveKey = %s, want %s", got, want)
	}
	if got, want := scoped.RenderKey("h", RenderKeyOpts{Format: "svg"}), "api:"+plain.RenderKey("h", RenderKeyOpts{Format: "svg"}); got != want {
		t.Errorf("RenderKey = %s, want %s", got, want)
	}
}

func TestRetryUnavailable(t *testing.T) {
	ctx := context.Background()
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		fail      int   // leading failures
		err       error // returned while failing
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"permanent error is not retried", 5, permanent, 1, permanent},
		{"recovers", 1, ErrUnavailable, 2, nil},
		{"exhausted", 5, ErrUnavailable, 3, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryUnavailable(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.fail {
					return tt.err
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryUnavailable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryUnavailable(ctx, 3, time.Hour, func() error {
		calls++
		return ErrUnavailable
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v after %d calls, want context.Canceled after 1", err, calls)
	}
}
