package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/rsolver/pkg/cache"
	rerrors "github.com/matzehuels/rsolver/pkg/errors"
	"github.com/matzehuels/rsolver/pkg/netlist"
	"github.com/matzehuels/rsolver/pkg/network"
	"github.com/matzehuels/rsolver/pkg/network/reduce"
	"github.com/matzehuels/rsolver/pkg/render"
)

const bridgeTOML = `name = "bridge"
terminals = [0, 3]

[[resistors]]
r = 1.0
a = 0
b = 1

[[resistors]]
r = 1.0
a = 0
b = 2

[[resistors]]
r = 1.0
a = 1
b = 2

[[resistors]]
r = 1.0
a = 3
b = 1

[[resistors]]
r = 1.0
a = 3
b = 2
`

func bridge(t *testing.T) *netlist.Netlist {
	t.Helper()
	nl, err := netlist.Decode(strings.NewReader(bridgeTOML), netlist.FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	return nl
}

func k24() *netlist.Netlist {
	nl := &netlist.Netlist{Name: "k24", Terminals: []int{0, 1, 2, 3}}
	for _, hub := range []int{10, 11} {
		for _, term := range []int{0, 1, 2, 3} {
			nl.Resistors = append(nl.Resistors, netlist.Resistor{R: 1, A: hub, B: term})
		}
	}
	return nl
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Random: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", opts.Format, DefaultFormat)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	// Deterministic solves keep a zero seed so their cache keys ignore it.
	det := Options{}
	if err := det.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if det.Seed != 0 {
		t.Errorf("Seed = %d, want 0 without Random", det.Seed)
	}

	tests := []Options{
		{MaxIterations: -1},
		{Format: "pdf"},
	}
	for _, o := range tests {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("ValidateAndSetDefaults(%+v) should fail", o)
		}
	}
}

func TestOptions_KeyOpts(t *testing.T) {
	a := Options{Seed: 7}
	b := Options{Seed: 9}
	if a.SolveKeyOpts() != b.SolveKeyOpts() {
		t.Error("seed should not affect the key of a deterministic solve")
	}
	a.Random, b.Random = true, true
	if a.SolveKeyOpts() == b.SolveKeyOpts() {
		t.Error("seed should affect the key of a random solve")
	}

	plain := Options{Format: render.FormatSVG}
	if plain.RenderKeyOpts().Solve != nil {
		t.Error("unsolved render key should not carry solve options")
	}
	solved := Options{Format: render.FormatSVG, Solved: true}
	if solved.RenderKeyOpts().Solve == nil {
		t.Error("solved render key should carry solve options")
	}
}

func TestRunner_Execute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.toml")
	if err := os.WriteFile(path, []byte(bridgeTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), path, Options{Verify: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Name != "bridge" {
		t.Errorf("Name = %q, want bridge", res.Name)
	}
	if !res.Verified {
		t.Error("Verified = false, want true")
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("Pairs = %v, want one pair", res.Pairs)
	}
	if p := res.Pairs[0]; p.A != 0 || p.B != 3 || math.Abs(p.R-1) > 1e-12 {
		t.Errorf("Pairs[0] = %+v, want 0-3 at 1Ω", p)
	}
	if r, ok := res.Resistance(3, 0); !ok || math.Abs(r-1) > 1e-12 {
		t.Errorf("Resistance(3, 0) = %v, %v, want 1, true", r, ok)
	}
	if _, ok := res.Resistance(0, 1); ok {
		t.Error("Resistance(0, 1) should report a non-terminal")
	}
	if len(res.Solved.Resistors) != 1 {
		t.Errorf("Solved = %+v, want a single resistor", res.Solved)
	}
}

func TestRunner_SolveCache(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)
	nl := bridge(t)

	first, err := r.Solve(ctx, nl, Options{})
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if first.Cached {
		t.Error("first Solve() should miss the cache")
	}

	second, err := r.Solve(ctx, nl, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second Solve() should hit the cache")
	}
	if second.Stats != first.Stats || second.Pairs[0] != first.Pairs[0] {
		t.Errorf("cached result = %+v, want %+v", second, first)
	}

	// An unverified cached result does not satisfy a verifying solve.
	verified, err := r.Solve(ctx, nl, Options{Verify: true})
	if err != nil {
		t.Fatal(err)
	}
	if verified.Cached || !verified.Verified {
		t.Errorf("verifying Solve() Cached = %v, Verified = %v", verified.Cached, verified.Verified)
	}

	refreshed, err := r.Solve(ctx, nl, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.Cached {
		t.Error("Refresh should bypass the cache")
	}

	var trace reduce.Trace
	traced, err := r.Solve(ctx, nl, Options{Observer: &trace})
	if err != nil {
		t.Fatal(err)
	}
	if traced.Cached || len(trace) != traced.Stats.Steps() {
		t.Errorf("observed Solve() Cached = %v, %d steps recorded, want %d", traced.Cached, len(trace), traced.Stats.Steps())
	}
}

func TestRunner_Solve_Random(t *testing.T) {
	nl := bridge(t)
	for seed := uint64(1); seed <= 5; seed++ {
		res, err := NewRunner(nil, nil, nil).Solve(context.Background(), nl, Options{Random: true, Seed: seed, Verify: true})
		if err != nil {
			t.Fatalf("seed %d: Solve() error: %v", seed, err)
		}
		if math.Abs(res.Pairs[0].R-1) > 1e-9 {
			t.Errorf("seed %d: R = %v, want 1", seed, res.Pairs[0].R)
		}
	}
}

func TestRunner_Solve_Disconnected(t *testing.T) {
	nl := &netlist.Netlist{
		Name:      "split",
		Terminals: []int{0, 1, 2},
		Resistors: []netlist.Resistor{{R: 2, A: 0, B: 1}, {R: 3, A: 2, B: 5}},
	}
	res, err := NewRunner(nil, nil, nil).Solve(context.Background(), nl, Options{Verify: true})
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	want := map[[2]network.Node]float64{{0, 1}: 2, {0, 2}: math.Inf(1), {1, 2}: math.Inf(1)}
	for _, p := range res.Pairs {
		if w := want[[2]network.Node{p.A, p.B}]; p.R != w {
			t.Errorf("R(%d, %d) = %v, want %v", p.A, p.B, p.R, w)
		}
	}
	if !res.Pairs[1].Open() {
		t.Errorf("Pairs[1] = %+v, want open", res.Pairs[1])
	}
}

func TestRunner_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := NewRunner(nil, nil, nil)

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"resistors": [{"r": -1, "a": 0, "b": 1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("resistors = ["), 0o644); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	tests := []struct {
		name string
		run  func() error
		want rerrors.Code
	}{
		{"missing file", func() error { _, err := r.Load(ctx, filepath.Join(dir, "nope.toml")); return err }, rerrors.ErrCodeFileNotFound},
		{"unknown extension", func() error { _, err := r.Load(ctx, filepath.Join(dir, "net.txt")); return err }, rerrors.ErrCodeInvalidFormat},
		{"invalid netlist", func() error { _, err := r.Load(ctx, bad); return err }, rerrors.ErrCodeInvalidNetlist},
		{"syntax error", func() error { _, err := r.Load(ctx, broken); return err }, rerrors.ErrCodeInvalidNetlist},
		{"not reducible", func() error { _, err := r.Solve(ctx, k24(), Options{}); return err }, rerrors.ErrCodeNotReducible},
		{"cancelled", func() error { _, err := r.Solve(cancelled, bridge(t), Options{}); return err }, rerrors.ErrCodeTimeout},
		{"bad options", func() error { _, err := r.Solve(ctx, bridge(t), Options{MaxIterations: -3}); return err }, rerrors.ErrCodeInvalidInput},
		{"bad format", func() error { _, err := r.Render(ctx, bridge(t), Options{Format: "pdf"}); return err }, rerrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if got := rerrors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestRunner_Decode(t *testing.T) {
	body := `{"terminals": [0, 1], "resistors": [{"r": 4, "a": 0, "b": 1}, {"r": 4, "a": 0, "b": 1}]}`
	nl, err := NewRunner(nil, nil, nil).Decode(context.Background(), strings.NewReader(body), netlist.FormatJSON, "request")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if nl.Name != "request" {
		t.Errorf("Name = %q, want request", nl.Name)
	}
}

func TestRunner_Render(t *testing.T) {
	ctx := context.Background()
	r := fileRunner(t)
	nl := bridge(t)

	plain, err := r.Render(ctx, nl, Options{Format: render.FormatDOT})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := strings.Count(string(plain), " -- "); got != 5 {
		t.Errorf("Render() drew %d edges, want 5\n%s", got, plain)
	}

	solved, err := r.Render(ctx, nl, Options{Format: render.FormatDOT, Solved: true})
	if err != nil {
		t.Fatalf("Render(solved) error: %v", err)
	}
	for _, want := range []string{`label="bridge (solved)"`, `[label="1Ω"]`} {
		if !strings.Contains(string(solved), want) {
			t.Errorf("Render(solved) missing %q\n%s", want, solved)
		}
	}
	if got := strings.Count(string(solved), " -- "); got != 1 {
		t.Errorf("Render(solved) drew %d edges, want 1", got)
	}

	again, err := r.Render(ctx, nl, Options{Format: render.FormatDOT, Solved: true})
	if err != nil || string(again) != string(solved) {
		t.Errorf("cached Render() = %q, %v", again, err)
	}
}

func TestPair_JSON(t *testing.T) {
	pairs := []Pair{{A: 0, B: 1, R: 2.5}, {A: 0, B: 2, R: math.Inf(1)}}
	data, err := json.Marshal(pairs)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if want := `[{"a":0,"b":1,"r":2.5},{"a":0,"b":2,"r":null}]`; string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var got []Pair
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got[0] != pairs[0] || !got[1].Open() {
		t.Errorf("Unmarshal() = %+v, want %+v", got, pairs)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	coded := rerrors.New(rerrors.ErrCodeNotFound, "gone")
	if got := Classify(coded); got != error(coded) {
		t.Errorf("Classify() rewrapped a coded error: %v", got)
	}
	if got := rerrors.GetCode(Classify(errors.New("boom"))); got != rerrors.ErrCodeInternal {
		t.Errorf("Classify(plain) code = %q, want INTERNAL_ERROR", got)
	}
	if got := rerrors.GetCode(Classify(ErrVerify)); got != rerrors.ErrCodeInternalInvariant {
		t.Errorf("Classify(ErrVerify) code = %q, want INTERNAL_INVARIANT", got)
	}
}
