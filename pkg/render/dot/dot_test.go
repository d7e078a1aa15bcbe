package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/rsolver/pkg/network"
)

func divider() *network.Network {
	net := network.New()
	net.Add(network.NewResistor(3, 0, 1))
	net.Add(network.NewResistor(4700, 1, 2))
	net.Add(network.NewResistor(0.5, 1, 2))
	net.AddTerminal(0)
	net.AddTerminal(2)
	return net
}

func TestToDOT(t *testing.T) {
	got := ToDOT(divider(), Options{Title: "divider"})

	for _, want := range []string{
		"graph G {",
		`label="divider";`,
		`"0" [label="0", shape=doublecircle`,
		`"1" [label="1"];`,
		`"2" [label="2", shape=doublecircle`,
		`"0" -- "1" [label="3Ω"];`,
		`"1" -- "2" [label="4.7kΩ"];`,
		`"1" -- "2" [label="0.5Ω"];`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "->") {
		t.Error("ToDOT() should emit an undirected graph")
	}
}

func TestToDOT_NoTitle(t *testing.T) {
	if got := ToDOT(divider(), Options{}); strings.Contains(got, "labelloc") {
		t.Errorf("ToDOT() without title should not set a graph label:\n%s", got)
	}
}

func TestFormatOhms(t *testing.T) {
	tests := []struct {
		r    float64
		want string
	}{
		{0.5, "0.5Ω"},
		{12, "12Ω"},
		{1000, "1kΩ"},
		{4700, "4.7kΩ"},
		{2.2e6, "2.2MΩ"},
		{1.0 / 3, "0.3333Ω"},
	}
	for _, tt := range tests {
		if got := FormatOhms(tt.r); got != tt.want {
			t.Errorf("FormatOhms(%v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("normalizeViewBox() without viewBox = %s, want unchanged", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(divider(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG() output is not SVG: %.80s", svg)
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG(context.Background(), ToDOT(divider(), Options{}))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("RenderPNG() output lacks PNG signature")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "graph {"); err == nil {
		t.Error("RenderSVG() should fail on malformed DOT")
	}
}
