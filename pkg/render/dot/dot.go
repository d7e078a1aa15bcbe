// Package dot renders resistor networks as Graphviz diagrams.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rsolver/pkg/network"
)

// Options configures diagram output.
type Options struct {
	// Title is drawn above the diagram when non-empty.
	Title string
}

// layout is the Graphviz engine used for every diagram.
const layout = graphviz.NEATO

// ToDOT converts a network to an undirected Graphviz graph.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Terminals are drawn as filled double circles. Parallel resistors appear
// as separate edges between the same pair of nodes.
func ToDOT(net *network.Network, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=20;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, width=0.4, fixedsize=true];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range net.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.String(), strings.Join(nodeAttrs(net, n), ", "))
	}

	buf.WriteString("\n")
	for _, r := range net.Resistors() {
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", r.A.String(), r.B.String(), FormatOhms(r.R))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(net *network.Network, n network.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.String())}
	if net.IsTerminal(n) {
		attrs = append(attrs, "shape=doublecircle", "fillcolor=\"#f4d35e\"", "penwidth=2")
	}
	return attrs
}

// FormatOhms formats a resistance with four significant digits and an
// SI prefix, e.g. 4.7kΩ or 0.5Ω.
func FormatOhms(r float64) string {
	prefixes := []struct {
		scale  float64
		symbol string
	}{
		{1e9, "G"},
		{1e6, "M"},
		{1e3, "k"},
	}
	for _, p := range prefixes {
		if r >= p.scale {
			return strconv.FormatFloat(r/p.scale, 'g', 4, 64) + p.symbol + "Ω"
		}
	}
	return strconv.FormatFloat(r, 'g', 4, 64) + "Ω"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(layout)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales to its
// container instead of carrying Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
