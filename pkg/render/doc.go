// Package render provides visualization output for resistor networks.
//
// # Overview
//
// Networks are drawn as undirected node-link diagrams: nodes are circles,
// terminals are filled double circles, and every resistor is an edge
// labelled with its resistance. The [dot] subpackage emits Graphviz DOT and
// renders it with an embedded Graphviz build, so no external binaries are
// needed.
//
//	src := dot.ToDOT(net, dot.Options{Title: "bridge"})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Formats
//
// [Format] names the output kinds the CLI understands. [FormatFromPath]
// picks one from an output file extension.
package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for output formats other than svg, png and dot.
var ErrUnknownFormat = errors.New("unknown render format")

// Format is an output format for rendered networks.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatDOT Format = "dot"
)

// Formats lists every supported output format.
var Formats = []Format{FormatSVG, FormatPNG, FormatDOT}

// ParseFormat parses a format name, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatSVG, FormatPNG, FormatDOT:
		return f, nil
	case "gv":
		return FormatDOT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz"
	}
}
