// Package render draws block graphs as Graphviz diagrams.
//
// This is a debugging surface, not an output format of the compiler: the
// diagram shows cubes as boxes and pipes as edges so a manifest can be
// inspected before compiling it. Rendering uses
// [github.com/goccy/go-graphviz] in-process; no external binaries are
// needed.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/topostim/topostim/pkg/blockgraph"
	"github.com/topostim/topostim/pkg/convention"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/rpng"
)

// Options configures block graph rendering.
type Options struct {
	// Detailed includes lattice positions in node labels.
	// When false, only the kind is shown.
	Detailed bool
}

// ToDOT converts a block graph to Graphviz DOT format. The resulting DOT
// string can be rendered with [RenderSVG] or [RenderPNG], or fed to
// external Graphviz tooling.
//
// Cubes become boxes filled by their temporal basis; temporal pipes are
// drawn as solid arrows pointing up in time, spatial pipes as dashed
// undirected edges.
func ToDOT(g *blockgraph.BlockGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, c := range g.Cubes() {
		label := fmtLabel(c, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%s];\n", nodeID(c.Position), label, fillColor(c.Kind))
	}

	buf.WriteString("\n")
	for _, p := range g.Pipes() {
		attrs := edgeAttrs(p)
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", nodeID(p.Source), nodeID(p.Sink), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(p grid.Position3D) string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

func fmtLabel(c blockgraph.Cube, detailed bool) string {
	if !detailed {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s\n(%d, %d, %d)", c.Kind, c.Position.X, c.Position.Y, c.Position.Z)
}

func fillColor(kind convention.Kind) string {
	basis, err := kind.TemporalBasis()
	if err != nil {
		return "white"
	}
	switch basis {
	case rpng.BasisX:
		return "lightyellow"
	case rpng.BasisZ:
		return "lightblue"
	}
	return "white"
}

func edgeAttrs(p blockgraph.Pipe) []string {
	attrs := []string{fmt.Sprintf("label=%q", string(p.Kind))}
	axis, err := p.Kind.PipeAxis()
	if err == nil && axis == grid.DirectionZ {
		// Temporal pipe: keep the arrow, it points forward in time.
		return attrs
	}
	return append(attrs, "dir=none", "style=dashed")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG, nil)
}

func renderFormat(dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the diagram scales
// cleanly when embedded in API responses.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
