package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nocgen/pkg/network"
	"github.com/matzehuels/nocgen/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Spacing is the distance in inches between adjacent routers of the
	// densest layer. Zero means 1.
	Spacing float64

	// HidePE omits processing elements and their core links.
	HidePE bool

	// Detailed adds the grid index and node type to router labels.
	Detailed bool
}

// layerGap is the empty space between layer panels, in panel widths.
const layerGap = 0.5

// peOffset shifts a processing element from its router, in inches.
const peOffset = 0.3

// ToDOT converts a descriptor to Graphviz DOT with every node pinned.
// The result is meant for the neato engine; [RenderSVG] selects it.
func ToDOT(d *network.Descriptor, opts Options) string {
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	span := 1
	for i := range d.X {
		span = max(span, d.X[i]-1, d.Y[i]-1)
	}
	scale := spacing * float64(span)
	routers := len(d.Nodes) / 2

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", string(d.Topology))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=10, margin=\"0.05,0.02\"];\n")
	buf.WriteString("  edge [color=\"#4a4a4a\"];\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		router := n.ID < routers
		if !router && opts.HidePE {
			continue
		}
		x := (float64(n.Layer)*(1+layerGap) + n.Pos.X) * scale
		y := (1 - n.Pos.Y) * scale
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, router, opts.Detailed))}
		if !router {
			x += peOffset
			y -= peOffset
			attrs = append(attrs, "shape=circle", "fillcolor=lightgrey", "fontsize=8", "width=0.25", "fixedsize=true")
		}
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(x), fmtCoord(y)))
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range d.Connections {
		e := c.Edge()
		if opts.HidePE && (e.A >= routers || e.B >= routers) {
			continue
		}
		fmt.Fprintf(&buf, "  %d -- %d;\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n network.Node, router, detailed bool) string {
	label := strconv.Itoa(n.ID)
	if !router || !detailed {
		return label
	}
	return fmt.Sprintf("%s\n(%d,%d,%d) t%d", label, n.Index.X, n.Index.Y, n.Index.Z, n.NodeType)
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// Render produces the diagram of d in format.
func Render(ctx context.Context, d *network.Descriptor, format string, opts Options) ([]byte, error) {
	dot := ToDOT(d, opts)
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPDF:
		return RenderPDF(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot, 2.0)
	}
	return nil, render.ValidateFormat(format)
}
