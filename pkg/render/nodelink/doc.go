// Package nodelink renders a network descriptor as a node-link diagram.
//
// # Overview
//
// Routers are drawn as boxes at their normalized (x, y) positions, one
// panel per layer laid out left to right. Each processing element sits
// just below and to the right of its router. Connections are undirected
// edges, so torus and ring wraparound links appear as long curves across
// a panel and vertical links cross between panels.
//
// # Usage
//
//	dot := nodelink.ToDOT(desc, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process layout
// with the neato engine, which honours pinned ("!") node positions. PDF
// and PNG conversion requires rsvg-convert (librsvg).
package nodelink
