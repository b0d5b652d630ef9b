// Package render turns generated networks into diagrams.
//
// Subpackage [nodelink] produces Graphviz DOT with every node pinned to
// its normalized grid position and renders it to SVG in-process. PDF and
// PNG are produced from the SVG by [ToPDF] and [ToPNG], which shell out to
// rsvg-convert.
//
// Formats are named by the constants in this package:
//
//	render.FormatSVG, render.FormatPDF, render.FormatPNG, render.FormatDOT
package render
