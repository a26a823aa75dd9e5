// Package render converts rendered graph images between formats.
//
// The [nodelink] subpackage draws the node's attribute dependency graph with
// Graphviz and produces SVG. [ToPDF] and [ToPNG] turn that SVG into other
// formats using the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/scalelist/pkg/render/nodelink
package render
