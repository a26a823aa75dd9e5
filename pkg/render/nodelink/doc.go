// Package nodelink renders the attribute dependency graph as a node-link
// diagram.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(node.DefaultSchema().Graph(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT lays out left to right: writable attributes on the left,
// computed attributes on the right, and an arrow for every "affects"
// relation. Attributes that belong to the same compound (list, scale,
// output) are drawn inside a shared cluster.
//
// # Dependencies
//
// SVG rendering happens in-process with [github.com/goccy/go-graphviz].
// Use the parent render package to convert SVG to PDF or PNG.
package nodelink
