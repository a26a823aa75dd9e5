package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scalelist/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes row numbers and metadata in node labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts an attribute graph to Graphviz DOT format.
//
// Inputs are drawn as ellipses and outputs as boxes. Nodes that share a
// "parent" metadata value are grouped into a cluster labelled with the
// parent. Inputs that affect nothing are drawn dashed.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	var parents []string
	byParent := map[string][]*dag.Node{}
	for _, n := range g.Nodes() {
		p, _ := n.Meta["parent"].(string)
		if _, seen := byParent[p]; !seen {
			parents = append(parents, p)
		}
		byParent[p] = append(byParent[p], n)
	}

	for _, p := range parents {
		indent := "  "
		if p != "" {
			fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+p)
			fmt.Fprintf(&buf, "    label=%q;\n", p)
			buf.WriteString("    style=\"rounded,dashed\";\n")
			buf.WriteString("    color=grey;\n")
			indent = "    "
		}
		for _, n := range byParent[p] {
			label := fmtLabel(*n, opts.Detailed)
			attrs := fmtAttrs(*n, label, g.OutDegree(n.ID) == 0)
			fmt.Fprintf(&buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
		}
		if p != "" {
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{fmt.Sprintf("row: %d", n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if v := n.Meta[k]; v != "" {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}

	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string, isolated bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsOutput():
		attrs = append(attrs, "shape=box", "fillcolor=lightblue")
	case isolated:
		attrs = append(attrs, "shape=ellipse", "style=\"filled,dashed\"", "fontcolor=grey40")
	default:
		attrs = append(attrs, "shape=ellipse")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the image scales to its
// container with an origin at 0,0.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
