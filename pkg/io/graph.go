package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scalelist/pkg/dag"
)

type graph struct {
	Nodes []graphNode  `json:"nodes"`
	Edges []graphEdge  `json:"edges"`
	Meta  dag.Metadata `json:"meta,omitempty"`
}

type graphNode struct {
	ID   string       `json:"id"`
	Row  int          `json:"row"`
	Kind string       `json:"kind"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type graphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteGraphJSON encodes an attribute graph as JSON:
//
//	{
//	  "nodes": [{"id": "weight", "row": 0, "kind": "input"}, ...],
//	  "edges": [{"from": "weight", "to": "matrix"}, ...]
//	}
//
// Nodes and edges keep the graph's insertion order.
func WriteGraphJSON(g *dag.DAG, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := graph{
		Nodes: make([]graphNode, len(nodes)),
		Edges: make([]graphEdge, len(edges)),
		Meta:  g.Meta(),
	}
	for i, n := range nodes {
		out.Nodes[i] = graphNode{ID: n.ID, Row: n.Row, Kind: n.Kind.String(), Meta: n.Meta}
	}
	for i, e := range edges {
		out.Edges[i] = graphEdge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGraphJSON writes an attribute graph to a JSON file at path.
func ExportGraphJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraphJSON(g, f)
}
