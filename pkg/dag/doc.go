// Package dag provides a small directed acyclic graph organized into rows.
//
// # Overview
//
// The scaleList node describes which inputs affect which outputs as a graph:
// writable attributes sit in row 0 and computed attributes in row 1, with an
// edge for every "affects" relation. This package provides that structure and
// the queries the node and its renderers need.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]. Nodes must have unique IDs, and edges can only connect
// existing nodes in consecutive rows (From.Row+1 == To.Row):
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "weight", Row: 0})
//	g.AddNode(dag.Node{ID: "matrix", Row: 1, Kind: dag.NodeKindOutput})
//	g.AddEdge(dag.Edge{From: "weight", To: "matrix"})
//
// Query the graph with [DAG.Children], [DAG.Parents], [DAG.Descendants] and
// [DAG.NodesInRow]. Use [DAG.Validate] to verify structural integrity.
//
// # Ordering
//
// Unlike a plain map-backed graph, nodes and edges are returned in the order
// they were added. Rendered output is therefore stable across runs.
//
// # Metadata
//
// Both nodes and the graph itself carry [Metadata] maps. The node package
// stores short names, value types and defaults there; renderers read them for
// labels and tooltips.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. A graph that is built once
// and only read afterwards may be shared freely.
package dag
