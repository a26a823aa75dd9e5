package dag_test

import (
	"fmt"

	"github.com/matzehuels/scalelist/pkg/dag"
)

func ExampleDAG_basic() {
	// Two inputs feeding one output
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "weight", Row: 0})
	_ = g.AddNode(dag.Node{ID: "scaleX", Row: 0})
	_ = g.AddNode(dag.Node{ID: "outputX", Row: 1, Kind: dag.NodeKindOutput})
	_ = g.AddEdge(dag.Edge{From: "weight", To: "outputX"})
	_ = g.AddEdge(dag.Edge{From: "scaleX", To: "outputX"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 2
	// Valid: true
}

func ExampleDAG_traversal() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "scaleY", Row: 0})
	_ = g.AddNode(dag.Node{ID: "outputY", Row: 1, Kind: dag.NodeKindOutput})
	_ = g.AddNode(dag.Node{ID: "matrix", Row: 1, Kind: dag.NodeKindOutput})
	_ = g.AddEdge(dag.Edge{From: "scaleY", To: "outputY"})
	_ = g.AddEdge(dag.Edge{From: "scaleY", To: "matrix"})

	fmt.Println("Children of scaleY:", g.Children("scaleY"))
	fmt.Println("Parents of matrix:", g.Parents("matrix"))
	fmt.Println("Out-degree of scaleY:", g.OutDegree("scaleY"))
	// Output:
	// Children of scaleY: [outputY matrix]
	// Parents of matrix: [scaleY]
	// Out-degree of scaleY: 2
}

func ExampleDAG_metadata() {
	g := dag.New(dag.Metadata{"name": "scaleList"})
	_ = g.AddNode(dag.Node{
		ID:  "weight",
		Row: 0,
		Meta: dag.Metadata{
			"short":   "w",
			"default": 1.0,
		},
	})

	node, _ := g.Node("weight")
	fmt.Println("Attribute:", node.ID)
	fmt.Println("Short:", node.Meta["short"])
	fmt.Println("Kind:", node.Kind)
	// Output:
	// Attribute: weight
	// Short: w
	// Kind: input
}
