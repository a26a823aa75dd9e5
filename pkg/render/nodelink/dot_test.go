package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/scalelist/pkg/dag"
)

func TestToDOT_Basic(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a", Row: 0})
	g.AddNode(dag.Node{ID: "b", Row: 1, Kind: dag.NodeKindOutput})
	g.AddEdge(dag.Edge{From: "a", To: "b"})

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("ToDOT() output should lay out left to right")
	}
	if !strings.Contains(dot, `"a" [label="a", shape=ellipse]`) {
		t.Errorf("ToDOT() input node not drawn as ellipse:\n%s", dot)
	}
	if !strings.Contains(dot, `"b" [label="b", shape=box, fillcolor=lightblue]`) {
		t.Errorf("ToDOT() output node not drawn as box:\n%s", dot)
	}
	if !strings.Contains(dot, `"a" -> "b"`) {
		t.Error("ToDOT() output missing edge")
	}
}

func TestToDOT_Clusters(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "active"})
	g.AddNode(dag.Node{ID: "weight", Meta: dag.Metadata{"parent": "list"}})
	g.AddNode(dag.Node{ID: "absolute", Meta: dag.Metadata{"parent": "list"}})
	g.AddNode(dag.Node{ID: "outputX", Row: 1, Kind: dag.NodeKindOutput, Meta: dag.Metadata{"parent": "output"}})

	dot := ToDOT(g, Options{})

	if strings.Count(dot, "subgraph") != 2 {
		t.Errorf("ToDOT() should emit two clusters:\n%s", dot)
	}
	if !strings.Contains(dot, `subgraph "cluster_list"`) || !strings.Contains(dot, `label="list"`) {
		t.Errorf("ToDOT() missing list cluster:\n%s", dot)
	}
	if strings.Index(dot, `"weight"`) > strings.Index(dot, `"absolute"`) {
		t.Error("ToDOT() should keep insertion order inside a cluster")
	}
}

func TestToDOT_Isolated(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "name"})

	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, "dashed") {
		t.Error("ToDOT() isolated input missing dashed style")
	}
}

func TestToDOT_Stable(t *testing.T) {
	build := func() string {
		g := dag.New(nil)
		for _, id := range []string{"z", "y", "x", "w"} {
			g.AddNode(dag.Node{ID: id})
		}
		return ToDOT(g, Options{Detailed: true})
	}
	first := build()
	for i := 0; i < 5; i++ {
		if got := build(); got != first {
			t.Fatal("ToDOT() output is not deterministic")
		}
	}
}

func TestFmtLabel_Detailed(t *testing.T) {
	n := dag.Node{
		ID:   "weight",
		Row:  0,
		Meta: dag.Metadata{"short": "w", "parent": ""},
	}
	label := fmtLabel(n, true)

	if !strings.HasPrefix(label, "weight\n") {
		t.Errorf("fmtLabel() detailed should start with ID: %q", label)
	}
	if !strings.Contains(label, "row: 0") {
		t.Errorf("fmtLabel() detailed missing row: %q", label)
	}
	if !strings.Contains(label, "short: w") {
		t.Errorf("fmtLabel() detailed missing metadata: %q", label)
	}
	if strings.Contains(label, "parent") {
		t.Errorf("fmtLabel() should skip empty metadata: %q", label)
	}
	if got := fmtLabel(n, false); got != "weight" {
		t.Errorf("fmtLabel() simple mode = %q, want %q", got, "weight")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), `digraph G { weight -> matrix; }`)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
