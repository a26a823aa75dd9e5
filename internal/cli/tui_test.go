package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m TuneModel, keys ...string) TuneModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(TuneModel)
	}
	return m
}

func tuneInputs() node.Inputs {
	return node.Inputs{List: blend.List{
		{Name: "pose", Weight: 1, Absolute: true, Scale: r3.Vec{X: 2, Y: 2, Z: 2}},
		{Name: "squash", Weight: 0.5, Scale: r3.Vec{X: 2, Y: 1, Z: 2}},
	}}
}

func TestTuneModelNavigation(t *testing.T) {
	m := NewTuneModel("node.json", tuneInputs())

	m = press(m, "down", "down", "down")
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", m.Cursor)
	}
	m = press(m, "up", "k", "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}
}

func TestTuneModelWeights(t *testing.T) {
	m := NewTuneModel("node.json", tuneInputs())

	m = press(m, "left", "left")
	if got := m.Node.Inputs().List[0].Weight; got != 0.9 {
		t.Errorf("weight after two nudges = %v, want 0.9", got)
	}

	m = press(m, "+", "j", "right")
	if got := m.Node.Inputs().List[1].Weight; got != 0.6 {
		t.Errorf("weight with step 0.1 = %v, want 0.6", got)
	}

	m = press(m, "0")
	if got := m.Node.Inputs().List[1].Weight; got != 0 {
		t.Errorf("weight after zero = %v", got)
	}

	m = press(m, "a", "n")
	in := m.Node.Inputs()
	if !in.List[1].Absolute || !in.NormalizeWeights {
		t.Errorf("toggles not applied: %+v", in)
	}
}

func TestTuneModelRecomputesOnPull(t *testing.T) {
	m := NewTuneModel("node.json", node.Inputs{List: blend.List{
		{Name: "pose", Weight: 1, Absolute: true, Scale: r3.Vec{X: 2, Y: 2, Z: 2}},
	}})

	if got := m.Outputs().Scale; got != (r3.Vec{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("output = %v", got)
	}
	evals := m.Node.Evaluations()
	_ = m.Outputs()
	if m.Node.Evaluations() != evals {
		t.Error("clean outputs should not recompute")
	}

	m = press(m, "right")
	if !m.Node.IsDirty(node.AttrOutputX) {
		t.Error("weight edit should mark outputs dirty")
	}
	_ = m.Outputs()
	if m.Node.Evaluations() != evals+1 {
		t.Errorf("evaluations = %d, want %d", m.Node.Evaluations(), evals+1)
	}
}

func TestTuneModelSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.yaml")
	m := NewTuneModel(path, tuneInputs())

	m = press(m, "left", "s")
	if !m.Saved || m.Err != nil {
		t.Fatalf("saved = %v, err = %v", m.Saved, m.Err)
	}
	in, err := nodeio.ImportNode(path)
	if err != nil {
		t.Fatal(err)
	}
	if in.List[0].Weight != 0.95 {
		t.Errorf("saved weight = %v, want 0.95", in.List[0].Weight)
	}

	m = press(m, "right")
	if m.Saved {
		t.Error("edit after save should clear the saved flag")
	}
}

func TestTuneModelSaveError(t *testing.T) {
	dir := t.TempDir()
	m := NewTuneModel(filepath.Join(dir, "missing", "node.json"), tuneInputs())
	m = press(m, "s")
	if m.Err == nil {
		t.Error("saving into a missing directory should fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "missing")); err == nil {
		t.Error("save should not create directories")
	}
}

func TestTuneModelView(t *testing.T) {
	m := NewTuneModel("node.json", tuneInputs())
	v := m.View()
	for _, want := range []string{"Tune node.json", "pose", "squash", "abs", "rel", "output", "inverse diag (0.5, 1, 0.5)", "[1/2]"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := NewTuneModel("empty.json", node.Inputs{})
	empty = press(empty, "left", "a", "down")
	if !strings.Contains(empty.View(), "[0/0]") {
		t.Error("empty list view should show [0/0]")
	}
}

func TestTuneModelQuit(t *testing.T) {
	m := NewTuneModel("node.json", tuneInputs())
	for _, k := range []string{"q", "esc"} {
		msg := key(k)
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s should return a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should quit", k)
		}
	}
}
