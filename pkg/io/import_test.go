package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

var wantSample = node.Inputs{
	NormalizeWeights: true,
	List: blend.List{
		{Name: "pose", Weight: 1, Absolute: true, Scale: r3.Vec{X: 2, Y: 2, Z: 2}},
		{Name: "squash", Weight: 0.5, Scale: r3.Vec{X: 1, Y: 0.5, Z: 1}},
		{Name: "defaults", Weight: 1, Scale: r3.Vec{X: 1, Y: 1, Z: 1}},
	},
}

const sampleJSON = `{
  "normalize_weights": true,
  "list": [
    {"name": "pose", "weight": 1, "absolute": true, "scale": [2, 2, 2]},
    {"name": "squash", "weight": 0.5, "scale": [1, 0.5, 1]},
    {"name": "defaults"}
  ]
}`

const sampleTOML = `normalize_weights = true

[[list]]
name = "pose"
weight = 1.0
absolute = true
scale = [2.0, 2.0, 2.0]

[[list]]
name = "squash"
weight = 0.5
scale = [1.0, 0.5, 1.0]

[[list]]
name = "defaults"
`

const sampleYAML = `normalize_weights: true
list:
  - name: pose
    weight: 1
    absolute: true
    scale: [2, 2, 2]
  - name: squash
    weight: 0.5
    scale: [1, 0.5, 1]
  - name: defaults
`

func TestReadNode(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatJSON, sampleJSON},
		{FormatTOML, sampleTOML},
		{FormatYAML, sampleYAML},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := ReadNode(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadNode() error: %v", err)
			}
			if d := cmp.Diff(wantSample, got); d != "" {
				t.Errorf("ReadNode() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestReadNodeEmpty(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatTOML, FormatYAML} {
		in, err := ReadNode(strings.NewReader(""), format)
		if err != nil {
			t.Errorf("%s: ReadNode(empty) error: %v", format, err)
			continue
		}
		if len(in.List) != 0 || in.NormalizeWeights {
			t.Errorf("%s: ReadNode(empty) = %+v", format, in)
		}
	}
}

func TestReadNodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errs.Code
	}{
		{"malformed json", FormatJSON, `{"list": [`, errs.ErrCodeInvalidFormat},
		{"unknown json field", FormatJSON, `{"lst": []}`, errs.ErrCodeInvalidFormat},
		{"unknown yaml field", FormatYAML, "list:\n  - wieght: 1\n", errs.ErrCodeInvalidFormat},
		{"unknown toml field", FormatTOML, "normalise = true\n", errs.ErrCodeInvalidFormat},
		{"short scale", FormatJSON, `{"list": [{"scale": [1, 2]}]}`, errs.ErrCodeInvalidInput},
		{"unsupported", Format("xml"), `<node/>`, errs.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadNode(strings.NewReader(tt.input), tt.format)
			if !errs.Is(err, tt.code) {
				t.Errorf("ReadNode() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestImportNode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ImportNode(path)
	if err != nil {
		t.Fatalf("ImportNode() error: %v", err)
	}
	if d := cmp.Diff(wantSample, got); d != "" {
		t.Errorf("ImportNode() mismatch (-want +got):\n%s", d)
	}

	if _, err := ImportNode(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file: error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := ImportNode(filepath.Join(dir, "node")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("no extension: error = %v, want INVALID_FORMAT", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/b.TOML", FormatTOML, false},
		{"c.yaml", FormatYAML, false},
		{"d.yml", FormatYAML, false},
		{"e.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestImportExamples(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "nodes", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example nodes")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			in, err := ImportNode(path)
			if err != nil {
				t.Fatalf("ImportNode(%s): %v", path, err)
			}
			if len(in.List) == 0 {
				t.Error("example node has no contributions")
			}
			out := node.Evaluate(in)
			if wantDegenerate := strings.HasPrefix(filepath.Base(path), "flatten"); out.Degenerate != wantDegenerate {
				t.Errorf("Degenerate = %v, want %v", out.Degenerate, wantDegenerate)
			}
		})
	}
}
