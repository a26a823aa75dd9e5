package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

// resultFile is the on-disk shape of computed outputs. Matrices are written
// row by row.
type resultFile struct {
	Output        [3]float64    `json:"output" toml:"output" yaml:"output,flow"`
	Matrix        [4][4]float64 `json:"matrix" toml:"matrix" yaml:"matrix"`
	InverseMatrix [4][4]float64 `json:"inverse_matrix" toml:"inverse_matrix" yaml:"inverse_matrix"`
	Degenerate    bool          `json:"degenerate" toml:"degenerate" yaml:"degenerate"`
}

func rows(m mgl64.Mat4) [4][4]float64 {
	var out [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = m.At(r, c)
		}
	}
	return out
}

func encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}

// WriteResult encodes computed outputs to w.
func WriteResult(w io.Writer, format Format, out node.Outputs) error {
	return encode(w, format, resultFile{
		Output:        [3]float64{out.Scale.X, out.Scale.Y, out.Scale.Z},
		Matrix:        rows(out.Matrix),
		InverseMatrix: rows(out.InverseMatrix),
		Degenerate:    out.Degenerate,
	})
}

// ExportResult writes computed outputs to path, choosing the format from
// the file extension.
func ExportResult(path string, out node.Outputs) error {
	return exportFile(path, func(w io.Writer, format Format) error {
		return WriteResult(w, format, out)
	})
}

// WriteNode encodes node inputs to w in the same shape [ReadNode] accepts.
func WriteNode(w io.Writer, format Format, in node.Inputs) error {
	f := nodeFile{
		Active:           in.Active,
		NormalizeWeights: in.NormalizeWeights,
		List:             make([]itemFile, len(in.List)),
	}
	for i, c := range in.List {
		weight := c.Weight
		f.List[i] = itemFile{
			Name:     c.Name,
			Weight:   &weight,
			Absolute: c.Absolute,
			Scale:    []float64{c.Scale.X, c.Scale.Y, c.Scale.Z},
		}
	}
	return encode(w, format, f)
}

// ExportNode writes node inputs to path, choosing the format from the file
// extension.
func ExportNode(path string, in node.Inputs) error {
	return exportFile(path, func(w io.Writer, format Format) error {
		return WriteNode(w, format, in)
	})
}

func exportFile(path string, write func(io.Writer, Format) error) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
