package node

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	"github.com/matzehuels/scalelist/pkg/core/xform"
	errs "github.com/matzehuels/scalelist/pkg/errors"
)

// ErrUnknownAttribute is returned when a compute request names an attribute
// this node does not produce. It is not a failure: the host should try
// elsewhere.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Inputs is a snapshot of the node's writable attributes.
type Inputs struct {
	Active           int // reserved, has no effect on the outputs
	NormalizeWeights bool
	List             blend.List
}

// Clone returns a deep copy of in.
func (in Inputs) Clone() Inputs {
	in.List = in.List.Clone()
	return in
}

// Validate rejects non-finite weights and scales. Out-of-range weights are
// valid.
func (in Inputs) Validate() error {
	for i, c := range in.List {
		label := c.Name
		if label == "" {
			label = fmt.Sprintf("list[%d]", i)
		}
		if err := errs.ValidateWeight(label, c.Weight); err != nil {
			return err
		}
		if err := errs.ValidateScale(label, c.Scale.X, c.Scale.Y, c.Scale.Z); err != nil {
			return err
		}
	}
	return nil
}

// Outputs holds the computed attributes of the node.
type Outputs struct {
	Scale         r3.Vec
	Matrix        mgl64.Mat4
	InverseMatrix mgl64.Mat4
	// Degenerate is set when Scale has a zero or non-finite axis. The inverse
	// is then the zero matrix.
	Degenerate bool
}

// DefaultOutputs returns the outputs of a node with an empty list.
func DefaultOutputs() Outputs {
	return Evaluate(Inputs{})
}

// Value returns a scalar output by long or short name.
func (o Outputs) Value(attr string) (float64, error) {
	a, ok := DefaultSchema().Attribute(attr)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	switch a.Name {
	case AttrOutputX:
		return o.Scale.X, nil
	case AttrOutputY:
		return o.Scale.Y, nil
	case AttrOutputZ:
		return o.Scale.Z, nil
	}
	return 0, fmt.Errorf("%w: %q is not a scalar output", ErrUnknownAttribute, attr)
}

type outputsJSON struct {
	Output        [3]float64  `json:"output"`
	Matrix        [16]float64 `json:"matrix"`
	InverseMatrix [16]float64 `json:"inverse_matrix"`
	Degenerate    bool        `json:"degenerate,omitempty"`
}

// MarshalJSON encodes the outputs with matrices in column-major order.
func (o Outputs) MarshalJSON() ([]byte, error) {
	return json.Marshal(outputsJSON{
		Output:        [3]float64{o.Scale.X, o.Scale.Y, o.Scale.Z},
		Matrix:        o.Matrix,
		InverseMatrix: o.InverseMatrix,
		Degenerate:    o.Degenerate,
	})
}

// UnmarshalJSON decodes outputs written by MarshalJSON.
func (o *Outputs) UnmarshalJSON(data []byte) error {
	var v outputsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Outputs{
		Scale:         r3.Vec{X: v.Output[0], Y: v.Output[1], Z: v.Output[2]},
		Matrix:        v.Matrix,
		InverseMatrix: v.InverseMatrix,
		Degenerate:    v.Degenerate,
	}
	return nil
}

// Computer turns an input snapshot into outputs.
type Computer interface {
	Recompute(in Inputs) Outputs
}

// ComputerFunc adapts a function to [Computer].
type ComputerFunc func(Inputs) Outputs

// Recompute calls f(in).
func (f ComputerFunc) Recompute(in Inputs) Outputs { return f(in) }

// Evaluate computes the outputs for in. The caller's list is never modified:
// normalization works on a private copy.
func Evaluate(in Inputs) Outputs {
	items := in.List.Clone()
	if in.NormalizeWeights {
		blend.Normalize(items)
	}

	scale := blend.Average(items)
	t := xform.Build(scale)
	return Outputs{
		Scale:         scale,
		Matrix:        t.Matrix,
		InverseMatrix: t.Inverse,
		Degenerate:    t.Degenerate,
	}
}
