package node

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	errs "github.com/matzehuels/scalelist/pkg/errors"
)

// ScaleList is a stateful scaleList node. Setters mark the outputs they
// affect dirty; [ScaleList.Compute] recomputes all outputs at once and
// marks them clean.
//
// A ScaleList is not safe for concurrent use.
type ScaleList struct {
	schema      *Schema
	in          Inputs
	out         Outputs
	dirty       map[string]bool
	evaluations int
}

var _ Computer = (*ScaleList)(nil)

// New returns a node with default inputs and every output dirty.
func New() *ScaleList {
	n := &ScaleList{
		schema: DefaultSchema(),
		out:    DefaultOutputs(),
		dirty:  make(map[string]bool),
	}
	for _, a := range n.schema.Outputs() {
		n.dirty[a.Name] = true
	}
	return n
}

// NewFromInputs returns a node holding a copy of in.
func NewFromInputs(in Inputs) *ScaleList {
	n := New()
	n.in = in.Clone()
	return n
}

// Recompute evaluates in without touching the node's state.
func (n *ScaleList) Recompute(in Inputs) Outputs { return Evaluate(in) }

// Schema returns the node's attribute table.
func (n *ScaleList) Schema() *Schema { return n.schema }

// Inputs returns a copy of the current inputs.
func (n *ScaleList) Inputs() Inputs { return n.in.Clone() }

// Outputs returns the most recently computed outputs. They may be stale;
// check IsDirty or use Pull.
func (n *ScaleList) Outputs() Outputs { return n.out }

// Evaluations returns how many times the outputs have been recomputed.
func (n *ScaleList) Evaluations() int { return n.evaluations }

func (n *ScaleList) markDirty(attr string) {
	for _, out := range n.schema.Affects(attr) {
		n.dirty[out] = true
	}
}

func (n *ScaleList) element(i int) (*blend.Contribution, error) {
	if i < 0 || i >= len(n.in.List) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "list index %d out of range [0, %d)", i, len(n.in.List))
	}
	return &n.in.List[i], nil
}

// SetActive sets the reserved active attribute.
func (n *ScaleList) SetActive(v int) {
	n.in.Active = v
	n.markDirty(AttrActive)
}

// SetNormalizeWeights toggles weight normalization.
func (n *ScaleList) SetNormalizeWeights(v bool) {
	n.in.NormalizeWeights = v
	n.markDirty(AttrNormalizeWeights)
}

// SetList replaces the whole list with a copy of items.
func (n *ScaleList) SetList(items blend.List) {
	n.in.List = items.Clone()
	n.markDirty(AttrList)
}

// Append adds c to the end of the list.
func (n *ScaleList) Append(c blend.Contribution) {
	n.in.List = append(n.in.List, c)
	n.markDirty(AttrList)
}

// Remove deletes element i, shifting later elements down.
func (n *ScaleList) Remove(i int) error {
	if _, err := n.element(i); err != nil {
		return err
	}
	n.in.List = append(n.in.List[:i:i], n.in.List[i+1:]...)
	n.markDirty(AttrList)
	return nil
}

// SetName sets the label of element i. Labels affect no output.
func (n *ScaleList) SetName(i int, name string) error {
	c, err := n.element(i)
	if err != nil {
		return err
	}
	c.Name = name
	n.markDirty(AttrName)
	return nil
}

// SetWeight sets the weight of element i.
func (n *ScaleList) SetWeight(i int, w float64) error {
	c, err := n.element(i)
	if err != nil {
		return err
	}
	c.Weight = w
	n.markDirty(AttrWeight)
	return nil
}

// SetAbsolute sets the blend mode of element i.
func (n *ScaleList) SetAbsolute(i int, abs bool) error {
	c, err := n.element(i)
	if err != nil {
		return err
	}
	c.Absolute = abs
	n.markDirty(AttrAbsolute)
	return nil
}

// SetScale sets the scale of element i. Only the axes that change mark their
// outputs dirty.
func (n *ScaleList) SetScale(i int, v r3.Vec) error {
	c, err := n.element(i)
	if err != nil {
		return err
	}
	if c.Scale.X != v.X {
		n.markDirty(AttrScaleX)
	}
	if c.Scale.Y != v.Y {
		n.markDirty(AttrScaleY)
	}
	if c.Scale.Z != v.Z {
		n.markDirty(AttrScaleZ)
	}
	c.Scale = v
	return nil
}

// IsDirty reports whether the named output needs recomputing. The output
// compound is dirty when any member is. Inputs are never dirty.
func (n *ScaleList) IsDirty(attr string) bool {
	a, ok := n.schema.Attribute(attr)
	if !ok {
		return false
	}
	if a.IsCompound() {
		for _, child := range a.Children {
			if n.dirty[child] {
				return true
			}
		}
		return false
	}
	return n.dirty[a.Name]
}

// Compute handles a compute request for attr. For any output attribute all
// outputs are recomputed together and marked clean. Any other attribute
// yields an error wrapping [ErrUnknownAttribute] and leaves the node
// untouched.
func (n *ScaleList) Compute(attr string) error {
	if !n.schema.HasCategory(attr, CategoryOutput) {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	n.out = n.Recompute(n.in)
	n.evaluations++
	for _, a := range n.schema.Outputs() {
		n.dirty[a.Name] = false
	}
	return nil
}

// Pull returns fresh outputs for attr, computing them first if attr is dirty.
func (n *ScaleList) Pull(attr string) (Outputs, error) {
	if !n.schema.HasCategory(attr, CategoryOutput) {
		return Outputs{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, attr)
	}
	if n.IsDirty(attr) {
		if err := n.Compute(attr); err != nil {
			return Outputs{}, err
		}
	}
	return n.out, nil
}
