package blend

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the smallest positive normal float64. Relative contributions
// whose weight magnitude does not exceed it are skipped.
const Epsilon = 0x1p-1022

// DefaultWeight is the weight given to contributions that do not set one.
const DefaultWeight = 1.0

// One is the identity scale.
var One = r3.Vec{X: 1, Y: 1, Z: 1}

// Contribution is one weighted scale input.
type Contribution struct {
	Name     string  // display label, not used in blending
	Weight   float64 // blend strength, suggested range [-1, 1]
	Absolute bool    // interpolate toward Scale instead of multiplying by it
	Scale    r3.Vec
}

// NewContribution returns a contribution carrying the schema defaults:
// weight 1, relative mode, identity scale.
func NewContribution(name string) Contribution {
	return Contribution{Name: name, Weight: DefaultWeight, Scale: One}
}

// IsSkipped reports whether c has no effect on [Average].
func (c Contribution) IsSkipped() bool {
	return !c.Absolute && math.Abs(c.Weight) <= Epsilon
}

// List is an ordered sequence of contributions.
type List []Contribution

// Clone returns a copy of l that can be normalized without touching l.
func (l List) Clone() List {
	return slices.Clone(l)
}

// Lerp linearly interpolates between a and b. A weight of 0 yields a and a
// weight of 1 yields b; other weights extrapolate along the same line.
func Lerp(a, b r3.Vec, w float64) r3.Vec {
	return r3.Add(r3.Scale(1-w, a), r3.Scale(w, b))
}

// Average blends items in order and returns the combined scale.
// An empty list yields [One].
func Average(items List) r3.Vec {
	acc := One
	if len(items) == 0 {
		return acc
	}

	for _, item := range items {
		switch {
		case item.Absolute:
			acc = Lerp(acc, item.Scale, item.Weight)
		case math.Abs(item.Weight) > Epsilon:
			acc.X *= item.Scale.X * item.Weight
			acc.Y *= item.Scale.Y * item.Weight
			acc.Z *= item.Scale.Z * item.Weight
		}
	}
	return acc
}

// WeightSum returns the sum of the absolute values of all weights.
func WeightSum(items List) float64 {
	var sum float64
	for _, item := range items {
		sum += math.Abs(item.Weight)
	}
	return sum
}

// Normalize scales every weight in place so that [WeightSum] becomes one.
// It reports whether any weight changed. Lists summing to exactly 0 or 1 are
// returned untouched.
func Normalize(items List) bool {
	sum := WeightSum(items)
	if sum == 0 || sum == 1 {
		return false
	}

	factor := 1 / sum
	for i := range items {
		items[i].Weight *= factor
	}
	return true
}
