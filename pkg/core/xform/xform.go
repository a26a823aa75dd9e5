// Package xform builds 4x4 scale transforms and their inverses.
//
// Matrices use [mgl64.Mat4], which stores elements in column-major order.
// A scale matrix is diagonal, so its storage order and its transpose agree.
//
// Inverses are computed with a general LU-based routine from gonum rather
// than by reciprocating the diagonal. A matrix with a zero (or non-finite)
// axis has no inverse: [Inverse] reports [ErrDegenerate] and returns the zero
// matrix.
package xform

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned by [Inverse] for matrices that cannot be inverted.
var ErrDegenerate = errors.New("degenerate scale: matrix is not invertible")

// ScaleMatrix returns diag(x, y, z, 1).
func ScaleMatrix(x, y, z float64) mgl64.Mat4 {
	return mgl64.Scale3D(x, y, z)
}

// ScaleMatrixVec returns the scale matrix for v.
func ScaleMatrixVec(v r3.Vec) mgl64.Mat4 {
	return ScaleMatrix(v.X, v.Y, v.Z)
}

// ScaleOf returns the diagonal scale components of m.
func ScaleOf(m mgl64.Mat4) r3.Vec {
	return r3.Vec{X: m.At(0, 0), Y: m.At(1, 1), Z: m.At(2, 2)}
}

// IsDegenerate reports whether a scale matrix built from v has no inverse.
// Negative axes mirror and are invertible.
func IsDegenerate(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return false
}

// Inverse returns the algebraic inverse of m.
//
// Singular matrices yield the zero matrix and [ErrDegenerate]. Matrices that
// are invertible but badly conditioned return their computed inverse, as
// long as it is finite and multiplies back to the identity. gonum reports an
// infinite condition number both for exactly singular input and when the
// estimate underflows (diag(1e200, 1e-200, ...)), so the result decides.
func Inverse(m mgl64.Mat4) (mgl64.Mat4, error) {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return mgl64.Mat4{}, ErrDegenerate
		}
	}

	a := toDense(m)
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || !isInverse(a, &inv) {
			return mgl64.Mat4{}, ErrDegenerate
		}
	}
	return fromDense(&inv), nil
}

// identityTol bounds the entries of a*inv - I accepted by isInverse.
const identityTol = 1e-9

var ident4 = mat.NewDiagDense(4, []float64{1, 1, 1, 1})

// isInverse reports whether inv is finite and a*inv is the identity.
func isInverse(a, inv *mat.Dense) bool {
	r, c := inv.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := inv.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	var prod mat.Dense
	prod.Mul(a, inv)
	return mat.EqualApprox(&prod, ident4, identityTol)
}

// Transform pairs a scale matrix with its inverse.
type Transform struct {
	Matrix     mgl64.Mat4
	Inverse    mgl64.Mat4
	Degenerate bool // Inverse is the zero matrix
}

// Build returns the scale matrix for v and its inverse.
func Build(v r3.Vec) Transform {
	t := Transform{Matrix: ScaleMatrixVec(v)}
	if IsDegenerate(v) {
		t.Degenerate = true
		return t
	}
	inv, err := Inverse(t.Matrix)
	if err != nil {
		t.Degenerate = true
		return t
	}
	t.Inverse = inv
	return t
}

func toDense(m mgl64.Mat4) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			d.Set(r, c, m.At(r, c))
		}
	}
	return d
}

func fromDense(d *mat.Dense) mgl64.Mat4 {
	var m mgl64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[c*4+r] = d.At(r, c)
		}
	}
	return m
}
