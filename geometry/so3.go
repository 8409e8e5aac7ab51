// Package geometry holds the small amount of SO(3) algebra the geometric
// controller needs: hat/vee maps, Euler/quaternion conversions and saturation.
// Rotation matrices are 3x3 go.matrix DenseMatrices, vectors are r3.Vectors.
package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"
)

// Hat returns the skew-symmetric matrix S such that S*w = v x w.
func Hat(v r3.Vector) *matrix.DenseMatrix {
	return matrix.MakeDenseMatrix([]float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	}, 3, 3)
}

// Vee is the left inverse of Hat.  For a matrix that is not exactly
// skew-symmetric the antisymmetric part is used.
func Vee(s *matrix.DenseMatrix) r3.Vector {
	return r3.Vector{
		X: (s.Get(2, 1) - s.Get(1, 2)) / 2,
		Y: (s.Get(0, 2) - s.Get(2, 0)) / 2,
		Z: (s.Get(1, 0) - s.Get(0, 1)) / 2,
	}
}

// MulVec returns m*v for a 3x3 matrix m.
func MulVec(m *matrix.DenseMatrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.Get(0, 0)*v.X + m.Get(0, 1)*v.Y + m.Get(0, 2)*v.Z,
		Y: m.Get(1, 0)*v.X + m.Get(1, 1)*v.Y + m.Get(1, 2)*v.Z,
		Z: m.Get(2, 0)*v.X + m.Get(2, 1)*v.Y + m.Get(2, 2)*v.Z,
	}
}

// FromColumns assembles a 3x3 matrix [a | b | c].
func FromColumns(a, b, c r3.Vector) *matrix.DenseMatrix {
	return matrix.MakeDenseMatrix([]float64{
		a.X, b.X, c.X,
		a.Y, b.Y, c.Y,
		a.Z, b.Z, c.Z,
	}, 3, 3)
}

// FromRows builds a 3x3 matrix from 9 row-major values.
func FromRows(d [9]float64) *matrix.DenseMatrix {
	return matrix.MakeDenseMatrix(d[:], 3, 3)
}

// Column returns column j of the 3x3 matrix m.
func Column(m *matrix.DenseMatrix, j int) r3.Vector {
	return r3.Vector{X: m.Get(0, j), Y: m.Get(1, j), Z: m.Get(2, j)}
}

// Diag returns the diagonal matrix diag(x, y, z).
func Diag(x, y, z float64) *matrix.DenseMatrix {
	return matrix.Diagonal([]float64{x, y, z})
}

// IsFinite reports whether no component of v is NaN or infinite.
func IsFinite(v r3.Vector) bool {
	for _, x := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// MatApprox reports whether every element of a and b differs by less than tol.
func MatApprox(a, b *matrix.DenseMatrix, tol float64) bool {
	ra, ca := a.GetSize()
	rb, cb := b.GetSize()
	if ra != rb || ca != cb {
		return false
	}
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if math.Abs(a.Get(i, j)-b.Get(i, j)) > tol {
				return false
			}
		}
	}
	return true
}
