package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"
	"github.com/westphae/quaternion"
)

// Euler holds roll, pitch and yaw in radians (ZYX, body to world).
type Euler struct {
	Roll, Pitch, Yaw float64
}

// EulerToRotation returns R = Rz(yaw)*Ry(pitch)*Rx(roll), which rotates body
// frame vectors into the world frame.
func EulerToRotation(roll, pitch, yaw float64) *matrix.DenseMatrix {
	sx, cx := math.Sincos(roll)
	sy, cy := math.Sincos(pitch)
	sz, cz := math.Sincos(yaw)
	return matrix.MakeDenseMatrix([]float64{
		cz * cy, cz*sy*sx - sz*cx, cz*sy*cx + sz*sx,
		sz * cy, sz*sy*sx + cz*cx, sz*sy*cx - cz*sx,
		-sy, cy * sx, cy * cx,
	}, 3, 3)
}

// RotationToEuler is the inverse of EulerToRotation for pitch in (-Pi/2, Pi/2).
func RotationToEuler(r *matrix.DenseMatrix) Euler {
	return Euler{
		Roll:  math.Atan2(r.Get(2, 1), r.Get(2, 2)),
		Pitch: -math.Asin(Saturate(r.Get(2, 0), -1, 1)),
		Yaw:   math.Atan2(r.Get(1, 0), r.Get(0, 0)),
	}
}

// QuaternionToEuler converts an orientation quaternion (W scalar) into roll,
// pitch and yaw.  The asin argument is clamped so that a slightly
// non-normalized sample near +-90 deg pitch can't produce NaN.
func QuaternionToEuler(q quaternion.Quaternion) Euler {
	return Euler{
		Roll:  math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y)),
		Pitch: math.Asin(Saturate(2*(q.W*q.Y-q.Z*q.X), -1, 1)),
		Yaw:   math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z)),
	}
}

// EulerToQuaternion returns the unit quaternion matching EulerToRotation.
func EulerToQuaternion(roll, pitch, yaw float64) quaternion.Quaternion {
	sx, cx := math.Sincos(roll / 2)
	sy, cy := math.Sincos(pitch / 2)
	sz, cz := math.Sincos(yaw / 2)
	return quaternion.Quaternion{
		W: cx*cy*cz + sx*sy*sz,
		X: sx*cy*cz - cx*sy*sz,
		Y: cx*sy*cz + sx*cy*sz,
		Z: cx*cy*sz - sx*sy*cz,
	}
}

// EulerRates converts body rates p, q, r into roll, pitch and yaw rates.
// Singular at pitch = +-90 deg.
func EulerRates(e Euler, pqr r3.Vector) r3.Vector {
	sx, cx := math.Sincos(e.Roll)
	cy := math.Cos(e.Pitch)
	ty := math.Tan(e.Pitch)
	return r3.Vector{
		X: pqr.X + sx*ty*pqr.Y + cx*ty*pqr.Z,
		Y: cx*pqr.Y - sx*pqr.Z,
		Z: sx/cy*pqr.Y + cx/cy*pqr.Z,
	}
}

// YawRotate rotates the horizontal components of v by yaw about the z axis.
func YawRotate(v r3.Vector, yaw float64) r3.Vector {
	s, c := math.Sincos(yaw)
	return r3.Vector{
		X: c*v.X - s*v.Y,
		Y: s*v.X + c*v.Y,
		Z: v.Z,
	}
}
