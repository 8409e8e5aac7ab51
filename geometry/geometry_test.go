package geometry

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"
	"github.com/westphae/quaternion"
)

const Tolerance = 1e-9

// notSmall checks whether a result is not small compared to Tolerance
func notSmall(x float64) bool {
	return math.Abs(x) > Tolerance
}

func vecDiffers(a, b r3.Vector) bool {
	return notSmall(a.X-b.X) || notSmall(a.Y-b.Y) || notSmall(a.Z-b.Z)
}

func randomVector() r3.Vector {
	return r3.Vector{X: 20*rand.Float64() - 10, Y: 20*rand.Float64() - 10, Z: 20*rand.Float64() - 10}
}

func TestVeeHat(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := randomVector()
		if vv := Vee(Hat(v)); vecDiffers(v, vv) {
			fmt.Printf("vee(hat(%v)) = %v\n", v, vv)
			t.Fail()
		}
	}
}

func TestHatVee(t *testing.T) {
	for i := 0; i < 100; i++ {
		a, b, c := 2*rand.Float64()-1, 2*rand.Float64()-1, 2*rand.Float64()-1
		s := matrix.MakeDenseMatrix([]float64{
			0, -c, b,
			c, 0, -a,
			-b, a, 0,
		}, 3, 3)
		if !MatApprox(Hat(Vee(s)), s, Tolerance) {
			fmt.Printf("hat(vee(S)) != S for\n%v\n", s)
			t.Fail()
		}
	}
}

func TestHatIsCrossProduct(t *testing.T) {
	for i := 0; i < 100; i++ {
		v, w := randomVector(), randomVector()
		if got, want := MulVec(Hat(v), w), v.Cross(w); vecDiffers(got, want) {
			t.Errorf("hat(v)*w = %v, want %v", got, want)
		}
	}
}

func TestSaturate(t *testing.T) {
	xs := []float64{-1e9, -3, -2, -0.5, 0, 0.5, 2, 3, 1e9}
	for _, x := range xs {
		s := Saturate(x, -2, 2)
		if s < -2 || s > 2 {
			t.Errorf("Saturate(%v) = %v is out of range", x, s)
		}
		if ss := Saturate(s, -2, 2); ss != s {
			t.Errorf("Saturate is not idempotent at %v: %v != %v", x, ss, s)
		}
		if x >= -2 && x <= 2 && s != x {
			t.Errorf("Saturate(%v) changed an in-range value to %v", x, s)
		}
	}

	v := SaturateVector(r3.Vector{X: 5, Y: -5, Z: 0.1}, r3.Vector{X: 1, Y: 2, Z: 3})
	if vecDiffers(v, r3.Vector{X: 1, Y: -2, Z: 0.1}) {
		t.Errorf("SaturateVector gave %v", v)
	}
}

func TestEulerRoundTrips(t *testing.T) {
	phis := []float64{0, 0.1, 0.2, 0.5, 1, 1.5, 2, 2.5, 3, -3, -2, -1, -0.5, -0.2}
	thetas := []float64{0.1, 0.2, 0.5, 1, 1.5, -1.5, -0.5, -0.2, 0.2, 0.1, -1, -0.5, -0.2, 0}
	psis := []float64{1, 1.5, 2, 2.5, 3, -3, 0.1, 0.2, 0.5, -1, -2.5, 3.1, -0.3, 0}

	for i := 0; i < len(phis); i++ {
		e := RotationToEuler(EulerToRotation(phis[i], thetas[i], psis[i]))
		if notSmall(e.Roll-phis[i]) || notSmall(e.Pitch-thetas[i]) || notSmall(e.Yaw-psis[i]) {
			fmt.Printf("R: %+5.3f -> %+5.3f, %+5.3f -> %+5.3f, %+5.3f -> %+5.3f\n",
				phis[i], e.Roll, thetas[i], e.Pitch, psis[i], e.Yaw)
			t.Fail()
		}

		e = QuaternionToEuler(EulerToQuaternion(phis[i], thetas[i], psis[i]))
		if notSmall(e.Roll-phis[i]) || notSmall(e.Pitch-thetas[i]) || notSmall(e.Yaw-psis[i]) {
			fmt.Printf("Q: %+5.3f -> %+5.3f, %+5.3f -> %+5.3f, %+5.3f -> %+5.3f\n",
				phis[i], e.Roll, thetas[i], e.Pitch, psis[i], e.Yaw)
			t.Fail()
		}
	}
}

// The quaternion and the rotation matrix built from the same angles must rotate vectors identically
func TestRotationMatchesQuaternion(t *testing.T) {
	for i := 0; i < 50; i++ {
		roll, pitch, yaw := 6*rand.Float64()-3, 3*rand.Float64()-1.5, 6*rand.Float64()-3
		r := EulerToRotation(roll, pitch, yaw)
		q := EulerToQuaternion(roll, pitch, yaw)
		v := randomVector()
		z := quaternion.Prod(q, quaternion.Quaternion{X: v.X, Y: v.Y, Z: v.Z}, q.Conj())
		if vecDiffers(MulVec(r, v), r3.Vector{X: z.X, Y: z.Y, Z: z.Z}) {
			fmt.Printf("R*v = %v, q*v*q' = %v\n", MulVec(r, v), z)
			t.Fail()
		}
	}
}

func TestRotationIsOrthonormal(t *testing.T) {
	r := EulerToRotation(0.3, -0.7, 2.1)
	if !MatApprox(matrix.Product(r.Transpose(), r), matrix.Eye(3), Tolerance) {
		t.Errorf("R'R != I:\n%v", matrix.Product(r.Transpose(), r))
	}
}

func TestQuaternionToEulerNearGimbalLock(t *testing.T) {
	// Slightly over-length quaternion at +90 deg pitch pushes the asin argument past 1
	q := quaternion.Quaternion{W: math.Sqrt(0.5) * 1.001, Y: math.Sqrt(0.5) * 1.001}
	e := QuaternionToEuler(q)
	if math.IsNaN(e.Pitch) || notSmall(e.Pitch-math.Pi/2) {
		t.Errorf("pitch = %v, want Pi/2", e.Pitch)
	}
}

func TestEulerRates(t *testing.T) {
	pqr := r3.Vector{X: 0.1, Y: -0.2, Z: 0.3}
	if got := EulerRates(Euler{}, pqr); vecDiffers(got, pqr) {
		t.Errorf("level Euler rates = %v, want %v", got, pqr)
	}

	// Rolled 90 deg: pitch rate q turns into yaw rate
	got := EulerRates(Euler{Roll: math.Pi / 2}, r3.Vector{Y: 1})
	if vecDiffers(got, r3.Vector{Z: 1}) {
		t.Errorf("rolled Euler rates = %v", got)
	}
}

func TestYawRotate(t *testing.T) {
	got := YawRotate(r3.Vector{X: 1, Z: 2}, math.Pi/2)
	if vecDiffers(got, r3.Vector{Y: 1, Z: 2}) {
		t.Errorf("YawRotate gave %v", got)
	}
	v := randomVector()
	if vecDiffers(YawRotate(v, 0.7), MulVec(EulerToRotation(0, 0, 0.7), v)) {
		t.Error("YawRotate disagrees with EulerToRotation")
	}
}
