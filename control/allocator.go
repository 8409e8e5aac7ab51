package control

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// Allocator maps thrust and moment onto rotor speeds.  Both transforms are
// fixed at construction.
type Allocator struct {
	full     *mat.Dense // Thrust, roll, pitch and yaw through the rotors
	yawOnly  *mat.Dense // Thrust and yaw only; roll and pitch go through the CoM
	k        float64
	maxOmega float64
	maxMass  float64
	maxReach float64
	kMass    float64
	kPayload float64
}

// NewAllocator builds the mixing transforms for the vehicle geometry.
func NewAllocator(v Vehicle) *Allocator {
	l, c := v.ArmLength, v.MomentConstant
	full := mat.NewDense(4, 4, []float64{
		0.25, 0, -1 / (2 * l), -1 / (4 * c),
		0.25, 1 / (2 * l), 0, 1 / (4 * c),
		0.25, 0, 1 / (2 * l), -1 / (4 * c),
		0.25, -1 / (2 * l), 0, 1 / (4 * c),
	})
	yaw := mat.DenseCopyOf(full)
	for i := 0; i < 4; i++ {
		yaw.Set(i, 1, 0)
		yaw.Set(i, 2, 0)
	}
	return &Allocator{
		full:     full,
		yawOnly:  yaw,
		k:        v.MotorConstant,
		maxOmega: v.MaxRotorVelocity,
		maxMass:  v.ArmLength / 2,
		maxReach: v.PayloadReach,
		kMass:    v.MassForceConstant,
		kPayload: v.PayloadForceConstant,
	}
}

// Mix returns the per-rotor forces before the actuator law.
func (a *Allocator) Mix(thrust float64, m r3.Vector, yawOnly bool) [4]float64 {
	t := a.full
	if yawOnly {
		t = a.yawOnly
	}
	var v mat.VecDense
	v.MulVec(t, mat.NewVecDense(4, []float64{thrust, m.X, m.Y, m.Z}))

	var f [4]float64
	for i := range f {
		f[i] = v.AtVec(i)
	}
	return f
}

// Rotors applies the actuator law w = sign(f)*sqrt(|f|/k) and saturates.
func (a *Allocator) Rotors(thrust float64, m r3.Vector, yawOnly bool) [4]float64 {
	f := a.Mix(thrust, m, yawOnly)
	var w [4]float64
	for i, x := range f {
		s := math.Copysign(math.Sqrt(math.Abs(x)/a.k), x)
		w[i] = geometry.Saturate(s, -a.maxOmega, a.maxOmega)
	}
	return w
}

// MassOffsets returns the movable mass positions realizing the roll and
// pitch moments at the given thrust.
func (a *Allocator) MassOffsets(thrust float64, m r3.Vector) [4]float64 {
	if thrust <= Small {
		return [4]float64{}
	}
	d := geometry.Saturate(m.Y/(a.kMass*thrust), -a.maxMass, a.maxMass)
	e := geometry.Saturate(-m.X/(a.kMass*thrust), -a.maxMass, a.maxMass)
	return [4]float64{d, e, -d, -e}
}

// PayloadOffset returns the lateral manipulator payload position realizing
// the roll and pitch moments at the given thrust.
func (a *Allocator) PayloadOffset(thrust float64, m r3.Vector) [2]float64 {
	if thrust <= Small {
		return [2]float64{}
	}
	return [2]float64{
		geometry.Saturate(m.Y/(a.kPayload*thrust), -a.maxReach, a.maxReach),
		geometry.Saturate(-m.X/(a.kPayload*thrust), -a.maxReach, a.maxReach),
	}
}
