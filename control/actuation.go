package control

import (
	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// Actuation tracks the center-of-mass actuation hardware.  The variant, the
// added mass and the neutral inertia are fixed when it is built; only the
// feedback (mass offsets or gripper positions) changes afterwards.
type Actuation struct {
	variant  Variant
	v        Vehicle
	mass     float64             // Total mass including the variant hardware, kg
	base     *matrix.DenseMatrix // Inertia with the hardware at its neutral position
	masses   [4]float64          // Movable mass offsets along their arms, m
	grippers [2]r3.Vector        // Gripper payload positions, body frame, m
}

// NewActuation fits the given variant to the vehicle.
func NewActuation(v Vehicle, variant Variant) *Actuation {
	a := &Actuation{variant: variant, v: v, mass: v.Mass}
	ixx, iyy, izz := v.Inertia[0], v.Inertia[1], v.Inertia[2]

	switch variant {
	case VariantMovableMass:
		a.mass += 4 * v.MovingMass
		ixx += 4 * v.MovingMassInertia[0]
		iyy += 4 * v.MovingMassInertia[1]
		izz += 4 * v.MovingMassInertia[2]
	case VariantManipulator:
		a.mass += 2 * v.PayloadMass
		ixx += 2 * v.PayloadInertia[0]
		iyy += 2 * v.PayloadInertia[1]
		izz += 2 * v.PayloadInertia[2]
	}
	a.base = geometry.Diag(ixx, iyy, izz)
	return a
}

// Variant returns the fitted variant.
func (a *Actuation) Variant() Variant {
	return a.variant
}

// Mass returns the total vehicle mass.
func (a *Actuation) Mass() float64 {
	return a.mass
}

// BaseInertia returns the inertia with the hardware at its neutral position.
func (a *Actuation) BaseInertia() *matrix.DenseMatrix {
	return a.base.Copy()
}

// SetMassFeedback stores the measured mass offsets, limited to half the arm length.
func (a *Actuation) SetMassFeedback(x [4]float64) error {
	if a.variant != VariantMovableMass {
		return ErrInactiveVariant
	}
	lim := a.v.ArmLength / 2
	for i := range x {
		a.masses[i] = geometry.Saturate(x[i], -lim, lim)
	}
	return nil
}

// SetGripperFeedback stores the measured gripper payload positions.
func (a *Actuation) SetGripperFeedback(p [2]r3.Vector) error {
	if a.variant != VariantManipulator {
		return ErrInactiveVariant
	}
	a.grippers = p
	return nil
}

// MassOffsets returns the last mass offset feedback.
func (a *Actuation) MassOffsets() [4]float64 {
	return a.masses
}

// CenterOfMass returns the offset of the center of mass from the geometric
// center, body frame.
func (a *Actuation) CenterOfMass() r3.Vector {
	switch a.variant {
	case VariantMovableMass:
		x := a.masses
		return r3.Vector{X: x[0] - x[2], Y: x[1] - x[3]}.Mul(a.v.MovingMass / a.mass)
	case VariantManipulator:
		return a.grippers[0].Add(a.grippers[1]).Mul(a.v.PayloadMass / a.mass)
	}
	return r3.Vector{}
}

// Inertia returns the inertia tensor adjusted for the current feedback.
func (a *Actuation) Inertia() *matrix.DenseMatrix {
	var dx, dy, dz float64
	switch a.variant {
	case VariantMovableMass:
		x := a.masses
		m := a.v.MovingMass
		dx = m * (x[1]*x[1] + x[3]*x[3]) // Masses on the y arm
		dy = m * (x[0]*x[0] + x[2]*x[2]) // Masses on the x arm
		dz = dx + dy
	case VariantManipulator:
		m := a.v.PayloadMass
		for _, p := range a.grippers {
			dx += m * (p.Y*p.Y + p.Z*p.Z)
			dy += m * (p.X*p.X + p.Z*p.Z)
			dz += m * (p.X*p.X + p.Y*p.Y)
		}
	default:
		return a.base.Copy()
	}
	return matrix.Sum(a.base, geometry.Diag(dx, dy, dz))
}
