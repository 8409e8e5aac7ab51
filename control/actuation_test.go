package control

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

func TestNeutralInertiaIsBase(t *testing.T) {
	v := DefaultVehicle()
	for _, variant := range []Variant{VariantNone, VariantMovableMass, VariantManipulator} {
		a := NewActuation(v, variant)
		switch variant {
		case VariantMovableMass:
			a.SetMassFeedback([4]float64{})
		case VariantManipulator:
			a.SetGripperFeedback([2]r3.Vector{})
		}
		if !geometry.MatApprox(a.Inertia(), a.BaseInertia(), 0) {
			t.Errorf("%s: neutral inertia\n%v\n!= base\n%v", variant, a.Inertia(), a.BaseInertia())
		}
		if a.CenterOfMass() != (r3.Vector{}) {
			t.Errorf("%s: neutral r_cm = %v", variant, a.CenterOfMass())
		}
	}
}

func TestAddedMass(t *testing.T) {
	v := DefaultVehicle()
	if m := NewActuation(v, VariantNone).Mass(); m != v.Mass {
		t.Errorf("bare mass %v, want %v", m, v.Mass)
	}
	if m := NewActuation(v, VariantMovableMass).Mass(); notSmall(m - v.Mass - 4*v.MovingMass) {
		t.Errorf("movable mass vehicle mass %v", m)
	}
	if m := NewActuation(v, VariantManipulator).Mass(); notSmall(m - v.Mass - 2*v.PayloadMass) {
		t.Errorf("manipulator vehicle mass %v", m)
	}

	// Base inertia includes the hardware's own inertia
	a := NewActuation(v, VariantMovableMass)
	if notSmall(a.BaseInertia().Get(0, 0) - v.Inertia[0] - 4*v.MovingMassInertia[0]) {
		t.Errorf("base Jxx = %v", a.BaseInertia().Get(0, 0))
	}
	a = NewActuation(v, VariantManipulator)
	if notSmall(a.BaseInertia().Get(2, 2) - v.Inertia[2] - 2*v.PayloadInertia[2]) {
		t.Errorf("base Jzz = %v", a.BaseInertia().Get(2, 2))
	}
}

func TestMovableMassModel(t *testing.T) {
	v := DefaultVehicle()
	a := NewActuation(v, VariantMovableMass)
	x := [4]float64{0.05, -0.02, 0.01, 0.03}
	if err := a.SetMassFeedback(x); err != nil {
		t.Fatal(err)
	}

	m := v.MovingMass
	want := r3.Vector{X: x[0] - x[2], Y: x[1] - x[3]}.Mul(m / a.Mass())
	if vecDiffers(a.CenterOfMass(), want) {
		t.Errorf("r_cm = %v, want %v", a.CenterOfMass(), want)
	}

	j, j0 := a.Inertia(), a.BaseInertia()
	dx := m * (x[1]*x[1] + x[3]*x[3])
	dy := m * (x[0]*x[0] + x[2]*x[2])
	if notSmall(j.Get(0, 0)-j0.Get(0, 0)-dx) || notSmall(j.Get(1, 1)-j0.Get(1, 1)-dy) ||
		notSmall(j.Get(2, 2)-j0.Get(2, 2)-dx-dy) {
		t.Errorf("inertia\n%v\nbase\n%v", j, j0)
	}
	if j.Get(0, 1) != 0 || j.Get(1, 2) != 0 {
		t.Error("inertia gained off-diagonal terms")
	}
}

func TestMassFeedbackSaturation(t *testing.T) {
	v := DefaultVehicle()
	a := NewActuation(v, VariantMovableMass)
	a.SetMassFeedback([4]float64{1, -1, 0.1, math.Inf(1)})
	lim := v.ArmLength / 2
	if got := a.MassOffsets(); got != [4]float64{lim, -lim, 0.1, lim} {
		t.Errorf("offsets %v not limited to %v", got, lim)
	}
}

func TestManipulatorModel(t *testing.T) {
	v := DefaultVehicle()
	a := NewActuation(v, VariantManipulator)
	p := [2]r3.Vector{{X: 0.1, Y: 0.2, Z: -0.3}, {X: 0.05, Y: -0.1, Z: -0.3}}
	if err := a.SetGripperFeedback(p); err != nil {
		t.Fatal(err)
	}

	m := v.PayloadMass
	want := p[0].Add(p[1]).Mul(m / a.Mass())
	if vecDiffers(a.CenterOfMass(), want) {
		t.Errorf("r_cm = %v, want %v", a.CenterOfMass(), want)
	}

	var dx, dy, dz float64
	for _, q := range p {
		dx += m * (q.Y*q.Y + q.Z*q.Z)
		dy += m * (q.X*q.X + q.Z*q.Z)
		dz += m * (q.X*q.X + q.Y*q.Y)
	}
	j, j0 := a.Inertia(), a.BaseInertia()
	if notSmall(j.Get(0, 0)-j0.Get(0, 0)-dx) || notSmall(j.Get(1, 1)-j0.Get(1, 1)-dy) ||
		notSmall(j.Get(2, 2)-j0.Get(2, 2)-dz) {
		t.Errorf("inertia\n%v\nbase\n%v", j, j0)
	}
}

func TestInactiveVariantFeedback(t *testing.T) {
	v := DefaultVehicle()
	if err := NewActuation(v, VariantNone).SetMassFeedback([4]float64{0.1}); !errors.Is(err, ErrInactiveVariant) {
		t.Errorf("mass feedback on bare vehicle: %v", err)
	}
	if err := NewActuation(v, VariantMovableMass).SetGripperFeedback([2]r3.Vector{}); !errors.Is(err, ErrInactiveVariant) {
		t.Errorf("gripper feedback on movable mass vehicle: %v", err)
	}
	a := NewActuation(v, VariantManipulator)
	a.SetMassFeedback([4]float64{0.1, 0.1, 0.1, 0.1})
	if a.CenterOfMass() != (r3.Vector{}) {
		t.Error("rejected feedback moved the center of mass")
	}
}
