package control

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestHoverAllocation(t *testing.T) {
	v := DefaultVehicle()
	a := NewAllocator(v)
	for _, f := range []float64{1, 5, 20, 30} {
		want := math.Sqrt(f / (4 * v.MotorConstant))
		for _, yawOnly := range []bool{false, true} {
			w := a.Rotors(f, r3.Vector{}, yawOnly)
			for i, wi := range w {
				if wi <= 0 || notSmall(wi-want) {
					t.Errorf("thrust %v, yawOnly %v: rotor %d = %v, want %v", f, yawOnly, i+1, wi, want)
				}
			}
		}
	}
}

func TestAllocatorSignPreservation(t *testing.T) {
	v := DefaultVehicle()
	a := NewAllocator(v)
	m := r3.Vector{X: 0.3, Y: -0.2, Z: 0.05}
	f := a.Mix(0, m, false)
	w := a.Rotors(0, m, false)
	for i := range f {
		mag := math.Sqrt(math.Abs(f[i]) / v.MotorConstant)
		if mag > v.MaxRotorVelocity {
			t.Fatalf("test moment saturates rotor %d", i+1)
		}
		if f[i] < 0 && notSmall(w[i]+mag) || f[i] >= 0 && notSmall(w[i]-mag) {
			t.Errorf("rotor %d: force %v gave speed %v", i+1, f[i], w[i])
		}
	}
}

func TestAllocatorMixing(t *testing.T) {
	v := DefaultVehicle()
	a := NewAllocator(v)

	// Positive roll moment speeds up the +y rotor and slows the -y rotor
	f := a.Mix(10, r3.Vector{X: 1}, false)
	if f[1] <= f[3] || notSmall(f[0]-f[2]) {
		t.Errorf("roll mixing gave %v", f)
	}
	// Positive pitch moment speeds up the -x rotor
	f = a.Mix(10, r3.Vector{Y: 1}, false)
	if f[2] <= f[0] || notSmall(f[1]-f[3]) {
		t.Errorf("pitch mixing gave %v", f)
	}
	// The yaw-only transform ignores roll and pitch
	f = a.Mix(10, r3.Vector{X: 1, Y: 1}, true)
	for i := range f {
		if notSmall(f[i] - 2.5) {
			t.Errorf("yaw-only mixing gave %v", f)
		}
	}

	// Forces reproduce the commanded thrust and moment
	m := r3.Vector{X: 0.2, Y: -0.4, Z: 0.03}
	f = a.Mix(12, m, false)
	l, c := v.ArmLength, v.MomentConstant
	if notSmall(f[0]+f[1]+f[2]+f[3]-12) ||
		notSmall(l*(f[1]-f[3])-m.X) ||
		notSmall(l*(f[2]-f[0])-m.Y) ||
		notSmall(c*(f[1]+f[3]-f[0]-f[2])-m.Z) {
		t.Errorf("forces %v do not produce thrust 12 and moment %v", f, m)
	}
}

func TestRotorSaturation(t *testing.T) {
	v := DefaultVehicle()
	a := NewAllocator(v)
	for _, wi := range a.Rotors(1e6, r3.Vector{}, false) {
		if wi != v.MaxRotorVelocity {
			t.Errorf("rotor speed %v, want %v", wi, v.MaxRotorVelocity)
		}
	}
	for _, wi := range a.Rotors(-1e6, r3.Vector{}, false) {
		if wi != -v.MaxRotorVelocity {
			t.Errorf("rotor speed %v, want %v", wi, -v.MaxRotorVelocity)
		}
	}
}

func TestMassOffsetsRealizeMoment(t *testing.T) {
	v := DefaultVehicle()
	a := NewAllocator(v)
	act := NewActuation(v, VariantMovableMass)

	const thrust = 25.0
	m := r3.Vector{X: 0.1, Y: 0.2}
	x := a.MassOffsets(thrust, m)
	if err := act.SetMassFeedback(x); err != nil {
		t.Fatal(err)
	}
	// The thrust acting a distance r_cm from the center of mass
	r := act.CenterOfMass()
	if notSmall(-r.Y*thrust-m.X) || notSmall(r.X*thrust-m.Y) {
		t.Errorf("offsets %v give r_cm %v, moment (%v, %v)", x, r, -r.Y*thrust, r.X*thrust)
	}

	for _, xi := range a.MassOffsets(thrust, r3.Vector{X: 100, Y: -100}) {
		if math.Abs(xi) > v.ArmLength/2 {
			t.Errorf("mass offset %v exceeds half the arm length", xi)
		}
	}
	if x := a.MassOffsets(0, m); x != [4]float64{} {
		t.Errorf("offsets at zero thrust = %v", x)
	}
}

func TestPayloadOffsetRealizesMoment(t *testing.T) {
	v := DefaultVehicle()
	a := NewAllocator(v)
	act := NewActuation(v, VariantManipulator)

	const thrust = 22.0
	m := r3.Vector{X: -0.1, Y: 0.15}
	p := a.PayloadOffset(thrust, m)
	pos := r3.Vector{X: p[0], Y: p[1]}
	if err := act.SetGripperFeedback([2]r3.Vector{pos, pos}); err != nil {
		t.Fatal(err)
	}
	r := act.CenterOfMass()
	if notSmall(-r.Y*thrust-m.X) || notSmall(r.X*thrust-m.Y) {
		t.Errorf("payload %v gives r_cm %v", p, r)
	}

	p = a.PayloadOffset(thrust, r3.Vector{X: 100, Y: 100})
	if p[0] != v.PayloadReach || p[1] != -v.PayloadReach {
		t.Errorf("payload offset %v not saturated", p)
	}
	if p := a.PayloadOffset(-1, m); p != [2]float64{} {
		t.Errorf("payload offset at negative thrust = %v", p)
	}
}
