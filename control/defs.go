// Package control implements a geometric tracking controller on SE(3) for a
// quadrotor, optionally carrying four movable masses or a dual-gripper
// manipulator that shift the center of mass.
//
// World frame is inertial: 1 is x (forward), 2 is y (left), 3 is up.
// Body frame: 1 is to the nose, 2 to the left arm, 3 along the rotor axis.
// Rotors are numbered 1..4 at +x, +y, -x, -y; movable masses follow the same
// arms, with positive offsets pointing outward along their own arm.
package control

import (
	"fmt"

	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

const (
	G                 = 9.81 // G is the acceleration due to gravity, m/s^2
	Small             = 1e-9
	HeadingFilterGain = 0.05 // Low-pass gain pulling the working heading toward the commanded one
)

// Mode selects which branch of the control law runs.
type Mode int

const (
	ModePosition Mode = 1
	ModeAttitude Mode = 2
	ModeVelocity Mode = 3 // Declared for the mode selector; no control law implements it
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeAttitude:
		return "attitude"
	case ModeVelocity:
		return "velocity"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Variant is the center-of-mass actuation hardware fitted to the vehicle.
type Variant int

const (
	VariantNone Variant = iota
	VariantMovableMass
	VariantManipulator
)

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantMovableMass:
		return "movable-mass"
	case VariantManipulator:
		return "manipulator"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Vehicle holds the physical constants of the airframe and its actuators.
// It is passed by value and never modified after the controller is built.
type Vehicle struct {
	Mass             float64    `yaml:"mass"`               // Bare vehicle mass, kg
	Inertia          [3]float64 `yaml:"inertia"`            // Diagonal of the bare inertia tensor, kg m^2
	ArmLength        float64    `yaml:"arm_length"`         // Center to rotor axis, m
	MotorConstant    float64    `yaml:"motor_constant"`     // Rotor thrust per (rad/s)^2, N s^2
	MomentConstant   float64    `yaml:"moment_constant"`    // Rotor drag torque per unit thrust, m
	MaxRotorVelocity float64    `yaml:"max_rotor_velocity"` // rad/s
	MaxMomentXY      float64    `yaml:"max_moment_xy"`      // Roll/pitch moment saturation, N m
	MaxMomentZ       float64    `yaml:"max_moment_z"`       // Yaw moment saturation, N m
	MaxAlpha         float64    `yaml:"max_alpha"`          // Desired angular acceleration saturation, rad/s^2

	MovingMass           float64    `yaml:"moving_mass"`            // Each of the four movable masses, kg
	MovingMassInertia    [3]float64 `yaml:"moving_mass_inertia"`    // Own inertia of one movable mass, kg m^2
	MassForceConstant    float64    `yaml:"mass_force_constant"`    // Moment per unit thrust per unit mass offset
	PayloadMass          float64    `yaml:"payload_mass"`           // Each of the two gripper payloads, kg
	PayloadInertia       [3]float64 `yaml:"payload_inertia"`        // Own inertia of one payload, kg m^2
	PayloadReach         float64    `yaml:"payload_reach"`          // Lateral travel limit of the manipulator, m
	PayloadForceConstant float64    `yaml:"payload_force_constant"` // Moment per unit thrust per unit payload offset
}

// DefaultVehicle returns the constants of the simulated vehicle.
func DefaultVehicle() Vehicle {
	v := Vehicle{
		Mass:             2.083,
		Inertia:          [3]float64{0.0826944, 0.0826944, 0.0221184},
		ArmLength:        0.314,
		MotorConstant:    8.54858e-06,
		MomentConstant:   0.016,
		MaxRotorVelocity: 1475,
		MaxMomentXY:      5,
		MaxMomentZ:       1,
		MaxAlpha:         30,

		MovingMass:        0.208,
		MovingMassInertia: [3]float64{1.6e-5, 1.6e-5, 1.6e-5},
		PayloadMass:       0.2,
		PayloadInertia:    [3]float64{1e-4, 1e-4, 1e-4},
		PayloadReach:      0.3,
	}
	// Shifting a pair of masses by +-d moves the CoM by 2*m*d/M
	v.MassForceConstant = 2 * v.MovingMass / (v.Mass + 4*v.MovingMass)
	v.PayloadForceConstant = 2 * v.PayloadMass / (v.Mass + 2*v.PayloadMass)
	return v
}

// GainPair is a diagonal gain with a shared x/y value and a separate z value.
type GainPair struct {
	XY float64 `yaml:"xy" json:"xy"`
	Z  float64 `yaml:"z" json:"z"`
}

// Diag returns diag(XY, XY, Z).
func (g GainPair) Diag() *matrix.DenseMatrix {
	return geometry.Diag(g.XY, g.XY, g.Z)
}

// Gains are the four diagonal gain matrices of the control law.  They are
// always replaced as a whole value, never field by field.
type Gains struct {
	Position GainPair `yaml:"position" json:"position"` // k_x
	Velocity GainPair `yaml:"velocity" json:"velocity"` // k_v
	Rotation GainPair `yaml:"rotation" json:"rotation"` // k_R
	Omega    GainPair `yaml:"omega" json:"omega"`       // k_omega
}

// DefaultGains returns gains that hold a hover on the default vehicle.
func DefaultGains() Gains {
	return Gains{
		Position: GainPair{XY: 10, Z: 15},
		Velocity: GainPair{XY: 6, Z: 8},
		Rotation: GainPair{XY: 3, Z: 1.5},
		Omega:    GainPair{XY: 0.6, Z: 0.3},
	}
}
