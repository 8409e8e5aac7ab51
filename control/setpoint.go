package control

import (
	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// Setpoint holds the externally supplied references and the active mode.
type Setpoint struct {
	X, V, A r3.Vector // Desired position, velocity, acceleration, world frame
	B1      r3.Vector // Desired heading, always unit length

	// Attitude mode references, stored as received
	Rotation *matrix.DenseMatrix
	Euler    geometry.Euler
	Omega    r3.Vector
	Alpha    r3.Vector

	Mode Mode
}

// NewSetpoint returns a setpoint holding the origin, facing +x, in Position mode.
func NewSetpoint() *Setpoint {
	return &Setpoint{
		B1:       r3.Vector{X: 1},
		Rotation: matrix.Eye(3),
		Mode:     ModePosition,
	}
}

// SetHeading stores b1 renormalized to unit length.
func (s *Setpoint) SetHeading(b1 r3.Vector) error {
	n := b1.Norm()
	if n < Small || !geometry.IsFinite(b1) {
		return ErrZeroHeading
	}
	s.B1 = b1.Mul(1 / n)
	return nil
}

// SetEuler stores the desired attitude as Euler angles.
func (s *Setpoint) SetEuler(e geometry.Euler) {
	s.Euler = e
	s.Rotation = geometry.EulerToRotation(e.Roll, e.Pitch, e.Yaw)
}

// SetRotation stores a desired rotation from 9 row-major values.
func (s *Setpoint) SetRotation(rows [9]float64) {
	s.Rotation = geometry.FromRows(rows)
	s.Euler = geometry.RotationToEuler(s.Rotation)
}
