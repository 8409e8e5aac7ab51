package control

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

var zHat = r3.Vector{Z: 1}

// trajectoryResult is the output of the translational part of the law.
type trajectoryResult struct {
	Thrust float64   // f_u, projection of the desired force on the body z axis
	B3     r3.Vector // Desired thrust direction
	Force  r3.Vector // Desired force A
	Ex, Ev r3.Vector // Position and velocity errors
}

// trackTrajectory computes the desired force from the position and velocity
// errors.  In Attitude mode only altitude is held.  rcm and alphaD enter the
// coupling terms; both are zero for the bare vehicle.
func trackTrajectory(mode Mode, est *PoseEstimate, sp *Setpoint, g Gains,
	mass float64, rcm, alphaD r3.Vector) (trajectoryResult, error) {

	var res trajectoryResult
	a := sp.A

	switch mode {
	case ModePosition:
		res.Ex = est.Position.Sub(sp.X)
		res.Ev = est.Velocity.Sub(sp.V)
	case ModeAttitude:
		res.Ex = zHat.Mul(est.Position.Z - sp.X.Z)
		res.Ev = zHat.Mul(est.Velocity.Z - sp.V.Z)
		a = zHat.Mul(a.Z)
	default:
		return res, errors.Wrapf(ErrInvalidMode, "trajectory tracking in %s", mode)
	}

	f := geometry.MulVec(g.Position.Diag(), res.Ex).Mul(-1).
		Sub(geometry.MulVec(g.Velocity.Diag(), res.Ev)).
		Add(zHat.Mul(mass * G)).
		Add(a.Mul(mass))

	if rcm != (r3.Vector{}) {
		w := est.Omega
		f = f.Sub(geometry.MulVec(est.R, rcm).Cross(alphaD).Mul(mass))
		gyro := matrix.Product(est.R, matrix.Product(geometry.Hat(w), geometry.Hat(rcm)))
		f = f.Sub(geometry.MulVec(gyro, w).Mul(mass))
	}

	n := f.Norm()
	if n < Small || !geometry.IsFinite(f) {
		return res, errors.Wrapf(ErrDegenerateThrust, "|A| = %g", n)
	}
	res.Force = f
	res.B3 = f.Mul(1 / n)
	res.Thrust = f.Dot(geometry.Column(est.R, 2))
	return res, nil
}
