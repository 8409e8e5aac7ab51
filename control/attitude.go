package control

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// attitudeResult is the output of the rotational part of the law.
type attitudeResult struct {
	Rd     *matrix.DenseMatrix // Desired rotation
	B1c    r3.Vector           // Heading projected onto the plane normal to b3_d
	ER, EW r3.Vector           // Attitude and angular velocity errors
	Moment r3.Vector           // M_u, saturated
	Raw    r3.Vector           // M_u before saturation
}

// projectHeading returns b1 projected onto the plane orthogonal to b3 and
// normalized.  It fails when the two are parallel.
func projectHeading(b3, b1 r3.Vector) (r3.Vector, bool) {
	n := b3.Cross(b1)
	nn := n.Norm()
	if nn < Small {
		return r3.Vector{}, false
	}
	return b3.Cross(n).Mul(-1 / nn), true
}

// desiredRotation assembles R_d = [b1_c | b2_c | b3_d].  When the working
// heading is parallel to b3_d the previous b1_c is projected instead, and
// failing that any unit vector orthogonal to b3_d.
func desiredRotation(b3, b1, b1Prev r3.Vector) (*matrix.DenseMatrix, r3.Vector) {
	b1c, ok := projectHeading(b3, b1)
	if !ok {
		b1c, ok = projectHeading(b3, b1Prev)
	}
	if !ok {
		b1c = b3.Ortho()
	}
	b2c := b3.Cross(b1c).Normalize()
	return geometry.FromColumns(b1c, b2c, b3), b1c
}

// attitudeInput collects what the attitude tracker reads for one cycle.
type attitudeInput struct {
	Mode   Mode
	B3     r3.Vector // Desired thrust direction from the trajectory tracker
	B1     r3.Vector // Prefiltered heading
	B1Prev r3.Vector // b1_c of the previous cycle
	OmegaD r3.Vector
	AlphaD r3.Vector
	Mass   float64
	J      *matrix.DenseMatrix
	Rcm    r3.Vector
}

// trackAttitude computes the SO(3) errors and the control moment.
func trackAttitude(in attitudeInput, est *PoseEstimate, sp *Setpoint, g Gains, v Vehicle) (attitudeResult, error) {
	var res attitudeResult

	switch in.Mode {
	case ModePosition:
		res.Rd, res.B1c = desiredRotation(in.B3, in.B1, in.B1Prev)
	case ModeAttitude:
		res.Rd = sp.Rotation.Copy()
		res.B1c = geometry.Column(res.Rd, 0)
	default:
		return res, errors.Wrapf(ErrInvalidMode, "attitude tracking in %s", in.Mode)
	}

	r := est.R
	rt := r.Transpose()
	res.ER = geometry.Vee(matrix.Scaled(
		matrix.Difference(matrix.Product(res.Rd.Transpose(), r), matrix.Product(rt, res.Rd)), 0.5))

	rtrd := matrix.Product(rt, res.Rd)
	w := est.Omega
	res.EW = w.Sub(geometry.MulVec(rtrd, in.OmegaD))
	if !geometry.IsFinite(res.EW) {
		return res, errors.Wrapf(ErrNonFinite, "e_omega = %v", res.EW)
	}

	ff := geometry.MulVec(matrix.Product(geometry.Hat(w), rtrd), in.OmegaD).
		Sub(geometry.MulVec(rtrd, in.AlphaD))
	m := geometry.MulVec(g.Rotation.Diag(), res.ER).Mul(-1).
		Sub(geometry.MulVec(g.Omega.Diag(), res.EW)).
		Add(w.Cross(geometry.MulVec(in.J, w))).
		Sub(geometry.MulVec(in.J, ff))
	if in.Rcm != (r3.Vector{}) {
		m = m.Add(in.Rcm.Cross(geometry.MulVec(rt, sp.A)).Mul(in.Mass))
	}

	res.Raw = m
	res.Moment = geometry.SaturateVector(m, r3.Vector{X: v.MaxMomentXY, Y: v.MaxMomentXY, Z: v.MaxMomentZ})
	return res, nil
}
