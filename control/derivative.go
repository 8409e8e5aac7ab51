package control

import (
	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// derivativeState differentiates the desired rotation twice at a slower rate
// than the main loop to produce the desired angular velocity and acceleration.
type derivativeState struct {
	period  float64 // Sub-rate period, s
	elapsed float64 // Time accumulated since the last tick, s

	initialized bool
	haveRate    bool // sdPrev holds a real difference
	rdPrev      *matrix.DenseMatrix
	sdPrev      *matrix.DenseMatrix

	omega, alpha r3.Vector
}

func newDerivativeState(period float64) *derivativeState {
	return &derivativeState{period: period}
}

// accumulate adds dt to the sub-rate timer and reports whether a tick is due.
// The elapsed time is returned for use as the differencing interval.
func (d *derivativeState) accumulate(dt float64) (float64, bool) {
	d.elapsed += dt
	if d.elapsed < d.period {
		return 0, false
	}
	e := d.elapsed
	d.elapsed = 0
	return e, true
}

// tick runs one differencing step against the desired rotation rd, with
// alpha saturated per axis to maxAlpha.
func (d *derivativeState) tick(rd *matrix.DenseMatrix, dt, maxAlpha float64) {
	if !d.initialized || dt < Small {
		d.rdPrev = rd.Copy()
		d.sdPrev = matrix.Zeros(3, 3)
		d.omega, d.alpha = r3.Vector{}, r3.Vector{}
		d.initialized = true
		d.haveRate = false
		return
	}

	sd := matrix.Scaled(matrix.Difference(rd, d.rdPrev), 1/dt)
	rdt := rd.Transpose()
	d.omega = geometry.Vee(matrix.Product(rdt, sd))

	// The second difference needs two first differences
	d.alpha = r3.Vector{}
	if d.haveRate {
		sdd := matrix.Scaled(matrix.Difference(sd, d.sdPrev), 1/dt)
		w := geometry.Hat(d.omega)
		a := matrix.Difference(matrix.Product(rdt, sdd), matrix.Product(w, w))
		lim := r3.Vector{X: maxAlpha, Y: maxAlpha, Z: maxAlpha}
		d.alpha = geometry.SaturateVector(geometry.Vee(a), lim)
	}

	d.rdPrev = rd.Copy()
	d.sdPrev = sd
	d.haveRate = true
}
