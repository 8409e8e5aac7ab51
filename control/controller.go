package control

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// Output is the command set for one control cycle.
type Output struct {
	Thrust  float64    `json:"thrust"`
	Moment  r3.Vector  `json:"moment"`
	Rotors  [4]float64 `json:"rotors"`  // Signed rotor speeds, rad/s
	Masses  [4]float64 `json:"masses"`  // Movable mass positions, MovableMass only
	Payload [2]float64 `json:"payload"` // Payload lateral position, Manipulator only
	Variant Variant    `json:"-"`
}

// Controller holds the full state of the geometric control law.  It is not
// safe for concurrent use; the Loop owns it.
type Controller struct {
	vehicle  Vehicle
	act      *Actuation
	alloc    *Allocator
	deriv    *derivativeState
	estimate *PoseEstimate
	setpoint *Setpoint

	gains       Gains
	gainsSeeded bool

	b1Des r3.Vector           // Prefiltered heading
	b1c   r3.Vector           // Projected heading of the last cycle
	rd    *matrix.DenseMatrix // Desired rotation of the last cycle

	last status
}

// status keeps the intermediate values of the last cycle for telemetry.
type status struct {
	traj   trajectoryResult
	att    attitudeResult
	omegaD r3.Vector
	alphaD r3.Vector
	out    Output
	err    error
}

// NewController builds a controller for the configured vehicle and variant.
// The variant, and with it the total mass, cannot change afterwards.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sub := 1 / cfg.Controller.DerivativeRate
	c := &Controller{
		vehicle:  cfg.Vehicle,
		act:      NewActuation(cfg.Vehicle, cfg.Variant()),
		alloc:    NewAllocator(cfg.Vehicle),
		deriv:    newDerivativeState(sub),
		estimate: NewPoseEstimate(),
		setpoint: NewSetpoint(),
		gains:    cfg.Gains,
		b1Des:    r3.Vector{X: 1},
		b1c:      r3.Vector{X: 1},
		rd:       matrix.Eye(3),
	}
	return c, nil
}

// Estimate returns the current state estimate.
func (c *Controller) Estimate() *PoseEstimate {
	return c.estimate
}

// Setpoint returns the current references.
func (c *Controller) Setpoint() *Setpoint {
	return c.setpoint
}

// Actuation returns the center-of-mass actuation model.
func (c *Controller) Actuation() *Actuation {
	return c.act
}

// Gains returns the gains in use.
func (c *Controller) Gains() Gains {
	return c.gains
}

// SetGains applies a runtime gain update.  The first update only seeds the
// tuning interface from the gains in use; its values are discarded.
func (c *Controller) SetGains(g Gains) {
	if !c.gainsSeeded {
		c.gainsSeeded = true
		return
	}
	c.gains = g
}

// Compute runs one control cycle, dt seconds after the previous one.
// On a fault no output is produced and the error wraps one of ErrInvalidMode,
// ErrNonFinite or ErrDegenerateThrust.
func (c *Controller) Compute(dt float64) (*Output, error) {
	sp, est := c.setpoint, c.estimate
	g := c.gains
	mode := sp.Mode

	// Desired rates: differentiated R_d in Position mode, supplied otherwise
	omegaD, alphaD := sp.Omega, sp.Alpha
	if mode == ModePosition {
		if e, ok := c.deriv.accumulate(dt); ok {
			c.deriv.tick(c.rd, e, c.vehicle.MaxAlpha)
		}
		omegaD, alphaD = c.deriv.omega, c.deriv.alpha
	}

	c.b1Des = c.b1Des.Add(sp.B1.Sub(c.b1Des).Mul(HeadingFilterGain))

	var rcm r3.Vector
	if c.act.Variant() != VariantNone {
		rcm = c.act.CenterOfMass()
	}
	mass := c.act.Mass()

	traj, err := trackTrajectory(mode, est, sp, g, mass, rcm, alphaD)
	if err != nil {
		return nil, c.fault(err)
	}

	att, err := trackAttitude(attitudeInput{
		Mode:   mode,
		B3:     traj.B3,
		B1:     c.b1Des,
		B1Prev: c.b1c,
		OmegaD: omegaD,
		AlphaD: alphaD,
		Mass:   mass,
		J:      c.act.Inertia(),
		Rcm:    rcm,
	}, est, sp, g, c.vehicle)
	if err != nil {
		return nil, c.fault(err)
	}
	c.rd, c.b1c = att.Rd, att.B1c

	out := &Output{Thrust: traj.Thrust, Moment: att.Moment, Variant: c.act.Variant()}
	switch c.act.Variant() {
	case VariantMovableMass:
		out.Rotors = c.alloc.Rotors(traj.Thrust, att.Moment, true)
		out.Masses = c.alloc.MassOffsets(traj.Thrust, att.Moment)
	case VariantManipulator:
		out.Rotors = c.alloc.Rotors(traj.Thrust, att.Moment, true)
		out.Payload = c.alloc.PayloadOffset(traj.Thrust, att.Moment)
	default:
		out.Rotors = c.alloc.Rotors(traj.Thrust, att.Moment, false)
	}

	c.last = status{traj: traj, att: att, omegaD: omegaD, alphaD: alphaD, out: *out}
	return out, nil
}

// fault records err as the outcome of the cycle.  No command was produced,
// so the telemetry of the previous cycle is cleared with it.
func (c *Controller) fault(err error) error {
	c.last = status{err: err}
	return errors.Wrap(err, "control cycle")
}

// Status fills a telemetry snapshot from the last cycle.
func (c *Controller) Status() *StatusSnapshot {
	est, sp, l := c.estimate, c.setpoint, c.last
	s := &StatusSnapshot{
		Mode:          int(sp.Mode),
		Variant:       c.act.Variant().String(),
		Thrust:        l.out.Thrust,
		Roll:          est.Euler.Roll,
		Pitch:         est.Euler.Pitch,
		Yaw:           est.Euler.Yaw,
		EulerRate:     vec(est.EulerRate),
		Omega:         vec(est.Omega),
		Position:      vec(est.Position),
		Velocity:      vec(est.Velocity),
		PositionD:     vec(sp.X),
		AccelerationD: vec(sp.A),
		PositionError: vec(l.traj.Ex),
		VelocityError: vec(l.traj.Ev),
		AttitudeError: vec(l.att.ER),
		RateError:     vec(l.att.EW),
		Moment:        vec(l.out.Moment),
		MomentRaw:     vec(l.att.Raw),
		OmegaD:        vec(l.omegaD),
		AlphaD:        vec(l.alphaD),
		B1d:           vec(sp.B1),
		B1Des:         vec(c.b1Des),
		Rotors:        l.out.Rotors,
		Masses:        l.out.Masses,
		Payload:       l.out.Payload,
		CenterOfMass:  vec(c.act.CenterOfMass()),
		Gains:         c.gains,
	}
	if l.att.Rd != nil {
		e := geometry.RotationToEuler(l.att.Rd)
		s.RollD, s.PitchD, s.YawD = e.Roll, e.Pitch, e.Yaw
	}
	if l.err != nil {
		s.Fault = l.err.Error()
	}
	return s
}

func vec(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// StatusSnapshot is the telemetry record published every cycle.
type StatusSnapshot struct {
	Name    string  `json:"name"`
	Tick    uint64  `json:"tick"`
	T       float64 `json:"t"`      // Loop time, s
	Period  float64 `json:"period"` // Mean tick period, s
	Jitter  float64 `json:"jitter"` // Std deviation of the tick period, s
	Mode    int     `json:"mode"`
	Variant string  `json:"variant"`
	Fault   string  `json:"fault,omitempty"`

	Thrust float64 `json:"thrust"`
	Roll   float64 `json:"roll"`
	Pitch  float64 `json:"pitch"`
	Yaw    float64 `json:"yaw"`
	RollD  float64 `json:"roll_d"`
	PitchD float64 `json:"pitch_d"`
	YawD   float64 `json:"yaw_d"`

	EulerRate     [3]float64 `json:"euler_rate"`
	Omega         [3]float64 `json:"omega"`
	Position      [3]float64 `json:"position"`
	Velocity      [3]float64 `json:"velocity"`
	PositionD     [3]float64 `json:"position_d"`
	AccelerationD [3]float64 `json:"acceleration_d"`
	PositionError [3]float64 `json:"e_x"`
	VelocityError [3]float64 `json:"e_v"`
	AttitudeError [3]float64 `json:"e_R"`
	RateError     [3]float64 `json:"e_omega"`
	Moment        [3]float64 `json:"moment"`
	MomentRaw     [3]float64 `json:"moment_raw"`
	OmegaD        [3]float64 `json:"omega_d"`
	AlphaD        [3]float64 `json:"alpha_d"`
	B1d           [3]float64 `json:"b1_d"`
	B1Des         [3]float64 `json:"b1_des"`
	Rotors        [4]float64 `json:"rotors"`
	Masses        [4]float64 `json:"masses"`
	Payload       [2]float64 `json:"payload"`
	CenterOfMass  [3]float64 `json:"r_cm"`
	Gains         Gains      `json:"gains"`
}
