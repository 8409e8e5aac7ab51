package control

import (
	"github.com/golang/geo/r3"
	"github.com/westphae/quaternion"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// A Message is one input to the controller: a sensor sample, a reference,
// a mode change, a gain update or actuator feedback.  Messages are posted to
// the Loop and applied in arrival order at the start of the next tick.
type Message interface {
	apply(c *Controller) error
}

// IMUSample is an orientation quaternion with the gyro body rates.
type IMUSample struct {
	Orientation quaternion.Quaternion
	Rate        r3.Vector
}

func (m IMUSample) apply(c *Controller) error {
	c.estimate.ApplyIMU(m.Orientation, m.Rate)
	return nil
}

// PoseSample is a world frame position.
type PoseSample struct {
	Position r3.Vector
}

func (m PoseSample) apply(c *Controller) error {
	c.estimate.ApplyPose(m.Position)
	return nil
}

// TwistSample is a linear and angular velocity.
type TwistSample struct {
	Linear, Angular r3.Vector
}

func (m TwistSample) apply(c *Controller) error {
	c.estimate.ApplyTwist(m.Linear, m.Angular)
	return nil
}

type PositionRef r3.Vector

func (m PositionRef) apply(c *Controller) error {
	c.setpoint.X = r3.Vector(m)
	return nil
}

type VelocityRef r3.Vector

func (m VelocityRef) apply(c *Controller) error {
	c.setpoint.V = r3.Vector(m)
	return nil
}

type AccelerationRef r3.Vector

func (m AccelerationRef) apply(c *Controller) error {
	c.setpoint.A = r3.Vector(m)
	return nil
}

// HeadingRef is the desired body x axis; it is normalized on receipt.
type HeadingRef r3.Vector

func (m HeadingRef) apply(c *Controller) error {
	return c.setpoint.SetHeading(r3.Vector(m))
}

// RotationRef is a desired rotation matrix, row-major.
type RotationRef [9]float64

func (m RotationRef) apply(c *Controller) error {
	c.setpoint.SetRotation(m)
	return nil
}

type EulerRef geometry.Euler

func (m EulerRef) apply(c *Controller) error {
	c.setpoint.SetEuler(geometry.Euler(m))
	return nil
}

// OmegaRef and AlphaRef are used as-is in Attitude mode.
type OmegaRef r3.Vector

func (m OmegaRef) apply(c *Controller) error {
	c.setpoint.Omega = r3.Vector(m)
	return nil
}

type AlphaRef r3.Vector

func (m AlphaRef) apply(c *Controller) error {
	c.setpoint.Alpha = r3.Vector(m)
	return nil
}

// ModeSelect is stored as received.  Values other than Position and
// Attitude make the next cycle fail with ErrInvalidMode.
type ModeSelect int

func (m ModeSelect) apply(c *Controller) error {
	c.setpoint.Mode = Mode(m)
	return nil
}

// GainUpdate replaces all gains at once.
type GainUpdate Gains

func (m GainUpdate) apply(c *Controller) error {
	c.SetGains(Gains(m))
	return nil
}

// MassFeedback holds the measured positions of the four movable masses.
type MassFeedback [4]float64

func (m MassFeedback) apply(c *Controller) error {
	return c.act.SetMassFeedback(m)
}

// GripperFeedback holds the measured positions of the two gripper payloads.
type GripperFeedback [2]r3.Vector

func (m GripperFeedback) apply(c *Controller) error {
	return c.act.SetGripperFeedback(m)
}
