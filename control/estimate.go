package control

import (
	"github.com/golang/geo/r3"
	"github.com/skelterjohn/go.matrix"
	"github.com/westphae/quaternion"

	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// PoseEstimate is the vehicle state as seen by the control law.
// It is a pass-through conversion of the raw samples; nothing is filtered.
type PoseEstimate struct {
	Position  r3.Vector           // World frame, m
	Velocity  r3.Vector           // World frame, m/s
	R         *matrix.DenseMatrix // Body to world rotation
	Euler     geometry.Euler      // rad
	EulerRate r3.Vector           // Roll, pitch, yaw rates, rad/s
	Omega     r3.Vector           // Body angular velocity, rad/s
}

// NewPoseEstimate returns a level estimate at the origin.
func NewPoseEstimate() *PoseEstimate {
	return &PoseEstimate{R: matrix.Eye(3)}
}

// ApplyIMU updates attitude, Euler rates and angular velocity from an
// orientation quaternion and the gyro body rates.
func (s *PoseEstimate) ApplyIMU(q quaternion.Quaternion, pqr r3.Vector) {
	s.Euler = geometry.QuaternionToEuler(q)
	s.R = geometry.EulerToRotation(s.Euler.Roll, s.Euler.Pitch, s.Euler.Yaw)
	s.EulerRate = geometry.EulerRates(s.Euler, pqr)
	s.Omega = pqr
}

// ApplyPose updates the position.
func (s *PoseEstimate) ApplyPose(p r3.Vector) {
	s.Position = p
}

// ApplyTwist updates the velocity, rotating the linear part by the current yaw.
// The angular part is not used; body rates come from the gyro.
func (s *PoseEstimate) ApplyTwist(linear, angular r3.Vector) {
	s.Velocity = geometry.YawRotate(linear, s.Euler.Yaw)
}
