// Package sim replays scripted flights as controller inputs.  A Situation is
// a piecewise-linear path of position and attitude in time; the samples an
// IMU, a position source and a velocity source would report along it are
// posted to the control loop together with the matching references.
package sim

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/skelterjohn/go.matrix"

	"github.com/antonellabarisic/mmuav-gazebo/control"
	"github.com/antonellabarisic/mmuav-gazebo/geometry"
)

// ErrOutsideScenario is returned for a time before the first or after the
// last waypoint.
var ErrOutsideScenario = errors.New("requested time is outside of scenario")

// Waypoint is one knot of a Situation.
type Waypoint struct {
	T        float64    `yaml:"t"`        // s
	Position [3]float64 `yaml:"position"` // World frame, m
	Roll     float64    `yaml:"roll"`     // rad
	Pitch    float64    `yaml:"pitch"`    // rad
	Yaw      float64    `yaml:"yaw"`      // rad
}

// Situation defines a scenario by piecewise-linear interpolation
type Situation struct {
	t                []float64 // times for situation, s
	x, y, z          []float64 // position, world frame, m
	roll, pitch, yaw []float64 // attitude, rad
}

// State is the vehicle state at one instant of a Situation.
type State struct {
	T        float64
	Position r3.Vector // World frame
	Velocity r3.Vector // World frame
	Euler    geometry.Euler
	Omega    r3.Vector // Body frame
}

// NewSituation builds a Situation from at least two waypoints in strictly
// increasing time.
func NewSituation(wps []Waypoint) (*Situation, error) {
	if len(wps) < 2 {
		return nil, errors.Errorf("situation needs at least two waypoints, got %d", len(wps))
	}
	s := new(Situation)
	for i, w := range wps {
		if i > 0 && w.T <= wps[i-1].T {
			return nil, errors.Errorf("waypoint %d at t=%g is not after t=%g", i, w.T, wps[i-1].T)
		}
		s.t = append(s.t, w.T)
		s.x = append(s.x, w.Position[0])
		s.y = append(s.y, w.Position[1])
		s.z = append(s.z, w.Position[2])
		s.roll = append(s.roll, w.Roll)
		s.pitch = append(s.pitch, w.Pitch)
		s.yaw = append(s.yaw, w.Yaw)
	}
	return s, nil
}

// BeginTime returns the time stamp when the simulation begins
func (s *Situation) BeginTime() float64 {
	return s.t[0]
}

// EndTime returns the time stamp of the last waypoint
func (s *Situation) EndTime() float64 {
	return s.t[len(s.t)-1]
}

// segment returns the index of the segment containing t and the weight of
// its left end.
func (s *Situation) segment(t float64) (int, float64) {
	ix := 0
	if t > s.t[0] {
		ix = sort.SearchFloat64s(s.t, t) - 1
	}
	return ix, (s.t[ix+1] - t) / (s.t[ix+1] - s.t[ix])
}

func lerp(a []float64, ix int, f float64) float64 {
	return f*a[ix] + (1-f)*a[ix+1]
}

func (s *Situation) euler(ix int, f float64) geometry.Euler {
	return geometry.Euler{
		Roll:  lerp(s.roll, ix, f),
		Pitch: lerp(s.pitch, ix, f),
		Yaw:   lerp(s.yaw, ix, f),
	}
}

// Interpolate returns the State of the Situation at time t.
func (s *Situation) Interpolate(t float64) (State, error) {
	if t < s.t[0] || t > s.t[len(s.t)-1] {
		return State{}, ErrOutsideScenario
	}
	ix, f := s.segment(t)
	ddt := s.t[ix+1] - s.t[ix]

	st := State{
		T:        t,
		Position: r3.Vector{X: lerp(s.x, ix, f), Y: lerp(s.y, ix, f), Z: lerp(s.z, ix, f)},
		Velocity: r3.Vector{
			X: (s.x[ix+1] - s.x[ix]) / ddt,
			Y: (s.y[ix+1] - s.y[ix]) / ddt,
			Z: (s.z[ix+1] - s.z[ix]) / ddt,
		},
		Euler: s.euler(ix, f),
	}
	st.Omega = s.bodyRate(t)
	return st, nil
}

// bodyRate differentiates the attitude numerically: omega = vee(R' dR/dt).
func (s *Situation) bodyRate(t float64) r3.Vector {
	const ddt = 0.001
	t0, t1 := t, t+ddt
	if t1 > s.EndTime() {
		t1 = s.EndTime()
		t0 = t1 - ddt
	}
	r := func(t float64) geometry.Euler {
		ix, f := s.segment(t)
		return s.euler(ix, f)
	}
	e0, e1 := r(t0), r(t1)
	r0 := geometry.EulerToRotation(e0.Roll, e0.Pitch, e0.Yaw)
	r1 := geometry.EulerToRotation(e1.Roll, e1.Pitch, e1.Yaw)
	rdot := matrix.Scaled(matrix.Difference(r1, r0), 1/ddt)
	return geometry.Vee(matrix.Product(r0.Transpose(), rdot))
}

// Messages returns what the sensors report in state st, followed by the
// references that hold the vehicle on the scripted path.
func (st State) Messages() []control.Message {
	e := st.Euler
	return []control.Message{
		control.IMUSample{
			Orientation: geometry.EulerToQuaternion(e.Roll, e.Pitch, e.Yaw),
			Rate:        st.Omega,
		},
		control.PoseSample{Position: st.Position},
		// The controller rotates twist samples by the vehicle yaw
		control.TwistSample{Linear: geometry.YawRotate(st.Velocity, -e.Yaw), Angular: st.Omega},
		control.PositionRef(st.Position),
		control.VelocityRef(st.Velocity),
		control.HeadingRef(geometry.YawRotate(r3.Vector{X: 1}, e.Yaw)),
	}
}
