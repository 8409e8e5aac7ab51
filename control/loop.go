package control

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LoopState is the startup state machine of the control loop.
type LoopState int32

const (
	WaitingForClock LoopState = iota
	WaitingForSensors
	Running
)

func (s LoopState) String() string {
	switch s {
	case WaitingForClock:
		return "waiting for clock"
	case WaitingForSensors:
		return "waiting for sensors"
	case Running:
		return "running"
	}
	return "unknown"
}

// Clock is the loop's time source.  A zero time means no clock yet, as with a
// simulator that has not started publishing.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Poster accepts controller inputs from other goroutines.
type Poster interface {
	Post(ctx context.Context, m Message) error
}

// OutputSink receives the commands of every successful cycle.
type OutputSink interface {
	Send(out *Output)
}

// StatusSink receives the telemetry of every cycle.
type StatusSink interface {
	Publish(s *StatusSnapshot)
}

const (
	sensorIMU = 1 << iota
	sensorPose
	sensorTwist
	sensorsAll = sensorIMU | sensorPose | sensorTwist
)

// Loop runs the controller at a fixed rate.  Inputs are posted to it from any
// goroutine; everything else happens on the goroutine calling Run or Step.
type Loop struct {
	name     string
	ctrl     *Controller
	clock    Clock
	inbox    chan Message
	period   time.Duration
	timeout  time.Duration
	abort    bool
	log      *zap.Logger
	outputs  []OutputSink
	statuses []StatusSink

	state   int32 // LoopState
	sensors int
	start   time.Time
	last    time.Time
	ticks   uint64
	stats   *periodStats
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock replaces the system clock.
func WithClock(c Clock) LoopOption {
	return func(l *Loop) { l.clock = c }
}

// WithOutputSink adds a receiver for the rotor and actuator commands.
func WithOutputSink(s OutputSink) LoopOption {
	return func(l *Loop) { l.outputs = append(l.outputs, s) }
}

// WithStatusSink adds a receiver for the telemetry.
func WithStatusSink(s StatusSink) LoopOption {
	return func(l *Loop) { l.statuses = append(l.statuses, s) }
}

// NewLoop builds the controller described by cfg and a loop to drive it.
func NewLoop(cfg Config, log *zap.Logger, opts ...LoopOption) (*Loop, error) {
	ctrl, err := NewController(cfg)
	if err != nil {
		return nil, err
	}
	s := cfg.Controller
	l := &Loop{
		name:    s.Name,
		ctrl:    ctrl,
		clock:   SystemClock{},
		inbox:   make(chan Message, s.InboxSize),
		period:  time.Duration(float64(time.Second) / s.Rate),
		timeout: s.StartupTimeout,
		abort:   s.AbortOnFault,
		log:     log,
		stats:   newPeriodStats(periodDecay),
	}
	for _, o := range opts {
		o(l)
	}
	log.Info("GeometryControl: Controller created",
		zap.String("name", l.name),
		zap.Stringer("variant", ctrl.act.Variant()),
		zap.Float64("mass", ctrl.act.Mass()),
		zap.Duration("period", l.period))
	return l, nil
}

// Controller returns the controller driven by the loop.  It must only be
// touched from the loop goroutine.
func (l *Loop) Controller() *Controller {
	return l.ctrl
}

// State returns the current loop state; safe from any goroutine.
func (l *Loop) State() LoopState {
	return LoopState(atomic.LoadInt32(&l.state))
}

func (l *Loop) setState(s LoopState) {
	atomic.StoreInt32(&l.state, int32(s))
	l.log.Info("GeometryControl: State change", zap.Stringer("state", s))
}

// Post queues a message for the next tick.  It blocks only while the inbox
// is full.
func (l *Loop) Post(ctx context.Context, m Message) error {
	select {
	case l.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) drain() {
	for {
		select {
		case m := <-l.inbox:
			if err := m.apply(l.ctrl); err != nil {
				l.log.Warn("GeometryControl: Input rejected", zap.Error(err))
				continue
			}
			switch m.(type) {
			case IMUSample:
				l.sensors |= sensorIMU
			case PoseSample:
				l.sensors |= sensorPose
			case TwistSample:
				l.sensors |= sensorTwist
			}
		default:
			return
		}
	}
}

// Step applies the queued inputs and, once running and at least one period
// after the previous cycle, runs a control cycle.  It returns the output of
// that cycle, nil when no cycle was due, or the fault that stopped it.
func (l *Loop) Step(now time.Time) (*Output, error) {
	l.drain()

	switch l.State() {
	case WaitingForClock:
		if now.IsZero() {
			return nil, nil
		}
		l.start = now
		l.setState(WaitingForSensors)
		fallthrough
	case WaitingForSensors:
		if l.sensors&sensorsAll != sensorsAll {
			return nil, nil
		}
		l.last = now
		l.setState(Running)
		return nil, nil
	}

	elapsed := now.Sub(l.last)
	if elapsed < l.period {
		return nil, nil
	}
	dt := elapsed.Seconds()
	l.last = now
	l.ticks++
	l.stats.observe(elapsed)

	out, err := l.ctrl.Compute(dt)
	if err != nil {
		l.log.Error("GeometryControl: Control cycle failed", zap.Uint64("tick", l.ticks), zap.Error(err))
	} else {
		for _, s := range l.outputs {
			s.Send(out)
		}
	}

	if len(l.statuses) > 0 {
		st := l.ctrl.Status()
		st.Name = l.name
		st.Tick = l.ticks
		st.T = now.Sub(l.start).Seconds()
		st.Period = l.stats.Mean()
		st.Jitter = l.stats.Jitter()
		for _, s := range l.statuses {
			s.Publish(st)
		}
	}
	return out, err
}

// Run drives Step until ctx is cancelled.  It returns ErrStartupTimeout if
// the loop is not running within the startup timeout, and the first fault
// if the loop aborts on faults.
func (l *Loop) Run(ctx context.Context) error {
	var deadline <-chan time.Time
	if l.timeout > 0 {
		t := time.NewTimer(l.timeout)
		defer t.Stop()
		deadline = t.C
	}

	l.log.Info("GeometryControl: Waiting for clock")
	wake := time.NewTimer(0)
	defer wake.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			if s := l.State(); s != Running {
				return errors.Wrapf(ErrStartupTimeout, "still %s after %s", s, l.timeout)
			}
			deadline = nil
			continue
		case <-wake.C:
		}

		now := l.clock.Now()
		if _, err := l.Step(now); err != nil && l.abort {
			return err
		}
		wake.Reset(l.nextWake(now))
	}
}

// nextWake is how long to sleep until the next cycle is due.  While waiting
// the loop polls once per period.
func (l *Loop) nextWake(now time.Time) time.Duration {
	if l.State() != Running {
		return l.period
	}
	d := l.last.Add(l.period).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
