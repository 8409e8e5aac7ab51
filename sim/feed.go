package sim

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/antonellabarisic/mmuav-gazebo/control"
)

// Noise holds the standard deviations of the white noise added to the
// simulated sensors.  The zero value is noiseless.
type Noise struct {
	Position float64 // m
	Velocity float64 // m/s
	Rate     float64 // rad/s
	Seed     uint64
}

type noiser struct {
	pos, vel, rate distuv.Normal
}

func newNoiser(n Noise) *noiser {
	src := rand.NewSource(n.Seed)
	return &noiser{
		pos:  distuv.Normal{Sigma: n.Position, Src: src},
		vel:  distuv.Normal{Sigma: n.Velocity, Src: src},
		rate: distuv.Normal{Sigma: n.Rate, Src: src},
	}
}

func sample(d distuv.Normal) r3.Vector {
	if d.Sigma == 0 {
		return r3.Vector{}
	}
	return r3.Vector{X: d.Rand(), Y: d.Rand(), Z: d.Rand()}
}

// corrupt returns st as the sensors see it.  The references built from the
// result stay noiseless.
func (nz *noiser) corrupt(st State) []control.Message {
	clean := st.Messages()
	st.Position = st.Position.Add(sample(nz.pos))
	st.Velocity = st.Velocity.Add(sample(nz.vel))
	st.Omega = st.Omega.Add(sample(nz.rate))
	noisy := st.Messages()
	copy(noisy[3:], clean[3:])
	return noisy
}

// Feed replays s into p in real time at rate Hz, starting at the
// Situation's first waypoint.  It returns nil once the last waypoint has been
// sent, or the error that stopped it.
func Feed(ctx context.Context, p control.Poster, s *Situation, rate float64, noise Noise, log *zap.Logger) error {
	nz := newNoiser(noise)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rate))
	defer ticker.Stop()

	log.Info("Sim: Starting scenario",
		zap.Float64("begin", s.BeginTime()), zap.Float64("end", s.EndTime()), zap.Float64("rate", rate))
	start := time.Now()
	for {
		t := s.BeginTime() + time.Since(start).Seconds()
		if t > s.EndTime() {
			t = s.EndTime()
		}
		st, err := s.Interpolate(t)
		if err != nil {
			return err
		}
		for _, m := range nz.corrupt(st) {
			if err := p.Post(ctx, m); err != nil {
				return err
			}
		}
		if t >= s.EndTime() {
			log.Info("Sim: Scenario complete")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
