package control

import (
	"math"
	"time"
)

// periodDecay weights the tick period statistics; about the last 100 ticks
// count.
const periodDecay = 0.99

// periodStats tracks an exponentially weighted mean and spread of the loop
// tick period.
type periodStats struct {
	decay    float64
	started  bool
	mean     float64 // s
	variance float64 // s^2
}

func newPeriodStats(decay float64) *periodStats {
	return &periodStats{decay: decay}
}

// observe folds one measured tick period into the statistics.  The first
// observation seeds the mean.
func (p *periodStats) observe(period time.Duration) {
	dt := period.Seconds()
	if !p.started {
		p.mean, p.variance, p.started = dt, 0, true
		return
	}
	d := dt - p.mean
	dm := (1 - p.decay) * d
	p.mean += dm
	p.variance = p.decay * (p.variance + dm*d)
}

// Mean returns the average tick period in seconds.
func (p *periodStats) Mean() float64 {
	return p.mean
}

// Jitter returns the standard deviation of the tick period in seconds.
func (p *periodStats) Jitter() float64 {
	return math.Sqrt(p.variance)
}
