// Package diagnostics samples the frame time at a fixed period for display.
package diagnostics

import "time"

// Stats is the last frame sample
type Stats struct {
	FrameTime time.Duration
	FPS       float64
}

// Sampler keeps the frame time of the last frame of each period.
// The first Update always samples.
type Sampler struct {
	period  time.Duration
	elapsed time.Duration
	stats   Stats
}

func NewSampler(period time.Duration) *Sampler {
	return &Sampler{period: period, elapsed: period}
}

func (s *Sampler) Period() time.Duration {
	return s.period
}

func (s *Sampler) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.period || dt <= 0 {
		return
	}

	s.stats = Stats{
		FrameTime: dt,
		FPS:       float64(time.Second) / float64(dt),
	}
	s.elapsed = 0
}

func (s *Sampler) Stats() Stats {
	return s.stats
}
