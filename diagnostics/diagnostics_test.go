package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampler_FirstUpdateSamples(t *testing.T) {
	s := NewSampler(time.Second)

	s.Update(20 * time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, s.Stats().FrameTime)
	assert.InDelta(t, 50, s.Stats().FPS, 1e-9)
}

func TestSampler_HoldsUntilThePeriodElapses(t *testing.T) {
	s := NewSampler(100 * time.Millisecond)
	s.Update(10 * time.Millisecond)

	for range 9 {
		s.Update(40 * time.Millisecond)
		if s.Stats().FrameTime != 10*time.Millisecond {
			break
		}
	}

	// 10ms sampled, then 40+40+40 crosses the period on the third frame
	assert.Equal(t, 40*time.Millisecond, s.Stats().FrameTime)
	assert.InDelta(t, 25, s.Stats().FPS, 1e-9)
}

func TestSampler_IgnoresZeroFrames(t *testing.T) {
	s := NewSampler(0)

	s.Update(0)

	assert.Zero(t, s.Stats().FPS)
	assert.Equal(t, time.Duration(0), s.Period())
}
