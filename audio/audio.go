// Package audio turns world events into short synthesized cues.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/akmonengine/dogfight"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

const SampleRate = beep.SampleRate(44100)

type Cue uint8

const (
	CueCollision Cue = iota
	CueSupply
)

type tone struct {
	frequency float64
	duration  time.Duration
}

var tones = map[Cue]tone{
	CueCollision: {frequency: 220, duration: 120 * time.Millisecond},
	CueSupply:    {frequency: 880, duration: 60 * time.Millisecond},
}

func (c Cue) String() string {
	switch c {
	case CueCollision:
		return "collision"
	case CueSupply:
		return "supply"
	}
	return "unknown"
}

// Streamer returns a fresh, finite sine tone for the cue
func (c Cue) Streamer() (beep.Streamer, error) {
	t, ok := tones[c]
	if !ok {
		return nil, fmt.Errorf("no tone for cue %d", c)
	}

	sine, err := generators.SineTone(SampleRate, t.frequency)
	if err != nil {
		return nil, fmt.Errorf("%s tone: %w", c, err)
	}
	return beep.Take(SampleRate.N(t.duration), sine), nil
}

// Mixer is a beep.Streamer that can be fed from the simulation goroutine
// while the speaker drains it.
type Mixer struct {
	mu    sync.Mutex
	mixer beep.Mixer
}

func NewMixer() *Mixer {
	return &Mixer{}
}

func (m *Mixer) Play(cue Cue) error {
	s, err := cue.Streamer()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.mixer.Add(s)
	m.mu.Unlock()
	return nil
}

// Len is the amount of cues still playing
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Stream(samples)
}

func (m *Mixer) Err() error {
	return nil
}

// Attach plays a cue on every collision enter and supply delivery
func Attach(events *dogfight.Events, m *Mixer) {
	events.Subscribe(dogfight.COLLISION_ENTER, func(dogfight.Event) {
		_ = m.Play(CueCollision)
	})
	events.Subscribe(dogfight.ON_SUPPLY, func(dogfight.Event) {
		_ = m.Play(CueSupply)
	})
}
