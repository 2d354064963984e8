// Package control holds the per-aircraft control signals for one tick.
//
// Signals are written by the keyboard mapping or by the pursuit heuristic,
// read by the flight model and consumed at the end of the tick. A command that
// is not read within the tick it was set is lost.
package control

import (
	"math/rand/v2"

	"github.com/akmonengine/dogfight/input"
	"github.com/akmonengine/dogfight/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// Pilot tells who flies an aircraft
type Pilot uint8

const (
	PilotPlayer Pilot = iota
	PilotAI
)

func (p Pilot) String() string {
	switch p {
	case PilotPlayer:
		return "player"
	case PilotAI:
		return "ai"
	}
	return "unknown"
}

const (
	// MinSafeAltitude forces an AI aircraft nose up below this height
	MinSafeAltitude float32 = 5
	// AlignedDot is the horizontal alignment above which the AI stops yawing
	AlignedDot float32 = 0.99

	levelDeadband float32 = 0.01
	keyAmount     float32 = 1
)

// KeyState is the boolean key state read from the window layer
type KeyState interface {
	Pressed(key input.Key) bool
	Down(key input.Key) bool
}

// Store keeps the control signals in parallel slices, one slot per aircraft
type Store struct {
	pilot    []Pilot
	aircraft []int

	pitch    []float32
	yaw      []float32
	throttle []float32
	reset    []bool

	// pursuit heuristic state
	targetYDiff []float32
	yawSign     []float32
	lastDot     []float32
}

func NewStore() *Store {
	return &Store{}
}

// Add creates a neutral input slot.
// The standoff altitude offset used by the pursuit heuristic is sampled once from rng.
func (s *Store) Add(pilot Pilot, aircraft int, rng *rand.Rand) int {
	s.pilot = append(s.pilot, pilot)
	s.aircraft = append(s.aircraft, aircraft)

	s.pitch = append(s.pitch, 0)
	s.yaw = append(s.yaw, 0)
	s.throttle = append(s.throttle, 0)
	s.reset = append(s.reset, false)

	targetYDiff := float32(rng.IntN(19)+1) + rng.Float32()
	s.targetYDiff = append(s.targetYDiff, targetYDiff)
	s.yawSign = append(s.yawSign, 1)
	s.lastDot = append(s.lastDot, -1)

	return len(s.pilot) - 1
}

func (s *Store) Len() int {
	return len(s.pilot)
}

func (s *Store) Pilot(index int) Pilot {
	return s.pilot[index]
}

// Aircraft returns the aircraft slot owning this input
func (s *Store) Aircraft(index int) int {
	return s.aircraft[index]
}

func (s *Store) Pitch(index int) float32    { return s.pitch[index] }
func (s *Store) Yaw(index int) float32      { return s.yaw[index] }
func (s *Store) Throttle(index int) float32 { return s.throttle[index] }
func (s *Store) Reset(index int) bool       { return s.reset[index] }

func (s *Store) SetPitch(index int, value float32)    { s.pitch[index] = value }
func (s *Store) SetYaw(index int, value float32)      { s.yaw[index] = value }
func (s *Store) SetThrottle(index int, value float32) { s.throttle[index] = value }
func (s *Store) SetReset(index int, value bool)       { s.reset[index] = value }

// TargetYDiff returns the standoff altitude offset of an AI slot
func (s *Store) TargetYDiff(index int) float32 {
	return s.targetYDiff[index]
}

// Consume resets the slot to neutral
func (s *Store) Consume(index int) {
	s.pitch[index] = 0
	s.yaw[index] = 0
	s.throttle[index] = 0
	s.reset[index] = false
}

// Update fills every slot for this tick: player slots from the keyboard,
// AI slots from the pursuit heuristic against the player snapshot.
func (s *Store) Update(keys KeyState, pose func(index int) transform.Pose, player transform.Pose) {
	for i := range s.pilot {
		switch s.pilot[i] {
		case PilotPlayer:
			if keys != nil {
				s.ApplyKeyboard(i, keys)
			}
		case PilotAI:
			s.ApplyPursuit(i, pose(i), player)
		}
	}
}

// ApplyKeyboard sums the signed contribution of every held key, then clamps to [-1, 1].
// Opposite keys held together cancel out.
func (s *Store) ApplyKeyboard(index int, keys KeyState) {
	if keys.Pressed(input.KeyUp) {
		s.pitch[index] -= keyAmount
	}
	if keys.Pressed(input.KeyDown) {
		s.pitch[index] += keyAmount
	}

	if keys.Pressed(input.KeyLeft) {
		s.yaw[index] -= keyAmount
	}
	if keys.Pressed(input.KeyRight) {
		s.yaw[index] += keyAmount
	}

	if keys.Pressed(input.KeyA) {
		s.throttle[index] += keyAmount
	}
	if keys.Pressed(input.KeyZ) {
		s.throttle[index] -= keyAmount
	}

	s.pitch[index] = mgl32.Clamp(s.pitch[index], -1, 1)
	s.yaw[index] = mgl32.Clamp(s.yaw[index], -1, 1)
	s.throttle[index] = mgl32.Clamp(s.throttle[index], -1, 1)

	s.reset[index] = keys.Down(input.KeyR)
}

// ApplyPursuit steers an AI slot towards the player.
//
// Vertically it keeps a standoff offset and levels off inside it, always
// pulling up below MinSafeAltitude. Horizontally it yaws with a persisted sign
// that flips whenever alignment gets worse than on the previous tick, which
// makes the aircraft weave around the target instead of locking on it.
// Throttle is left at zero.
func (s *Store) ApplyPursuit(index int, self, player transform.Pose) {
	forward := self.Forward()
	currentPitch := forward.Dot(transform.WorldUp)
	distance := player.Position.Sub(self.Position)

	switch {
	case self.Position.Y() < MinSafeAltitude:
		s.pitch[index] = 1
	case mgl32.Abs(distance.Y()) < s.targetYDiff[index]:
		if mgl32.Abs(currentPitch) > levelDeadband {
			s.pitch[index] = -transform.Sign(currentPitch)
		} else {
			s.pitch[index] = 0
		}
	default:
		s.pitch[index] = transform.Sign(distance.Y())
	}

	s.yaw[index] = 0
	flatForward, okForward := transform.Flatten(forward)
	flatTarget, okTarget := transform.Flatten(distance)
	if okForward && okTarget {
		dot := flatForward.Dot(flatTarget)
		if dot < s.lastDot[index] {
			s.yawSign[index] = -s.yawSign[index]
		}
		s.lastDot[index] = dot

		if dot < AlignedDot {
			s.yaw[index] = s.yawSign[index]
		}
	}

	s.throttle[index] = 0
}
