// Package flight implements the arcade flight model.
//
// Every aircraft owns one transform slot and one input slot. Once per tick the
// model reads the control signals, integrates throttle, pitch rate and yaw rate
// with acceleration limits, then moves and rotates the transform. Roll is not
// integrated: it is derived from the yaw rate to bank into turns.
package flight

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/akmonengine/dogfight/control"
	"github.com/akmonengine/dogfight/pipeline"
	"github.com/akmonengine/dogfight/transform"
	"github.com/go-gl/mathgl/mgl32"
)

type Pilot = control.Pilot

const (
	PilotPlayer = control.PilotPlayer
	PilotAI     = control.PilotAI
)

// PlayerIndex is the aircraft slot of the player
const PlayerIndex = 0

// NoRef marks an unset cross reference
const NoRef = -1

// SpeedDeadZone is the magnitude under which an integrated speed snaps to zero
const SpeedDeadZone float32 = 0.001

const (
	halfPi          = math.Pi / 2
	unitTolerance   = 1e-3
	defaultCapacity = 128
)

// AIMode selects how AI aircraft are flown
type AIMode uint8

const (
	// AIModePursuit steers AI aircraft directly towards the player, bypassing the flight model
	AIModePursuit AIMode = iota
	// AIModeHeuristic flies AI aircraft through the flight model with inputs from the pursuit heuristic
	AIModeHeuristic
)

func (m AIMode) String() string {
	switch m {
	case AIModePursuit:
		return "pursuit"
	case AIModeHeuristic:
		return "heuristic"
	}
	return "unknown"
}

func ParseAIMode(s string) (AIMode, error) {
	switch s {
	case "", "pursuit":
		return AIModePursuit, nil
	case "heuristic":
		return AIModeHeuristic, nil
	}
	return 0, fmt.Errorf("unknown ai mode %q", s)
}

// Params are the flight model constants shared by every aircraft
type Params struct {
	// PitchThreshold is the forward.up value beyond which pitch stops increasing
	PitchThreshold float32
	// RollThreshold scales the bank angle reached at full yaw rate
	RollThreshold float32
	// InputDeadband is the stick and attitude range treated as neutral
	InputDeadband float32

	AITurnRate          float32
	AIAltitudeThreshold float32
	AIClimbRate         float32
}

func DefaultParams() Params {
	return Params{
		PitchThreshold:      0.9,
		RollThreshold:       0.2,
		InputDeadband:       0.01,
		AITurnRate:          3.0,
		AIAltitudeThreshold: 0.5,
		AIClimbRate:         5.0,
	}
}

// Spec describes an aircraft to spawn
type Spec struct {
	Pilot         Pilot
	Envelope      Envelope
	StartPosition mgl32.Vec3
	StartRotation mgl32.Quat
}

// Refs are lookup-only indices into the stores the aircraft does not own
type Refs struct {
	Transform  int
	Input      int
	Collider   int
	Renderable int
	Inventory  int
}

// Store keeps every aircraft in parallel slices
type Store struct {
	params Params

	pilot    []Pilot
	envelope []Envelope

	throttle  []float32
	pitchRate []float32
	yawRate   []float32

	startPosition []mgl32.Vec3
	startRotation []mgl32.Quat

	refs []Refs
}

func NewStore(params Params) *Store {
	return &Store{
		params:        params,
		pilot:         make([]Pilot, 0, defaultCapacity),
		envelope:      make([]Envelope, 0, defaultCapacity),
		throttle:      make([]float32, 0, defaultCapacity),
		pitchRate:     make([]float32, 0, defaultCapacity),
		yawRate:       make([]float32, 0, defaultCapacity),
		startPosition: make([]mgl32.Vec3, 0, defaultCapacity),
		startRotation: make([]mgl32.Quat, 0, defaultCapacity),
		refs:          make([]Refs, 0, defaultCapacity),
	}
}

// Add validates the spec, creates the aircraft transform and input slots and returns the aircraft index.
// The first aircraft must be the player, and there can only be one.
func (s *Store) Add(spec Spec, transforms *transform.Store, inputs *control.Store, rng *rand.Rand) (int, error) {
	if err := spec.Envelope.Validate(); err != nil {
		return 0, err
	}
	if length := spec.StartRotation.Len(); mgl32.Abs(length-1) > unitTolerance {
		return 0, fmt.Errorf("%w: |q| = %v", ErrInvalidRotation, length)
	}
	if isPlayer := spec.Pilot == PilotPlayer; isPlayer != (len(s.pilot) == PlayerIndex) {
		return 0, fmt.Errorf("%w: %s aircraft at index %d", ErrPlayerIndex, spec.Pilot, len(s.pilot))
	}

	index := len(s.pilot)

	s.pilot = append(s.pilot, spec.Pilot)
	s.envelope = append(s.envelope, spec.Envelope)
	s.throttle = append(s.throttle, spec.Envelope.MinSpeed)
	s.pitchRate = append(s.pitchRate, 0)
	s.yawRate = append(s.yawRate, 0)
	s.startPosition = append(s.startPosition, spec.StartPosition)
	s.startRotation = append(s.startRotation, spec.StartRotation)
	s.refs = append(s.refs, Refs{
		Transform:  transforms.Add(spec.StartPosition, spec.StartRotation),
		Input:      inputs.Add(spec.Pilot, index, rng),
		Collider:   NoRef,
		Renderable: NoRef,
		Inventory:  NoRef,
	})

	return index, nil
}

func (s *Store) Len() int {
	return len(s.pilot)
}

func (s *Store) Params() Params {
	return s.params
}

func (s *Store) Pilot(index int) Pilot {
	return s.pilot[index]
}

func (s *Store) Envelope(index int) Envelope {
	return s.envelope[index]
}

func (s *Store) Refs(index int) Refs {
	return s.refs[index]
}

// Throttle returns the current forward speed
func (s *Store) Throttle(index int) float32 {
	return s.throttle[index]
}

func (s *Store) PitchRate(index int) float32 {
	return s.pitchRate[index]
}

func (s *Store) YawRate(index int) float32 {
	return s.yawRate[index]
}

func (s *Store) SetCollider(index, collider int) {
	s.refs[index].Collider = collider
}

func (s *Store) SetRenderable(index, renderable int) {
	s.refs[index].Renderable = renderable
}

func (s *Store) SetInventory(index, inventory int) {
	s.refs[index].Inventory = inventory
}

// StartPose returns the pose restored by a reset
func (s *Store) StartPose(index int) transform.Pose {
	return transform.Pose{Position: s.startPosition[index], Rotation: s.startRotation[index]}
}

// AccumulateSpeed integrates a speed with a bounded acceleration.
// The result is clamped to [minSpeed, maxSpeed] and snapped to zero when
// smaller than 0.001 in magnitude.
func AccumulateSpeed(current, input, acceleration, minSpeed, maxSpeed, dt float32) float32 {
	speed := mgl32.Clamp(current+input*acceleration*dt, minSpeed, maxSpeed)
	if mgl32.Abs(speed) < SpeedDeadZone {
		return 0
	}
	return speed
}

// Update runs the flight model for every aircraft, player and AI alike
func (s *Store) Update(dt float32, transforms *transform.Store, inputs *control.Store) {
	for i := range s.pilot {
		s.Fly(i, dt, transforms, inputs)
	}
}

// Step advances every aircraft by dt.
// The player pose is copied before the parallel section: it is the only value
// an aircraft reads outside of its own slots.
func (s *Store) Step(dt float32, mode AIMode, transforms *transform.Store, inputs *control.Store, workers int) {
	if len(s.pilot) == 0 {
		return
	}
	player := transforms.Snapshot(s.refs[PlayerIndex].Transform)

	pipeline.Range(workers, len(s.pilot), func(i int) {
		if s.pilot[i] == PilotAI && mode == AIModePursuit {
			s.UpdateAI(i, dt, player, transforms, inputs)
			return
		}
		s.Fly(i, dt, transforms, inputs)
	})
}

// Fly advances one aircraft through the flight model
func (s *Store) Fly(index int, dt float32, transforms *transform.Store, inputs *control.Store) {
	refs := s.refs[index]
	envelope := s.envelope[index]
	p := s.params

	inputThrottle := inputs.Throttle(refs.Input)
	inputReset := inputs.Reset(refs.Input)
	inputPitch := inputs.Pitch(refs.Input)
	inputYaw := inputs.Yaw(refs.Input)
	inputs.Consume(refs.Input)

	s.throttle[index] = AccumulateSpeed(s.throttle[index], inputThrottle, envelope.Acceleration, envelope.MinSpeed, envelope.MaxSpeed, dt)

	if inputReset {
		s.resetTransform(index, transforms)
		return
	}

	t := refs.Transform
	transforms.Translate(t, transforms.Forward(t).Mul(s.throttle[index]*dt))

	forward := transforms.Forward(t)
	right := transforms.Right(t)
	currentPitch := forward.Dot(transform.WorldUp)
	currentRoll := right.Dot(transform.WorldUp)

	// Pitch: with the stick released and the nose off level, push against the
	// pitch rate. A zero rate counts as positive, so a still nose drifts down.
	if mgl32.Abs(inputPitch) < p.InputDeadband {
		if mgl32.Abs(currentPitch) < p.InputDeadband {
			inputPitch = 0
			s.pitchRate[index] = 0
		} else {
			inputPitch = -signum(s.pitchRate[index])
		}
	}
	s.pitchRate[index] = AccumulateSpeed(s.pitchRate[index], inputPitch, envelope.PitchAcceleration, -envelope.PitchMaxSpeed, envelope.PitchMaxSpeed, dt)

	// Yaw
	if mgl32.Abs(inputYaw) < p.InputDeadband {
		if mgl32.Abs(s.yawRate[index]) < p.InputDeadband {
			inputYaw = 0
			s.yawRate[index] = 0
		} else {
			inputYaw = -transform.Sign(s.yawRate[index])
		}
	}
	s.yawRate[index] = AccumulateSpeed(s.yawRate[index], inputYaw, envelope.YawAcceleration, -envelope.YawMaxSpeed, envelope.YawMaxSpeed, dt)

	pitchDelta := s.pitchRate[index] * dt
	yawDelta := s.yawRate[index] * dt

	// Hard stop before going vertical
	pitchPercent := mgl32.Abs(currentPitch / p.PitchThreshold)
	if (currentPitch < -p.PitchThreshold && pitchDelta < 0) || (currentPitch > p.PitchThreshold && pitchDelta > 0) {
		pitchDelta = 0
		s.pitchRate[index] = 0
	}

	// Roll follows the yaw rate, less so when pitched
	targetRoll := p.RollThreshold * float32(math.Sin(float64(halfPi*(s.yawRate[index]/envelope.YawMaxSpeed)*(1-pitchPercent))))
	rollDelta := -currentRoll + targetRoll

	if flatRight, ok := transform.Flatten(right); ok {
		transforms.RotateAroundAxis(t, flatRight, pitchDelta)
	}
	transforms.RotateAroundAxis(t, transform.WorldUp, yawDelta)
	if flatForward, ok := transform.Flatten(forward); ok {
		transforms.RotateAroundAxis(t, flatForward, -rollDelta)
	}
}

// UpdateAI steers an AI aircraft straight at the player.
// The heading is slerped towards the horizontal direction of the player at a
// fixed fraction per tick, altitude closes at a constant climb rate and speed
// grows with the squared horizontal distance.
func (s *Store) UpdateAI(index int, dt float32, player transform.Pose, transforms *transform.Store, inputs *control.Store) {
	refs := s.refs[index]
	envelope := s.envelope[index]
	p := s.params

	inputReset := inputs.Reset(refs.Input)
	inputs.Consume(refs.Input)
	if inputReset {
		s.resetTransform(index, transforms)
		return
	}

	t := refs.Transform
	position := transforms.Position(t)
	rotation := transforms.Rotation(t)
	toPlayer := player.Position.Sub(position)

	flatForward, okForward := transform.Flatten(transforms.Forward(t))
	flatTarget, okTarget := transform.Flatten(toPlayer)
	if okForward && okTarget {
		angle := float32(math.Atan2(float64(flatForward.Cross(flatTarget).Y()), float64(flatForward.Dot(flatTarget))))
		target := mgl32.QuatRotate(angle, transform.WorldUp).Mul(rotation)
		rotation = mgl32.QuatSlerp(rotation, target, min(p.AITurnRate*dt, 1)).Normalize()
		transforms.SetRotation(t, rotation)
	}

	var climb float32
	switch dy := toPlayer.Y(); {
	case position.Y() < control.MinSafeAltitude:
		climb = p.AIClimbRate
	case mgl32.Abs(dy) > p.AIAltitudeThreshold:
		climb = transform.Sign(dy) * p.AIClimbRate
	}

	horizontal := toPlayer
	horizontal[1] = 0
	s.throttle[index] = mgl32.Clamp(horizontal.LenSqr(), envelope.MinSpeed, envelope.MaxSpeed)

	velocity := transforms.Forward(t).Mul(s.throttle[index]).Add(mgl32.Vec3{0, climb, 0})
	transforms.Translate(t, velocity.Mul(dt))
}

func (s *Store) resetTransform(index int, transforms *transform.Store) {
	t := s.refs[index].Transform
	transforms.SetPosition(t, s.startPosition[index])
	transforms.SetRotation(t, s.startRotation[index])
}

// signum is +1 for zero and positive values, -1 for negative ones
func signum(v float32) float32 {
	return float32(math.Copysign(1, float64(v)))
}
