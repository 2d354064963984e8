// Package transform stores the position and orientation of every spatial entity.
//
// Entities are identified by their slot index. Slots are appended and never
// removed, so an index stays valid for the whole session. Out of range indices
// are a scene construction bug and panic.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"
)

const defaultCapacity = 128

var (
	// WorldUp is the world-space up axis.
	WorldUp = mgl32.Vec3{0, 1, 0}

	unitX = mgl32.Vec3{1, 0, 0}
	unitZ = mgl32.Vec3{0, 0, 1}
)

// Pose is a value copy of one transform slot
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Forward returns the +Z axis of the pose
func (p Pose) Forward() mgl32.Vec3 {
	return p.Rotation.Rotate(unitZ).Normalize()
}

// Store keeps positions and rotations in parallel slices
type Store struct {
	position []mgl32.Vec3
	rotation []mgl32.Quat
}

// NewStore creates an empty store, capacity is only a hint
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Store{
		position: make([]mgl32.Vec3, 0, capacity),
		rotation: make([]mgl32.Quat, 0, capacity),
	}
}

// Add appends a transform and returns its index.
// The rotation must already be unit length.
func (s *Store) Add(position mgl32.Vec3, rotation mgl32.Quat) int {
	s.position = append(s.position, position)
	s.rotation = append(s.rotation, rotation)

	return len(s.position) - 1
}

// Len returns the amount of managed transforms
func (s *Store) Len() int {
	return len(s.position)
}

// Position returns the world position of a slot
func (s *Store) Position(index int) mgl32.Vec3 {
	return s.position[index]
}

// Rotation returns the orientation of a slot
func (s *Store) Rotation(index int) mgl32.Quat {
	return s.rotation[index]
}

// SetPosition teleports a slot
func (s *Store) SetPosition(index int, position mgl32.Vec3) {
	s.position[index] = position
}

// SetRotation replaces the orientation of a slot, it is not normalized
func (s *Store) SetRotation(index int, rotation mgl32.Quat) {
	s.rotation[index] = rotation
}

// Snapshot copies the pose out of the store
func (s *Store) Snapshot(index int) Pose {
	return Pose{Position: s.position[index], Rotation: s.rotation[index]}
}

// Translate moves a slot by delta in world space
func (s *Store) Translate(index int, delta mgl32.Vec3) {
	s.position[index] = s.position[index].Add(delta)
}

// RotateAroundAxis left-multiplies the rotation by an axis-angle rotation of -angle.
// The negated angle matches the renderer handedness.
func (s *Store) RotateAroundAxis(index int, axis mgl32.Vec3, angle float32) {
	rotation := mgl32.QuatRotate(-angle, axis)
	s.rotation[index] = rotation.Mul(s.rotation[index]).Normalize()
}

// RotateLocalAxes rotates around the current right, up and forward axes.
// All three axes are taken from the frame before rotation, combined as
// pitch * yaw * roll and applied in a single multiplication.
func (s *Store) RotateLocalAxes(index int, pitchDelta, yawDelta, rollDelta float32) {
	roll := mgl32.QuatRotate(-rollDelta, s.Forward(index))
	yaw := mgl32.QuatRotate(-yawDelta, s.Up(index))
	pitch := mgl32.QuatRotate(-pitchDelta, s.Right(index))

	combined := pitch.Mul(yaw).Mul(roll)
	s.rotation[index] = combined.Mul(s.rotation[index]).Normalize()
}

// Forward returns the local +Z axis in world space
func (s *Store) Forward(index int) mgl32.Vec3 {
	return s.rotation[index].Rotate(unitZ).Normalize()
}

// Right returns the local +X axis in world space
func (s *Store) Right(index int) mgl32.Vec3 {
	return s.rotation[index].Rotate(unitX).Normalize()
}

// Up returns the local +Y axis in world space
func (s *Store) Up(index int) mgl32.Vec3 {
	return s.rotation[index].Rotate(WorldUp).Normalize()
}

// degenerateAxis is the squared length under which a flattened vector has no direction
const degenerateAxis = 1e-12

// Flatten projects v on the horizontal plane and normalizes it.
// It returns false when v is vertical.
func Flatten(v mgl32.Vec3) (mgl32.Vec3, bool) {
	v[1] = 0
	if v.LenSqr() < degenerateAxis {
		return mgl32.Vec3{}, false
	}
	return v.Normalize(), true
}

// Sign returns -1, 0 or +1
func Sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
