package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec3Equal(a, b mgl32.Vec3, tolerance float32) bool {
	return mgl32.Abs(a.X()-b.X()) < tolerance &&
		mgl32.Abs(a.Y()-b.Y()) < tolerance &&
		mgl32.Abs(a.Z()-b.Z()) < tolerance
}

func TestStore_Add(t *testing.T) {
	s := NewStore(0)

	first := s.Add(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent())
	second := s.Add(mgl32.Vec3{4, 5, 6}, mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0}))

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, s.Position(second))
	assert.Equal(t, mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0}), s.Rotation(second))
}

func TestStore_OutOfRangePanics(t *testing.T) {
	s := NewStore(4)
	s.Add(mgl32.Vec3{}, mgl32.QuatIdent())

	assert.Panics(t, func() { s.Position(1) })
	assert.Panics(t, func() { s.Translate(3, mgl32.Vec3{1, 0, 0}) })
}

func TestStore_Translate(t *testing.T) {
	s := NewStore(1)
	i := s.Add(mgl32.Vec3{1, 1, 1}, mgl32.QuatIdent())

	s.Translate(i, mgl32.Vec3{2, -1, 0.5})

	assert.Equal(t, mgl32.Vec3{3, 0, 1.5}, s.Position(i))
	assert.Equal(t, mgl32.QuatIdent(), s.Rotation(i))
}

func TestStore_IdentityAxes(t *testing.T) {
	s := NewStore(1)
	i := s.Add(mgl32.Vec3{}, mgl32.QuatIdent())

	assert.True(t, vec3Equal(s.Forward(i), mgl32.Vec3{0, 0, 1}, 1e-6))
	assert.True(t, vec3Equal(s.Right(i), mgl32.Vec3{1, 0, 0}, 1e-6))
	assert.True(t, vec3Equal(s.Up(i), mgl32.Vec3{0, 1, 0}, 1e-6))
}

func TestStore_RotateAroundAxis_NegatedAngle(t *testing.T) {
	tests := []struct {
		name    string
		axis    mgl32.Vec3
		angle   float32
		forward mgl32.Vec3
	}{
		{
			name:    "positive angle around right raises the nose",
			axis:    mgl32.Vec3{1, 0, 0},
			angle:   math.Pi / 2,
			forward: mgl32.Vec3{0, 1, 0},
		},
		{
			name:    "negative angle around right lowers the nose",
			axis:    mgl32.Vec3{1, 0, 0},
			angle:   -math.Pi / 2,
			forward: mgl32.Vec3{0, -1, 0},
		},
		{
			name:    "positive angle around up turns towards -X",
			axis:    mgl32.Vec3{0, 1, 0},
			angle:   math.Pi / 2,
			forward: mgl32.Vec3{-1, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(1)
			i := s.Add(mgl32.Vec3{}, mgl32.QuatIdent())

			s.RotateAroundAxis(i, tt.axis, tt.angle)

			expected := mgl32.QuatRotate(-tt.angle, tt.axis)
			assert.True(t, s.Rotation(i).ApproxEqualThreshold(expected, 1e-6), "rotation = %v, want %v", s.Rotation(i), expected)
			assert.True(t, vec3Equal(s.Forward(i), tt.forward, 1e-5), "forward = %v, want %v", s.Forward(i), tt.forward)
		})
	}
}

func TestStore_RotateLocalAxes_UsesPreRotationFrame(t *testing.T) {
	s := NewStore(1)
	start := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0})
	i := s.Add(mgl32.Vec3{}, start)

	right, up, forward := s.Right(i), s.Up(i), s.Forward(i)
	pitch, yaw, roll := float32(0.2), float32(-0.4), float32(0.1)

	s.RotateLocalAxes(i, pitch, yaw, roll)

	combined := mgl32.QuatRotate(-pitch, right).
		Mul(mgl32.QuatRotate(-yaw, up)).
		Mul(mgl32.QuatRotate(-roll, forward))
	expected := combined.Mul(start).Normalize()

	assert.True(t, s.Rotation(i).ApproxEqualThreshold(expected, 1e-5), "rotation = %v, want %v", s.Rotation(i), expected)
}

func TestStore_RotateLocalAxes_SingleAxisMatchesRotateAroundAxis(t *testing.T) {
	a := NewStore(1)
	b := NewStore(1)
	start := mgl32.QuatRotate(0.7, mgl32.Vec3{0, 0, 1})
	ia := a.Add(mgl32.Vec3{}, start)
	ib := b.Add(mgl32.Vec3{}, start)

	a.RotateLocalAxes(ia, 0.25, 0, 0)
	b.RotateAroundAxis(ib, b.Right(ib), 0.25)

	assert.True(t, a.Rotation(ia).ApproxEqualThreshold(b.Rotation(ib), 1e-6))
}

func TestStore_RotationStaysUnitLength(t *testing.T) {
	s := NewStore(1)
	i := s.Add(mgl32.Vec3{}, mgl32.QuatIdent())

	for step := range 10000 {
		angle := float32(step%7) * 0.013
		s.RotateAroundAxis(i, s.Right(i), angle)
		s.RotateAroundAxis(i, WorldUp, -angle*0.5)
		s.RotateLocalAxes(i, angle, angle*0.3, -angle)

		require.InDelta(t, 1.0, s.Rotation(i).Len(), 1e-4, "step %d", step)
	}
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore(1)
	i := s.Add(mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}))

	pose := s.Snapshot(i)
	s.Translate(i, mgl32.Vec3{10, 0, 0})

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, pose.Position)
	assert.True(t, vec3Equal(pose.Forward(), s.Forward(i), 1e-6))
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		v      mgl32.Vec3
		want   mgl32.Vec3
		wantOK bool
	}{
		{name: "horizontal", v: mgl32.Vec3{3, 0, 4}, want: mgl32.Vec3{0.6, 0, 0.8}, wantOK: true},
		{name: "drops height", v: mgl32.Vec3{0, 5, 2}, want: mgl32.Vec3{0, 0, 1}, wantOK: true},
		{name: "vertical", v: mgl32.Vec3{0, 1, 0}, wantOK: false},
		{name: "zero", v: mgl32.Vec3{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Flatten(tt.v)
			if ok != tt.wantOK {
				t.Fatalf("Flatten(%v) ok = %v, want %v", tt.v, ok, tt.wantOK)
			}
			if ok && !vec3Equal(got, tt.want, 1e-6) {
				t.Errorf("Flatten(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		v, want float32
	}{
		{v: 2.5, want: 1},
		{v: -0.001, want: -1},
		{v: 0, want: 0},
	}

	for _, tt := range tests {
		if got := Sign(tt.v); got != tt.want {
			t.Errorf("Sign(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
