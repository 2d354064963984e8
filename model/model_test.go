package model

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Bounds(t *testing.T) {
	vertices := []mgl32.Vec3{{1, -2, 3}, {-4, 5, 0}, {2, 0, -6}}

	m, err := New("shard", vertices)
	require.NoError(t, err)

	lower, upper := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-4, -2, -6}, lower)
	assert.Equal(t, mgl32.Vec3{2, 5, 3}, upper)
	assert.Equal(t, vertices, m.Vertices())

	vertices[0] = mgl32.Vec3{100, 100, 100}
	assert.Equal(t, mgl32.Vec3{1, -2, 3}, m.Vertices()[0], "vertices are copied")
}

func TestNew_Empty(t *testing.T) {
	_, err := New("nothing", nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestNewBox(t *testing.T) {
	m, err := NewBox("cube", mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{1, 2, 1})
	require.NoError(t, err)

	lower, upper := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, 0, -1}, lower)
	assert.Equal(t, mgl32.Vec3{1, 2, 1}, upper)
	assert.Len(t, m.Vertices(), 8)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	cube, err := NewBox("cube", mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, err)

	index := r.Add(cube)
	assert.Equal(t, 0, index)
	assert.Same(t, cube, r.Get(index))

	found, ok := r.Find("cube")
	assert.True(t, ok)
	assert.Equal(t, index, found)

	_, ok = r.Find("sphere")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetOrAdd(t *testing.T) {
	r := NewRegistry()
	builds := 0
	build := func() (*Model, error) {
		builds++
		return NewBox("", mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	}

	first, err := r.GetOrAdd("crate", build)
	require.NoError(t, err)
	second, err := r.GetOrAdd("crate", build)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, builds, "built once")
	assert.Equal(t, "crate", r.Get(first).Name)
}

func TestRegistry_GetOrAddError(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")

	_, err := r.GetOrAdd("broken", func() (*Model, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, r.Len())
}
