// Package model keeps the meshes shared by colliders, looked up by name.
package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrEmptyMesh = errors.New("mesh has no vertices")

// Model is an immutable set of mesh vertices with their local bounds
type Model struct {
	Name string

	vertices []mgl32.Vec3
	min      mgl32.Vec3
	max      mgl32.Vec3
}

// New copies the vertices and computes the bounds
func New(name string, vertices []mgl32.Vec3) (*Model, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyMesh, name)
	}

	m := &Model{
		Name:     name,
		vertices: make([]mgl32.Vec3, len(vertices)),
		min:      vertices[0],
		max:      vertices[0],
	}
	copy(m.vertices, vertices)

	for _, v := range vertices[1:] {
		for axis := range 3 {
			m.min[axis] = min(m.min[axis], v[axis])
			m.max[axis] = max(m.max[axis], v[axis])
		}
	}

	return m, nil
}

// NewBox builds the 8 corners of the box [lower, upper]
func NewBox(name string, lower, upper mgl32.Vec3) (*Model, error) {
	return New(name, []mgl32.Vec3{
		{lower.X(), lower.Y(), lower.Z()},
		{upper.X(), lower.Y(), lower.Z()},
		{lower.X(), upper.Y(), lower.Z()},
		{upper.X(), upper.Y(), lower.Z()},
		{lower.X(), lower.Y(), upper.Z()},
		{upper.X(), lower.Y(), upper.Z()},
		{lower.X(), upper.Y(), upper.Z()},
		{upper.X(), upper.Y(), upper.Z()},
	})
}

// Bounds returns the local axis-aligned extents
func (m *Model) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return m.min, m.max
}

// Vertices returns the shared vertex slice, callers must not modify it
func (m *Model) Vertices() []mgl32.Vec3 {
	return m.vertices
}

// Registry stores models once and hands out their index
type Registry struct {
	models []*Model
	byName map[string]int
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Add appends a model. A model with an already known name shadows the previous one in Find.
func (r *Registry) Add(m *Model) int {
	r.models = append(r.models, m)
	index := len(r.models) - 1
	r.byName[m.Name] = index
	return index
}

func (r *Registry) Get(index int) *Model {
	return r.models[index]
}

func (r *Registry) Find(name string) (int, bool) {
	index, ok := r.byName[name]
	return index, ok
}

// GetOrAdd returns the index of the named model, building it on first use
func (r *Registry) GetOrAdd(name string, build func() (*Model, error)) (int, error) {
	if index, ok := r.byName[name]; ok {
		return index, nil
	}

	m, err := build()
	if err != nil {
		return 0, fmt.Errorf("build model %q: %w", name, err)
	}
	m.Name = name

	return r.Add(m), nil
}

func (r *Registry) Len() int {
	return len(r.models)
}
