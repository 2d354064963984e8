// Package collision detects overlapping colliders every tick.
//
// Colliders are axis-aligned boxes placed at their transform position. The
// rotation of the transform is never applied to the box. Detection is a full
// O(n²) recompute: each source collider scans every target collider, tests
// the world boxes, then optionally refines the hit against mesh vertices.
package collision

import (
	"errors"
	"fmt"
	"iter"

	"github.com/akmonengine/dogfight/gjk"
	"github.com/akmonengine/dogfight/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxCollisions is the amount of partners recorded per source collider and tick.
// Further partners are silently dropped.
const MaxCollisions = 4

// NoPartner marks an unused slot in Partners
const NoPartner = -1

var (
	ErrInvalidBounds   = errors.New("collider bounds min is above max")
	ErrMissingVertices = errors.New("vertex precision collider without vertices")
)

// Precision selects how a box overlap is confirmed
type Precision uint8

const (
	// PrecisionBox collides on box overlap alone
	PrecisionBox Precision = iota
	// PrecisionVertex requires a mesh vertex inside the other box,
	// or the convex hulls to intersect when both sides are vertex precise
	PrecisionVertex
)

func (p Precision) String() string {
	switch p {
	case PrecisionBox:
		return "box"
	case PrecisionVertex:
		return "vertex"
	}
	return "unknown"
}

// Options control the role of a collider.
// A source is checked against others, a target is checked against.
type Options struct {
	Source    bool
	Target    bool
	Precision Precision
}

// Partners is the fixed set of colliders hit by a source during the last update
type Partners [MaxCollisions]int

func emptyPartners() Partners {
	return Partners{NoPartner, NoPartner, NoPartner, NoPartner}
}

func (p Partners) Len() int {
	n := 0
	for _, index := range p {
		if index != NoPartner {
			n++
		}
	}
	return n
}

func (p Partners) Contains(index int) bool {
	for _, i := range p {
		if i != NoPartner && i == index {
			return true
		}
	}
	return false
}

// All iterates the recorded partners in detection order
func (p Partners) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, index := range p {
			if index == NoPartner {
				return
			}
			if !yield(index) {
				return
			}
		}
	}
}

func (p *Partners) add(index int) bool {
	for i := range p {
		if p[i] == NoPartner {
			p[i] = index
			return true
		}
	}
	return false
}

// Mesh provides the local bounds and vertices of a collider
type Mesh interface {
	Bounds() (min, max mgl32.Vec3)
	Vertices() []mgl32.Vec3
}

// PositionReader gives the world position of a transform slot
type PositionReader interface {
	Position(index int) mgl32.Vec3
}

// Store keeps every collider in parallel slices
type Store struct {
	bounds    []AABB
	options   []Options
	vertices  [][]mgl32.Vec3
	transform []int
	partners  []Partners

	// per update scratch, indexed like the colliders
	positions []mgl32.Vec3
	world     []AABB
}

func NewStore() *Store {
	return &Store{}
}

// Add registers a collider with local bounds, attached to a transform slot.
// vertices are shared, not copied, and are required for PrecisionVertex.
func (s *Store) Add(bounds AABB, vertices []mgl32.Vec3, transform int, opts Options) (int, error) {
	if err := check(bounds, vertices, opts); err != nil {
		return 0, err
	}

	s.bounds = append(s.bounds, bounds)
	s.options = append(s.options, opts)
	s.vertices = append(s.vertices, vertices)
	s.transform = append(s.transform, transform)
	s.partners = append(s.partners, emptyPartners())

	return len(s.bounds) - 1, nil
}

// CheckModel returns the error AddFromModel would return for mesh, without adding anything
func CheckModel(mesh Mesh, opts Options) error {
	lower, upper := mesh.Bounds()
	return check(AABB{Min: lower, Max: upper}, mesh.Vertices(), opts)
}

func check(bounds AABB, vertices []mgl32.Vec3, opts Options) error {
	if !bounds.Valid() {
		return fmt.Errorf("%w: %v > %v", ErrInvalidBounds, bounds.Min, bounds.Max)
	}
	if opts.Precision == PrecisionVertex && len(vertices) == 0 {
		return ErrMissingVertices
	}
	return nil
}

// AddFromModel registers a collider with the bounds and vertices of a mesh
func (s *Store) AddFromModel(mesh Mesh, transform int, opts Options) (int, error) {
	lower, upper := mesh.Bounds()
	return s.Add(AABB{Min: lower, Max: upper}, mesh.Vertices(), transform, opts)
}

func (s *Store) Len() int {
	return len(s.bounds)
}

func (s *Store) Options(index int) Options {
	return s.options[index]
}

func (s *Store) TransformIndex(index int) int {
	return s.transform[index]
}

// Colliding returns the partners recorded for a source collider by the last Update.
// Non-source colliders never record partners.
func (s *Store) Colliding(index int) Partners {
	return s.partners[index]
}

// WorldBounds returns the local box translated to the current transform position
func (s *Store) WorldBounds(index int, transforms PositionReader) AABB {
	return s.bounds[index].Translate(transforms.Position(s.transform[index]))
}

// Update recomputes the partners of every source collider from the current positions.
// Sources are processed in parallel, each one only writes its own partner set.
func (s *Store) Update(transforms PositionReader, workers int) {
	n := len(s.bounds)
	s.positions = s.positions[:0]
	s.world = s.world[:0]
	for i := range n {
		position := transforms.Position(s.transform[i])
		s.positions = append(s.positions, position)
		s.world = append(s.world, s.bounds[i].Translate(position))
	}

	pipeline.Range(workers, n, s.updateSource)
}

func (s *Store) updateSource(source int) {
	s.partners[source] = emptyPartners()
	if !s.options[source].Source {
		return
	}

	for target := range s.bounds {
		if target == source || !s.options[target].Target {
			continue
		}
		if !s.world[source].Overlaps(s.world[target]) {
			continue
		}
		if !s.refine(source, target) {
			continue
		}
		if !s.partners[source].add(target) {
			return
		}
	}
}

// refine confirms a box overlap according to the precision of both sides
func (s *Store) refine(a, b int) bool {
	precisionA, precisionB := s.options[a].Precision, s.options[b].Precision

	switch {
	case precisionA == PrecisionBox && precisionB == PrecisionBox:
		return true
	case precisionA == PrecisionVertex && precisionB == PrecisionBox:
		return s.anyVertexInside(a, s.world[b])
	case precisionA == PrecisionBox && precisionB == PrecisionVertex:
		return s.anyVertexInside(b, s.world[a])
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	return gjk.Intersect(
		gjk.PointCloud{Points: s.vertices[a], Offset: s.positions[a]},
		gjk.PointCloud{Points: s.vertices[b], Offset: s.positions[b]},
		simplex,
	)
}

func (s *Store) anyVertexInside(index int, box AABB) bool {
	offset := s.positions[index]
	for _, vertex := range s.vertices[index] {
		if box.ContainsPoint(vertex.Add(offset)) {
			return true
		}
	}
	return false
}
