package gjk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// Test helper functions

func box(min, max mgl32.Vec3) []mgl32.Vec3 {
	return []mgl32.Vec3{
		{min.X(), min.Y(), min.Z()},
		{max.X(), min.Y(), min.Z()},
		{min.X(), max.Y(), min.Z()},
		{max.X(), max.Y(), min.Z()},
		{min.X(), min.Y(), max.Z()},
		{max.X(), min.Y(), max.Z()},
		{min.X(), max.Y(), max.Z()},
		{max.X(), max.Y(), max.Z()},
	}
}

func unitCube(offset mgl32.Vec3) PointCloud {
	return PointCloud{Points: box(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}), Offset: offset}
}

func tetra(offset mgl32.Vec3) PointCloud {
	return PointCloud{
		Points: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Offset: offset,
	}
}

// square is a flat 2x2 quad in the plane y = 0
func square(offset mgl32.Vec3) PointCloud {
	return PointCloud{
		Points: []mgl32.Vec3{{-1, 0, -1}, {1, 0, -1}, {-1, 0, 1}, {1, 0, 1}},
		Offset: offset,
	}
}

// PointCloud tests

func TestPointCloud_Support(t *testing.T) {
	cube := unitCube(mgl32.Vec3{10, 0, 0})

	assert.Equal(t, mgl32.Vec3{11, 1, 1}, cube.Support(mgl32.Vec3{1, 1, 1}))
	assert.Equal(t, mgl32.Vec3{9, -1, -1}, cube.Support(mgl32.Vec3{-1, -1, -1}))
	assert.Equal(t, float32(11), cube.Support(mgl32.Vec3{1, 0, 0}).X())
}

func TestPointCloud_Center(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, unitCube(mgl32.Vec3{5, 5, 5}).Center())
	assert.Equal(t, mgl32.Vec3{0.25, 0.25, 0.25}, tetra(mgl32.Vec3{}).Center())
}

// MinkowskiSupport tests

func TestMinkowskiSupport(t *testing.T) {
	t.Run("separated cubes along x-axis", func(t *testing.T) {
		a := unitCube(mgl32.Vec3{0, 0, 0})
		b := unitCube(mgl32.Vec3{3, 0, 0})

		// max(A.x) - min(B.x) = 1 - 2
		support := MinkowskiSupport(a, b, mgl32.Vec3{1, 0, 0})
		assert.Equal(t, float32(-1), support.X())
	})

	t.Run("overlapping cubes", func(t *testing.T) {
		a := unitCube(mgl32.Vec3{0, 0, 0})
		b := unitCube(mgl32.Vec3{1.5, 0, 0})

		support := MinkowskiSupport(a, b, mgl32.Vec3{1, 0, 0})
		assert.Equal(t, float32(0.5), support.X())
	})

	t.Run("opposite directions", func(t *testing.T) {
		a := unitCube(mgl32.Vec3{0, 0, 0})
		b := unitCube(mgl32.Vec3{5, 0, 0})

		positive := MinkowskiSupport(a, b, mgl32.Vec3{1, 0, 0})
		negative := MinkowskiSupport(a, b, mgl32.Vec3{-1, 0, 0})

		assert.Equal(t, float32(-3), positive.X())
		assert.Equal(t, float32(-7), negative.X())
	})
}

// Intersect tests

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Shape
		want bool
	}{
		{name: "same position", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{}), want: true},
		{name: "partial overlap on x", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{1.5, 0, 0}), want: true},
		{name: "partial overlap on all axes", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{1.2, -1.3, 1.4}), want: true},
		{
			name: "nested",
			a:    unitCube(mgl32.Vec3{}),
			b:    PointCloud{Points: box(mgl32.Vec3{-0.2, -0.2, -0.2}, mgl32.Vec3{0.2, 0.2, 0.2})},
			want: true,
		},
		{name: "separated on x", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{3, 0, 0}), want: false},
		{name: "separated on -y", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{0, -2.5, 0}), want: false},
		{name: "separated on z", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{0, 0, 4}), want: false},
		{name: "separated diagonally", a: unitCube(mgl32.Vec3{}), b: unitCube(mgl32.Vec3{2.5, 2.5, 2.5}), want: false},
		{name: "tetrahedron corner inside cube", a: unitCube(mgl32.Vec3{}), b: tetra(mgl32.Vec3{0.5, 0.5, 0.5}), want: true},
		// boxes overlap on every axis but the slanted face of the tetrahedron passes the corner
		{
			name: "tetrahedron slanted face clears cube corner",
			a:    unitCube(mgl32.Vec3{}),
			b: PointCloud{
				Points: []mgl32.Vec3{{0, 0, 0}, {-1, 0, 0}, {0, -1, 0}, {0, 0, -1}},
				Offset: mgl32.Vec3{1.6, 1.6, 1.6},
			},
			want: false,
		},
		{name: "two tetrahedra far apart", a: tetra(mgl32.Vec3{}), b: tetra(mgl32.Vec3{-5, 0, 0}), want: false},
		{name: "coplanar squares at the same position", a: square(mgl32.Vec3{}), b: square(mgl32.Vec3{}), want: true},
		{name: "coplanar squares overlapping", a: square(mgl32.Vec3{}), b: square(mgl32.Vec3{1.5, 0, 0.3}), want: true},
		{name: "coplanar squares overlapping diagonally", a: square(mgl32.Vec3{}), b: square(mgl32.Vec3{-1.2, 0, 1.7}), want: true},
		{name: "coplanar squares separated", a: square(mgl32.Vec3{}), b: square(mgl32.Vec3{2.5, 0, 0.3}), want: false},
		{name: "coplanar squares separated diagonally", a: square(mgl32.Vec3{}), b: square(mgl32.Vec3{3, 0, 3}), want: false},
		{name: "parallel squares one above the other", a: square(mgl32.Vec3{}), b: square(mgl32.Vec3{0.5, 1, 0.5}), want: false},
		{name: "square inside cube", a: unitCube(mgl32.Vec3{}), b: square(mgl32.Vec3{0.5, 0.5, 0.5}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simplex := &Simplex{}
			assert.Equal(t, tt.want, Intersect(tt.a, tt.b, simplex))
			assert.Equal(t, tt.want, Intersect(tt.b, tt.a, simplex), "symmetry")
		})
	}
}

func TestIntersect_OffsetOnlyMovesTheCloud(t *testing.T) {
	points := box(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	simplex := &Simplex{}

	a := PointCloud{Points: points, Offset: mgl32.Vec3{0, 0, 0}}
	b := PointCloud{Points: points, Offset: mgl32.Vec3{0.5, 0.5, 0.5}}
	assert.True(t, Intersect(a, b, simplex))

	b.Offset = mgl32.Vec3{10, 0, 0}
	assert.False(t, Intersect(a, b, simplex))
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, points[0], "points are never mutated")
}

func TestSimplexPool(t *testing.T) {
	simplex := SimplexPool.Get().(*Simplex)
	defer SimplexPool.Put(simplex)
	simplex.Reset()

	assert.True(t, Intersect(unitCube(mgl32.Vec3{}), unitCube(mgl32.Vec3{0.5, 0, 0}), simplex))
	assert.GreaterOrEqual(t, simplex.Count, 1)
	assert.LessOrEqual(t, simplex.Count, 4)

	simplex.Reset()
	assert.Zero(t, simplex.Count)
}
