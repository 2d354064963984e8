// Package gjk tests two convex shapes for intersection with the
// Gilbert-Johnson-Keerthi algorithm.
//
// The shapes only expose a support function: the Minkowski difference A - B
// is never built, GJK grows a simplex inside it towards the origin and
// reports an intersection when the simplex encloses the origin.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	maxIterations = 32
	epsilon       = 1e-6
	// planeEpsilon is the distance under which the origin lies in a triangle plane
	planeEpsilon = 1e-4
)

// Shape is a convex volume queried through its support function
type Shape interface {
	// Support returns the furthest point of the shape along direction, in world space
	Support(direction mgl32.Vec3) mgl32.Vec3
	// Center returns any point inside the shape, used to seed the search direction
	Center() mgl32.Vec3
}

// PointCloud is the convex hull of a vertex set, translated by Offset.
// Points are not rotated.
type PointCloud struct {
	Points []mgl32.Vec3
	Offset mgl32.Vec3
}

func (p PointCloud) Support(direction mgl32.Vec3) mgl32.Vec3 {
	best := p.Points[0]
	bestDot := best.Dot(direction)
	for _, point := range p.Points[1:] {
		if dot := point.Dot(direction); dot > bestDot {
			best, bestDot = point, dot
		}
	}
	return best.Add(p.Offset)
}

func (p PointCloud) Center() mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, point := range p.Points {
		sum = sum.Add(point)
	}
	return sum.Mul(1 / float32(len(p.Points))).Add(p.Offset)
}

// Simplex holds 1 to 4 points of the Minkowski difference, the most recent last
type Simplex struct {
	Points [4]mgl32.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) set(points ...mgl32.Vec3) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns the support point of A - B along direction
func MinkowskiSupport(a, b Shape, direction mgl32.Vec3) mgl32.Vec3 {
	return a.Support(direction).Sub(b.Support(direction.Mul(-1)))
}

// Intersect reports whether a and b overlap. Touching shapes intersect.
// The simplex is used as scratch space and left in its final state.
func Intersect(a, b Shape, simplex *Simplex) bool {
	direction := b.Center().Sub(a.Center())
	if direction.LenSqr() < epsilon*epsilon {
		direction = mgl32.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < epsilon*epsilon {
		return true
	}

	for range maxIterations {
		point := MinkowskiSupport(a, b, direction)
		// the origin lies beyond the furthest point reachable along direction
		if point.Dot(direction) < 0 {
			return false
		}

		simplex.Points[simplex.Count] = point
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
		if direction.LenSqr() < epsilon*epsilon {
			return true
		}
	}

	return false
}

// containsOrigin reduces the simplex to the feature closest to the origin and
// points direction at the origin from it. Only a tetrahedron can enclose it.
func containsOrigin(simplex *Simplex, direction *mgl32.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl32.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < epsilon {
		if ao.LenSqr() < epsilon {
			return true
		}
		simplex.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.set(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < epsilon*epsilon {
		// origin on the segment
		return true
	}
	*direction = perp
	return false
}

func triangle(simplex *Simplex, direction *mgl32.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	// collinear points
	if abc.LenSqr() < epsilon*epsilon {
		simplex.set(b, a)
		return line(simplex, direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		simplex.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}
	if abc.Cross(ac).Dot(ao) > 0 {
		simplex.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	// A flat Minkowski difference, as between two coplanar meshes, never yields a
	// tetrahedron: the origin has to be found inside the triangle itself.
	if mgl32.Abs(abc.Dot(ao)) <= planeEpsilon*abc.Len() && inTriangle(a, b, c, abc) {
		return true
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		simplex.set(b, c, a)
		*direction = abc.Mul(-1)
	}
	return false
}

func tetrahedron(simplex *Simplex, direction *mgl32.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// face normals oriented away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < epsilon*epsilon || acd.LenSqr() < epsilon*epsilon || adb.LenSqr() < epsilon*epsilon {
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		simplex.set(c, b, a)
		return triangle(simplex, direction)
	case acd.Dot(ao) > 0:
		simplex.set(d, c, a)
		return triangle(simplex, direction)
	case adb.Dot(ao) > 0:
		simplex.set(b, d, a)
		return triangle(simplex, direction)
	}

	return true
}

func outward(normal, toOpposite mgl32.Vec3) mgl32.Vec3 {
	if normal.Dot(toOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}

// inTriangle reports whether the projection of the origin on the plane of
// (a, b, c), with normal n = ab x ac, falls inside the triangle
func inTriangle(a, b, c, n mgl32.Vec3) bool {
	tolerance := -epsilon * n.LenSqr()
	return b.Sub(a).Cross(a.Mul(-1)).Dot(n) >= tolerance &&
		c.Sub(b).Cross(b.Mul(-1)).Dot(n) >= tolerance &&
		a.Sub(c).Cross(c.Mul(-1)).Dot(n) >= tolerance
}
