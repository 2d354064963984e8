package collision

import "github.com/go-gl/mathgl/mgl32"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Valid reports whether Min <= Max on every axis
func (a AABB) Valid() bool {
	return a.Min.X() <= a.Max.X() && a.Min.Y() <= a.Max.Y() && a.Min.Z() <= a.Max.Z()
}

// Translate moves the box by offset. Boxes never rotate.
func (a AABB) Translate(offset mgl32.Vec3) AABB {
	return AABB{Min: a.Min.Add(offset), Max: a.Max.Add(offset)}
}

// ContainsPoint checks if a point is inside the AABB, faces included
func (a AABB) ContainsPoint(point mgl32.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap, touching faces included
func (a AABB) Overlaps(other AABB) bool {
	return a.Min.X() <= other.Max.X() && a.Max.X() >= other.Min.X() &&
		a.Min.Y() <= other.Max.Y() && a.Max.Y() >= other.Min.Y() &&
		a.Min.Z() <= other.Max.Z() && a.Max.Z() >= other.Min.Z()
}
