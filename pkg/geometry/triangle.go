package geometry

import (
	"github.com/df07/fp-pathtracer/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3
	normal     core.Vec3 // Cached geometric normal
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) Triangle {
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	return Triangle{
		V0:     v0,
		V1:     v1,
		V2:     v2,
		normal: edge1.Cross(edge2).Normalize(),
	}
}

// Normal returns the triangle's geometric normal (counter-clockwise winding)
func (t Triangle) Normal() core.Vec3 {
	return t.normal
}

// Degenerate reports whether the triangle has zero area
func (t Triangle) Degenerate() bool {
	return t.normal.IsZero()
}

// Intersect tests the ray against the triangle using the Möller-Trumbore algorithm
func (t Triangle) Intersect(ray core.Ray) (Hit, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return Hit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return Hit{}, false
	}

	distance := f * edge2.Dot(q)
	if distance < hitEpsilon {
		return Hit{}, false
	}

	return Hit{
		Distance: distance,
		Position: ray.At(distance),
		Normal:   faceForward(ray, t.normal),
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}
