package geometry

import (
	"math"

	"github.com/df07/fp-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Intersect returns the nearest hit in front of the ray origin
func (s Sphere) Intersect(ray core.Ray) (Hit, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < hitEpsilon {
		root = (-halfB + sqrtD) / a
		if root < hitEpsilon {
			return Hit{}, false
		}
	}

	position := ray.At(root)
	outwardNormal := position.Subtract(s.Center).Multiply(1.0 / s.Radius)

	return Hit{
		Distance: root,
		Position: position,
		Normal:   faceForward(ray, outwardNormal.Normalize()),
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
}
