package geometry

import (
	"fmt"

	"github.com/df07/fp-pathtracer/pkg/core"
)

// Kind tags which shape a Primitive holds
type Kind uint8

const (
	KindSphere Kind = iota + 1
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Primitive is a closed variant over the supported shapes plus the material
// attached to it. Only the field selected by Kind is meaningful.
type Primitive struct {
	Kind     Kind
	Sphere   Sphere
	Triangle Triangle
	Material Material
}

// NewSpherePrimitive wraps a sphere with a material
func NewSpherePrimitive(sphere Sphere, material Material) Primitive {
	return Primitive{Kind: KindSphere, Sphere: sphere, Material: material}
}

// NewTrianglePrimitive wraps a triangle with a material
func NewTrianglePrimitive(triangle Triangle, material Material) Primitive {
	return Primitive{Kind: KindTriangle, Triangle: triangle, Material: material}
}

// Intersect tests the ray against the primitive's shape
func (p *Primitive) Intersect(ray core.Ray) (IntersectionRecord, bool) {
	var (
		hit   Hit
		isHit bool
	)
	switch p.Kind {
	case KindSphere:
		hit, isHit = p.Sphere.Intersect(ray)
	case KindTriangle:
		hit, isHit = p.Triangle.Intersect(ray)
	}
	if !isHit {
		return IntersectionRecord{}, false
	}
	return IntersectionRecord{Hit: hit, Material: p.Material}, true
}

// BoundingBox returns the bounds of the primitive's shape
func (p *Primitive) BoundingBox() core.AABB {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.BoundingBox()
	case KindTriangle:
		return p.Triangle.BoundingBox()
	}
	return core.AABB{}
}

// Validate checks the shape and material
func (p *Primitive) Validate() error {
	switch p.Kind {
	case KindSphere:
		if p.Sphere.Radius <= 0 {
			return fmt.Errorf("%w: sphere radius %g", ErrInvalidPrimitive, p.Sphere.Radius)
		}
	case KindTriangle:
		if p.Triangle.Degenerate() {
			return fmt.Errorf("%w: degenerate triangle", ErrInvalidPrimitive)
		}
	default:
		return fmt.Errorf("%w: unknown %s", ErrInvalidPrimitive, p.Kind)
	}
	return p.Material.Validate()
}

// Nearest tests the ray against every primitive and returns the closest hit.
// There is no early exit; every primitive is visited.
func Nearest(primitives []Primitive, ray core.Ray) (IntersectionRecord, bool) {
	var (
		nearest IntersectionRecord
		found   bool
	)
	for i := range primitives {
		record, isHit := primitives[i].Intersect(ray)
		if isHit && (!found || record.Hit.Distance < nearest.Hit.Distance) {
			nearest = record
			found = true
		}
	}
	return nearest, found
}

// Bounds returns the box enclosing all primitives
func Bounds(primitives []Primitive) core.AABB {
	if len(primitives) == 0 {
		return core.AABB{}
	}
	bounds := primitives[0].BoundingBox()
	for i := 1; i < len(primitives); i++ {
		bounds = bounds.Union(primitives[i].BoundingBox())
	}
	return bounds
}
