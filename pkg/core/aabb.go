package core

import "math"

// AABB is an axis-aligned box. Scenes use it to report their extent, which
// the scene loader needs to frame a camera.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates a box from its min and max corners
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints returns the smallest box containing every point
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box = box.extend(p)
	}
	return box
}

func (b AABB) extend(p Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the box enclosing both boxes
func (b AABB) Union(other AABB) AABB {
	return b.extend(other.Min).extend(other.Max)
}

// Center returns the midpoint of the box
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the extent along each axis
func (b AABB) Size() Vec3 {
	return b.Max.Subtract(b.Min)
}
