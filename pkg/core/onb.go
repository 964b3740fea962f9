package core

import (
	"fmt"
	"math"
)

// OrthoNormalBasis is a local frame whose W axis is a surface normal.
// Hemisphere samples expressed in (u, v, w) coordinates are rotated into
// world space with Transform.
type OrthoNormalBasis struct {
	u, v, w Vec3
}

// FromZ builds a basis around the unit normal n, which becomes the local Z axis.
// It panics when n is not unit length: a bad normal would silently corrupt
// every direction derived from it.
func FromZ(n Vec3) OrthoNormalBasis {
	if !n.IsUnit() {
		panic(fmt.Sprintf("core: FromZ requires a unit normal, got %v (|n|²=%g)", n, n.LengthSquared()))
	}

	// Pick the world axis least aligned with n as the reference
	var reference Vec3
	if math.Abs(n.X) > 0.1 {
		reference = NewVec3(0, 1, 0)
	} else {
		reference = NewVec3(1, 0, 0)
	}

	u := reference.Cross(n).Normalize()
	v := n.Cross(u)

	return OrthoNormalBasis{u: u, v: v, w: n}
}

// Transform maps a vector in local coordinates into world space
func (b OrthoNormalBasis) Transform(local Vec3) Vec3 {
	return b.u.Multiply(local.X).Add(b.v.Multiply(local.Y)).Add(b.w.Multiply(local.Z))
}

// U returns the first tangent axis
func (b OrthoNormalBasis) U() Vec3 { return b.u }

// V returns the second tangent axis
func (b OrthoNormalBasis) V() Vec3 { return b.v }

// W returns the normal axis
func (b OrthoNormalBasis) W() Vec3 { return b.w }
