package geometry

import "github.com/df07/fp-pathtracer/pkg/core"

// hitEpsilon rejects hits closer than this distance, so rays leaving a
// surface do not immediately re-hit it.
const hitEpsilon = 1e-4

// Hit describes where a ray meets a surface
type Hit struct {
	Distance float64   // Distance along the ray
	Position core.Vec3 // World-space hit point
	Normal   core.Vec3 // Unit normal facing the incoming ray
}

// IntersectionRecord pairs a hit with the material of the primitive that was hit
type IntersectionRecord struct {
	Hit      Hit
	Material Material
}

// faceForward flips the outward normal so it opposes the ray direction
func faceForward(ray core.Ray, outwardNormal core.Vec3) core.Vec3 {
	if ray.Direction.Dot(outwardNormal) > 0 {
		return outwardNormal.Negate()
	}
	return outwardNormal
}
