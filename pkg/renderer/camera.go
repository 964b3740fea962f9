package renderer

import (
	"math"
	"math/rand"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/scene"
)

// Camera generates primary rays from normalized device coordinates.
// ndcX runs from -1 (left) to +1 (right) and ndcY from -1 (top) to +1
// (bottom), so both grow with pixel indices.
type Camera struct {
	origin        core.Vec3
	forward       core.Vec3
	right         core.Vec3
	up            core.Vec3
	halfWidth     float64
	halfHeight    float64
	lensRadius    float64
	focusDistance float64
}

// NewCamera creates a camera for an image with the given width/height ratio
func NewCamera(config scene.CameraConfig, aspectRatio float64) *Camera {
	forward := config.Direction.Normalize()
	right := forward.Cross(config.Up).Normalize()
	up := right.Cross(forward)

	halfHeight := math.Tan(config.VerticalFOV * math.Pi / 360)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = 1
	}

	return &Camera{
		origin:        config.Position,
		forward:       forward,
		right:         right,
		up:            up,
		halfWidth:     halfHeight * aspectRatio,
		halfHeight:    halfHeight,
		lensRadius:    config.Aperture / 2,
		focusDistance: focusDistance,
	}
}

// Ray returns the primary ray through (ndcX, ndcY). A pinhole camera
// draws nothing from random; a thin lens draws two values for the lens sample.
func (c *Camera) Ray(ndcX, ndcY float64, random *rand.Rand) core.Ray {
	target := c.target(ndcX, ndcY)
	if c.lensRadius <= 0 {
		return core.NewRay(c.origin, target)
	}

	lens := core.SamplePointInUnitDisk(random.Float64(), random.Float64()).Multiply(c.lensRadius)
	offset := c.right.Multiply(lens.X).Add(c.up.Multiply(lens.Y))
	return core.NewRay(c.origin.Add(offset), target.Subtract(offset))
}

// CenterRay returns the ray through (ndcX, ndcY) from the lens centre
func (c *Camera) CenterRay(ndcX, ndcY float64) core.Ray {
	return core.NewRay(c.origin, c.target(ndcX, ndcY))
}

// target is the point on the focal plane relative to the lens centre
func (c *Camera) target(ndcX, ndcY float64) core.Vec3 {
	return c.forward.
		Add(c.right.Multiply(ndcX * c.halfWidth)).
		Subtract(c.up.Multiply(ndcY * c.halfHeight)).
		Multiply(c.focusDistance)
}
