package scene

import (
	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

// NewSphereScene creates a single white diffuse sphere lit only by a uniform
// white environment. Pixels that miss the sphere show the environment color
// exactly. Every bounce off the convex sphere escapes, so it renders white too.
func NewSphereScene() *Scene {
	s := New("sphere", core.NewVec3(1, 1, 1))
	s.Description = "One diffuse white sphere under a uniform white sky"
	s.Width = 320
	s.Height = 240
	s.Camera = CameraConfig{
		Position:    core.NewVec3(0, 0, 4),
		Direction:   core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VerticalFOV: 40,
	}

	s.AddSphere(core.NewVec3(0, 0, 0), 1, geometry.NewDiffuse(core.NewVec3(1, 1, 1)))

	return s
}
