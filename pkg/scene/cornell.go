package scene

import (
	"math"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

// wallRadius makes sphere walls flat enough to pass for planes
const wallRadius = 1e5

// cornellFOV frames the box with a unit-high image plane at distance
// 1/tan(25°), i.e. a vertical half-angle of atan(0.5*tan(25°)).
var cornellFOV = 2 * math.Atan(0.5*math.Tan(25*math.Pi/180)) * 180 / math.Pi

// NewCornellScene creates the Cornell box built entirely from spheres: five
// huge spheres for the walls, a large emissive sphere poking through the
// ceiling and two white spheres on the floor.
func NewCornellScene() *Scene {
	s := newCornellBox("cornell")
	s.Description = "Sphere-walled Cornell box with two diffuse spheres"

	white := geometry.NewDiffuse(core.NewVec3(0.999, 0.999, 0.999))
	s.AddSphere(core.NewVec3(27, 16.5, 47), 16.5, white)
	s.AddSphere(core.NewVec3(73, 16.5, 78), 16.5, white)

	return s
}

// NewMirrorScene is the Cornell box with a mirror sphere and a half-mirror sphere
func NewMirrorScene() *Scene {
	s := newCornellBox("mirror")
	s.Description = "Cornell box with a perfect mirror and a half-reflective sphere"

	s.AddSphere(core.NewVec3(27, 16.5, 47), 16.5, geometry.NewMirror(core.NewVec3(0.999, 0.999, 0.999), 1.0))
	s.AddSphere(core.NewVec3(73, 16.5, 78), 16.5, geometry.NewMirror(core.NewVec3(0.75, 0.75, 0.25), 0.5))

	return s
}

func newCornellBox(name string) *Scene {
	s := New(name, core.NewVec3(0, 0, 0))
	s.Width = 640
	s.Height = 480
	s.Camera = CameraConfig{
		Position:    core.NewVec3(50, 52, 295.6),
		Direction:   core.NewVec3(0, -0.042612, -1).Normalize(),
		Up:          core.NewVec3(0, 1, 0),
		VerticalFOV: cornellFOV,
	}

	grey := geometry.NewDiffuse(core.NewVec3(0.75, 0.75, 0.75))

	// Left (red) and right (blue) walls
	s.AddSphere(core.NewVec3(wallRadius+1, 40.8, 81.6), wallRadius, geometry.NewDiffuse(core.NewVec3(0.75, 0.25, 0.25)))
	s.AddSphere(core.NewVec3(-wallRadius+99, 40.8, 81.6), wallRadius, geometry.NewDiffuse(core.NewVec3(0.25, 0.25, 0.75)))
	// Back, floor and ceiling
	s.AddSphere(core.NewVec3(50, 40.8, -wallRadius), wallRadius, grey)
	s.AddSphere(core.NewVec3(50, -wallRadius, 81.6), wallRadius, grey)
	s.AddSphere(core.NewVec3(50, wallRadius+81.6, 81.6), wallRadius, grey)
	// Light
	s.AddSphere(core.NewVec3(50, 681.6-0.27, 81.6), 600, geometry.NewEmissive(core.NewVec3(12, 12, 12)))

	return s
}
