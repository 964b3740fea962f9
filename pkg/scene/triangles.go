package scene

import (
	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

// NewTrianglesScene creates a square pyramid and a tilted mirror panel on a
// floor quad, lit by a bright sky and a small emissive sphere.
func NewTrianglesScene() *Scene {
	s := New("triangles", core.NewVec3(0.9, 0.95, 1.0))
	s.Description = "Triangle pyramid and mirror panel on a floor quad"
	s.Width = 400
	s.Height = 225
	s.Camera = CameraConfig{
		Position:    core.NewVec3(0, 2, 6),
		Direction:   core.NewVec3(0, -1, -6).Normalize(),
		Up:          core.NewVec3(0, 1, 0),
		VerticalFOV: 45,
	}

	// Floor, counter-clockwise when seen from above
	s.AddQuad(
		core.NewVec3(-5, 0, 5),
		core.NewVec3(10, 0, 0),
		core.NewVec3(0, 0, -10),
		geometry.NewDiffuse(core.NewVec3(0.6, 0.6, 0.6)),
	)

	// Pyramid
	red := geometry.NewDiffuse(core.NewVec3(0.8, 0.3, 0.2))
	apex := core.NewVec3(-0.8, 1.6, -0.5)
	base := []core.Vec3{
		core.NewVec3(-1.8, 0, 0.5),
		core.NewVec3(0.2, 0, 0.5),
		core.NewVec3(0.2, 0, -1.5),
		core.NewVec3(-1.8, 0, -1.5),
	}
	for i := range base {
		s.AddTriangle(base[i], base[(i+1)%len(base)], apex, red)
	}

	// Mirror panel
	s.AddQuad(
		core.NewVec3(0.8, 0, -1.2),
		core.NewVec3(1.6, 0, 0.6),
		core.NewVec3(0, 1.8, -0.3),
		geometry.NewMirror(core.NewVec3(0.9, 0.9, 0.9), 0.9),
	)

	// Small light
	s.AddSphere(core.NewVec3(2, 3.5, 1), 0.5, geometry.NewEmissive(core.NewVec3(8, 8, 8)))

	return s
}
