package scene

import (
	"math"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a grid of colored spheres whose reflectivity
// increases along one axis, on a grey ground sphere under a sky light.
func NewSphereGridScene() *Scene {
	s := New("spheregrid", core.NewVec3(0.5, 0.7, 1.0))
	s.Description = "8x8 grid of spheres sweeping hue and reflectivity"
	s.Width = 480
	s.Height = 270
	s.Camera = CameraConfig{
		Position:    core.NewVec3(4.5, 6, 18),
		Direction:   core.NewVec3(0, -5.2, -13.5).Normalize(),
		Up:          core.NewVec3(0, 1, 0),
		VerticalFOV: 40,
	}

	// Ground
	s.AddSphere(core.NewVec3(4.5, -1000, 4.5), 1000, geometry.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)))

	// Warm light high to the side
	s.AddSphere(core.NewVec3(20, 25, 20), 8, geometry.NewEmissive(core.NewVec3(12.0, 11.5, 10.0)))

	const (
		gridSize   = 8
		targetArea = 9.0
	)
	spacing := targetArea / float64(gridSize-1)
	radius := spacing * 0.35

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, 0.15, hue)

			reflectivity := float64(j) / float64(gridSize-1)
			s.AddSphere(core.NewVec3(x, radius, z), radius, geometry.NewMirror(color, reflectivity))
		}
	}

	return s
}
