package renderer

import (
	"math"
	"testing"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
	"github.com/df07/fp-pathtracer/pkg/integrator"
	"github.com/df07/fp-pathtracer/pkg/scene"
)

const (
	testWidth  = 32
	testHeight = 24
)

func newTestCamera(s *scene.Scene) *Camera {
	return NewCamera(s.Camera, float64(testWidth)/float64(testHeight))
}

func TestToNDC(t *testing.T) {
	tests := []struct {
		coord     int
		offset    float64
		dimension int
		expected  float64
	}{
		{0, 0, 11, -0.9},
		{5, 0, 11, 0.1},
		{9, 0.5, 11, 1},
		{0, 0.5, 1, 1},
	}

	for _, tt := range tests {
		if got := toNDC(tt.coord, tt.offset, tt.dimension); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("toNDC(%d, %g, %d) = %g, expected %g", tt.coord, tt.offset, tt.dimension, got, tt.expected)
		}
	}
}

func TestPixelNDC(t *testing.T) {
	ndcX, ndcY := PixelNDC(0, 10, 11, 21)
	if math.Abs(ndcX-(-0.8)) > 1e-12 || math.Abs(ndcY-0.1) > 1e-12 {
		t.Errorf("Expected (-0.8, 0.1), got (%g, %g)", ndcX, ndcY)
	}
}

func TestRenderFrameDeterministic(t *testing.T) {
	s := scene.NewSphereScene()
	s.Environment = core.NewVec3(0.2, 0.5, 0.9)
	s.Primitives[0].Material.Diffuse = core.NewVec3(0.5, 0.5, 0.5)
	camera := newTestCamera(s)

	a := RenderFrame(camera, s, 7, testWidth, testHeight, false)
	b := RenderFrame(camera, s, 7, testWidth, testHeight, false)
	c := RenderFrame(camera, s, 8, testWidth, testHeight, false)

	same, different := true, false
	for y := 0; y < testHeight; y++ {
		for x := 0; x < testWidth; x++ {
			if a.Average(x, y) != b.Average(x, y) {
				same = false
			}
			if a.Average(x, y) != c.Average(x, y) {
				different = true
			}
			if a.SampleCount(x, y) != 1 {
				t.Fatalf("Expected one sample per pixel, got %d", a.SampleCount(x, y))
			}
		}
	}
	if !same {
		t.Error("Expected identical frames for the same seed")
	}
	if !different {
		t.Error("Expected different frames for different seeds")
	}
}

func TestRenderFrameWhiteSphere(t *testing.T) {
	// A white diffuse sphere under a white environment, cut off after two
	// bounces. Every secondary ray from a convex sphere escapes, so sphere
	// pixels converge on the environment too.
	s := scene.NewSphereScene()
	camera := newTestCamera(s)
	estimator := integrator.NewEstimator(integrator.Config{MaxDepth: 2})
	frame := renderFrame(camera, s, estimator, 1, testWidth, testHeight, false)

	corners := [][2]int{{0, 0}, {testWidth - 1, 0}, {0, testHeight - 1}, {testWidth - 1, testHeight - 1}}
	for _, p := range corners {
		if got := frame.Average(p[0], p[1]); got != core.NewVec3(1, 1, 1) {
			t.Errorf("Background pixel %v: expected exactly (1,1,1), got %v", p, got)
		}
	}

	center := frame.Average(testWidth/2, testHeight/2)
	if math.Abs(center.X-1) > 1e-9 {
		t.Errorf("Expected center pixel near 1, got %v", center)
	}

	// Pixels on the sphere never exceed the environment
	for y := 0; y < testHeight; y++ {
		for x := 0; x < testWidth; x++ {
			if c := frame.Average(x, y); c.X > 1+1e-9 || c.Y > 1+1e-9 || c.Z > 1+1e-9 {
				t.Errorf("Pixel (%d,%d) brighter than the environment: %v", x, y, c)
			}
		}
	}

	counters := estimator.Counters()
	if counters.PrimaryRays != testWidth*testHeight {
		t.Errorf("Expected %d primary rays, got %d", testWidth*testHeight, counters.PrimaryRays)
	}
	if counters.Hits == 0 || counters.Misses == 0 {
		t.Errorf("Expected both hits and misses, got %+v", counters)
	}
}

func TestRenderFrameBlackScene(t *testing.T) {
	// Black surfaces absorb everything: rays that hit are exactly zero and
	// rays that miss are exactly the environment.
	environment := core.NewVec3(0.25, 0.5, 0.75)
	s := scene.NewSphereScene()
	s.Environment = environment
	s.Primitives[0].Material = geometry.NewDiffuse(core.Vec3{})
	camera := newTestCamera(s)

	frame := RenderFrame(camera, s, 3, testWidth, testHeight, false)
	hits, misses := 0, 0
	for y := 0; y < testHeight; y++ {
		for x := 0; x < testWidth; x++ {
			switch c := frame.Average(x, y); c {
			case environment:
				misses++
			case core.Vec3{}:
				hits++
			default:
				t.Fatalf("Pixel (%d,%d) = %v, expected zero or the environment", x, y, c)
			}
		}
	}
	if hits == 0 || misses == 0 {
		t.Errorf("Expected both sphere and background pixels, got %d hits and %d misses", hits, misses)
	}
}

func TestRenderFramePreview(t *testing.T) {
	s := scene.NewSphereScene()
	diffuse := core.NewVec3(0.1, 0.6, 0.3)
	s.Primitives[0].Material = geometry.Material{Diffuse: diffuse, Emission: core.NewVec3(9, 9, 9)}
	camera := newTestCamera(s)

	frame := RenderFrame(camera, s, 1, testWidth, testHeight, true)
	if got := frame.Average(testWidth/2, testHeight/2); got != diffuse {
		t.Errorf("Expected preview center %v, got %v", diffuse, got)
	}
	if got := frame.Average(0, 0); got != s.Environment {
		t.Errorf("Expected preview background %v, got %v", s.Environment, got)
	}
}
