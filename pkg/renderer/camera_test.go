package renderer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/scene"
)

func testCameraConfig() scene.CameraConfig {
	return scene.CameraConfig{
		Position:    core.NewVec3(0, 0, 0),
		Direction:   core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VerticalFOV: 60,
	}
}

func TestCameraOrientation(t *testing.T) {
	camera := NewCamera(testCameraConfig(), 2.0)
	random := rand.New(rand.NewSource(1))

	tests := []struct {
		name       string
		ndcX, ndcY float64
		check      func(d core.Vec3) bool
	}{
		{"center looks forward", 0, 0, func(d core.Vec3) bool { return d == core.NewVec3(0, 0, -1) }},
		{"left edge", -1, 0, func(d core.Vec3) bool { return d.X < 0 && d.Y == 0 }},
		{"right edge", 1, 0, func(d core.Vec3) bool { return d.X > 0 && d.Y == 0 }},
		{"top row", 0, -1, func(d core.Vec3) bool { return d.Y > 0 && d.X == 0 }},
		{"bottom row", 0, 1, func(d core.Vec3) bool { return d.Y < 0 && d.X == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.Ray(tt.ndcX, tt.ndcY, random)
			if ray.Origin != core.NewVec3(0, 0, 0) {
				t.Errorf("Expected pinhole origin, got %v", ray.Origin)
			}
			if !tt.check(ray.Direction) {
				t.Errorf("Unexpected direction %v", ray.Direction)
			}
		})
	}
}

func TestCameraFieldOfView(t *testing.T) {
	config := testCameraConfig()
	camera := NewCamera(config, 1.5)

	top := camera.Ray(0, -1, nil)
	angle := math.Acos(top.Direction.Dot(core.NewVec3(0, 0, -1))) * 180 / math.Pi
	if math.Abs(angle-config.VerticalFOV/2) > 1e-9 {
		t.Errorf("Expected top edge at %g degrees, got %g", config.VerticalFOV/2, angle)
	}

	side := camera.Ray(1, 0, nil)
	expected := math.Atan(math.Tan(config.VerticalFOV*math.Pi/360)*1.5) * 180 / math.Pi
	angle = math.Acos(side.Direction.Dot(core.NewVec3(0, 0, -1))) * 180 / math.Pi
	if math.Abs(angle-expected) > 1e-9 {
		t.Errorf("Expected side edge at %g degrees, got %g", expected, angle)
	}
}

func TestCameraPinholeDrawsNothing(t *testing.T) {
	camera := NewCamera(testCameraConfig(), 1)
	a := rand.New(rand.NewSource(3))
	b := rand.New(rand.NewSource(3))

	camera.Ray(0.3, -0.2, a)
	if a.Float64() != b.Float64() {
		t.Error("Expected a pinhole camera to leave the generator untouched")
	}
}

func TestCameraThinLensFocus(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 5
	lens := NewCamera(config, 1)

	config.Aperture = 0
	pinhole := NewCamera(config, 1)

	random := rand.New(rand.NewSource(9))
	for i := 0; i < 20; i++ {
		ndcX, ndcY := random.Float64()*2-1, random.Float64()*2-1

		// Every lens ray passes through the pinhole ray's point on the focus plane
		focusPoint := pinhole.Ray(ndcX, ndcY, nil).Direction
		focusPoint = focusPoint.Multiply(5 / -focusPoint.Z)

		ray := lens.Ray(ndcX, ndcY, random)
		t1 := (focusPoint.Z - ray.Origin.Z) / ray.Direction.Z
		if p := ray.At(t1); p.Subtract(focusPoint).Length() > 1e-9 {
			t.Errorf("Lens ray misses the focus point %v, reaches %v", focusPoint, p)
		}
	}
}

func TestCameraCenterRay(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 5
	lens := NewCamera(config, 1)

	config.Aperture = 0
	pinhole := NewCamera(config, 1)

	center := lens.CenterRay(0.4, -0.6)
	expected := pinhole.Ray(0.4, -0.6, nil)
	if center.Origin != expected.Origin || center.Direction.Subtract(expected.Direction).Length() > 1e-12 {
		t.Errorf("Expected center ray %+v, got %+v", expected, center)
	}
}

func TestCornellCameraFraming(t *testing.T) {
	sc := scene.NewCornellScene()
	camera := NewCamera(sc.Camera, float64(sc.Width)/float64(sc.Height))

	center := camera.CenterRay(0, 0).Direction.Normalize()
	top := camera.CenterRay(0, -1).Direction.Normalize()
	half := math.Acos(center.Dot(top))

	expected := math.Atan(0.5 * math.Tan(25*math.Pi/180))
	if math.Abs(half-expected) > 1e-9 {
		t.Errorf("Expected vertical half-angle %g degrees, got %g", expected*180/math.Pi, half*180/math.Pi)
	}
	if math.Abs(sc.Camera.VerticalFOV-26.25) > 0.01 {
		t.Errorf("Expected a vertical field of view near 26.25 degrees, got %g", sc.Camera.VerticalFOV)
	}

	// The top row looks towards +y
	if top.Y <= center.Y {
		t.Errorf("Expected the top edge ray above the center ray, got %v and %v", top, center)
	}
}
