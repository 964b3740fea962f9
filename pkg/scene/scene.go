package scene

import (
	"errors"
	"fmt"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

var (
	ErrUnknownScene = errors.New("scene: unknown scene")
	ErrInvalidScene = errors.New("scene: invalid scene")
)

// Scene contains everything needed to render: the primitives, the
// environment color returned for rays that escape, and the camera setup.
// A scene is never modified while a render is running, so it can be shared
// by all render goroutines without locking.
type Scene struct {
	Name        string
	Description string
	Primitives  []geometry.Primitive
	Environment core.Vec3
	Camera      CameraConfig
	Width       int // Default image width
	Height      int // Default image height
}

// CameraConfig describes a pinhole or thin-lens camera.
// Up is the world up direction; image rows grow away from it.
type CameraConfig struct {
	Position      core.Vec3
	Direction     core.Vec3
	Up            core.Vec3
	VerticalFOV   float64 // Degrees
	Aperture      float64 // Lens diameter, 0 for a pinhole camera
	FocusDistance float64 // 0 means focus at unit distance along Direction
}

// DefaultCameraConfig looks down -Z from the origin
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:    core.NewVec3(0, 0, 0),
		Direction:   core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VerticalFOV: 50,
	}
}

// New creates an empty scene with the given environment color
func New(name string, environment core.Vec3) *Scene {
	return &Scene{
		Name:        name,
		Primitives:  make([]geometry.Primitive, 0),
		Environment: environment,
		Camera:      DefaultCameraConfig(),
		Width:       400,
		Height:      300,
	}
}

// AddSphere adds a sphere primitive
func (s *Scene) AddSphere(center core.Vec3, radius float64, material geometry.Material) {
	s.Primitives = append(s.Primitives, geometry.NewSpherePrimitive(geometry.NewSphere(center, radius), material))
}

// AddTriangle adds a triangle primitive
func (s *Scene) AddTriangle(v0, v1, v2 core.Vec3, material geometry.Material) {
	s.Primitives = append(s.Primitives, geometry.NewTrianglePrimitive(geometry.NewTriangle(v0, v1, v2), material))
}

// AddQuad adds the parallelogram corner, corner+u, corner+u+v, corner+v as two triangles
func (s *Scene) AddQuad(corner, u, v core.Vec3, material geometry.Material) {
	c1 := corner.Add(u)
	c2 := corner.Add(u).Add(v)
	c3 := corner.Add(v)
	s.AddTriangle(corner, c1, c2, material)
	s.AddTriangle(corner, c2, c3, material)
}

// Intersect returns the nearest primitive hit by the ray
func (s *Scene) Intersect(ray core.Ray) (geometry.IntersectionRecord, bool) {
	return geometry.Nearest(s.Primitives, ray)
}

// EnvironmentColor returns the color seen by rays that hit nothing
func (s *Scene) EnvironmentColor() core.Vec3 {
	return s.Environment
}

// PrimitiveCount returns the number of primitives in the scene
func (s *Scene) PrimitiveCount() int {
	return len(s.Primitives)
}

// Bounds returns the box enclosing all primitives
func (s *Scene) Bounds() core.AABB {
	return geometry.Bounds(s.Primitives)
}

// Validate checks the scene before rendering
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidScene, s.Width, s.Height)
	}
	if s.Camera.Direction.IsZero() || s.Camera.Up.IsZero() {
		return fmt.Errorf("%w: camera direction and up must be non-zero", ErrInvalidScene)
	}
	if s.Camera.Direction.Normalize().Cross(s.Camera.Up.Normalize()).IsZero() {
		return fmt.Errorf("%w: camera up is parallel to its direction", ErrInvalidScene)
	}
	if s.Camera.VerticalFOV <= 0 || s.Camera.VerticalFOV >= 180 {
		return fmt.Errorf("%w: vertical fov %g", ErrInvalidScene, s.Camera.VerticalFOV)
	}
	for i := range s.Primitives {
		if err := s.Primitives[i].Validate(); err != nil {
			return fmt.Errorf("%w: primitive %d: %w", ErrInvalidScene, i, err)
		}
	}
	return nil
}
