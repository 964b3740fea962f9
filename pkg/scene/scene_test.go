package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

func TestBuiltinScenesValidate(t *testing.T) {
	for _, info := range List() {
		t.Run(info.Name, func(t *testing.T) {
			s, err := Lookup(info.Name)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", info.Name, err)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Scene %q failed validation: %v", info.Name, err)
			}
			if s.PrimitiveCount() == 0 {
				t.Errorf("Scene %q has no primitives", info.Name)
			}
			if s.Name != info.Name {
				t.Errorf("Expected scene name %q, got %q", info.Name, s.Name)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	s, err := Lookup("nonexistent")
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
	if s != nil {
		t.Errorf("Expected nil scene, got %v", s)
	}
}

func TestListSorted(t *testing.T) {
	scenes := List()
	for i := 1; i < len(scenes); i++ {
		if scenes[i-1].Name >= scenes[i].Name {
			t.Errorf("Scenes not sorted: %q before %q", scenes[i-1].Name, scenes[i].Name)
		}
	}
}

func TestSceneIntersect(t *testing.T) {
	s := NewSphereScene()
	ray := core.NewRay(s.Camera.Position, s.Camera.Direction)

	record, isHit := s.Intersect(ray)
	if !isHit {
		t.Fatal("Expected the camera's central ray to hit the sphere")
	}
	if record.Hit.Distance < 2.999 || record.Hit.Distance > 3.001 {
		t.Errorf("Expected distance 3, got %f", record.Hit.Distance)
	}

	miss := core.NewRay(s.Camera.Position, core.NewVec3(0, 0, 1))
	if _, isHit := s.Intersect(miss); isHit {
		t.Error("Expected a ray pointing away to miss")
	}
}

func TestAddQuad(t *testing.T) {
	s := New("quad", core.Vec3{})
	s.AddQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), geometry.NewDiffuse(core.NewVec3(1, 1, 1)))
	if s.PrimitiveCount() != 2 {
		t.Fatalf("Expected 2 triangles, got %d", s.PrimitiveCount())
	}

	// Both halves of the quad are hit
	for _, p := range []core.Vec3{core.NewVec3(0.8, 0.2, 1), core.NewVec3(0.2, 0.8, 1)} {
		if _, isHit := s.Intersect(core.NewRay(p, core.NewVec3(0, 0, -1))); !isHit {
			t.Errorf("Expected ray at %v to hit the quad", p)
		}
	}
}

func TestValidateRejectsBadScenes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
	}{
		{"zero width", func(s *Scene) { s.Width = 0 }},
		{"zero direction", func(s *Scene) { s.Camera.Direction = core.Vec3{} }},
		{"up parallel to direction", func(s *Scene) { s.Camera.Up = s.Camera.Direction }},
		{"bad fov", func(s *Scene) { s.Camera.VerticalFOV = 180 }},
		{"bad material", func(s *Scene) { s.Primitives[0].Material.Reflectivity = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSphereScene()
			tt.mutate(s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Expected ErrInvalidScene, got %v", err)
			}
		})
	}
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	content := `{"name": "Boxed", "description": "A test scene"}`
	if err := os.WriteFile(filepath.Join(dir, "boxed.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	scenes, err := ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(scenes) != 1 {
		t.Fatalf("Expected 1 scene file, got %d", len(scenes))
	}
	if scenes[0].Name != "Boxed" || scenes[0].Description != "A test scene" || scenes[0].Type != "file" {
		t.Errorf("Unexpected metadata %+v", scenes[0])
	}

	missing, err := ListSceneFiles(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Errorf("Expected empty list for a missing directory, got %v, %v", missing, err)
	}
}
