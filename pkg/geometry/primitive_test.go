package geometry

import (
	"errors"
	"testing"

	"github.com/df07/fp-pathtracer/pkg/core"
)

func TestNearest_PicksClosestWithoutEarlyExit(t *testing.T) {
	far := NewDiffuse(core.NewVec3(1, 0, 0))
	near := NewDiffuse(core.NewVec3(0, 1, 0))

	// The far sphere comes first so an early exit would return the wrong hit
	primitives := []Primitive{
		NewSpherePrimitive(NewSphere(core.NewVec3(0, 0, -10), 1), far),
		NewTrianglePrimitive(NewTriangle(
			core.NewVec3(-1, -1, -3),
			core.NewVec3(1, -1, -3),
			core.NewVec3(0, 1, -3),
		), near),
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	record, isHit := Nearest(primitives, ray)
	if !isHit {
		t.Fatal("Expected a hit")
	}
	if record.Material != near {
		t.Errorf("Expected the nearer triangle's material, got %+v", record.Material)
	}
	if record.Hit.Distance != 3 {
		t.Errorf("Expected distance 3, got %f", record.Hit.Distance)
	}
}

func TestNearest_NoHit(t *testing.T) {
	primitives := []Primitive{
		NewSpherePrimitive(NewSphere(core.NewVec3(0, 0, -10), 1), NewDiffuse(core.NewVec3(1, 1, 1))),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	if _, isHit := Nearest(primitives, ray); isHit {
		t.Error("Expected no hit")
	}
	if _, isHit := Nearest(nil, ray); isHit {
		t.Error("Expected no hit for an empty scene")
	}
}

func TestPrimitive_Validate(t *testing.T) {
	tests := []struct {
		name      string
		primitive Primitive
		wantErr   error
	}{
		{
			name:      "valid sphere",
			primitive: NewSpherePrimitive(NewSphere(core.Vec3{}, 1), NewMirror(core.NewVec3(1, 1, 1), 0.5)),
		},
		{
			name:      "negative radius",
			primitive: NewSpherePrimitive(NewSphere(core.Vec3{}, -1), NewDiffuse(core.Vec3{})),
			wantErr:   ErrInvalidPrimitive,
		},
		{
			name:      "reflectivity above one",
			primitive: NewSpherePrimitive(NewSphere(core.Vec3{}, 1), NewMirror(core.Vec3{}, 1.5)),
			wantErr:   ErrInvalidMaterial,
		},
		{
			name:      "unknown kind",
			primitive: Primitive{},
			wantErr:   ErrInvalidPrimitive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.primitive.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	primitives := []Primitive{
		NewSpherePrimitive(NewSphere(core.NewVec3(0, 0, 0), 1), Material{}),
		NewSpherePrimitive(NewSphere(core.NewVec3(5, 0, 0), 2), Material{}),
	}
	bounds := Bounds(primitives)
	if bounds.Min != core.NewVec3(-1, -2, -2) || bounds.Max != core.NewVec3(7, 2, 2) {
		t.Errorf("Unexpected bounds %+v", bounds)
	}
}
