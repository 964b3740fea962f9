package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestFromZ_Orthonormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 1, 1).Normalize(),
		NewVec3(-0.3, 0.05, 0.9).Normalize(),
	}

	random := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		normals = append(normals, NewVec3(random.NormFloat64(), random.NormFloat64(), random.NormFloat64()).Normalize())
	}

	const tolerance = 1e-9
	for _, n := range normals {
		basis := FromZ(n)
		axes := []Vec3{basis.U(), basis.V(), basis.W()}
		for i, a := range axes {
			if math.Abs(a.Length()-1) > tolerance {
				t.Errorf("Normal %v: axis %d has length %f", n, i, a.Length())
			}
			for j := i + 1; j < len(axes); j++ {
				if d := a.Dot(axes[j]); math.Abs(d) > tolerance {
					t.Errorf("Normal %v: axes %d and %d not orthogonal (dot=%g)", n, i, j, d)
				}
			}
		}

		if got := basis.Transform(NewVec3(0, 0, 1)); got.Subtract(n).Length() > tolerance {
			t.Errorf("Transform(0,0,1) = %v, expected the normal %v", got, n)
		}
	}
}

func TestFromZ_PanicsOnNonUnitNormal(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected FromZ to panic for a non-unit normal")
		}
	}()
	FromZ(NewVec3(0, 0, 2))
}

func TestTransformPreservesLength(t *testing.T) {
	basis := FromZ(NewVec3(0.2, -0.7, 0.4).Normalize())
	local := NewVec3(0.3, -0.4, 0.5)
	world := basis.Transform(local)
	if math.Abs(world.Length()-local.Length()) > 1e-12 {
		t.Errorf("Expected length %f, got %f", local.Length(), world.Length())
	}
}
