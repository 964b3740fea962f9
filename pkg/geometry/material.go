package geometry

import (
	"fmt"

	"github.com/df07/fp-pathtracer/pkg/core"
)

// Material describes how a surface scatters and emits light.
// Reflectivity is the probability that a bounce follows the mirror direction
// instead of a diffuse hemisphere direction.
type Material struct {
	Diffuse      core.Vec3
	Emission     core.Vec3
	Reflectivity float64
}

// NewDiffuse creates a purely diffuse material
func NewDiffuse(color core.Vec3) Material {
	return Material{Diffuse: color}
}

// NewEmissive creates a light source that reflects nothing
func NewEmissive(emission core.Vec3) Material {
	return Material{Emission: emission}
}

// NewMirror creates a material that reflects specularly with the given probability
func NewMirror(color core.Vec3, reflectivity float64) Material {
	return Material{Diffuse: color, Reflectivity: reflectivity}
}

// Validate checks the material invariants
func (m Material) Validate() error {
	if m.Reflectivity < 0 || m.Reflectivity > 1 {
		return fmt.Errorf("%w: reflectivity %g outside [0,1]", ErrInvalidMaterial, m.Reflectivity)
	}
	return nil
}
