package integrator

import (
	"math/rand"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

// Estimator computes radiance along rays by recursive Monte Carlo sampling.
// An Estimator keeps unsynchronized counters and must be owned by a single
// goroutine; create one per frame.
type Estimator struct {
	config   Config
	counters Counters
}

// NewEstimator creates an estimator. A non-positive MaxDepth falls back to the default.
func NewEstimator(config Config) *Estimator {
	if config.MaxDepth < 1 {
		config.MaxDepth = MaxDepth
	}
	return &Estimator{config: config}
}

// Counters returns the work tallied so far
func (e *Estimator) Counters() Counters {
	return e.counters
}

// Radiance estimates the light arriving along ray.
//
// Paths at or beyond the depth limit contribute nothing. A ray that hits
// nothing returns the environment color. In preview mode the diffuse color
// of the first hit is returned without integrating. Otherwise numU x numV
// stratified samples each trace one secondary ray, and the result is the
// surface emission plus the diffuse color times the sample average.
func (e *Estimator) Radiance(scene Scene, random *rand.Rand, ray core.Ray, depth, numU, numV int, preview bool) core.Vec3 {
	if depth >= e.config.MaxDepth {
		e.counters.DepthCutoffs++
		return core.Vec3{}
	}

	e.counters.Rays++
	if depth == 0 {
		e.counters.PrimaryRays++
	}

	record, isHit := scene.Intersect(ray)
	if !isHit {
		e.counters.Misses++
		return scene.EnvironmentColor()
	}
	e.counters.Hits++

	material := record.Material
	if preview {
		return material.Diffuse
	}

	sampler := core.NewStratified2D(random, numU, numV)
	if sampler.Len() == 0 {
		return material.Emission
	}

	basis := core.FromZ(record.Hit.Normal)
	var sum core.Vec3
	for u, v := range sampler.All() {
		sum = sum.Add(e.singleRay(scene, random, ray, record.Hit, material, basis, u, v, depth))
	}

	average := sum.Multiply(1 / float64(sampler.Len()))
	return material.Emission.Add(material.Diffuse.MultiplyVec(average))
}

// singleRay traces one secondary ray for the stratified sample (u, v).
// The hemisphere direction is built before p is drawn, so each bounce
// consumes its random values in the order sample, sample, p.
func (e *Estimator) singleRay(scene Scene, random *rand.Rand, incoming core.Ray, hit geometry.Hit, material geometry.Material, basis core.OrthoNormalBasis, u, v float64, depth int) core.Vec3 {
	direction := basis.Transform(core.HemisphereDirection(u, v)).Normalize()

	p := random.Float64()
	if p < material.Reflectivity {
		direction = core.Reflect(incoming.Direction, hit.Normal)
	}

	next := core.NewRay(hit.Position, direction)
	return e.Radiance(scene, random, next, depth+1, 1, 1, false)
}
