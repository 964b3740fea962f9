package integrator

import (
	"errors"
	"fmt"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
)

const (
	// MaxDepth is the recursion depth at which paths are cut off
	MaxDepth = 5

	// FirstBounceNumUSamples and FirstBounceNumVSamples set the stratified
	// grid used at the first hit from the camera. Later bounces use 1x1.
	FirstBounceNumUSamples = 6
	FirstBounceNumVSamples = 3
)

var ErrInvalidDepth = errors.New("integrator: max depth must be at least 1")

// Scene is the read-only view of a scene the estimator needs
type Scene interface {
	Intersect(ray core.Ray) (geometry.IntersectionRecord, bool)
	EnvironmentColor() core.Vec3
}

// Config controls the estimator
type Config struct {
	MaxDepth int
}

// DefaultConfig returns the standard recursion limit
func DefaultConfig() Config {
	return Config{MaxDepth: MaxDepth}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, c.MaxDepth)
	}
	return nil
}

// Counters tallies the work done by an estimator
type Counters struct {
	Rays         int64 // Rays intersected against the scene
	PrimaryRays  int64 // Rays traced at depth 0
	Hits         int64 // Rays that hit a primitive
	Misses       int64 // Rays that escaped to the environment
	DepthCutoffs int64 // Paths terminated by the depth limit
}

// Add accumulates other into c
func (c *Counters) Add(other Counters) {
	c.Rays += other.Rays
	c.PrimaryRays += other.PrimaryRays
	c.Hits += other.Hits
	c.Misses += other.Misses
	c.DepthCutoffs += other.DepthCutoffs
}
