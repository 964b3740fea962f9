package core

import (
	"iter"
	"math"
	"math/rand"
)

// Stratified2D lazily yields one jittered (u, v) sample per cell of a
// numU x numV grid over [0,1)². Random numbers are drawn only when a sample
// is requested, so callers that consume the same generator between samples
// see a deterministic interleaving. The sequence cannot be restarted.
type Stratified2D struct {
	random     *rand.Rand
	numU, numV int
	next       int
}

// NewStratified2D creates a sampler over numU x numV cells.
// Non-positive counts yield an empty sequence.
func NewStratified2D(random *rand.Rand, numU, numV int) *Stratified2D {
	return &Stratified2D{
		random: random,
		numU:   max(0, numU),
		numV:   max(0, numV),
	}
}

// Len returns the total number of samples the sequence produces
func (s *Stratified2D) Len() int {
	return s.numU * s.numV
}

// Remaining returns how many samples are left
func (s *Stratified2D) Remaining() int {
	return s.Len() - s.next
}

// Next returns the sample for the next cell, or ok=false once every cell has
// been visited. Cells are visited with i (the u stratum) as the outer index.
func (s *Stratified2D) Next() (u, v float64, ok bool) {
	if s.next >= s.Len() {
		return 0, 0, false
	}
	i := s.next / s.numV
	j := s.next % s.numV
	s.next++

	u = (float64(i) + s.random.Float64()) / float64(s.numU)
	v = (float64(j) + s.random.Float64()) / float64(s.numV)
	return stratumClamp(u), stratumClamp(v), true
}

// All returns an iterator over the remaining samples
func (s *Stratified2D) All() iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for {
			u, v, ok := s.Next()
			if !ok || !yield(u, v) {
				return
			}
		}
	}
}

// stratumClamp keeps rounding in (i+ξ)/n from producing exactly 1
func stratumClamp(x float64) float64 {
	if x >= 1 {
		return math.Nextafter(1, 0)
	}
	return x
}

// HemisphereDirection maps a sample (u, v) in [0,1)² onto the unit hemisphere
// around +Z: θ = 2πu, r = √v, z = √(1-v). The density is proportional to cos θ.
func HemisphereDirection(u, v float64) Vec3 {
	theta := 2 * math.Pi * u
	r := math.Sqrt(v)
	return NewVec3(math.Cos(theta)*r, math.Sin(theta)*r, math.Sqrt(1-v))
}

// SamplePointInUnitDisk generates a random point in a unit disk using concentric mapping
// This avoids rejection sampling by mapping a square uniformly to a disk
func SamplePointInUnitDisk(u, v float64) Vec3 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	ox, oy := 2*u-1, 2*v-1
	if ox == 0 && oy == 0 {
		return NewVec3(0, 0, 0)
	}

	var theta, r float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = math.Pi / 4 * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - math.Pi/4*(ox/oy)
	}

	return NewVec3(r*math.Cos(theta), r*math.Sin(theta), 0)
}
