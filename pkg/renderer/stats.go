package renderer

import (
	"time"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/integrator"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Frames     int             // Frames merged into the output
	Width      int             // Image width
	Height     int             // Image height
	Elapsed    time.Duration   // Wall-clock time of the render
	FrameTimes []time.Duration // Time spent rendering each frame, in merge order
	Counters   integrator.Counters
}

// MeanFrameTime returns the average time spent rendering one frame
func (s RenderStats) MeanFrameTime() time.Duration {
	if len(s.FrameTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.FrameTimes {
		total += d
	}
	return total / time.Duration(len(s.FrameTimes))
}

// RaysPerSecond returns the ray throughput over the whole render
func (s RenderStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Counters.Rays) / s.Elapsed.Seconds()
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	LuminanceAccum   float64   // Luminance accumulator for convergence
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// AddSamples adds the sum of count samples. The squared luminance term
// assumes the samples were equal, which is exact for count 1.
func (ps *PixelStats) AddSamples(sum core.Vec3, count int) {
	if count <= 0 {
		return
	}
	if count == 1 {
		ps.AddSample(sum)
		return
	}
	ps.ColorAccum = ps.ColorAccum.Add(sum)
	luminance := sum.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance / float64(count)
	ps.SampleCount += count
}

// Merge adds another pixel's statistics into this one
func (ps *PixelStats) Merge(other PixelStats) {
	ps.ColorAccum = ps.ColorAccum.Add(other.ColorAccum)
	ps.LuminanceAccum += other.LuminanceAccum
	ps.LuminanceSqAccum += other.LuminanceSqAccum
	ps.SampleCount += other.SampleCount
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// Variance returns the sample variance of the pixel's luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	variance := (ps.LuminanceSqAccum/n - mean*mean) * n / (n - 1)
	return max(0, variance)
}
