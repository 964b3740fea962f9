package renderer

import (
	"math/rand"

	"github.com/df07/fp-pathtracer/pkg/integrator"
)

// RenderFrame renders one noisy sample per pixel with the default estimator.
// The frame is fully determined by seed.
func RenderFrame(camera *Camera, scene integrator.Scene, seed int64, width, height int, preview bool) *SampleBuffer {
	return renderFrame(camera, scene, integrator.NewEstimator(integrator.DefaultConfig()), seed, width, height, preview)
}

// renderFrame sweeps the image row by row. Each pixel draws its sub-pixel
// jitter (u, v) from the frame's generator, then the camera and estimator
// continue drawing from the same generator.
func renderFrame(camera *Camera, scene integrator.Scene, estimator *integrator.Estimator, seed int64, width, height int, preview bool) *SampleBuffer {
	buffer := NewSampleBuffer(width, height)
	random := rand.New(rand.NewSource(seed))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := random.Float64()
			v := random.Float64()
			ndcY := toNDC(y, u, height)
			ndcX := toNDC(x, v, width)

			ray := camera.Ray(ndcX, ndcY, random)
			color := estimator.Radiance(scene, random, ray, 0,
				integrator.FirstBounceNumUSamples, integrator.FirstBounceNumVSamples, preview)
			buffer.AddSamples(x, y, color, 1)
		}
	}
	return buffer
}

// toNDC maps a jittered pixel coordinate with 2(coord+offset+0.5)/(dimension-1) - 1.
// A one-pixel dimension divides by 1 instead of 0.
func toNDC(coord int, offset float64, dimension int) float64 {
	return 2*(float64(coord)+offset+0.5)/float64(max(dimension-1, 1)) - 1
}

// PixelNDC returns the device coordinates of the middle of pixel (x, y)
func PixelNDC(x, y, width, height int) (ndcX, ndcY float64) {
	return toNDC(x, 0.5, width), toNDC(y, 0.5, height)
}
