package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/fp-pathtracer/pkg/core"
)

// DefaultGamma is the display gamma applied when converting to 8-bit color
const DefaultGamma = 2.2

// SampleBuffer accumulates color samples per pixel. Frames are rendered into
// their own buffers and merged into the output by a single goroutine, so
// SampleBuffer does no locking.
type SampleBuffer struct {
	width, height int
	pixels        []PixelStats // Row-major
}

// NewSampleBuffer creates an empty buffer
func NewSampleBuffer(width, height int) *SampleBuffer {
	width, height = max(0, width), max(0, height)
	return &SampleBuffer{
		width:  width,
		height: height,
		pixels: make([]PixelStats, width*height),
	}
}

// Width returns the buffer width in pixels
func (b *SampleBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels
func (b *SampleBuffer) Height() int { return b.height }

// AddSamples adds color, the sum of count samples, to pixel (x, y)
func (b *SampleBuffer) AddSamples(x, y int, color core.Vec3, count int) {
	b.pixels[y*b.width+x].AddSamples(color, count)
}

// Merge adds every pixel of other into b
func (b *SampleBuffer) Merge(other *SampleBuffer) error {
	if other.width != b.width || other.height != b.height {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrSizeMismatch, other.width, other.height, b.width, b.height)
	}
	for i := range b.pixels {
		b.pixels[i].Merge(other.pixels[i])
	}
	return nil
}

// Average returns the mean color of pixel (x, y)
func (b *SampleBuffer) Average(x, y int) core.Vec3 {
	return b.pixels[y*b.width+x].GetColor()
}

// SampleCount returns how many samples pixel (x, y) has received
func (b *SampleBuffer) SampleCount(x, y int) int {
	return b.pixels[y*b.width+x].SampleCount
}

// Pixel returns the statistics of pixel (x, y)
func (b *SampleBuffer) Pixel(x, y int) PixelStats {
	return b.pixels[y*b.width+x]
}

// Pixels exposes the row-major pixel statistics for serialization
func (b *SampleBuffer) Pixels() []PixelStats {
	return b.pixels
}

// Clone returns an independent copy of the buffer
func (b *SampleBuffer) Clone() *SampleBuffer {
	clone := NewSampleBuffer(b.width, b.height)
	copy(clone.pixels, b.pixels)
	return clone
}

// TotalSamples returns the number of samples over all pixels
func (b *SampleBuffer) TotalSamples() int {
	total := 0
	for i := range b.pixels {
		total += b.pixels[i].SampleCount
	}
	return total
}

// Image converts the averaged colors to an 8-bit image
func (b *SampleBuffer) Image(gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetRGBA(x, y, vec3ToColor(b.Average(x, y), gamma))
		}
	}
	return img
}

func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	return color.RGBA{
		R: componentToByte(colorVec.X, gamma),
		G: componentToByte(colorVec.Y, gamma),
		B: componentToByte(colorVec.Z, gamma),
		A: 255,
	}
}

// componentToByte clamps to [0,1], applies gamma and rounds to the nearest level
func componentToByte(x, gamma float64) uint8 {
	x = max(0, min(1, x))
	if math.IsNaN(x) {
		x = 0
	}
	return uint8(math.Round(math.Pow(x, 1/gamma) * 255))
}
