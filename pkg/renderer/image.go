package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WritePNG encodes img as PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePPM writes the averaged buffer as a plain-text P3 image with gamma 2.2
func WritePPM(w io.Writer, buffer *SampleBuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n%d\n", buffer.Width(), buffer.Height(), 255)
	for y := 0; y < buffer.Height(); y++ {
		for x := 0; x < buffer.Width(); x++ {
			c := buffer.Average(x, y)
			fmt.Fprintf(bw, "%d %d %d ",
				componentToByte(c.X, DefaultGamma),
				componentToByte(c.Y, DefaultGamma),
				componentToByte(c.Z, DefaultGamma))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ppm: %w", err)
	}
	return nil
}

// SaveImage writes the buffer to path, choosing PNG or PPM by extension
func SaveImage(path string, buffer *SampleBuffer) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".ppm" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer f.Close()

	if ext == ".png" {
		err = WritePNG(f, buffer.Image(DefaultGamma))
	} else {
		err = WritePPM(f, buffer)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
