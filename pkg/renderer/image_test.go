package renderer

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/fp-pathtracer/pkg/core"
)

func TestWritePPM(t *testing.T) {
	buffer := NewSampleBuffer(2, 2)
	buffer.AddSamples(0, 0, core.NewVec3(1, 0, 0.5), 1)
	buffer.AddSamples(1, 0, core.NewVec3(4, 4, 4), 2)
	buffer.AddSamples(0, 1, core.NewVec3(-1, 0, 0), 1)

	var buf bytes.Buffer
	if err := WritePPM(&buf, buffer); err != nil {
		t.Fatal(err)
	}

	expected := "P3\n2 2\n255\n255 0 186 255 255 255 0 0 0 0 0 0 "
	if buf.String() != expected {
		t.Errorf("Unexpected PPM:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}

func TestWritePNG(t *testing.T) {
	buffer := NewSampleBuffer(3, 2)
	buffer.AddSamples(2, 1, core.NewVec3(1, 1, 1), 1)

	var buf bytes.Buffer
	if err := WritePNG(&buf, buffer.Image(DefaultGamma)); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
	if r, _, _, _ := img.At(2, 1).RGBA(); r != 0xffff {
		t.Errorf("Expected white pixel, got red=%d", r)
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	buffer := NewSampleBuffer(2, 2)

	for _, name := range []string{"out.png", "out.PPM"} {
		path := filepath.Join(dir, name)
		if err := SaveImage(path, buffer); err != nil {
			t.Fatalf("SaveImage(%s) failed: %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			t.Errorf("Expected %s to be written, err=%v", name, err)
		}
		if strings.HasSuffix(name, "PPM") && !bytes.HasPrefix(data, []byte("P3\n")) {
			t.Errorf("Expected a P3 header in %s", name)
		}
	}

	if err := SaveImage(filepath.Join(dir, "out.jpg"), buffer); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}
