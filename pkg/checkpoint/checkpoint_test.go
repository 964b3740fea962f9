package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/renderer"
)

func randomBuffer(seed int64, width, height int) *renderer.SampleBuffer {
	random := rand.New(rand.NewSource(seed))
	buffer := renderer.NewSampleBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for n := random.Intn(4); n > 0; n-- {
				buffer.AddSamples(x, y, core.NewVec3(random.Float64(), random.Float64(), random.Float64()*10), 1)
			}
		}
	}
	return buffer
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range CodecNames() {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName(name)
			if err != nil {
				t.Fatal(err)
			}

			dir := filepath.Join(t.TempDir(), "ckpt")
			original := randomBuffer(1, 13, 7)
			saved, err := Save(dir, original, Meta{Scene: "cornell", FramesDone: 12, NextSeed: 12}, codec)
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if saved.Codec != name || saved.Width != 13 || saved.Height != 7 || saved.CreatedAt == "" {
				t.Errorf("Unexpected stored meta %+v", saved)
			}

			loaded, meta, err := Load(dir)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if meta != saved {
				t.Errorf("Expected meta %+v, got %+v", saved, meta)
			}

			for y := 0; y < 7; y++ {
				for x := 0; x < 13; x++ {
					if loaded.Pixel(x, y) != original.Pixel(x, y) {
						t.Fatalf("Pixel (%d,%d) differs after round trip", x, y)
					}
				}
			}
		})
	}
}

func TestSaveDefaultCodec(t *testing.T) {
	dir := t.TempDir()
	meta, err := Save(dir, renderer.NewSampleBuffer(2, 2), Meta{Scene: "sphere"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Codec != DefaultCodec || meta.SamplesPath != "samples.bin.zst" {
		t.Errorf("Expected default zstd codec, got %+v", meta)
	}
	if _, err := os.Stat(filepath.Join(dir, meta.SamplesPath)); err != nil {
		t.Errorf("Expected samples file: %v", err)
	}
}

func TestCodecByNameUnknown(t *testing.T) {
	if _, err := CodecByName("lz4"); !errors.Is(err, ErrUnknownCodec) {
		t.Errorf("Expected ErrUnknownCodec, got %v", err)
	}
	codec, err := CodecByName("")
	if err != nil || codec.Name() != DefaultCodec {
		t.Errorf("Expected default codec for empty name, got %v, %v", codec, err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		if _, _, err := Load(t.TempDir()); err == nil {
			t.Error("Expected error for a missing checkpoint")
		}
	})

	t.Run("corrupt samples", func(t *testing.T) {
		dir := t.TempDir()
		meta, err := Save(dir, randomBuffer(2, 4, 4), Meta{Scene: "sphere"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, meta.SamplesPath), []byte("not zstd"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Load(dir); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("oversized header", func(t *testing.T) {
		dir := t.TempDir()
		meta, err := Save(dir, randomBuffer(3, 4, 4), Meta{Scene: "sphere"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		codec, err := CodecByName(meta.Codec)
		if err != nil {
			t.Fatal(err)
		}

		var payload bytes.Buffer
		stream, err := codec.NewWriter(&payload)
		if err != nil {
			t.Fatal(err)
		}
		h := header{Magic: magic, Version: version, Width: 1 << 31, Height: 1 << 31}
		if err := binary.Write(stream, binary.LittleEndian, h); err != nil {
			t.Fatal(err)
		}
		if err := stream.Close(); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, meta.SamplesPath), payload.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, _, err := Load(dir); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("oversized manifest", func(t *testing.T) {
		dir := t.TempDir()
		meta, err := Save(dir, randomBuffer(4, 4, 4), Meta{Scene: "sphere"}, nil)
		if err != nil {
			t.Fatal(err)
		}
		meta.Width, meta.Height = 1<<31, 1<<31
		data, err := json.Marshal(meta)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); err != nil {
			t.Fatal(err)
		}

		if _, _, err := Load(dir); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("bad manifest", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"version": 99}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Load(dir); !errors.Is(err, ErrCorrupt) {
			t.Errorf("Expected ErrCorrupt, got %v", err)
		}
	})
}

func TestMetaMatches(t *testing.T) {
	meta := Meta{Scene: "cornell", Width: 64, Height: 48, MaxDepth: 5}
	tests := []struct {
		name    string
		want    Meta
		matches bool
	}{
		{"same render", Meta{Scene: "cornell", Width: 64, Height: 48, MaxDepth: 5}, true},
		{"different height", Meta{Scene: "cornell", Width: 64, Height: 40, MaxDepth: 5}, false},
		{"different scene", Meta{Scene: "mirror", Width: 64, Height: 48, MaxDepth: 5}, false},
		{"preview", Meta{Scene: "cornell", Width: 64, Height: 48, MaxDepth: 5, Preview: true}, false},
		{"different depth", Meta{Scene: "cornell", Width: 64, Height: 48, MaxDepth: 8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := meta.Matches(tt.want)
			if tt.matches && err != nil {
				t.Errorf("Expected match, got %v", err)
			}
			if !tt.matches && !errors.Is(err, ErrIncompatible) {
				t.Errorf("Expected ErrIncompatible, got %v", err)
			}
		})
	}
}
