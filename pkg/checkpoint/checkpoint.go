package checkpoint

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/log"
	"github.com/df07/fp-pathtracer/pkg/renderer"
)

var (
	ErrUnknownCodec = errors.New("checkpoint: unknown codec")
	ErrCorrupt      = errors.New("checkpoint: corrupt checkpoint")
	ErrIncompatible = errors.New("checkpoint: checkpoint does not match render")
)

const (
	manifestName = "manifest.json"
	samplesBase  = "samples.bin"
	version      = 1

	// maxSide bounds the image size a manifest may claim
	maxSide = 1 << 15
)

var magic = [4]byte{'F', 'P', 'C', 'K'}

var logger = log.New("checkpoint")

// Meta describes a checkpoint. It is stored as manifest.json next to the
// compressed sample payload.
type Meta struct {
	Version     int    `json:"version"`
	Scene       string `json:"scene"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FramesDone  int    `json:"frames_done"`
	NextSeed    int64  `json:"next_seed"`
	Preview     bool   `json:"preview"`
	MaxDepth    int    `json:"max_depth"`
	Codec       string `json:"codec"`
	SamplesPath string `json:"samples_path"`
	CreatedAt   string `json:"created_at"`
}

// Matches reports whether a render described by want can resume from m.
// Scene, size, preview mode and depth limit must all agree, since frames
// from different estimators cannot be averaged together.
func (m Meta) Matches(want Meta) error {
	if m.Scene != want.Scene || m.Width != want.Width || m.Height != want.Height {
		return fmt.Errorf("%w: checkpoint is %q %dx%d, render is %q %dx%d",
			ErrIncompatible, m.Scene, m.Width, m.Height, want.Scene, want.Width, want.Height)
	}
	if m.Preview != want.Preview {
		return fmt.Errorf("%w: checkpoint preview=%t, render preview=%t", ErrIncompatible, m.Preview, want.Preview)
	}
	if m.MaxDepth != want.MaxDepth {
		return fmt.Errorf("%w: checkpoint max depth %d, render max depth %d", ErrIncompatible, m.MaxDepth, want.MaxDepth)
	}
	return nil
}

// header precedes the pixel records in the sample payload
type header struct {
	Magic   [4]byte
	Version uint32
	Width   uint32
	Height  uint32
}

// pixelRecord is the on-disk form of renderer.PixelStats
type pixelRecord struct {
	R, G, B     float64
	Luminance   float64
	LuminanceSq float64
	Count       uint64
}

// Save writes buffer and meta into dir, creating it if needed. The sample
// payload is written first and the manifest last, so a checkpoint with a
// manifest is always complete. The stored Meta is returned.
func Save(dir string, buffer *renderer.SampleBuffer, meta Meta, codec Codec) (Meta, error) {
	if codec == nil {
		var err error
		if codec, err = CodecByName(DefaultCodec); err != nil {
			return Meta{}, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Meta{}, fmt.Errorf("create checkpoint dir: %w", err)
	}

	start := time.Now()
	meta.Version = version
	meta.Width = buffer.Width()
	meta.Height = buffer.Height()
	meta.Codec = codec.Name()
	meta.SamplesPath = samplesBase + codec.Extension()
	if meta.CreatedAt == "" {
		meta.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	samplesPath := filepath.Join(dir, meta.SamplesPath)
	if err := writeAtomic(samplesPath, func(w io.Writer) error {
		return writeSamples(w, buffer, codec)
	}); err != nil {
		return Meta{}, err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return Meta{}, err
	}
	if err := writeAtomic(filepath.Join(dir, manifestName), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return Meta{}, err
	}

	logger.Infof("saved checkpoint of %d frames to %s (%s) in %v", meta.FramesDone, dir, codec.Name(), time.Since(start))
	return meta, nil
}

// Load reads a checkpoint written by Save
func Load(dir string) (*renderer.SampleBuffer, Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("read manifest: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: manifest: %w", ErrCorrupt, err)
	}
	if meta.Version != version {
		return nil, Meta{}, fmt.Errorf("%w: manifest version %d", ErrCorrupt, meta.Version)
	}
	if meta.Width < 1 || meta.Height < 1 || meta.Width > maxSide || meta.Height > maxSide {
		return nil, Meta{}, fmt.Errorf("%w: manifest size %dx%d", ErrCorrupt, meta.Width, meta.Height)
	}

	codec, err := CodecByName(meta.Codec)
	if err != nil {
		return nil, Meta{}, err
	}

	f, err := os.Open(filepath.Join(dir, filepath.Base(meta.SamplesPath)))
	if err != nil {
		return nil, Meta{}, fmt.Errorf("open samples: %w", err)
	}
	defer f.Close()

	buffer, err := readSamples(f, codec, meta.Width, meta.Height)
	if err != nil {
		return nil, Meta{}, err
	}

	logger.Infof("loaded checkpoint of %d frames from %s", meta.FramesDone, dir)
	return buffer, meta, nil
}

func writeSamples(w io.Writer, buffer *renderer.SampleBuffer, codec Codec) error {
	stream, err := codec.NewWriter(w)
	if err != nil {
		return fmt.Errorf("open %s writer: %w", codec.Name(), err)
	}
	bw := bufio.NewWriter(stream)

	h := header{Magic: magic, Version: version, Width: uint32(buffer.Width()), Height: uint32(buffer.Height())}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		stream.Close()
		return err
	}

	pixels := buffer.Pixels()
	records := make([]pixelRecord, len(pixels))
	for i, p := range pixels {
		records[i] = pixelRecord{
			R:           p.ColorAccum.X,
			G:           p.ColorAccum.Y,
			B:           p.ColorAccum.Z,
			Luminance:   p.LuminanceAccum,
			LuminanceSq: p.LuminanceSqAccum,
			Count:       uint64(p.SampleCount),
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, records); err != nil {
		stream.Close()
		return err
	}

	if err := bw.Flush(); err != nil {
		stream.Close()
		return err
	}
	return stream.Close()
}

// readSamples decodes a payload that must hold exactly width x height pixels.
// The header size is checked before anything is allocated.
func readSamples(r io.Reader, codec Codec, width, height int) (*renderer.SampleBuffer, error) {
	stream, err := codec.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s reader: %w", ErrCorrupt, codec.Name(), err)
	}
	defer stream.Close()
	br := bufio.NewReader(stream)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if h.Magic != magic || h.Version != version {
		return nil, fmt.Errorf("%w: bad header %q v%d", ErrCorrupt, h.Magic[:], h.Version)
	}
	if int64(h.Width) != int64(width) || int64(h.Height) != int64(height) {
		return nil, fmt.Errorf("%w: samples are %dx%d, manifest says %dx%d",
			ErrCorrupt, h.Width, h.Height, width, height)
	}

	buffer := renderer.NewSampleBuffer(int(h.Width), int(h.Height))
	records := make([]pixelRecord, len(buffer.Pixels()))
	if err := binary.Read(br, binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%w: pixels: %w", ErrCorrupt, err)
	}

	pixels := buffer.Pixels()
	for i, rec := range records {
		pixels[i] = renderer.PixelStats{
			ColorAccum:       core.NewVec3(rec.R, rec.G, rec.B),
			LuminanceAccum:   rec.Luminance,
			LuminanceSqAccum: rec.LuminanceSq,
			SampleCount:      int(rec.Count),
		}
	}
	return buffer, nil
}

// writeAtomic writes to a temporary file and renames it over path
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
