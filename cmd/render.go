package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/fp-pathtracer/pkg/checkpoint"
	"github.com/df07/fp-pathtracer/pkg/integrator"
	"github.com/df07/fp-pathtracer/pkg/renderer"
	"github.com/df07/fp-pathtracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderScene renders a scene to an image, optionally resuming from and
// writing a checkpoint. An interrupt stops the render between waves; the
// frames merged so far are still written out.
func RenderScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene argument")
	}

	sc, err := loadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	width, height := sceneSize(sc, ctx.Int("width"), ctx.Int("height"))

	out := ctx.String("out")
	if out == "" {
		out = defaultOutputPath(sc.Name, time.Now())
	}
	if err := checkImagePath(out); err != nil {
		return err
	}

	codec, err := checkpoint.CodecByName(ctx.String("codec"))
	if err != nil {
		return err
	}

	opts := renderer.Options{
		SamplesPerPixel: ctx.Int("spp"),
		NumThreads:      ctx.Int("num-cpus"),
		Preview:         ctx.Bool("preview"),
		SeedOffset:      ctx.Int64("seed"),
		Integrator:      integrator.Config{MaxDepth: ctx.Int("max-depth")},
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	// Checkpoints record the resolved depth so "0" and the default agree
	maxDepth := opts.Integrator.MaxDepth
	if maxDepth < 1 {
		maxDepth = integrator.MaxDepth
	}
	want := checkpoint.Meta{Scene: sc.Name, Width: width, Height: height, Preview: opts.Preview, MaxDepth: maxDepth}

	output := renderer.NewSampleBuffer(width, height)
	framesBefore := 0
	if dir := ctx.String("resume"); dir != "" {
		resumed, meta, err := checkpoint.Load(dir)
		if err != nil {
			return err
		}
		if err := meta.Matches(want); err != nil {
			return err
		}
		output = resumed
		framesBefore = meta.FramesDone
		opts.SeedOffset = meta.NextSeed
		opts.SamplesPerPixel -= meta.FramesDone
		logger.Noticef("resuming %q from frame %d", sc.Name, meta.FramesDone)
	}

	stats := renderer.RenderStats{Width: width, Height: height}
	var renderErr error
	if opts.SamplesPerPixel > 0 {
		camera := renderer.NewCamera(sc.Camera, float64(width)/float64(height))

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger.Noticef("rendering %q at %dx%d with %d spp on %d threads", sc.Name, width, height, opts.SamplesPerPixel, opts.Threads())
		stats, renderErr = renderer.Render(runCtx, camera, sc, output, opts, func(p renderer.Progress) {
			logger.Infof("frame %d/%d (%.0f%%) after %v", p.Done, p.Total, 100*float64(p.Done)/float64(p.Total), p.Elapsed.Round(time.Millisecond))
		})
		if renderErr != nil && !errors.Is(renderErr, context.Canceled) {
			return renderErr
		}
		if renderErr != nil {
			logger.Warningf("render interrupted after %d frames", stats.Frames)
		}
	} else {
		logger.Noticef("checkpoint already holds %d frames, nothing to render", framesBefore)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := renderer.SaveImage(out, output); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)

	if dir := ctx.String("checkpoint"); dir != "" {
		meta := want
		meta.FramesDone = framesBefore + stats.Frames
		meta.NextSeed = opts.SeedOffset + int64(stats.Frames)
		if _, err := checkpoint.Save(dir, output, meta, codec); err != nil {
			return err
		}
	}

	if stats.Frames > 0 {
		displayRenderStats(stats)
	}
	return renderErr
}

// defaultOutputPath places renders under output/<scene>/ with a timestamped name
func defaultOutputPath(sceneName string, now time.Time) string {
	name := strings.ToLower(strings.TrimSpace(sceneName))
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, name)
	if name == "" {
		name = "scene"
	}
	return filepath.Join("output", name, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func checkImagePath(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".ppm":
		return nil
	}
	return fmt.Errorf("%w: %q", renderer.ErrUnsupportedFormat, path)
}

func formatRenderStats(stats renderer.RenderStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frames", "Mean frame time", "Rays", "Hits", "Misses", "Depth cutoffs", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.Frames),
		stats.MeanFrameTime().String(),
		fmt.Sprintf("%d", stats.Counters.Rays),
		fmt.Sprintf("%d", stats.Counters.Hits),
		fmt.Sprintf("%d", stats.Counters.Misses),
		fmt.Sprintf("%d", stats.Counters.DepthCutoffs),
		stats.Elapsed.String(),
	})
	table.SetFooter([]string{fmt.Sprintf("%dx%d", stats.Width, stats.Height), "", "", "", "", "RAYS/S", fmt.Sprintf("%.0f", stats.RaysPerSecond())})
	table.Render()
	return buf.String()
}

func displayRenderStats(stats renderer.RenderStats) {
	logger.Noticef("render statistics\n%s", formatRenderStats(stats))
}

// sceneSize applies size overrides; non-positive values keep the scene default
func sceneSize(sc *scene.Scene, width, height int) (int, int) {
	if width <= 0 {
		width = sc.Width
	}
	if height <= 0 {
		height = sc.Height
	}
	return width, height
}
