package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/df07/fp-pathtracer/pkg/integrator"
	"github.com/df07/fp-pathtracer/pkg/log"
)

var logger = log.New("renderer")

// Options configures a render
type Options struct {
	SamplesPerPixel int               // Frames to render, one sample per pixel each
	NumThreads      int               // Frames rendered concurrently per wave (0 = use CPU count)
	Preview         bool              // Return diffuse colors without integrating
	SeedOffset      int64             // Seed of the first frame; frame i uses SeedOffset+i
	Integrator      integrator.Config // Zero value uses the default depth limit
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		SamplesPerPixel: 40,
		NumThreads:      0, // Auto-detect CPU count
		Integrator:      integrator.DefaultConfig(),
	}
}

// Validate checks the options before rendering
func (o Options) Validate() error {
	if o.SamplesPerPixel < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSamples, o.SamplesPerPixel)
	}
	if o.NumThreads < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreads, o.NumThreads)
	}
	if o.Integrator != (integrator.Config{}) {
		if err := o.Integrator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Threads returns the wave size, resolving 0 to the CPU count
func (o Options) Threads() int {
	if o.NumThreads <= 0 {
		return runtime.NumCPU()
	}
	return o.NumThreads
}

// Progress reports frames merged so far
type Progress struct {
	Done     int           // Frames merged into the output
	Total    int           // Frames the render will merge
	Elapsed  time.Duration // Time since the render started
	Snapshot *image.RGBA   // Current image, set only by RenderProgressive
}

// Render accumulates options.SamplesPerPixel frames into output.
//
// Frames run in waves of up to Threads() concurrent tasks. Within a wave,
// results are merged in submission order and onProgress is called after each
// merge. Cancellation is checked between waves; a cancelled render returns
// ctx.Err() and output keeps every frame merged before it. A failed task
// aborts the render.
func Render(ctx context.Context, camera *Camera, scene integrator.Scene, output *SampleBuffer, options Options, onProgress func(Progress)) (RenderStats, error) {
	if err := options.Validate(); err != nil {
		return RenderStats{}, err
	}
	if output == nil || output.Width() == 0 || output.Height() == 0 {
		return RenderStats{}, ErrInvalidOutput
	}

	width, height := output.Width(), output.Height()
	numThreads := options.Threads()
	total := options.SamplesPerPixel

	pool := NewWorkerPool(func(seed int64) (*SampleBuffer, integrator.Counters) {
		estimator := integrator.NewEstimator(options.Integrator)
		buffer := renderFrame(camera, scene, estimator, seed, width, height, options.Preview)
		return buffer, estimator.Counters()
	}, numThreads)
	pool.Start()
	defer pool.Stop()

	stats := RenderStats{
		Width:      width,
		Height:     height,
		FrameTimes: make([]time.Duration, 0, total),
	}
	start := time.Now()
	logger.Infof("rendering %dx%d, %d frames on %d threads", width, height, total, numThreads)

	for done := 0; done < total; {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			logger.Noticef("render cancelled after %d of %d frames", done, total)
			return stats, err
		}

		waveSize := min(numThreads, total-done)
		logger.Debugf("wave of %d frames starting at frame %d", waveSize, done)
		for i := 0; i < waveSize; i++ {
			index := done + i
			pool.SubmitTask(FrameTask{Index: index, Seed: options.SeedOffset + int64(index)})
		}

		// Results arrive in completion order; merge them in submission order
		pending := make(map[int]FrameResult, waveSize)
		next := done
		for received := 0; received < waveSize; received++ {
			result, _ := pool.GetResult()
			pending[result.Index] = result

			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++

				if ready.Err != nil {
					stats.Elapsed = time.Since(start)
					logger.Errorf("render aborted: %v", ready.Err)
					return stats, ready.Err
				}
				if err := output.Merge(ready.Buffer); err != nil {
					stats.Elapsed = time.Since(start)
					return stats, err
				}

				stats.Frames++
				stats.FrameTimes = append(stats.FrameTimes, ready.Duration)
				stats.Counters.Add(ready.Counters)
				done++

				if onProgress != nil {
					onProgress(Progress{Done: done, Total: total, Elapsed: time.Since(start)})
				}
			}
		}
	}

	stats.Elapsed = time.Since(start)
	logger.Infof("rendered %d frames in %v (mean %v per frame)", stats.Frames, stats.Elapsed, stats.MeanFrameTime())
	return stats, nil
}
