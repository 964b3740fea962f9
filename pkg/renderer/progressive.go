package renderer

import (
	"context"

	"github.com/df07/fp-pathtracer/pkg/integrator"
)

// ProgressiveConfig controls streaming renders
type ProgressiveConfig struct {
	Options       Options
	SnapshotEvery int // Attach an image every N frames and on the last frame (0 = never)
	Gamma         float64
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		Options:       DefaultOptions(),
		SnapshotEvery: 1,
		Gamma:         DefaultGamma,
	}
}

// RenderProgressive renders with channel-based communication.
// The progress channel receives one event per merged frame and is closed
// when the render ends; the error channel then yields the render error, if
// any, and is closed. Snapshots are taken on the merging goroutine, so the
// output is never read while being written.
func RenderProgressive(ctx context.Context, camera *Camera, scene integrator.Scene, output *SampleBuffer, config ProgressiveConfig) (<-chan Progress, <-chan error) {
	progressChan := make(chan Progress, 1)
	errChan := make(chan error, 1)

	gamma := config.Gamma
	if gamma <= 0 {
		gamma = DefaultGamma
	}

	go func() {
		defer close(errChan)
		defer close(progressChan)

		_, err := Render(ctx, camera, scene, output, config.Options, func(p Progress) {
			if config.SnapshotEvery > 0 && (p.Done%config.SnapshotEvery == 0 || p.Done == p.Total) {
				p.Snapshot = output.Image(gamma)
			}

			select {
			case progressChan <- p:
			case <-ctx.Done():
			}
		})
		if err != nil {
			errChan <- err
		}
	}()

	return progressChan, errChan
}
