package main

import (
	"fmt"
	"os"

	"github.com/df07/fp-pathtracer/cmd"
	"github.com/df07/fp-pathtracer/pkg/checkpoint"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "fp-pathtracer"
	app.Usage = "render scenes with a progressive Monte Carlo path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "log level (debug, info, notice, warning, error)",
			EnvVar: "FP_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to an image",
			Description: `
Render a built-in scene by name, or a JSON scene file. Each sample per pixel
is one full frame; frames are rendered in parallel waves and averaged.

With --checkpoint the accumulated samples are saved after the render so that
a later run can continue from them with --resume.`,
			ArgsUsage: "scene_name_or_file.json",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:   "width, w",
					Usage:  "image width (0 = scene default)",
					EnvVar: "FP_WIDTH",
				},
				cli.IntFlag{
					Name:   "height",
					Usage:  "image height (0 = scene default)",
					EnvVar: "FP_HEIGHT",
				},
				cli.IntFlag{
					Name:   "spp",
					Value:  40,
					Usage:  "samples per pixel, one frame each",
					EnvVar: "FP_SPP",
				},
				cli.IntFlag{
					Name:   "num-cpus",
					Usage:  "frames rendered concurrently (0 = all CPUs)",
					EnvVar: "FP_THREADS",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Usage: "path depth limit (0 = default)",
				},
				cli.BoolFlag{
					Name:   "preview",
					Usage:  "render flat diffuse colors without integrating",
					EnvVar: "FP_PREVIEW",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "seed of the first frame",
				},
				cli.StringFlag{
					Name:   "out, o",
					Usage:  "image filename (.png or .ppm); defaults to output/<scene>/render_<time>.png",
					EnvVar: "FP_OUT",
				},
				cli.StringFlag{
					Name:  "checkpoint",
					Usage: "directory to save the accumulated samples to",
				},
				cli.StringFlag{
					Name:  "resume",
					Usage: "checkpoint directory to continue from",
				},
				cli.StringFlag{
					Name:  "codec",
					Value: checkpoint.DefaultCodec,
					Usage: fmt.Sprintf("checkpoint compression %v", checkpoint.CodecNames()),
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:  "scenes",
			Usage: "list available scenes",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "dir",
					Value: "scenes",
					Usage: "directory searched for JSON scene files",
				},
			},
			Action: cmd.ListScenes,
		},
		{
			Name:   "version",
			Usage:  "print version information",
			Action: cmd.PrintVersion,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
