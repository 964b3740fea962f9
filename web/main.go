package main

import (
	"fmt"
	"os"

	"github.com/df07/fp-pathtracer/pkg/log"
	"github.com/df07/fp-pathtracer/web/server"
	"github.com/urfave/cli"
)

var logger = log.New("web")

func main() {
	app := cli.NewApp()
	app.Name = "fp-pathtracer-web"
	app.Usage = "serve progressive renders to the browser"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:   "port, p",
			Value:  8080,
			Usage:  "port to serve on",
			EnvVar: "FP_PORT",
		},
		cli.StringFlag{
			Name:  "scenes",
			Value: "scenes",
			Usage: "directory of JSON scene files",
		},
		cli.StringFlag{
			Name:  "static",
			Value: "static",
			Usage: "directory of static files",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  "notice",
			Usage:  "log level (debug, info, notice, warning, error)",
			EnvVar: "FP_LOG_LEVEL",
		},
	}
	app.Action = func(ctx *cli.Context) error {
		level, err := log.ParseLevel(ctx.String("log-level"))
		if err != nil {
			return err
		}
		log.SetLevel(level)

		port := ctx.Int("port")
		webServer := server.NewServer(port, ctx.String("scenes"), ctx.String("static"))
		logger.Noticef("visit http://localhost:%d to start rendering", port)
		return webServer.Start()
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
