package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
)

// PrintVersion writes the application and Go runtime versions.
func PrintVersion(ctx *cli.Context) error {
	_, err := fmt.Fprintf(ctx.App.Writer, "%s %s (%s %s/%s)\n", ctx.App.Name, ctx.App.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
