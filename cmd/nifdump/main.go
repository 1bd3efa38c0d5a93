package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gonif/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "nifdump",
		Usage: "Inspect the header and block graph of a .nif file",
		Commands: []*cli.Command{
			dumpCmd(),
			versionCmd(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string, pretty bool) logger.Logger {
	lvl := logger.ParseLevel(level)
	if pretty {
		return logger.Pretty(os.Stderr, lvl)
	}
	return logger.JSON(os.Stderr, lvl)
}
