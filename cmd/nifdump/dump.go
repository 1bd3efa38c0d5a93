package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gonif/pkg/nif"
)

func dumpCmd() *cli.Command {
	var (
		path       string
		logLevel   string
		pretty     bool
		showBlocks bool
		showStrs   bool
		blockLimit int
	)

	return &cli.Command{
		Name:  "dump",
		Usage: "Print the header fields, block list, and string pool of a .nif file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .nif file",
				Destination: &path,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "debug|info|warn|error",
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.BoolFlag{
				Name:        "pretty-log",
				Usage:       "use the colored pretty log handler instead of JSON",
				Destination: &pretty,
			},
			&cli.BoolFlag{
				Name:        "blocks",
				Usage:       "list every block (ordinal, type, byte size)",
				Value:       true,
				Destination: &showBlocks,
			},
			&cli.BoolFlag{
				Name:        "strings",
				Usage:       "list the central string pool",
				Destination: &showStrs,
			},
			&cli.IntFlag{
				Name:        "block-limit",
				Usage:       "limit block listing (0 = no limit)",
				Value:       200,
				Destination: &blockLimit,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(logLevel, pretty)

			f, err := nif.Open(path, nif.NewRegistry())
			if err != nil {
				log.Error("open failed", "path", path, "error", err)
				return err
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Warn("close failed", "path", path, "error", err)
				}
			}()

			log.Info("loaded nif file", "path", path, "version", f.Graph.Header.Version().String(), "blocks", f.Graph.NumBlocks())

			printHeader(f.Graph)
			if showBlocks {
				printBlocks(f.Graph, blockLimit)
			}
			if showStrs {
				printStrings(f.Graph)
			}
			return nil
		},
	}
}

func printHeader(g *nif.Graph) {
	h := &g.Header
	fmt.Printf("Version:      %s\n", h.Version().String())
	fmt.Printf("Endian:       %v\n", h.Endian())
	fmt.Printf("Bethesda:     %v\n", h.Version().IsBethesda())
	if h.Version().IsBethesda() {
		fmt.Printf("Creator:      %s\n", h.CreatorInfo())
		fmt.Printf("Export info:  %s\n", h.ExportInfo())
	}
	fmt.Printf("Block types:  %d\n", h.NumBlockTypes())
	fmt.Printf("Blocks:       %d\n", g.NumBlocks())
	fmt.Printf("Strings:      %d\n", h.NumStrings())
	fmt.Printf("Roots:        %v\n", g.Roots())
}

func printBlocks(g *nif.Graph, limit int) {
	n := g.NumBlocks()
	fmt.Println()
	fmt.Println("Blocks:")
	shown := n
	if limit > 0 && limit < n {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		id := uint32(i)
		typeName := g.Header.BlockTypeString(id, n)
		size := g.Header.BlockSize(id)
		if size == nif.NPOS {
			fmt.Printf("  [%4d] %-32s size=?\n", id, typeName)
		} else {
			fmt.Printf("  [%4d] %-32s size=%d\n", id, typeName, size)
		}
	}
	if shown < n {
		fmt.Printf("  ... (%d more)\n", n-shown)
	}
}

func printStrings(g *nif.Graph) {
	n := g.GetStringCount()
	fmt.Println()
	fmt.Println("String pool:")
	for i := 0; i < n; i++ {
		fmt.Printf("  [%4d] %s\n", i, g.GetStringById(uint32(i)))
	}
}
