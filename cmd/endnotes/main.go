package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eringen/endnotes/logging"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := &cli.App{
		Name:     "endnotes",
		HelpName: "endnotes",
		Usage:    "Build a blog from Markdown posts with page-scoped footnotes",
		Flags:    logging.Flags,
		Before: func(*cli.Context) error {
			logging.Setup()
			return nil
		},
		Commands: []*cli.Command{
			buildCommand,
			serveCommand,
			importCommand,
			versionCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print the endnotes version",
	Action: func(cc *cli.Context) error {
		fmt.Fprintf(cc.App.Writer, "endnotes %s\n", version)
		return nil
	},
}
