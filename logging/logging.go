// Package logging configures the process-wide slog logger from CLI flags.
package logging

import (
	"io"
	"log/slog"

	"github.com/iand/pontium/hlog"
	"github.com/kortschak/utter"
	"github.com/urfave/cli/v2"
)

// Options holds the values of Flags.
type Options struct {
	Verbose     bool
	VeryVerbose bool
	LogKeys     cli.StringSlice
}

// Opts is filled in by Flags when the command line is parsed.
var Opts Options

var Flags = []cli.Flag{
	&cli.BoolFlag{
		Name:        "verbose",
		Aliases:     []string{"v"},
		Usage:       "Log build progress (info level)",
		EnvVars:     []string{"ENDNOTES_VERBOSE"},
		Destination: &Opts.Verbose,
	},
	&cli.BoolFlag{
		Name:        "veryverbose",
		Aliases:     []string{"vv"},
		Usage:       "Log every document and request (debug level)",
		Destination: &Opts.VeryVerbose,
	},
	&cli.StringSliceFlag{
		Name:        "log-keys",
		Usage:       "Document keys that are always logged at debug level, comma separated",
		EnvVars:     []string{"ENDNOTES_LOG_KEYS"},
		Destination: &Opts.LogKeys,
	},
}

// Level returns the minimum level selected by the options; warnings by default.
func (o *Options) Level() slog.Level {
	switch {
	case o.VeryVerbose:
		return slog.LevelDebug
	case o.Verbose:
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// Handler returns an hlog handler at the selected level. Records with a
// "key" attribute naming one of LogKeys pass at debug level.
func (o *Options) Handler() *hlog.Handler {
	h := new(hlog.Handler).WithLevel(o.Level())
	for _, key := range o.LogKeys.Value() {
		h = h.WithAttrLevel(slog.String("key", key), slog.LevelDebug)
	}
	return h
}

// Setup installs the handler for Opts as the default logger.
func Setup() {
	slog.SetDefault(slog.New(Opts.Handler()))
}

var (
	Default = slog.Default
	Debug   = slog.Debug
)

// Dump writes a readable representation of v to w. It does not go through
// the logger, so the output appears at any verbosity.
func Dump(w io.Writer, v any) {
	utter.Fdump(w, v)
}
