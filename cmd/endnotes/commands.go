package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/endnotes"
	"github.com/eringen/endnotes/logging"
)

var buildCommand = &cli.Command{
	Name:   "build",
	Usage:  "Build the site into the output directory",
	Flags:  siteFlags,
	Action: runBuild,
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Build the site in memory and serve it for preview",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "addr", Value: ":3000", Usage: "Listen address", EnvVars: []string{"ADDR"}},
		&cli.BoolFlag{Name: "watch", Usage: "Rebuild when files below --src change"},
		&cli.DurationFlag{Name: "debounce", Value: 150 * time.Millisecond, Usage: "Quiet period before a rebuild"},
		&cli.StringFlag{Name: "static", Usage: "Directory served under /public/"},
	}, siteFlags...),
	Action: runServe,
}

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "Copy Markdown posts from --src into the SQLite database",
	ArgsUsage: " ",
	Flags:     siteFlags,
	Action:    runImport,
}

func runBuild(cc *cli.Context) error {
	b, cleanup, err := newBuilder(cc)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := b.Build(cc.Context)
	if err != nil {
		return err
	}
	if err := b.Write(res); err != nil {
		return err
	}
	notes := 0
	for _, p := range res.Pages {
		notes += p.Footnotes
	}
	fmt.Fprintf(cc.App.Writer, "built %d pages (%d footnotes) into %s\n", len(res.Pages), notes, b.Config().OutputDir)
	return nil
}

func runServe(cc *cli.Context) error {
	if cc.Bool("watch") && cc.String("db") != "" {
		return errors.New("--watch needs --src; database sources are not watched")
	}
	b, cleanup, err := newBuilder(cc)
	if err != nil {
		return err
	}
	defer cleanup()

	var opts []endnotes.ServerOption
	if dir := cc.String("static"); dir != "" {
		opts = append(opts, endnotes.WithStaticDir(dir))
	}
	srv := endnotes.NewServer(b, opts...)

	ctx, stop := signal.NotifyContext(cc.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Rebuild(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cc.String("addr"))
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cc.Bool("watch") {
		w := endnotes.NewWatcher(cc.String("src"), cc.Duration("debounce"), srv.Rebuild, logging.Default())
		w.SkipDirs = append(w.SkipDirs, filepath.Base(b.Config().OutputDir))
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	return g.Wait()
}

func runImport(cc *cli.Context) error {
	path := cc.String("db")
	if path == "" {
		return errors.New("import needs --db")
	}
	store, err := endnotes.NewStore(path)
	if err != nil {
		return fmt.Errorf("endnotes: init store: %w", err)
	}
	defer store.Close()

	docs, err := endnotes.DirSource{Root: cc.String("src"), Pattern: cc.String("pattern")}.Documents(cc.Context)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := store.SaveDocument(d); err != nil {
			return err
		}
		logging.Debug("imported document", "key", d.Key, "slug", d.Slug)
	}
	fmt.Fprintf(cc.App.Writer, "imported %d documents into %s\n", len(docs), path)
	return nil
}
