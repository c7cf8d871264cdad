package main

import (
	"github.com/urfave/cli/v2"

	"github.com/eringen/endnotes"
	"github.com/eringen/endnotes/footnotes"
	"github.com/eringen/endnotes/logging"
)

var siteFlags = []cli.Flag{
	&cli.StringFlag{Name: "src", Value: ".", Usage: "Directory containing Markdown posts", EnvVars: []string{"SOURCE_DIR"}},
	&cli.StringFlag{Name: "pattern", Value: "**/*.md", Usage: "Glob selecting posts below --src", EnvVars: []string{"SOURCE_PATTERN"}},
	&cli.StringFlag{Name: "db", Usage: "Read posts from this SQLite database instead of --src", EnvVars: []string{"DATABASE_PATH"}},
	&cli.StringFlag{Name: "out", Value: "_site", Usage: "Output directory", EnvVars: []string{"OUTPUT_DIR"}},
	&cli.StringFlag{Name: "site-name", Usage: "Site name", EnvVars: []string{"SITE_NAME"}},
	&cli.StringFlag{Name: "site-url", Usage: "Canonical site URL", EnvVars: []string{"SITE_URL"}},
	&cli.StringFlag{Name: "site-description", Usage: "Site description", EnvVars: []string{"SITE_DESCRIPTION"}},
	&cli.StringFlag{Name: "site-author", Usage: "Site author", EnvVars: []string{"SITE_AUTHOR"}},
	&cli.IntFlag{Name: "workers", Usage: "Documents built in parallel (default: number of CPUs)"},
	&cli.BoolFlag{Name: "drafts", Usage: "Include unpublished posts"},
	&cli.StringFlag{Name: "footnotes-class", Usage: "CSS class prefix of footnote markup (default \"Footnotes\")"},
	&cli.StringFlag{Name: "footnotes-title", Usage: "Heading of the endnotes block (default \"Footnotes\")"},
	&cli.StringFlag{Name: "footnotes-title-id", Usage: "Id of the endnotes heading (default \"footnotes-label\")"},
	&cli.BoolFlag{Name: "dump-config", Usage: "Print the effective configuration to stderr before running"},
}

func siteConfig(cc *cli.Context) endnotes.SiteConfig {
	return endnotes.SiteConfig{
		Name:        cc.String("site-name"),
		URL:         cc.String("site-url"),
		Description: cc.String("site-description"),
		Author:      cc.String("site-author"),
		OutputDir:   cc.String("out"),
		Workers:     cc.Int("workers"),
		Footnotes: footnotes.Config{
			BaseClass: cc.String("footnotes-class"),
			Title:     cc.String("footnotes-title"),
			TitleID:   cc.String("footnotes-title-id"),
		},
		Logger: logging.Default(),
	}
}

// newBuilder creates a builder for the source selected by the flags. The
// returned function releases the source.
func newBuilder(cc *cli.Context) (*endnotes.Builder, func(), error) {
	var (
		src     endnotes.Source
		cleanup = func() {}
	)
	if path := cc.String("db"); path != "" {
		store, err := endnotes.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		src = store
		cleanup = func() { store.Close() }
	} else {
		src = endnotes.DirSource{Root: cc.String("src"), Pattern: cc.String("pattern")}
	}

	b := endnotes.NewBuilder(siteConfig(cc), src, endnotes.WithIncludeDrafts(cc.Bool("drafts")))
	if cc.Bool("dump-config") {
		cfg := b.Config()
		cfg.Logger = nil
		logging.Dump(cc.App.ErrWriter, cfg)
	}
	return b, cleanup, nil
}
