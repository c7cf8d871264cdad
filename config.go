package endnotes

import (
	"log/slog"
	"runtime"

	"github.com/eringen/endnotes/footnotes"
)

// SiteConfig holds all configuration for a build.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for meta tags
	Author      string

	OutputDir string // Build output directory (default "_site")
	Workers   int    // Documents built in parallel (default GOMAXPROCS)

	Footnotes footnotes.Config // Footnote markup options

	Logger *slog.Logger // default slog.Default()
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.OutputDir == "" {
		c.OutputDir = "_site"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Option configures additional Builder behavior.
type Option func(*Builder)

// WithViews replaces the default layouts. Nil fields keep their defaults.
func WithViews(v Views) Option {
	return func(b *Builder) {
		if v.Page != nil {
			b.views.Page = v.Page
		}
		if v.Index != nil {
			b.views.Index = v.Index
		}
		if v.NotFound != nil {
			b.views.NotFound = v.NotFound
		}
		if v.ServerError != nil {
			b.views.ServerError = v.ServerError
		}
	}
}

// WithIncludeDrafts builds unpublished documents as well.
func WithIncludeDrafts(include bool) Option {
	return func(b *Builder) {
		b.drafts = include
	}
}
