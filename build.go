package endnotes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/endnotes/footnotes"
	"github.com/eringen/endnotes/markdown"
	"github.com/eringen/endnotes/shortcode"
)

var (
	// ErrDuplicateKey is returned when two documents share a document key.
	ErrDuplicateKey = errors.New("endnotes: duplicate document key")
	// ErrDuplicateSlug is returned when two documents would be written to the same URL.
	ErrDuplicateSlug = errors.New("endnotes: duplicate slug")
	// ErrMissingSlug is returned for a document whose slug is empty, which
	// would place it at the blog root.
	ErrMissingSlug = errors.New("endnotes: missing slug")
)

// Builder turns documents from a Source into pages.
type Builder struct {
	cfg    SiteConfig
	src    Source
	views  Views
	drafts bool
}

// Result is the output of one build.
type Result struct {
	Pages    []Page // date descending, then slug
	Index    []byte
	Feed     []byte // RSS 2.0
	Sitemap  []byte
	Registry *footnotes.Registry
	Built    time.Time
}

// NewBuilder creates a Builder reading documents from src.
func NewBuilder(cfg SiteConfig, src Source, opts ...Option) *Builder {
	cfg.setDefaults()
	b := &Builder{
		cfg:   cfg,
		src:   src,
		views: defaultViews(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the effective site configuration.
func (b *Builder) Config() SiteConfig {
	return b.cfg
}

// Views returns the layouts used by the builder.
func (b *Builder) Views() Views {
	return b.views
}

// Build renders every document. Each call uses a new footnote registry, so
// nothing registered by an earlier build can appear in this one.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	docs, err := b.src.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("endnotes: load documents: %w", err)
	}
	docs, err = b.selectDocuments(docs)
	if err != nil {
		return nil, err
	}

	reg := footnotes.NewRegistry(b.cfg.Footnotes)
	pages := make([]Page, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := b.BuildDocument(gctx, reg, doc)
			if err != nil {
				return fmt.Errorf("endnotes: build %s: %w", doc.Key, err)
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Date != pages[j].Date {
			return pages[i].Date > pages[j].Date
		}
		return pages[i].Slug < pages[j].Slug
	})

	var index bytes.Buffer
	if err := b.views.Index(b.cfg, pages).Render(ctx, &index); err != nil {
		return nil, fmt.Errorf("endnotes: render index: %w", err)
	}
	feed, err := renderFeed(b.cfg, pages)
	if err != nil {
		return nil, fmt.Errorf("endnotes: render feed: %w", err)
	}
	sitemap, err := renderSitemap(b.cfg, pages)
	if err != nil {
		return nil, fmt.Errorf("endnotes: render sitemap: %w", err)
	}

	b.cfg.Logger.Info("build finished",
		"pages", len(pages),
		"documents_with_footnotes", len(reg.Documents()),
		"duration", time.Since(start))

	return &Result{
		Pages:    pages,
		Index:    index.Bytes(),
		Feed:     feed,
		Sitemap:  sitemap,
		Registry: reg,
		Built:    time.Now(),
	}, nil
}

func (b *Builder) selectDocuments(docs []Document) ([]Document, error) {
	keys := make(map[string]struct{}, len(docs))
	slugs := make(map[string]string, len(docs))
	var out []Document
	for _, d := range docs {
		if d.Key == "" {
			return nil, fmt.Errorf("endnotes: document %q: %w", d.Slug, footnotes.ErrMissingDocumentKey)
		}
		if _, ok := keys[d.Key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
		}
		keys[d.Key] = struct{}{}
		if !d.Published && !b.drafts {
			b.cfg.Logger.Debug("skipping draft", "key", d.Key)
			continue
		}
		if d.Slug == "" {
			return nil, fmt.Errorf("%w: %s (set slug in the front matter)", ErrMissingSlug, d.Key)
		}
		if other, ok := slugs[d.Slug]; ok {
			return nil, fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateSlug, d.Slug, other, d.Key)
		}
		slugs[d.Slug] = d.Key
		out = append(out, d)
	}
	return out, nil
}

// BuildDocument renders a single document, registering its footnotes in reg.
// The document's previous footnotes in reg, if any, are discarded first.
func (b *Builder) BuildDocument(ctx context.Context, reg *footnotes.Registry, doc Document) (Page, error) {
	c, err := reg.Collect(doc.Key)
	if err != nil {
		return Page{}, err
	}

	x := shortcode.Expander{Collector: c, Description: markdown.Inline}
	src, err := x.Expand(doc.Content)
	if err != nil {
		return Page{}, err
	}
	var body bytes.Buffer
	if err := markdown.Render(&body, src); err != nil {
		return Page{}, fmt.Errorf("render markdown: %w", err)
	}

	pageURL := BuildURL(b.cfg.URL, "blog", doc.Slug)
	data := PageData{
		Site:     b.cfg,
		Document: doc,
		Meta: PageMeta{
			Title:       doc.Title,
			Description: doc.Summary,
			URL:         pageURL,
		},
		Body:     rawHTML(body.String()),
		Endnotes: c.Endnotes(),
	}
	var out bytes.Buffer
	if err := b.views.Page(data).Render(ctx, &out); err != nil {
		return Page{}, fmt.Errorf("render page: %w", err)
	}
	// A layout that never rendered Endnotes leaves the collector open.
	if _, err := c.Finish(); err == nil && c.Len() > 0 {
		b.cfg.Logger.Warn("layout dropped footnotes", "key", doc.Key, "footnotes", c.Len())
	}

	b.cfg.Logger.Debug("built document", "key", doc.Key, "slug", doc.Slug, "footnotes", c.Len())
	return Page{
		Document:  doc,
		URL:       pageURL,
		Path:      path.Join("blog", doc.Slug, "index.html"),
		HTML:      out.Bytes(),
		Footnotes: c.Len(),
	}, nil
}

// Write stores the pages, index, feed and sitemap of res under OutputDir.
func (b *Builder) Write(res *Result) error {
	root := b.cfg.OutputDir
	for _, p := range res.Pages {
		if err := writeFile(filepath.Join(root, filepath.FromSlash(p.Path)), p.HTML); err != nil {
			return err
		}
	}
	for name, data := range map[string][]byte{
		"index.html":  res.Index,
		"feed.xml":    res.Feed,
		"sitemap.xml": res.Sitemap,
	} {
		if err := writeFile(filepath.Join(root, name), data); err != nil {
			return err
		}
	}
	b.cfg.Logger.Info("site written", "dir", root, "pages", len(res.Pages))
	return nil
}

// writeFile writes data through a temporary file so readers never see a
// partially written page.
func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("endnotes: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return fmt.Errorf("endnotes: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("endnotes: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("endnotes: write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("endnotes: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("endnotes: write %s: %w", name, err)
	}
	return nil
}
