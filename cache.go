package endnotes

import (
	"sync"
	"time"
)

// PageCache holds the pages of the latest successful build for the preview
// server. A rebuild swaps the whole snapshot, so readers never see pages from
// two different builds.
type PageCache struct {
	mu      sync.RWMutex
	pages   []Page
	bySlug  map[string]int
	index   []byte
	feed    []byte
	sitemap []byte
	built   time.Time
}

// NewPageCache returns an empty cache.
func NewPageCache() *PageCache {
	return &PageCache{bySlug: make(map[string]int)}
}

// Replace installs the output of res.
func (c *PageCache) Replace(res *Result) {
	bySlug := make(map[string]int, len(res.Pages))
	for i, p := range res.Pages {
		bySlug[p.Slug] = i
	}
	c.mu.Lock()
	c.pages = res.Pages
	c.bySlug = bySlug
	c.index = res.Index
	c.feed = res.Feed
	c.sitemap = res.Sitemap
	c.built = res.Built
	c.mu.Unlock()
}

// Get returns the page with slug.
func (c *PageCache) Get(slug string) (Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.bySlug[slug]
	if !ok {
		return Page{}, ErrNotFound
	}
	return c.pages[i], nil
}

// List returns all cached pages, optionally filtered by tag.
func (c *PageCache) List(tag string) []Page {
	c.mu.RLock()
	pages := c.pages
	c.mu.RUnlock()
	if tag == "" {
		return pages
	}
	normalized := normalizeTag(tag)
	var filtered []Page
	for _, p := range pages {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

// Index returns the rendered index page, or nil before the first build.
func (c *PageCache) Index() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Feed returns the RSS feed, or nil before the first build.
func (c *PageCache) Feed() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feed
}

// Sitemap returns the sitemap, or nil before the first build.
func (c *PageCache) Sitemap() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sitemap
}

// Built returns when the cached build finished; zero before the first build.
func (c *PageCache) Built() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.built
}
