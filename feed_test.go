package endnotes

import (
	"context"
	"encoding/xml"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFeedAndSitemap(t *testing.T) {
	res, err := NewBuilder(testConfig(t), testDocs()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var feed rssXML
	if err := xml.Unmarshal(res.Feed, &feed); err != nil {
		t.Fatalf("feed is not valid XML: %v", err)
	}
	if feed.Channel.Title != "Test Blog" || len(feed.Channel.Items) != 3 {
		t.Fatalf("unexpected feed channel: %+v", feed.Channel)
	}
	first := feed.Channel.Items[1]
	if first.Link != "https://example.com/blog/first/" || first.PubDate != "Wed, 10 Jan 2024 00:00:00 +0000" {
		t.Errorf("unexpected feed item: %+v", first)
	}

	var sm sitemapURLSet
	if err := xml.Unmarshal(res.Sitemap, &sm); err != nil {
		t.Fatalf("sitemap is not valid XML: %v", err)
	}
	var locs []string
	for _, u := range sm.URLs {
		locs = append(locs, u.Loc)
	}
	want := []string{
		"https://example.com",
		"https://example.com/blog/second/",
		"https://example.com/blog/first/",
		"https://example.com/blog/plain/",
	}
	if diff := cmp.Diff(want, locs); diff != "" {
		t.Errorf("sitemap mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFeedFiles(t *testing.T) {
	cfg := testConfig(t)
	b := NewBuilder(cfg, testDocs())
	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := b.Write(res); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	for _, name := range []string{"feed.xml", "sitemap.xml"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestServerFeeds(t *testing.T) {
	s := newTestServer(t, testDocs())
	if rec := serve(s, "/feed.xml"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /feed.xml before build = %d, want 503", rec.Code)
	}
	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	rec := serve(s, "/feed.xml")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/rss+xml; charset=utf-8" {
		t.Errorf("GET /feed.xml = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec := serve(s, "/sitemap.xml"); rec.Code != http.StatusOK {
		t.Errorf("GET /sitemap.xml = %d, want 200", rec.Code)
	}
}
