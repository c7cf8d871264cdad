package endnotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// switchSource returns docs until err is set.
type switchSource struct {
	mu   sync.Mutex
	docs sliceSource
	err  error
}

func (s *switchSource) Documents(ctx context.Context) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.docs.Documents(ctx)
}

func (s *switchSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func newTestServer(t *testing.T, src Source) *Server {
	t.Helper()
	return NewServer(NewBuilder(testConfig(t), src))
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func taggedDocs() sliceSource {
	docs := testDocs()
	docs[0].Tags = []string{"go"}
	docs[1].Tags = []string{"web"}
	return docs
}

func TestServerBeforeBuild(t *testing.T) {
	s := newTestServer(t, taggedDocs())
	if rec := serve(s, "/"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET / before build = %d, want 503", rec.Code)
	}
	if rec := serve(s, "/blog/first/"); rec.Code != http.StatusNotFound {
		t.Errorf("GET page before build = %d, want 404", rec.Code)
	}
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, taggedDocs())
	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	tests := []struct {
		name     string
		target   string
		code     int
		contains string
		location string
	}{
		{name: "index", target: "/", code: http.StatusOK, contains: `<a href="/blog/first/">First</a>`},
		{name: "page", target: "/blog/first/", code: http.StatusOK, contains: `<li id="note-1-note" class="Footnotes__list-item">`},
		{name: "missing trailing slash", target: "/blog/first", code: http.StatusMovedPermanently, location: "/blog/first/"},
		{name: "blog root", target: "/blog", code: http.StatusMovedPermanently, location: "/"},
		{name: "unknown page", target: "/blog/missing/", code: http.StatusNotFound, contains: "<h1>Not found</h1>"},
		{name: "tag filter", target: "/?tag=Go", code: http.StatusOK, contains: `<a href="/blog/first/">First</a>`},
		{name: "unknown tag", target: "/?tag=none", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.target)
			if rec.Code != tt.code {
				t.Fatalf("GET %s = %d, want %d", tt.target, rec.Code, tt.code)
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("GET %s body missing %q", tt.target, tt.contains)
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.location)
			}
		})
	}

	rec := serve(s, "/?tag=go")
	if strings.Contains(rec.Body.String(), "/blog/second/") {
		t.Errorf("tag filter should exclude untagged pages")
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestServerKeepsLastGoodBuild(t *testing.T) {
	src := &switchSource{docs: testDocs()}
	s := newTestServer(t, src)
	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	built := s.Cache.Built()

	boom := errors.New("boom")
	src.fail(boom)
	if err := s.Rebuild(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Rebuild error = %v, want boom", err)
	}
	if rec := serve(s, "/blog/first/"); rec.Code != http.StatusOK {
		t.Errorf("GET page after failed rebuild = %d, want 200", rec.Code)
	}
	if !s.Cache.Built().Equal(built) {
		t.Errorf("failed rebuild replaced the cache")
	}
}

func TestPageCache(t *testing.T) {
	c := NewPageCache()
	if _, err := c.Get("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty cache = %v, want ErrNotFound", err)
	}
	if c.Index() != nil || !c.Built().IsZero() {
		t.Errorf("empty cache should have no index and zero build time")
	}

	res, err := NewBuilder(testConfig(t), taggedDocs()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	c.Replace(res)

	p, err := c.Get("second")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Title != "Second" {
		t.Errorf("Get returned %q", p.Title)
	}
	if got := c.List(""); len(got) != 3 {
		t.Errorf("List(\"\") returned %d pages, want 3", len(got))
	}
	if got := c.List(" WEB "); len(got) != 1 || got[0].Slug != "second" {
		t.Errorf("List(web) = %+v", got)
	}
}
