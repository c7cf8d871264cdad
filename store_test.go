package endnotes

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	s := setupTestStore(t)

	doc := Document{
		Key:       "_posts/test-post.md",
		Slug:      "test-post",
		Title:     "Test Post",
		Date:      "2024-01-15",
		Tags:      []string{"Go", " testing "},
		Summary:   "A test post summary",
		Content:   "Text {% footnote \"n\", \"d\" %}x{% endfootnote %}",
		Published: true,
	}
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	got, err := s.GetDocument("_posts/test-post.md")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	want := doc
	want.Tags = []string{"go", "testing"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveDocumentRequiresKey(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveDocument(Document{Slug: "x"}); err == nil {
		t.Error("SaveDocument without key should fail")
	}
}

func TestSaveDocumentUpserts(t *testing.T) {
	s := setupTestStore(t)
	doc := Document{Key: "a.md", Slug: "a", Title: "Original", Date: "2024-01-01", Published: true}
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	doc.Title = "Updated"
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	all, err := s.ListAllDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListAllDocuments failed: %v", err)
	}
	if len(all) != 1 || all[0].Title != "Updated" {
		t.Errorf("expected one updated document, got %+v", all)
	}
}

func TestSaveDocumentRejectsSlugOfOtherKey(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveDocument(Document{Key: "_posts/a.md", Slug: "hello", Title: "A", Published: true}); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if err := s.SaveDocument(Document{Key: "drafts/b.md", Slug: "hello", Title: "B", Published: true}); err == nil {
		t.Fatal("saving a second key with the same slug should fail")
	}

	if _, err := s.GetDocument("_posts/a.md"); err != nil {
		t.Errorf("first document was lost: %v", err)
	}
	if _, err := s.GetDocument("drafts/b.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument(drafts/b.md) error = %v, want ErrNotFound", err)
	}
	all, err := s.ListAllDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListAllDocuments failed: %v", err)
	}
	if len(all) != 1 || all[0].Key != "_posts/a.md" {
		t.Errorf("documents after conflict = %+v, want only _posts/a.md", all)
	}

	// Updating the owner of the slug still works.
	if err := s.SaveDocument(Document{Key: "_posts/a.md", Slug: "hello", Title: "A2", Published: true}); err != nil {
		t.Fatalf("SaveDocument of existing key failed: %v", err)
	}
	if got, _ := s.GetDocument("_posts/a.md"); got.Title != "A2" {
		t.Errorf("Title = %q, want A2", got.Title)
	}
}

func TestListDocumentsExcludesDrafts(t *testing.T) {
	s := setupTestStore(t)
	docs := []Document{
		{Key: "old.md", Slug: "old", Title: "Old", Date: "2023-01-01", Published: true},
		{Key: "new.md", Slug: "new", Title: "New", Date: "2024-06-01", Published: true},
		{Key: "draft.md", Slug: "draft", Title: "Draft", Date: "2025-01-01", Published: false},
	}
	for _, d := range docs {
		if err := s.SaveDocument(d); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}

	published, err := s.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	var slugs []string
	for _, d := range published {
		slugs = append(slugs, d.Slug)
	}
	if diff := cmp.Diff([]string{"new", "old"}, slugs); diff != "" {
		t.Errorf("published mismatch (-want +got):\n%s", diff)
	}

	all, err := s.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(all) != 3 || all[0].Slug != "draft" {
		t.Errorf("Documents should include drafts, newest first: %+v", all)
	}
}

func TestDeleteDocument(t *testing.T) {
	s := setupTestStore(t)
	if err := s.SaveDocument(Document{Key: "gone.md", Slug: "gone", Published: true}); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	if err := s.DeleteDocument("gone.md"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := s.GetDocument("gone.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument error = %v, want ErrNotFound", err)
	}
}

func TestStoreAsBuildSource(t *testing.T) {
	s := setupTestStore(t)
	for _, d := range testDocs() {
		if err := s.SaveDocument(d); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}
	}
	res, err := NewBuilder(testConfig(t), s).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(res.Pages) != 3 {
		t.Errorf("built %d pages, want 3", len(res.Pages))
	}
	if p := pageBySlug(t, res, "first"); p.Footnotes != 2 {
		t.Errorf("Footnotes = %d, want 2", p.Footnotes)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{",go,web,", []string{"go", "web"}},
		{",,", nil},
		{"", nil},
		{", spaced ,", []string{"spaced"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseTags(tt.input)); diff != "" {
			t.Errorf("ParseTags(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}
