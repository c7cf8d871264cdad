// Package footnotes registers footnotes while a document is evaluated and
// renders them afterwards as an accessible endnotes block.
//
// A Registry lives for exactly one build. Each document registers its
// footnotes in evaluation order, receiving the inline reference anchor
// immediately, and then renders the endnotes block once its body is done:
//
//	reg := footnotes.NewRegistry(footnotes.Config{})
//	c, _ := reg.Collect("_posts/hello.md")
//	ref, _ := c.Footnote("note-1", "click", "Extra context.")
//	notes, _ := c.Finish()
package footnotes

import (
	"errors"
	"html"
	"sort"
	"strings"
	"sync"
)

// ErrMissingDocumentKey is returned when a call is made without a document key.
// Footnotes registered under the wrong key would silently end up on the wrong page.
var ErrMissingDocumentKey = errors.New("footnotes: missing document key")

// Footnote is one footnote instance within one document.
type Footnote struct {
	ID          string // Unique within a document; anchors are {ID}-ref and {ID}-note
	Reference   string // Inline content wrapped by the reference link
	Description string // Pre-rendered note content shown in the endnotes
}

// noteSet keeps footnotes of one document in first-registration order.
type noteSet struct {
	order []string
	notes map[string]Footnote
}

func (s *noteSet) put(fn Footnote) {
	if _, ok := s.notes[fn.ID]; !ok {
		s.order = append(s.order, fn.ID)
	}
	s.notes[fn.ID] = fn
}

func (s *noteSet) list() []Footnote {
	out := make([]Footnote, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.notes[id])
	}
	return out
}

// Registry maps document keys to their registered footnotes. It is safe for
// concurrent use by documents built in parallel; calls for the same key must
// still be made in order (all registrations, then the render).
type Registry struct {
	cfg  Config
	mu   sync.Mutex
	docs map[string]*noteSet
}

// NewRegistry returns an empty registry. Create one per build.
func NewRegistry(cfg Config) *Registry {
	cfg.setDefaults()
	return &Registry{
		cfg:  cfg,
		docs: make(map[string]*noteSet),
	}
}

// Config returns the effective configuration, with defaults applied.
func (r *Registry) Config() Config {
	return r.cfg
}

// Register records a footnote for docKey and returns its inline reference
// anchor. A later registration with the same id replaces the earlier one and
// keeps its position in the list.
func (r *Registry) Register(docKey, id, reference, description string) (string, error) {
	if docKey == "" {
		return "", ErrMissingDocumentKey
	}
	r.mu.Lock()
	set, ok := r.docs[docKey]
	if !ok {
		set = &noteSet{notes: make(map[string]Footnote)}
		r.docs[docKey] = set
	}
	set.put(Footnote{ID: id, Reference: reference, Description: description})
	r.mu.Unlock()

	return r.reference(id, reference), nil
}

// Render returns the endnotes block for docKey. A document without footnotes
// still gets the container with an empty list.
func (r *Registry) Render(docKey string) (string, error) {
	notes, err := r.footnotes(docKey)
	if err != nil {
		return "", err
	}
	return r.endnotes(notes), nil
}

// Footnotes returns a copy of the footnotes registered for docKey, in order.
func (r *Registry) Footnotes(docKey string) []Footnote {
	notes, _ := r.footnotes(docKey)
	return notes
}

// Reset drops every footnote registered for docKey. Call it before a document
// is evaluated again so ids removed since the last evaluation disappear.
func (r *Registry) Reset(docKey string) {
	r.mu.Lock()
	delete(r.docs, docKey)
	r.mu.Unlock()
}

// Documents returns the sorted keys of documents with registered footnotes.
func (r *Registry) Documents() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.docs))
	for k := range r.docs {
		keys = append(keys, k)
	}
	r.mu.Unlock()
	sort.Strings(keys)
	return keys
}

func (r *Registry) footnotes(docKey string) ([]Footnote, error) {
	if docKey == "" {
		return nil, ErrMissingDocumentKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.docs[docKey]
	if !ok {
		return nil, nil
	}
	return set.list(), nil
}

func (r *Registry) reference(id, content string) string {
	return "<a " + FormatAttrs(
		Attr{"class", r.cfg.class("ref")},
		Attr{"href", "#" + id + "-note"},
		Attr{"id", id + "-ref"},
		Attr{"aria-describedby", r.cfg.TitleID},
		Attr{"role", "doc-noteref"},
	) + ">" + content + "</a>"
}

func (r *Registry) endnotes(notes []Footnote) string {
	var b strings.Builder
	b.WriteString("<footer ")
	b.WriteString(FormatAttrs(Attr{"role", "doc-endnotes"}, Attr{"class", r.cfg.class("")}))
	b.WriteString(">\n  <h2 ")
	b.WriteString(FormatAttrs(Attr{"id", r.cfg.TitleID}, Attr{"class", r.cfg.class("title")}))
	b.WriteString(">")
	b.WriteString(html.EscapeString(r.cfg.Title))
	b.WriteString("</h2>\n  <ol ")
	b.WriteString(FormatAttrs(Attr{"class", r.cfg.class("list")}))
	b.WriteString(">\n")
	for i, fn := range notes {
		b.WriteString("    <li ")
		b.WriteString(FormatAttrs(
			Attr{"id", fn.ID + "-note"},
			Attr{"class", r.cfg.class("list-item")},
		))
		b.WriteString(">")
		b.WriteString(fn.Description)
		b.WriteString(" <a ")
		b.WriteString(FormatAttrs(
			Attr{"class", r.cfg.class("back-link")},
			Attr{"href", "#" + fn.ID + "-ref"},
			Attr{"aria-label", r.cfg.BackLinkLabel(fn, i)},
			Attr{"role", "doc-backlink"},
		))
		b.WriteString(">↩</a></li>\n")
	}
	b.WriteString("  </ol>\n</footer>")
	return b.String()
}
