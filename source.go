package endnotes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ErrFrontMatter is returned for documents with malformed front matter.
var ErrFrontMatter = errors.New("endnotes: invalid front matter")

// Source supplies the documents of a build.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// DirSource reads Markdown documents with YAML front matter from a directory.
type DirSource struct {
	Root    string
	Pattern string // doublestar pattern relative to Root (default "**/*.md")
}

// Documents implements Source. Keys are slash-separated paths relative to Root.
func (s DirSource) Documents(ctx context.Context) ([]Document, error) {
	fsys := os.DirFS(s.Root)
	pattern := s.Pattern
	if pattern == "" {
		pattern = "**/*.md"
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("endnotes: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	docs := make([]Document, 0, len(matches))
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		doc, err := ParseDocument(name, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

type frontMatter struct {
	Title     string  `yaml:"title"`
	Date      string  `yaml:"date"`
	Tags      tagList `yaml:"tags"`
	Summary   string  `yaml:"summary"`
	Slug      string  `yaml:"slug"`
	Published *bool   `yaml:"published"`
}

// tagList accepts either a YAML sequence or a comma/space separated string.
type tagList []string

func (t *tagList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = strings.FieldsFunc(value.Value, func(r rune) bool { return r == ',' || r == ' ' })
		return nil
	case yaml.SequenceNode:
		var tags []string
		if err := value.Decode(&tags); err != nil {
			return err
		}
		*t = tags
		return nil
	}
	return fmt.Errorf("tags: unexpected YAML node at line %d", value.Line)
}

// Jekyll-style file names carry the date: 2019-01-31-my-post.md
var reDatedName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// ParseDocument builds a Document from raw file contents. key is the
// document key, normally its path relative to the source root.
func ParseDocument(key string, data []byte) (Document, error) {
	var fm frontMatter
	body := data
	if bytes.HasPrefix(data, []byte("---\n")) || bytes.HasPrefix(data, []byte("---\r\n")) {
		head, rest, ok := splitFrontMatter(data)
		if !ok {
			return Document{}, fmt.Errorf("%w: no closing delimiter", ErrFrontMatter)
		}
		if err := yaml.Unmarshal(head, &fm); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrFrontMatter, err)
		}
		body = rest
	}

	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	nameDate := ""
	if m := reDatedName.FindStringSubmatch(base); m != nil {
		nameDate, base = m[1], m[2]
	}

	doc := Document{
		Key:       key,
		Title:     strings.TrimSpace(fm.Title),
		Tags:      normalizeTags(fm.Tags),
		Summary:   strings.TrimSpace(fm.Summary),
		Content:   string(body),
		Published: fm.Published == nil || *fm.Published,
	}

	date, err := normalizeDate(fm.Date, nameDate)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	doc.Date = date

	switch {
	case fm.Slug != "":
		doc.Slug = Slugify(fm.Slug)
	case doc.Title != "":
		doc.Slug = Slugify(doc.Title)
	}
	if doc.Slug == "" {
		doc.Slug = Slugify(base)
	}
	if doc.Title == "" {
		doc.Title = base
	}
	return doc, nil
}

// splitFrontMatter returns the YAML between the opening and closing "---"
// lines and the content after the closing line.
func splitFrontMatter(data []byte) (head, rest []byte, ok bool) {
	start := bytes.IndexByte(data, '\n') + 1
	for i := start; i < len(data); {
		end := bytes.IndexByte(data[i:], '\n')
		line := data[i:]
		next := len(data)
		if end >= 0 {
			line = data[i : i+end]
			next = i + end + 1
		}
		if string(bytes.TrimRight(line, "\r")) == "---" {
			return data[start:i], data[next:], true
		}
		i = next
	}
	return nil, nil, false
}

func normalizeDate(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
}
