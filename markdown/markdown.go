// Package markdown renders post Markdown to HTML with goldmark, exposing
// block, inline, and templ component entry points.
package markdown

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML is kept so footnote anchors inserted before conversion survive.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Markdown returns a templ.Component that renders content as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := Render(&buf, content); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML representation of src to buf. Heading ids are
// unique within a single call.
func Render(buf *bytes.Buffer, src string) error {
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	return md.Convert([]byte(src), buf, parser.WithContext(pc))
}

// Inline renders src as inline HTML. A single paragraph loses its <p>
// wrapper; anything else is returned as rendered.
func Inline(src string) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, strings.TrimSpace(src)); err != nil {
		return "", err
	}
	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") &&
		strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return out, nil
}
