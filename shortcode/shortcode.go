// Package shortcode expands Liquid-style paired footnote tags in post source:
//
//	{% footnote "id", "Description with *markdown*." %}inline text{% endfootnote %}
//
// Each tag is replaced by the reference anchor returned by the document's
// footnote collector, in source order. Other {% ... %} tags are left alone.
package shortcode

import (
	"fmt"
	"strings"

	"github.com/eringen/endnotes/footnotes"
)

const (
	tagOpen   = "{%"
	tagClose  = "%}"
	openName  = "footnote"
	closeName = "endfootnote"
)

// SyntaxError reports a malformed footnote tag.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("shortcode: line %d: %s", e.Line, e.Msg)
}

// Expander replaces footnote tags using Collector.
type Expander struct {
	Collector *footnotes.Collector

	// Description, when set, renders a description before registration.
	Description func(string) (string, error)
}

type openTag struct {
	line         int
	id           string
	description  string
	contentStart int
}

// Expand returns src with every footnote tag replaced by its reference anchor.
func (x *Expander) Expand(src string) (string, error) {
	var (
		out  strings.Builder
		open *openTag
		pos  int // next byte of src not yet copied or consumed
	)
	for {
		rel := strings.Index(src[pos:], tagOpen)
		if rel < 0 {
			break
		}
		start := pos + rel
		end := strings.Index(src[start+len(tagOpen):], tagClose)
		if end < 0 {
			return "", &SyntaxError{Line: lineOf(src, start), Msg: "unterminated tag"}
		}
		end += start + len(tagOpen)
		next := end + len(tagClose)
		inner := strings.Trim(src[start+len(tagOpen):end], "- \t\r\n")
		name, args := inner, ""
		if i := strings.IndexAny(inner, " \t\r\n"); i >= 0 {
			name, args = inner[:i], inner[i:]
		}

		switch name {
		case openName:
			if open != nil {
				return "", &SyntaxError{Line: lineOf(src, start), Msg: fmt.Sprintf("nested footnote inside %q opened on line %d", open.id, open.line)}
			}
			vals, err := parseArgs(args)
			if err != nil {
				return "", &SyntaxError{Line: lineOf(src, start), Msg: err.Error()}
			}
			if len(vals) < 2 {
				return "", &SyntaxError{Line: lineOf(src, start), Msg: "footnote needs an id and a description"}
			}
			out.WriteString(src[pos:start])
			open = &openTag{
				line:         lineOf(src, start),
				id:           vals[0],
				description:  vals[1],
				contentStart: next,
			}
		case closeName:
			if open == nil {
				return "", &SyntaxError{Line: lineOf(src, start), Msg: "endfootnote without footnote"}
			}
			ref, err := x.register(open, src[open.contentStart:start])
			if err != nil {
				return "", fmt.Errorf("shortcode: line %d: %w", open.line, err)
			}
			out.WriteString(ref)
			open = nil
		default:
			if open == nil {
				out.WriteString(src[pos:next])
			}
		}
		// Content of an open footnote is sliced from src when it closes.
		pos = next
	}
	if open != nil {
		return "", &SyntaxError{Line: open.line, Msg: fmt.Sprintf("footnote %q is missing endfootnote", open.id)}
	}
	out.WriteString(src[pos:])
	return out.String(), nil
}

func (x *Expander) register(t *openTag, content string) (string, error) {
	desc := t.description
	if x.Description != nil {
		var err error
		if desc, err = x.Description(desc); err != nil {
			return "", fmt.Errorf("render description of %q: %w", t.id, err)
		}
	}
	return x.Collector.Footnote(t.id, content, desc)
}

// parseArgs reads quoted string arguments separated by commas or whitespace.
func parseArgs(s string) ([]string, error) {
	var vals []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case ' ', '\t', '\r', '\n', ',':
			i++
			continue
		case '"', '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string argument")
			}
			vals = append(vals, s[i+1:i+1+end])
			i += end + 2
		default:
			return nil, fmt.Errorf("expected quoted argument at %q", s[i:])
		}
	}
	return vals, nil
}

func lineOf(src string, pos int) int {
	return strings.Count(src[:pos], "\n") + 1
}
