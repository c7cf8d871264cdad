package footnotes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// ErrFinished is returned when a Collector is used after Finish.
var ErrFinished = errors.New("footnotes: collector already finished")

// Collector scopes registrations to a single document evaluation. Footnotes
// are added while the body is evaluated; Finish ends the evaluation and
// returns the endnotes block. Nothing can be added after Finish.
type Collector struct {
	reg *Registry
	key string

	mu       sync.Mutex
	finished bool
}

// Collect starts a fresh evaluation of docKey. Footnotes left over from a
// previous evaluation of the same document are discarded.
func (r *Registry) Collect(docKey string) (*Collector, error) {
	if docKey == "" {
		return nil, ErrMissingDocumentKey
	}
	r.Reset(docKey)
	return &Collector{reg: r, key: docKey}, nil
}

// Key returns the document key the collector registers under.
func (c *Collector) Key() string {
	return c.key
}

// Len returns the number of distinct footnotes collected so far.
func (c *Collector) Len() int {
	return len(c.reg.Footnotes(c.key))
}

// Footnote registers a footnote and returns its inline reference anchor.
func (c *Collector) Footnote(id, reference, description string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return "", ErrFinished
	}
	return c.reg.Register(c.key, id, reference, description)
}

// Finish closes the collect phase and returns the endnotes block.
func (c *Collector) Finish() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return "", ErrFinished
	}
	c.finished = true
	return c.reg.Render(c.key)
}

// Ref returns a component that renders content, registers it as the
// reference of footnote id, and writes the reference anchor in its place.
func (c *Collector) Ref(id, description string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if content != nil {
			if err := content.Render(ctx, &buf); err != nil {
				return err
			}
		}
		ref, err := c.Footnote(id, buf.String(), description)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, ref)
		return err
	})
}

// Endnotes returns a component that finishes the collector when rendered.
// Place it after every Ref of the document.
func (c *Collector) Endnotes() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		block, err := c.Finish()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, block)
		return err
	})
}
