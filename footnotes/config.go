package footnotes

import "strconv"

// Config holds the markup options for emitted footnotes. Zero values are
// replaced by defaults.
type Config struct {
	BaseClass string // CSS class prefix (default "Footnotes")
	Title     string // Endnotes heading text (default "Footnotes")
	TitleID   string // Heading id, referenced by aria-describedby (default "footnotes-label")

	// BackLinkLabel returns the accessible label of a back-link given the
	// footnote and its zero-based position in the list.
	BackLinkLabel func(fn Footnote, index int) string
}

func (c *Config) setDefaults() {
	if c.BaseClass == "" {
		c.BaseClass = "Footnotes"
	}
	if c.Title == "" {
		c.Title = "Footnotes"
	}
	if c.TitleID == "" {
		c.TitleID = "footnotes-label"
	}
	if c.BackLinkLabel == nil {
		c.BackLinkLabel = DefaultBackLinkLabel
	}
}

// DefaultBackLinkLabel returns "Back to reference N" with N one-based.
func DefaultBackLinkLabel(_ Footnote, index int) string {
	return "Back to reference " + strconv.Itoa(index+1)
}

// class returns the BEM-style class for suffix, or the base class when empty.
func (c *Config) class(suffix string) string {
	if suffix == "" {
		return c.BaseClass
	}
	return c.BaseClass + "__" + suffix
}
