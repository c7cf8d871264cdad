package footnotes

import (
	"html"
	"strings"
)

// Attr is a single HTML attribute.
type Attr struct {
	Name  string
	Value string
}

// FormatAttrs joins attributes as name="value" pairs separated by a single
// space, in the order given. Attributes with an empty value are skipped.
// Values are HTML-escaped.
func FormatAttrs(attrs ...Attr) string {
	var b strings.Builder
	for _, a := range attrs {
		if a.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}
