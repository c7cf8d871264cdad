package endnotes

// Document is a source post. Key identifies the document for footnote
// registration and is the logical source path (e.g. "_posts/hello.md") for
// documents read from disk.
type Document struct {
	Key       string
	Slug      string
	Title     string
	Date      string // YYYY-MM-DD
	Tags      []string
	Summary   string
	Content   string
	Published bool
}

// Page is a document rendered by a build.
type Page struct {
	Document
	URL       string // canonical URL
	Path      string // output path relative to SiteConfig.OutputDir
	HTML      []byte
	Footnotes int
}

// PageMeta carries per-page metadata into the <head> of a layout.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical
}
