// Package endnotes builds a blog from Markdown posts that use page-scoped
// footnotes. Posts write footnotes with a paired shortcode:
//
//	Read more {% footnote "note-1", "Extra context." %}here{% endfootnote %}.
//
// Each reference becomes an inline anchor while the post is evaluated, and the
// page layout renders the collected notes as an endnotes block after the
// post body.
//
// Sites read documents from a directory (DirSource) or a SQLite database
// (Store), build them with a Builder, and either write the result to disk or
// serve it from memory with the preview Server, optionally rebuilding on
// changes with a Watcher.
package endnotes
