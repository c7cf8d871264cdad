package endnotes

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PageData is passed to the page layout of every document.
type PageData struct {
	Site     SiteConfig
	Meta     PageMeta
	Document Document

	// Body is the rendered document content. Endnotes writes the footnotes
	// block and must be rendered after Body.
	Body     templ.Component
	Endnotes templ.Component
}

// Views holds the templ components used to lay out pages. This lets a site
// own its templates while the builder handles footnote evaluation order.
type Views struct {
	Page        func(PageData) templ.Component
	Index       func(site SiteConfig, pages []Page) templ.Component
	NotFound    func(site SiteConfig) templ.Component
	ServerError func(site SiteConfig) templ.Component
}

func defaultViews() Views {
	return Views{
		Page:        PageLayout,
		Index:       IndexLayout,
		NotFound:    NotFoundLayout,
		ServerError: ServerErrorLayout,
	}
}

// rawHTML writes s unescaped.
func rawHTML(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func writeHead(w io.Writer, site SiteConfig, meta PageMeta) error {
	title := meta.Title
	if title == "" {
		title = site.Name
	} else {
		title += " | " + site.Name
	}
	_, err := io.WriteString(w, "<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n"+
		"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n"+
		"<title>"+templ.EscapeString(title)+"</title>\n")
	if err != nil {
		return err
	}
	if meta.Description != "" {
		if _, err := io.WriteString(w, "<meta name=\"description\" content=\""+templ.EscapeString(meta.Description)+"\">\n"); err != nil {
			return err
		}
	}
	if meta.URL != "" {
		if _, err := io.WriteString(w, "<link rel=\"canonical\" href=\""+templ.EscapeString(meta.URL)+"\">\n"); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "</head>\n<body>\n")
	return err
}

// PageLayout renders a post: its body inside an article, followed by the
// endnotes.
func PageLayout(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHead(w, d.Site, d.Meta); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<main>\n<article>\n<h1>"+templ.EscapeString(d.Document.Title)+"</h1>\n"); err != nil {
			return err
		}
		if d.Document.Date != "" {
			if _, err := io.WriteString(w, "<time datetime=\""+templ.EscapeString(d.Document.Date)+"\">"+templ.EscapeString(d.Document.Date)+"</time>\n"); err != nil {
				return err
			}
		}
		if err := d.Body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</article>\n"); err != nil {
			return err
		}
		if err := d.Endnotes.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</main>\n</body>\n</html>\n")
		return err
	})
}

// IndexLayout renders the list of built posts.
func IndexLayout(site SiteConfig, pages []Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHead(w, site, PageMeta{Description: site.Description, URL: BuildURL(site.URL)}); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<main>\n<h1>"+templ.EscapeString(site.Name)+"</h1>\n<ul>\n"); err != nil {
			return err
		}
		for _, p := range pages {
			line := "<li><a href=\"/blog/" + PathEscape(p.Slug) + "/\">" + templ.EscapeString(p.Title) + "</a>"
			if p.Date != "" {
				line += " <time datetime=\"" + templ.EscapeString(p.Date) + "\">" + templ.EscapeString(p.Date) + "</time>"
			}
			if _, err := io.WriteString(w, line+"</li>\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>\n</main>\n</body>\n</html>\n")
		return err
	})
}

// NotFoundLayout renders the 404 page.
func NotFoundLayout(site SiteConfig) templ.Component {
	return messageLayout(site, "Not found", "The page you are looking for does not exist.")
}

// ServerErrorLayout renders the 500 page.
func ServerErrorLayout(site SiteConfig) templ.Component {
	return messageLayout(site, "Something went wrong", "The page could not be built.")
}

func messageLayout(site SiteConfig, title, msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeHead(w, site, PageMeta{Title: title}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "<main>\n<h1>"+templ.EscapeString(title)+"</h1>\n<p>"+templ.EscapeString(msg)+"</p>\n</main>\n</body>\n</html>\n")
		return err
	})
}
