package endnotes

import (
	"bytes"
	"encoding/xml"
	"time"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderFeed returns an RSS 2.0 feed of pages.
func renderFeed(site SiteConfig, pages []Page) ([]byte, error) {
	items := make([]rssItem, 0, len(pages))
	for _, p := range pages {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        p.URL,
			Description: p.Summary,
			PubDate:     pubDate,
			GUID:        p.URL,
		})
	}
	return encodeXML(rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       site.Name,
			Link:        BuildURL(site.URL),
			Description: site.Description,
			Items:       items,
		},
	})
}

// renderSitemap returns a sitemap listing the index and every page.
func renderSitemap(site SiteConfig, pages []Page) ([]byte, error) {
	urls := []sitemapURL{{Loc: BuildURL(site.URL)}}
	for _, p := range pages {
		urls = append(urls, sitemapURL{Loc: p.URL, LastMod: p.Date})
	}
	return encodeXML(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
