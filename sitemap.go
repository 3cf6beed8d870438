package spacetraveling

import (
	"encoding/xml"
	"time"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) sitemapPage(posts []blog.Summary) (Page, error) {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
	}
	for _, p := range posts {
		lastMod := ""
		if t, ok := publicationTime(p.FirstPublicationDate); ok {
			lastMod = t.UTC().Format(time.DateOnly)
		}
		urls = append(urls, sitemapURL{
			Loc:     views.BuildURL(base, "post", p.UID),
			LastMod: lastMod,
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	return xmlPage("application/xml; charset=utf-8", sitemap, a.Config.ListingRevalidate)
}
