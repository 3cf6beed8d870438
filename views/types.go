package views

import "github.com/eringen/spacetraveling/blog"

// SiteConfig holds site-wide settings every template can read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Locale      string // BCP 47, e.g. "pt-BR"
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Entry is one post in the listing, with its date already formatted.
type Entry struct {
	blog.Summary
	Date    string
	ISODate string
}

// Listing is the state of the post listing: what has been loaded and where
// the next page lives.
type Listing struct {
	Entries  []Entry
	NextPage string // empty once every page has been loaded
	Preview  bool
}

// PostPage is a post ready for display.
type PostPage struct {
	Post           blog.Post
	Date           string
	ISODate        string
	ReadingMinutes int
	Preview        bool
}
