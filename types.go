package spacetraveling

import (
	"context"
	"net/http"
	"time"
)

// Page is a generated response stored in the page cache under its route.
type Page struct {
	Key         string // route, e.g. "/" or "/post/my-post/"
	Status      int    // 200, or 404 for a cached miss
	ContentType string
	Body        []byte
	GeneratedAt time.Time
	Revalidate  time.Duration // how long the page is served without regenerating
}

// Fresh reports whether p is still inside its revalidation window at now.
func (p Page) Fresh(now time.Time) bool {
	return now.Sub(p.GeneratedAt) < p.Revalidate
}

// negative reports whether p records a post the content service does not have.
func (p Page) negative() bool {
	return p.Status == http.StatusNotFound
}

// Generator produces the page for a route.
type Generator func(ctx context.Context) (Page, error)

const (
	listingKey = "/"
	sitemapKey = "/sitemap.xml"
	feedKey    = "/feed.xml"
)

func postKey(uid string) string {
	return "/post/" + uid + "/"
}
