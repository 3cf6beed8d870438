package spacetraveling

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/pagination"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// requestContext carries the request id on to the content service.
func requestContext(c echo.Context) context.Context {
	return prismic.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
}

// serveHit writes the page cached under key, if any. A stale page is still
// written and its regeneration starts in the background.
func (a *App) serveHit(c echo.Context, key string, gen Generator) (bool, error) {
	p, ok := a.Cache.Lookup(key)
	if !ok {
		return false, nil
	}
	state := "HIT"
	if !a.Cache.Fresh(p) {
		state = "STALE"
		a.Cache.Revalidate(requestContext(c), key, gen)
	}
	return true, writePage(c, p, state)
}

// serveCached writes the page cached under key, generating it first on a miss.
func (a *App) serveCached(c echo.Context, key string, gen Generator) error {
	if ok, err := a.serveHit(c, key, gen); ok {
		return err
	}
	p, err := a.Cache.Generate(requestContext(c), key, gen)
	if err != nil {
		return err
	}
	return writePage(c, p, "MISS")
}

// serveUncached renders a page for this request only.
func (a *App) serveUncached(c echo.Context, gen Generator) error {
	p, err := gen(requestContext(c))
	if err != nil {
		return err
	}
	return writePage(c, p, "BYPASS")
}

func (a *App) handleHome(c echo.Context) error {
	if ref := previewRef(c); ref != "" {
		return a.serveUncached(c, a.generateListing(ref))
	}
	return a.serveCached(c, listingKey, a.generateListing(""))
}

type loadMoreEntry struct {
	UID                  string  `json:"uid"`
	FirstPublicationDate *string `json:"first_publication_date"`
	Date                 string  `json:"date"`
	Title                string  `json:"title"`
	Subtitle             string  `json:"subtitle"`
	Author               string  `json:"author"`
	Link                 string  `json:"link"`
}

type loadMoreResponse struct {
	Results  []loadMoreEntry `json:"results"`
	NextPage *string         `json:"next_page"`
}

func newLoadMoreResponse(l views.Listing) loadMoreResponse {
	resp := loadMoreResponse{Results: make([]loadMoreEntry, 0, len(l.Entries))}
	for _, e := range l.Entries {
		resp.Results = append(resp.Results, loadMoreEntry{
			UID:                  e.UID,
			FirstPublicationDate: e.FirstPublicationDate,
			Date:                 e.Date,
			Title:                e.Title,
			Subtitle:             e.Subtitle,
			Author:               e.Author,
			Link:                 e.Link(),
		})
	}
	if l.NextPage != "" {
		next := l.NextPage
		resp.NextPage = &next
	}
	return resp
}

// handleLoadMore fetches the page after the one the listing ended on and
// returns its entries followed by a fresh load-more control.
func (a *App) handleLoadMore(c echo.Context) error {
	next := c.QueryParam("next")
	if next == "" || !a.Content.AllowsURL(next) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid next page")
	}
	preview := previewRef(c) != ""

	cursor := pagination.Resume(next)
	if err := cursor.LoadMore(requestContext(c), a.pageFetcher()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "could not load more posts").SetInternal(err)
	}
	entries, err := a.entries(cursor.Results(), preview)
	if err != nil {
		return err
	}
	listing := views.Listing{Entries: entries, NextPage: cursor.NextPage(), Preview: preview}

	c.Response().Header().Add(echo.HeaderVary, echo.HeaderAccept)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, newLoadMoreResponse(listing))
	}
	return Render(c, a.Views.PostList(listing))
}

func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("uid")
	if !ValidUID(uid) {
		return echo.ErrNotFound
	}
	if ref := previewRef(c); ref != "" {
		return a.serveUncached(c, a.generatePost(uid, ref))
	}

	key := postKey(uid)
	gen := a.generatePost(uid, "")
	if ok, err := a.serveHit(c, key, gen); ok {
		return err
	}
	if a.Cache.RecentlyFailed(key) {
		return echo.NewHTTPError(http.StatusBadGateway, "post generation failed")
	}
	if !a.Cache.Pending(key) {
		if !a.limiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many new pages requested")
		}
		a.Cache.Revalidate(requestContext(c), key, gen)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return Render(c, a.Views.Fallback(a.siteConfig(), uid))
}

// maxPreviewToken bounds the preview ref kept in the session cookie.
const maxPreviewToken = 2048

func (a *App) handlePreview(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" || len(token) > maxPreviewToken {
		return echo.NewHTTPError(http.StatusBadRequest, "missing preview token")
	}
	if err := setPreviewRef(c, token); err != nil {
		return err
	}
	target := "/"
	if id := c.QueryParam("documentId"); id != "" {
		doc, err := a.Content.GetByID(requestContext(c), id, prismic.QueryOptions{Ref: token})
		switch {
		case errors.Is(err, prismic.ErrNotFound):
		case err != nil:
			return echo.NewHTTPError(http.StatusBadGateway, "could not resolve preview document").SetInternal(err)
		default:
			target = a.linkTo(doc)
		}
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewRef(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// linkTo is the site route of doc, or the home page for anything that is
// not a post.
func (a *App) linkTo(doc prismic.Document) string {
	if doc.Type == a.Config.PostType && ValidUID(doc.UID) {
		return blog.Summary{UID: doc.UID}.Link()
	}
	return "/"
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.serveCached(c, sitemapKey, a.generateIndex(a.sitemapPage))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.serveCached(c, feedKey, a.generateIndex(a.feedPage))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + sitemapKey + "\n"
	return c.String(http.StatusOK, body)
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	switch {
	case wantsJSON(c):
		a.Echo.DefaultHTTPErrorHandler(err, c)
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(a.siteConfig()))
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError(a.siteConfig()))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
