package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Locale:      a.Config.Locale,
	}
}

// displayDate formats a publication date. Drafts seen through a preview ref
// have no publication date yet and get an empty one.
func (a *App) displayDate(raw *string, preview bool) (date, iso string, err error) {
	date, err = blog.FormatDate(raw, a.Config.Locale)
	if err != nil {
		if preview && errors.Is(err, blog.ErrNoPublicationDate) {
			return "", "", nil
		}
		return "", "", err
	}
	return date, isoDate(*raw), nil
}

// entries formats summaries for display.
func (a *App) entries(summaries []blog.Summary, preview bool) ([]views.Entry, error) {
	out := make([]views.Entry, 0, len(summaries))
	for _, s := range summaries {
		date, iso, err := a.displayDate(s.FirstPublicationDate, preview)
		if err != nil {
			return nil, fmt.Errorf("post %q: %w", s.UID, err)
		}
		out = append(out, views.Entry{Summary: s, Date: date, ISODate: iso})
	}
	return out, nil
}

// generateListing renders the first listing page. An empty ref reads the
// published content.
func (a *App) generateListing(ref string) Generator {
	return func(ctx context.Context) (Page, error) {
		first, err := a.firstPage(ctx, ref)
		if err != nil {
			return Page{}, err
		}
		entries, err := a.entries(first.Results, ref != "")
		if err != nil {
			return Page{}, err
		}
		listing := views.Listing{Entries: entries, NextPage: first.NextPage, Preview: ref != ""}
		return renderPage(ctx, http.StatusOK, a.Config.ListingRevalidate, a.Views.Home(a.siteConfig(), listing))
	}
}

// generatePost renders the detail page of uid. A post the content service
// does not know becomes a cacheable 404 page.
func (a *App) generatePost(uid, ref string) Generator {
	return func(ctx context.Context) (Page, error) {
		doc, err := a.Content.GetByUID(ctx, a.Config.PostType, uid, prismic.QueryOptions{Ref: ref})
		if errors.Is(err, prismic.ErrNotFound) {
			return renderPage(ctx, http.StatusNotFound, a.Config.PostRevalidate, a.Views.NotFound(a.siteConfig()))
		}
		if err != nil {
			return Page{}, fmt.Errorf("fetch post %q: %w", uid, err)
		}
		post, err := toPost(doc)
		if err != nil {
			return Page{}, err
		}
		date, iso, err := a.displayDate(post.FirstPublicationDate, ref != "")
		if err != nil {
			return Page{}, fmt.Errorf("post %q: %w", uid, err)
		}
		page := views.PostPage{
			Post:           post,
			Date:           date,
			ISODate:        iso,
			ReadingMinutes: blog.ReadingMinutes(post.Content),
			Preview:        ref != "",
		}
		return renderPage(ctx, http.StatusOK, a.Config.PostRevalidate, a.Views.Post(a.siteConfig(), page))
	}
}

// generateIndex renders a document built from every post, such as the
// sitemap or the feed.
func (a *App) generateIndex(render func([]blog.Summary) (Page, error)) Generator {
	return func(ctx context.Context) (Page, error) {
		posts, err := a.enumerate(ctx, "")
		if err != nil {
			return Page{}, err
		}
		return render(posts)
	}
}
