package spacetraveling

import (
	"context"
	"fmt"
	"strings"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/pagination"
	"github.com/eringen/spacetraveling/prismic"
)

// ContentClient is the content service the site reads from. *prismic.Client
// implements it.
type ContentClient interface {
	GetByType(ctx context.Context, typeName string, opts prismic.QueryOptions) (prismic.Response, error)
	GetByUID(ctx context.Context, typeName, uid string, opts prismic.QueryOptions) (prismic.Document, error)
	GetByID(ctx context.Context, id string, opts prismic.QueryOptions) (prismic.Document, error)
	FetchPage(ctx context.Context, pageURL string) (prismic.Response, error)
	AllowsURL(raw string) bool
}

// maxEnumeratedPages bounds how many listing pages a path enumeration follows.
const maxEnumeratedPages = 500

// postData is the data field of a post document.
type postData struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Author   string        `json:"author"`
	Banner   prismic.Image `json:"banner"`
	Content  []struct {
		Heading string           `json:"heading"`
		Body    prismic.RichText `json:"body"`
	} `json:"content"`
}

func decodePost(doc prismic.Document) (postData, error) {
	var d postData
	if err := doc.DecodeData(&d); err != nil {
		return postData{}, fmt.Errorf("decode post %q: %w", doc.UID, err)
	}
	return d, nil
}

func toSummary(doc prismic.Document) (blog.Summary, error) {
	d, err := decodePost(doc)
	if err != nil {
		return blog.Summary{}, err
	}
	return summaryOf(doc, d), nil
}

func summaryOf(doc prismic.Document, d postData) blog.Summary {
	return blog.Summary{
		UID:                  doc.UID,
		FirstPublicationDate: doc.FirstPublicationDate,
		Title:                d.Title,
		Subtitle:             d.Subtitle,
		Author:               d.Author,
	}
}

func toPost(doc prismic.Document) (blog.Post, error) {
	d, err := decodePost(doc)
	if err != nil {
		return blog.Post{}, err
	}
	post := blog.Post{
		Summary:   summaryOf(doc, d),
		BannerURL: d.Banner.URL,
		Content:   make([]blog.ContentBlock, 0, len(d.Content)),
	}
	for _, c := range d.Content {
		block := blog.ContentBlock{Heading: c.Heading, Body: make([]blog.Paragraph, 0, len(c.Body))}
		for _, b := range c.Body {
			block.Body = append(block.Body, toParagraph(b))
		}
		post.Content = append(post.Content, block)
	}
	return post, nil
}

func toParagraph(b prismic.RichTextBlock) blog.Paragraph {
	p := blog.Paragraph{Type: b.Type, Text: b.Text}
	for _, s := range b.Spans {
		span := blog.Span{Start: s.Start, End: s.End, Type: s.Type}
		if s.Data != nil {
			span.URL = s.Data.URL
		}
		p.Spans = append(p.Spans, span)
	}
	return p
}

func toPage(resp prismic.Response) (pagination.Page, error) {
	page := pagination.Page{
		Results:  make([]blog.Summary, 0, len(resp.Results)),
		NextPage: resp.Next(),
	}
	for _, doc := range resp.Results {
		s, err := toSummary(doc)
		if err != nil {
			return pagination.Page{}, err
		}
		page.Results = append(page.Results, s)
	}
	return page, nil
}

// pageFetcher follows next_page URLs through the content client.
func (a *App) pageFetcher() pagination.Fetcher {
	return pagination.FetcherFunc(func(ctx context.Context, token string) (pagination.Page, error) {
		resp, err := a.Content.FetchPage(ctx, token)
		if err != nil {
			return pagination.Page{}, err
		}
		return toPage(resp)
	})
}

// firstPage fetches the first listing page, unfiltered, as the home page shows it.
func (a *App) firstPage(ctx context.Context, ref string) (pagination.Page, error) {
	resp, err := a.Content.GetByType(ctx, a.Config.PostType, prismic.QueryOptions{
		Ref:      ref,
		PageSize: a.Config.PageSize,
	})
	if err != nil {
		return pagination.Page{}, fmt.Errorf("fetch listing: %w", err)
	}
	return toPage(resp)
}

// enumerate lists every post in the site locale, following all pages.
func (a *App) enumerate(ctx context.Context, ref string) ([]blog.Summary, error) {
	resp, err := a.Content.GetByType(ctx, a.Config.PostType, prismic.QueryOptions{
		Ref:      ref,
		Lang:     strings.ToLower(a.Config.Locale),
		PageSize: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate posts: %w", err)
	}
	first, err := toPage(resp)
	if err != nil {
		return nil, err
	}
	cursor := pagination.New(first)
	if err := cursor.Drain(ctx, a.pageFetcher(), maxEnumeratedPages); err != nil {
		return nil, fmt.Errorf("enumerate posts: %w", err)
	}
	if cursor.HasMore() {
		a.Echo.Logger.Warnf("enumerate posts: stopped after %d more pages with %d posts, the path list is incomplete",
			maxEnumeratedPages, cursor.Len())
	}
	return cursor.Results(), nil
}
