// Package pagination implements the "load more" cursor behind the post
// listing: a growing, ordered sequence of summaries plus the token of the next
// unfetched page.
package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/eringen/spacetraveling/blog"
)

// ErrLoadInProgress is returned by LoadMore while another load on the same
// cursor is still waiting for its response.
var ErrLoadInProgress = errors.New("pagination: load already in progress")

// Page is one page of results as returned by the content service.
// An empty NextPage means there are no further pages.
type Page struct {
	Results  []blog.Summary
	NextPage string
}

// Fetcher retrieves the page addressed by an opaque next-page token.
type Fetcher interface {
	FetchPage(ctx context.Context, token string) (Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, token string) (Page, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, token string) (Page, error) {
	return f(ctx, token)
}

// Cursor accumulates pages in fetch order. It is owned by a single view.
type Cursor struct {
	mu       sync.Mutex
	results  []blog.Summary
	next     string
	inFlight bool
}

// New starts a cursor from the first page.
func New(first Page) *Cursor {
	results := make([]blog.Summary, len(first.Results))
	copy(results, first.Results)
	return &Cursor{results: results, next: first.NextPage}
}

// Resume starts an empty cursor that continues from token. It is used when
// only the next-page token survived between requests.
func Resume(token string) *Cursor {
	return &Cursor{next: token}
}

// Results returns a copy of everything loaded so far.
func (c *Cursor) Results() []blog.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]blog.Summary, len(c.results))
	copy(out, c.results)
	return out
}

// Len returns the number of loaded results.
func (c *Cursor) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// NextPage returns the token of the next unfetched page, or "".
func (c *Cursor) NextPage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// HasMore reports whether a "load more" control should be shown.
func (c *Cursor) HasMore() bool {
	return c.NextPage() != ""
}

// LoadMore fetches the next page and appends its results. It is a no-op once
// the cursor is exhausted. State only changes after a successful fetch; a
// failed fetch leaves results and the next token untouched.
func (c *Cursor) LoadMore(ctx context.Context, f Fetcher) error {
	c.mu.Lock()
	if c.next == "" {
		c.mu.Unlock()
		return nil
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrLoadInProgress
	}
	c.inFlight = true
	token := c.next
	c.mu.Unlock()

	page, err := f.FetchPage(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		return err
	}
	c.results = append(c.results, page.Results...)
	c.next = page.NextPage
	return nil
}

// Drain calls LoadMore until the cursor is exhausted or maxPages pages have
// been fetched. maxPages <= 0 means no limit. HasMore tells a drain stopped
// by the limit from a complete one.
func (c *Cursor) Drain(ctx context.Context, f Fetcher, maxPages int) error {
	for n := 0; c.HasMore(); n++ {
		if maxPages > 0 && n >= maxPages {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.LoadMore(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
