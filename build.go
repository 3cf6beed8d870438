package spacetraveling

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// buildConcurrency bounds how many posts are generated at once.
const buildConcurrency = 4

// BuildReport summarizes a Build run.
type BuildReport struct {
	Pages    int
	Posts    int
	NotFound int
	Skipped  int
	Duration time.Duration
}

func (r BuildReport) String() string {
	return fmt.Sprintf("%d pages (%d posts, %d not found, %d skipped) in %s",
		r.Pages, r.Posts, r.NotFound, r.Skipped, r.Duration.Round(time.Millisecond))
}

// Build generates the listing, every post found by path enumeration, the
// sitemap and the feed, and stores them in the page cache.
func (a *App) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	var report BuildReport

	if _, err := a.Cache.Generate(ctx, listingKey, a.generateListing("")); err != nil {
		return report, fmt.Errorf("build %s: %w", listingKey, err)
	}
	report.Pages++

	posts, err := a.enumerate(ctx, "")
	if err != nil {
		return report, fmt.Errorf("build: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildConcurrency)
	for _, s := range posts {
		if !ValidUID(s.UID) {
			a.Echo.Logger.Warnf("build: skipping post with unusable uid %q", s.UID)
			report.Skipped++
			continue
		}
		key := postKey(s.UID)
		gen := a.generatePost(s.UID, "")
		g.Go(func() error {
			p, err := a.Cache.Generate(gctx, key, gen)
			if err != nil {
				return fmt.Errorf("build %s: %w", key, err)
			}
			mu.Lock()
			defer mu.Unlock()
			report.Pages++
			report.Posts++
			if p.Status == http.StatusNotFound {
				report.NotFound++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for key, render := range map[string]func() (Page, error){
		sitemapKey: func() (Page, error) { return a.sitemapPage(posts) },
		feedKey:    func() (Page, error) { return a.feedPage(posts) },
	} {
		p, err := render()
		if err != nil {
			return report, fmt.Errorf("build %s: %w", key, err)
		}
		p.Key = key
		if err := a.Cache.Put(p); err != nil {
			return report, fmt.Errorf("build %s: %w", key, err)
		}
		report.Pages++
	}

	report.Duration = time.Since(start)
	return report, nil
}
