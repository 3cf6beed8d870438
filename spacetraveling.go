// Package spacetraveling serves a blog whose posts live in a Prismic
// repository. The home page lists posts with an htmx "load more" control and
// every post gets its own page with a reading time estimate.
//
// Pages are generated from the content service, kept in a page cache backed
// by SQLite and served stale while they are regenerated in the background.
// Posts that were never generated are built on demand behind a loading page.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// ViewFuncs holds the components the App renders. DefaultViews returns the
// built-in ones; any of them can be replaced to customize the site.
type ViewFuncs struct {
	Home        func(cfg views.SiteConfig, l views.Listing) templ.Component
	PostList    func(l views.Listing) templ.Component
	Post        func(cfg views.SiteConfig, p views.PostPage) templ.Component
	Fallback    func(cfg views.SiteConfig, uid string) templ.Component
	NotFound    func(cfg views.SiteConfig) templ.Component
	ServerError func(cfg views.SiteConfig) templ.Component
}

// DefaultViews returns the components of the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		PostList:    views.PostList,
		Post:        views.Post,
		Fallback:    views.Fallback,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central spacetraveling application. It wires together the
// content client, page cache, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PageCache
	Content ContentClient
	Views   ViewFuncs

	limiter      *GenerationLimiter
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(ParseLogLevel(cfg.LogLevel))

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration and sets up the store, content client,
// cache, middleware and routes. It does not contact the content service.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store

	if a.Content == nil {
		client, err := prismic.New(a.Config.PrismicEndpoint,
			prismic.WithAccessToken(a.Config.PrismicAccessToken),
			prismic.WithLogger(a.Echo.Logger),
		)
		if err != nil {
			return fmt.Errorf("spacetraveling: init content client: %w", err)
		}
		a.Content = client
	}

	a.Cache = NewPageCache(a.Store, a.Echo.Logger)
	if err := a.Cache.Load(); err != nil {
		return fmt.Errorf("spacetraveling: load pages: %w", err)
	}

	a.limiter = NewGenerationLimiter(a.Config.GenerationLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the App if needed, optionally pre-generates every page,
// and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if a.Config.BuildOnStart {
		report, err := a.Build(context.Background())
		if err != nil {
			// Pages that failed are generated on demand instead.
			a.Echo.Logger.Errorf("build: %v", err)
		} else {
			a.Echo.Logger.Infof("build: %s", report)
		}
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server and waits for background generations.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if a.Cache != nil {
		err = errors.Join(err, a.Cache.Wait(ctx))
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded defaults, unless the user's static dir overrides them.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	for _, name := range []string{"styles.css", "logo.svg"} {
		if _, err := os.Stat(filepath.Join(a.staticDir, name)); err == nil {
			continue
		}
		e.GET("/public/"+name, embeddedHandler)
	}
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)

	e.GET(sitemapKey, a.handleSitemap)
	e.GET(feedKey, a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleLoadMore)
	e.GET("/post/:uid/", a.handlePost)

	e.GET("/api/preview/", a.handlePreview)
	e.GET("/api/exit-preview/", a.handleExitPreview)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
