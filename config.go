package spacetraveling

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/spacetraveling/blog"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`                                          // Site name (default "spacetraveling")
	URL         string `mapstructure:"url" validate:"required,url"`                   // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"`                                   // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`                                        // Publisher name for JSON-LD
	Locale      string `mapstructure:"locale" validate:"required,bcp47_language_tag"` // Display and enumeration locale (default "pt-BR")

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // SQLite page store (default "data/pages.db")

	PrismicEndpoint    string `mapstructure:"prismic_endpoint" validate:"required,url"` // e.g. https://repo.cdn.prismic.io/api/v2
	PrismicAccessToken string `mapstructure:"prismic_access_token"`
	PostType           string `mapstructure:"post_type"`                          // Custom type of posts (default "posts")
	PageSize           int    `mapstructure:"page_size" validate:"gte=0,lte=100"` // 0 keeps the API default

	ListingRevalidate time.Duration `mapstructure:"listing_revalidate" validate:"gt=0"` // default 24h
	PostRevalidate    time.Duration `mapstructure:"post_revalidate" validate:"gt=0"`    // default 30m
	GenerationLimit   int           `mapstructure:"generation_limit" validate:"gte=0"`  // on-demand generations per IP per minute (default 30)

	SessionSecret string `mapstructure:"session_secret" validate:"required,min=16"` // Required: signs and encrypts the preview session cookie
	CookieSecure  bool   `mapstructure:"cookie_secure"`                             // Set true for HTTPS

	BuildOnStart bool   `mapstructure:"build_on_start"`                                                 // Pre-generate every page before serving
	LogLevel     string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error off"` // default "info"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	c.Locale = blog.CanonicalLocale(c.Locale)
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/pages.db"
	}
	if c.PostType == "" {
		c.PostType = "posts"
	}
	if c.ListingRevalidate == 0 {
		c.ListingRevalidate = 24 * time.Hour
	}
	if c.PostRevalidate == 0 {
		c.PostRevalidate = 30 * time.Minute
	}
	if c.GenerationLimit == 0 {
		c.GenerationLimit = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration after defaults have been applied.
func (c SiteConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("spacetraveling: invalid config: %w", err)
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentClient replaces the Prismic client built from the config.
func WithContentClient(c ContentClient) Option {
	return func(a *App) {
		a.Content = c
	}
}

// WithViews overrides the default page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
