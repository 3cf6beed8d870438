// Package views holds the default page components. Each component is a
// templ.Component backed by an embedded html/template layout.
package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"richtext": func(body []blog.Paragraph) template.HTML {
		var buf bytes.Buffer
		richtext.Render(&buf, body)
		return template.HTML(buf.String())
	},
}

var (
	base  = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/header.html", "templates/entries.html"))
	pages = map[string]*template.Template{
		"home":     page("home.html"),
		"post":     page("post.html"),
		"fallback": page("fallback.html"),
		"notfound": page("notfound.html"),
		"error":    page("error.html"),
	}
)

func page(file string) *template.Template {
	return template.Must(template.Must(base.Clone()).ParseFS(templateFS, "templates/"+file))
}

// pageData is what the layout template sees.
type pageData struct {
	Site    SiteConfig
	Meta    PageMeta
	Preview bool
	JSONLD  template.JS
	Listing Listing
	Page    PostPage
}

func render(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return pages[name].ExecuteTemplate(w, "layout", data)
	})
}

// Home renders the full listing page.
func Home(cfg SiteConfig, l Listing) templ.Component {
	return render("home", pageData{
		Site: cfg,
		Meta: PageMeta{
			Title:       cfg.Name,
			Description: cfg.Description,
			URL:         BuildURL(cfg.URL),
			OGType:      "website",
		},
		Preview: l.Preview,
		JSONLD:  WebsiteJsonLD(cfg),
		Listing: l,
	})
}

// PostList renders only the entries of l followed by the load-more control.
// It is the response to a load-more request and replaces the previous control.
func PostList(l Listing) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return base.ExecuteTemplate(w, "entries", l)
	})
}

// Post renders a post detail page.
func Post(cfg SiteConfig, p PostPage) templ.Component {
	title := p.Post.Title
	if cfg.Name != "" {
		title += " | " + cfg.Name
	}
	return render("post", pageData{
		Site: cfg,
		Meta: PageMeta{
			Title:       title,
			Description: p.Post.Subtitle,
			URL:         BuildURL(cfg.URL, "post", p.Post.UID),
			OGType:      "article",
			Image:       httpURL(p.Post.BannerURL),
		},
		Preview: p.Preview,
		JSONLD:  BlogPostingJsonLD(cfg, p),
		Page:    p,
	})
}

// Fallback is the placeholder served while a post is generated on demand.
// It reloads itself until the generated page replaces it.
func Fallback(cfg SiteConfig, uid string) templ.Component {
	return render("fallback", pageData{
		Site: cfg,
		Meta: PageMeta{
			Title:  "Carregando... | " + cfg.Name,
			URL:    BuildURL(cfg.URL, "post", uid),
			OGType: "website",
		},
	})
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return render("notfound", pageData{
		Site: cfg,
		Meta: PageMeta{Title: "Post não encontrado | " + cfg.Name, OGType: "website"},
	})
}

// ServerError renders the 5xx page.
func ServerError(cfg SiteConfig) templ.Component {
	return render("error", pageData{
		Site: cfg,
		Meta: PageMeta{Title: "Erro | " + cfg.Name, OGType: "website"},
	})
}
