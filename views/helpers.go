package views

import (
	"encoding/json"
	"html/template"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// LoadMoreURL is the htmx endpoint that appends the page after l.
func (l Listing) LoadMoreURL() string {
	if l.NextPage == "" {
		return ""
	}
	return "/posts/more/?next=" + url.QueryEscape(l.NextPage)
}

// httpURL returns s when it is an absolute http(s) URL, "" otherwise.
func httpURL(s string) string {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return s
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) template.JS {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Locale != "" {
		data["inLanguage"] = cfg.Locale
	}
	return marshalJS(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg SiteConfig, p PostPage) template.JS {
	postURL := BuildURL(cfg.URL, "post", p.Post.UID)
	data := map[string]interface{}{
		"@context":     "https://schema.org",
		"@type":        "BlogPosting",
		"headline":     p.Post.Title,
		"description":  p.Post.Subtitle,
		"url":          postURL,
		"timeRequired": "PT" + strconv.Itoa(p.ReadingMinutes) + "M",
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if p.ISODate != "" {
		data["datePublished"] = p.ISODate
	}
	if p.Post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  p.Post.Author,
		}
	}
	if img := httpURL(p.Post.BannerURL); img != "" {
		data["image"] = img
	}
	return marshalJS(data)
}

// marshalJS encodes v as JSON for a <script type="application/ld+json"> block.
// json.Marshal escapes <, > and & so the output cannot close the script tag.
func marshalJS(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
