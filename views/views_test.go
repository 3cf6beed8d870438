package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/spacetraveling/blog"
)

var testSite = SiteConfig{
	Name:   "spacetraveling",
	URL:    "https://blog.example.com",
	Locale: "pt-BR",
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func entry(uid, title string) Entry {
	return Entry{
		Summary: blog.Summary{UID: uid, Title: title, Subtitle: "sub " + uid, Author: "Joseph Oliveira"},
		Date:    "15 mar 2021",
		ISODate: "2021-03-15T19:25:28+0000",
	}
}

func TestHomeShowsEntriesAndLoadMore(t *testing.T) {
	out := renderString(t, Home(testSite, Listing{
		Entries:  []Entry{entry("como-utilizar-hooks", "Como utilizar Hooks"), entry("criando-um-app", "Criando um app")},
		NextPage: "https://repo.cdn.prismic.io/api/v2/documents/search?page=2",
	}))

	assert.Equal(t, 2, strings.Count(out, `class="post"`))
	assert.Contains(t, out, `href="/post/como-utilizar-hooks/"`)
	assert.Contains(t, out, "Como utilizar Hooks")
	assert.Contains(t, out, "15 mar 2021")
	assert.Contains(t, out, "Joseph Oliveira")
	assert.Contains(t, out, "Carregar mais posts")
	assert.Contains(t, out, "/posts/more/?next=https%3A%2F%2Frepo.cdn.prismic.io")
	// a second click while a page is loading is dropped by the browser
	assert.Contains(t, out, `hx-sync="this:drop"`)
	assert.Contains(t, out, `hx-disabled-elt="this"`)
	assert.Contains(t, out, `<html lang="pt-BR">`)
	assert.Contains(t, out, `src="/public/logo.svg"`)
}

func TestPostListWithoutNextPageHidesControl(t *testing.T) {
	out := renderString(t, PostList(Listing{Entries: []Entry{entry("a", "A")}}))
	assert.Equal(t, 1, strings.Count(out, `class="post"`))
	assert.NotContains(t, out, "Carregar mais posts")
	assert.NotContains(t, out, "<html")
}

func TestHomeEscapesContent(t *testing.T) {
	out := renderString(t, Home(testSite, Listing{Entries: []Entry{entry("x", "<script>alert(1)</script>")}}))
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestPostRendersBlocksInOrder(t *testing.T) {
	p := PostPage{
		Post: blog.Post{
			Summary:   blog.Summary{UID: "hooks", Title: "Hooks", Author: "Danilo"},
			BannerURL: "https://images.prismic.io/banner.png",
			Content: []blog.ContentBlock{
				{Heading: "Primeiro", Body: []blog.Paragraph{{Type: "paragraph", Text: "p1"}, {Type: "paragraph", Text: "p2"}}},
				{Heading: "Segundo", Body: []blog.Paragraph{{Type: "paragraph", Text: "p3"}}},
			},
		},
		Date:           "25 mar 2021",
		ReadingMinutes: 4,
	}
	out := renderString(t, Post(testSite, p))

	assert.Contains(t, out, `src="https://images.prismic.io/banner.png"`)
	assert.Contains(t, out, "4 min")
	assert.Contains(t, out, "25 mar 2021")
	order := []string{"Primeiro", "<p>p1</p>", "<p>p2</p>", "Segundo", "<p>p3</p>"}
	last := -1
	for _, s := range order {
		i := strings.Index(out, s)
		require.NotEqual(t, -1, i, "missing %q", s)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}
	assert.Contains(t, out, `"@type":"BlogPosting"`)
	assert.Contains(t, out, `"timeRequired":"PT4M"`)
}

func TestPostRejectsUnsafeBanner(t *testing.T) {
	p := PostPage{Post: blog.Post{Summary: blog.Summary{UID: "x"}, BannerURL: "javascript:alert(1)"}}
	out := renderString(t, Post(testSite, p))
	assert.NotContains(t, out, "javascript:alert(1)")
}

func TestFallbackRefreshes(t *testing.T) {
	out := renderString(t, Fallback(testSite, "novo-post"))
	assert.Contains(t, out, "Carregando...")
	assert.Contains(t, out, `http-equiv="refresh"`)
}

func TestPreviewBanner(t *testing.T) {
	out := renderString(t, Home(testSite, Listing{Preview: true}))
	assert.Contains(t, out, "/api/exit-preview/")

	out = renderString(t, Home(testSite, Listing{}))
	assert.NotContains(t, out, "/api/exit-preview/")
}

func TestErrorPages(t *testing.T) {
	assert.Contains(t, renderString(t, NotFound(testSite)), "Post não encontrado")
	assert.Contains(t, renderString(t, ServerError(testSite)), "Algo deu errado")
}

func TestLoadMoreURL(t *testing.T) {
	assert.Equal(t, "", Listing{}.LoadMoreURL())
	assert.Equal(t, "/posts/more/?next=%2Fpage2", Listing{NextPage: "/page2"}.LoadMoreURL())
}
