package spacetraveling_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/prismic"
)

const repoBase = "https://repo.cdn.example/api/v2"

var errUpstream = errors.New("upstream unavailable")

// fakeContent is an in-memory content service.
type fakeContent struct {
	mu       sync.Mutex
	first    prismic.Response
	pages    map[string]prismic.Response
	posts    map[string]prismic.Document
	failType bool
	failUIDs map[string]bool
	failPage map[string]bool

	typeQueries []prismic.QueryOptions
	uidCalls    map[string]int
	pageCalls   []string
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		pages:    make(map[string]prismic.Response),
		posts:    make(map[string]prismic.Document),
		failUIDs: make(map[string]bool),
		failPage: make(map[string]bool),
		uidCalls: make(map[string]int),
	}
}

func (f *fakeContent) GetByType(_ context.Context, typeName string, opts prismic.QueryOptions) (prismic.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeQueries = append(f.typeQueries, opts)
	if f.failType {
		return prismic.Response{}, errUpstream
	}
	if typeName != "posts" {
		return prismic.Response{}, nil
	}
	return f.first, nil
}

func (f *fakeContent) GetByUID(_ context.Context, _ string, uid string, _ prismic.QueryOptions) (prismic.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uidCalls[uid]++
	if f.failUIDs[uid] {
		return prismic.Document{}, errUpstream
	}
	doc, ok := f.posts[uid]
	if !ok {
		return prismic.Document{}, prismic.ErrNotFound
	}
	return doc, nil
}

func (f *fakeContent) GetByID(_ context.Context, id string, _ prismic.QueryOptions) (prismic.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.posts {
		if doc.ID == id {
			return doc, nil
		}
	}
	return prismic.Document{}, prismic.ErrNotFound
}

func (f *fakeContent) FetchPage(_ context.Context, pageURL string) (prismic.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls = append(f.pageCalls, pageURL)
	if f.failPage[pageURL] {
		return prismic.Response{}, errUpstream
	}
	resp, ok := f.pages[pageURL]
	if !ok {
		return prismic.Response{}, prismic.ErrNotFound
	}
	return resp, nil
}

func (f *fakeContent) AllowsURL(raw string) bool {
	return strings.HasPrefix(raw, "https://repo.cdn.example/")
}

func (f *fakeContent) uidCallCount(uid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uidCalls[uid]
}

func (f *fakeContent) lastTypeQuery() prismic.QueryOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.typeQueries[len(f.typeQueries)-1]
}

func (f *fakeContent) setFirstTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	results := append([]prismic.Document(nil), f.first.Results...)
	results[0] = postDoc(results[0].ID, results[0].UID, title, "2021-03-15T19:25:28+0000", "")
	f.first.Results = results
}

func (f *fakeContent) setFailType(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failType = fail
}

func strPtr(s string) *string { return &s }

// postDoc builds a post document with a single section whose body is text.
func postDoc(id, uid, title, published, text string) prismic.Document {
	data := map[string]any{
		"title":    title,
		"subtitle": "Subtitle of " + title,
		"author":   "Joseph Oliveira",
		"banner":   map[string]any{"url": "https://images.example/" + uid + ".png"},
		"content": []map[string]any{{
			"heading": "Section of " + title,
			"body": []map[string]any{
				{"type": "paragraph", "text": text, "spans": []any{}},
			},
		}},
	}
	raw, _ := json.Marshal(data)
	doc := prismic.Document{ID: id, UID: uid, Type: "posts", Lang: "pt-br", Data: raw}
	if published != "" {
		doc.FirstPublicationDate = strPtr(published)
	}
	return doc
}

// newBlog returns a fake repository with two posts on the first page and a
// third one behind page2.
func newBlog() *fakeContent {
	f := newFakeContent()
	page2 := "https://repo.cdn.example/api/v2/documents/search?page=2"
	first := postDoc("D1", "first", "Como utilizar Hooks", "2021-03-15T19:25:28+0000", "hooks are great")
	second := postDoc("D2", "second", "Criando um app CRA do zero", "2021-03-25T19:27:35+0000", "create react app")
	third := postDoc("D3", "third", "Terceiro post", "2021-04-01T10:00:00+0000", "third post body")
	f.first = prismic.Response{Page: 1, NextPage: strPtr(page2), Results: []prismic.Document{first, second}}
	f.pages[page2] = prismic.Response{Page: 2, Results: []prismic.Document{third}}
	for _, d := range []prismic.Document{first, second, third} {
		f.posts[d.UID] = d
	}
	return f
}

func testConfig(t *testing.T) spacetraveling.SiteConfig {
	t.Helper()
	return spacetraveling.SiteConfig{
		Name:            "spacetraveling",
		URL:             "https://blog.example.com",
		Description:     "Posts about space",
		Locale:          "pt-BR",
		DatabasePath:    filepath.Join(t.TempDir(), "pages.db"),
		PrismicEndpoint: repoBase,
		SessionSecret:   "0123456789abcdef0123456789abcdef",
		LogLevel:        "off",
	}
}

func newTestApp(t *testing.T, cfg spacetraveling.SiteConfig, content spacetraveling.ContentClient) *spacetraveling.App {
	t.Helper()
	app := spacetraveling.New(cfg,
		spacetraveling.WithContentClient(content),
		spacetraveling.WithStaticDir(t.TempDir()),
	)
	require.NoError(t, app.Init())
	t.Cleanup(func() {
		waitBackground(t, app)
		app.Close()
	})
	return app
}

func waitBackground(t *testing.T, app *spacetraveling.App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Cache.Wait(ctx))
}

func request(app *spacetraveling.App, path string, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func withCookies(cookies []*http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func withHeader(key, value string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func countEntries(body string) int {
	return strings.Count(body, `<div class="post">`)
}
