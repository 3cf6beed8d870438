package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	*httptest.Server
	apiCalls    atomic.Int32
	lastQuery   atomic.Value
	searchCalls atomic.Int32
}

func newFakeRepo(t *testing.T) *fakeRepo {
	t.Helper()
	f := &fakeRepo{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"refs": []map[string]any{
				{"id": "preview", "ref": "other", "isMasterRef": false},
				{"id": "master", "ref": "master-ref", "isMasterRef": true},
			},
		})
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		f.lastQuery.Store(r.URL.Query())
		q := r.URL.Query()
		switch q["q"][0] {
		case `[[at(document.type,"posts")]]`:
			next := f.URL + "/api/v2/documents/search?page=2&ref=master-ref&q=" + "%5B%5Bat%28document.type%2C%22posts%22%29%5D%5D"
			if q.Get("page") == "2" {
				_, _ = w.Write([]byte(`{"page":2,"next_page":null,"results":[{"uid":"third","type":"posts"}]}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"page":      1,
				"next_page": next,
				"results": []map[string]any{
					{"uid": "first", "type": "posts", "first_publication_date": "2021-03-15T19:25:28+0000", "data": map[string]any{"title": "One"}},
					{"uid": "second", "type": "posts"},
				},
			})
		case `[[at(my.posts.uid,"known")]]`:
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":"X1","uid":"known","type":"posts","data":{"title":"Known"}}]}`))
		case `[[at(my.posts.uid,"broken")]]`:
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
		}
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeRepo, opts ...Option) *Client {
	t.Helper()
	c, err := New(f.URL+"/api/v2", opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	_, err := New("/api/v2")
	assert.Error(t, err)
	_, err = New("ftp://example.com/api/v2")
	assert.Error(t, err)
}

func TestGetByTypeAndFetchPage(t *testing.T) {
	f := newFakeRepo(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	resp, err := c.GetByType(ctx, "posts", QueryOptions{Lang: "pt-BR", PageSize: 2})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "first", resp.Results[0].UID)
	require.NotNil(t, resp.Results[0].FirstPublicationDate)
	assert.NotEmpty(t, resp.Next())

	q := f.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"master-ref"}, q["ref"])
	assert.Equal(t, []string{"pt-BR"}, q["lang"])
	assert.Equal(t, []string{"2"}, q["pageSize"])

	var data struct {
		Title string `json:"title"`
	}
	require.NoError(t, resp.Results[0].DecodeData(&data))
	assert.Equal(t, "One", data.Title)

	page2, err := c.FetchPage(ctx, resp.Next())
	require.NoError(t, err)
	require.Len(t, page2.Results, 1)
	assert.Equal(t, "third", page2.Results[0].UID)
	assert.Equal(t, "", page2.Next())
}

func TestMasterRefIsCached(t *testing.T) {
	f := newFakeRepo(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.GetByType(ctx, "posts", QueryOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.apiCalls.Load())
}

func TestExplicitRefSkipsMasterLookup(t *testing.T) {
	f := newFakeRepo(t)
	c := newTestClient(t, f)

	_, err := c.GetByType(context.Background(), "posts", QueryOptions{Ref: "preview-ref"})
	require.NoError(t, err)
	assert.Equal(t, int32(0), f.apiCalls.Load())
	q := f.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"preview-ref"}, q["ref"])
}

func TestGetByUID(t *testing.T) {
	f := newFakeRepo(t)
	c := newTestClient(t, f)
	ctx := context.Background()

	doc, err := c.GetByUID(ctx, "posts", "known", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "X1", doc.ID)

	_, err = c.GetByUID(ctx, "posts", "missing", QueryOptions{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetByUID(ctx, "posts", "broken", QueryOptions{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "status=500")
}

func TestFetchPageRejectsForeignHosts(t *testing.T) {
	f := newFakeRepo(t)
	c := newTestClient(t, f)

	_, err := c.FetchPage(context.Background(), "http://169.254.169.254/latest/meta-data")
	assert.ErrorIs(t, err, ErrForeignURL)
	assert.Equal(t, int32(0), f.searchCalls.Load())

	assert.True(t, c.AllowsURL(f.URL+"/api/v2/documents/search?page=2"))
	assert.False(t, c.AllowsURL("javascript:alert(1)"))
	assert.False(t, c.AllowsURL("/relative"))
}

func TestAccessTokenIsSent(t *testing.T) {
	f := newFakeRepo(t)
	c := newTestClient(t, f, WithAccessToken("secret"))

	_, err := c.GetByType(context.Background(), "posts", QueryOptions{})
	require.NoError(t, err)
	q := f.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"secret"}, q["access_token"])
}

func TestRequestIDIsForwarded(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Request-Id"))
		_, _ = w.Write([]byte(`{"refs":[{"ref":"m","isMasterRef":true}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api/v2")
	require.NoError(t, err)
	_, err = c.MasterRef(WithRequestID(context.Background(), "req-42"))
	require.NoError(t, err)
	assert.Equal(t, "req-42", got.Load())
}
