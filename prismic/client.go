// Package prismic is a thin client for a Prismic REST v2 repository.
//
// It only reads: it resolves the master ref, queries documents by type, uid
// or id, and follows the opaque next_page URLs the API hands out.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

var (
	// ErrNotFound is returned when no document matches a lookup.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignURL is returned when a page URL does not belong to the
	// configured repository.
	ErrForeignURL = errors.New("prismic: url does not belong to repository")
)

// Logger is the subset of echo.Logger the client logs through.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// QueryOptions narrows a documents/search query.
type QueryOptions struct {
	Ref      string // defaults to the master ref
	Lang     string // "" lets the API pick the master locale, "*" means all
	Page     int
	PageSize int
	OrderBy  string // e.g. "document.first_publication_date desc"
}

// Client talks to a single repository.
type Client struct {
	endpoint    *url.URL
	accessToken string
	httpClient  *http.Client
	logger      Logger
	refTTL      time.Duration

	mu         sync.Mutex
	ref        string
	refFetched time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the token used for private repositories.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.accessToken = token }
}

// WithHTTPClient replaces the default logging http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used by the default transport.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRefTTL sets how long the master ref is reused before it is fetched
// again (default 30s).
func WithRefTTL(d time.Duration) Option {
	return func(c *Client) { c.refTTL = d }
}

// New creates a client for endpoint, the repository's API URL
// (e.g. https://my-repo.cdn.prismic.io/api/v2).
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint must be an absolute http(s) url, got %q", endpoint)
	}
	c := &Client{endpoint: u, refTTL: 30 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New("prismic")
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(0, c.logger)
	}
	return c, nil
}

// Endpoint returns the repository API URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// MasterRef returns the current master ref, fetching it when the cached one
// is older than the ref TTL.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.ref != "" && time.Since(c.refFetched) < c.refTTL {
		ref := c.ref
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	u := *c.endpoint
	q := url.Values{}
	if c.accessToken != "" {
		q.Set("access_token", c.accessToken)
	}
	u.RawQuery = q.Encode()

	var info apiInfo
	if err := c.get(ctx, u.String(), &info, "api"); err != nil {
		return "", err
	}
	for _, r := range info.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.ref = r.Ref
			c.refFetched = time.Now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", errors.New("prismic: repository has no master ref")
}

// GetByType returns the first page (or opts.Page) of documents of typeName.
func (c *Client) GetByType(ctx context.Context, typeName string, opts QueryOptions) (Response, error) {
	return c.search(ctx, []string{predicateAt("document.type", typeName)}, opts, "GetByType")
}

// GetByUID returns the document of typeName whose uid is uid.
func (c *Client) GetByUID(ctx context.Context, typeName, uid string, opts QueryOptions) (Document, error) {
	return c.single(ctx, predicateAt("my."+typeName+".uid", uid), opts, "GetByUID")
}

// GetByID returns the document with the given id, whatever its type.
func (c *Client) GetByID(ctx context.Context, id string, opts QueryOptions) (Document, error) {
	return c.single(ctx, predicateAt("document.id", id), opts, "GetByID")
}

// FetchPage follows a next_page URL previously returned by the API.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (Response, error) {
	if !c.AllowsURL(pageURL) {
		return Response{}, ErrForeignURL
	}
	var out Response
	if err := c.get(ctx, pageURL, &out, "FetchPage"); err != nil {
		return Response{}, err
	}
	return out, nil
}

// AllowsURL reports whether raw points at this client's repository.
func (c *Client) AllowsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, c.endpoint.Host)
}

func (c *Client) single(ctx context.Context, predicate string, opts QueryOptions, op string) (Document, error) {
	opts.Page, opts.PageSize = 1, 1
	resp, err := c.search(ctx, []string{predicate}, opts, op)
	if err != nil {
		return Document{}, err
	}
	if len(resp.Results) == 0 {
		return Document{}, ErrNotFound
	}
	return resp.Results[0], nil
}

func (c *Client) search(ctx context.Context, predicates []string, opts QueryOptions, op string) (Response, error) {
	ref := opts.Ref
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			return Response{}, err
		}
	}

	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/documents/search"
	q := url.Values{}
	q.Set("ref", ref)
	for _, p := range predicates {
		q.Add("q", "["+p+"]")
	}
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.OrderBy != "" {
		q.Set("orderings", "["+opts.OrderBy+"]")
	}
	if c.accessToken != "" {
		q.Set("access_token", c.accessToken)
	}
	u.RawQuery = q.Encode()

	var out Response
	if err := c.get(ctx, u.String(), &out, op); err != nil {
		return Response{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any, op string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prismic %s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("prismic %s: decode: %w", op, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("prismic %s: status=%d body=%s", op, resp.StatusCode, string(body))
	}
}

// predicateAt builds an at() predicate, e.g. [at(document.type,"posts")].
func predicateAt(path, value string) string {
	return "[at(" + path + "," + strconv.Quote(value) + ")]"
}
