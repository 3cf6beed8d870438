package prismic

import (
	"context"
	"net/http"
	"time"
)

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID returns a context whose outbound requests carry id in the
// X-Request-Id header.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// loggingRoundTripper logs every outbound call to the content service.
type loggingRoundTripper struct {
	inner  http.RoundTripper
	logger Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if id := RequestID(req.Context()); id != "" {
		req = req.Clone(req.Context())
		req.Header.Set("X-Request-Id", id)
	}
	resp, err := l.inner.RoundTrip(req)
	if err != nil {
		l.logger.Errorf("prismic %s %s failed after %s: %v", req.Method, redact(req), time.Since(start), err)
		return nil, err
	}
	l.logger.Debugf("prismic %s %s -> %d (%s)", req.Method, redact(req), resp.StatusCode, time.Since(start))
	return resp, nil
}

// redact strips the access token from logged URLs.
func redact(req *http.Request) string {
	u := *req.URL
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// NewHTTPClient returns an http.Client with the given timeout whose transport
// logs through logger. A zero timeout means 10 seconds.
func NewHTTPClient(timeout time.Duration, logger Logger) *http.Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport, logger: logger},
	}
}
