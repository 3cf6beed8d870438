package spacetraveling

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderPage renders cmp into a cacheable page.
func renderPage(ctx context.Context, status int, revalidate time.Duration, cmp templ.Component) (Page, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return Page{}, fmt.Errorf("render: %w", err)
	}
	return Page{
		Status:      status,
		ContentType: echo.MIMETextHTMLCharsetUTF8,
		Body:        buf.Bytes(),
		Revalidate:  revalidate,
	}, nil
}

// writePage sends a cached page. state is reported in X-Cache (HIT, STALE,
// MISS or BYPASS).
func writePage(c echo.Context, p Page, state string) error {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, p.ContentType)
	h.Set("X-Cache", state)
	switch {
	case state == "BYPASS":
		h.Set("Cache-Control", "private, no-store")
	case p.Revalidate > 0:
		h.Set("Cache-Control", fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate", int64(p.Revalidate.Seconds())))
	}
	return c.Blob(p.Status, p.ContentType, p.Body)
}
